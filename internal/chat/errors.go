package chat

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrNotConnected    = errors.New("client is not connected")
	ErrMessageNotFound = errors.New("message not found")
)

// AccessDeniedError — отказ авторизации. Не подразумевает повтор.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason
}

func denied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Reason: fmt.Sprintf(format, args...)}
}

// BlockedError — пользователь заблокирован, соединение отклоняется.
type BlockedError struct {
	Reason string
	Until  *time.Time
}

func (e *BlockedError) Error() string {
	return "user is blocked: " + e.Reason
}

// RateLimitedError — временный отказ, клиент может повторить через RetryAfter.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}
