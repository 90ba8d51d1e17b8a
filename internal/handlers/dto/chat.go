package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest — полезная нагрузка операции send_message.
// Комната передаётся в конверте.
type SendMessageRequest struct {
	Content     string     `json:"content"`
	Type        string     `json:"type,omitempty"` // text, image, file
	Priority    string     `json:"priority,omitempty"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	OrderID     *uint      `json:"order_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

type EditMessageRequest struct {
	MessageID uuid.UUID `json:"message_id"`
	Content   string    `json:"content"`
}

type DeleteMessageRequest struct {
	MessageID uuid.UUID `json:"message_id"`
}

type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

type MarkReadRequest struct {
	MessageIDs []uuid.UUID `json:"message_ids"`
}

type BlockUserRequest struct {
	UserID uuid.UUID  `json:"user_id" binding:"required"`
	Reason string     `json:"reason" binding:"required"`
	Until  *time.Time `json:"until,omitempty"`
}
