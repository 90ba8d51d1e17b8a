package chat_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pcbfab/chat-service/internal/chat"
)

func TestSlidingWindowLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(5, time.Minute)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		ok, _ := limiter.CanSend(userID)
		assert.True(t, ok, "send %d should be allowed", i+1)
		limiter.RecordSend(userID)
	}

	ok, retryAfter := limiter.CanSend(userID)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestSlidingWindowLimiter_CanSendDoesNotConsume(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(1, time.Minute)
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		ok, _ := limiter.CanSend(userID)
		assert.True(t, ok)
	}

	limiter.RecordSend(userID)
	ok, _ := limiter.CanSend(userID)
	assert.False(t, ok)
}

func TestSlidingWindowLimiter_WindowExpiry(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(2, 100*time.Millisecond)
	userID := uuid.New()

	limiter.RecordSend(userID)
	limiter.RecordSend(userID)

	ok, _ := limiter.CanSend(userID)
	assert.False(t, ok)

	time.Sleep(150 * time.Millisecond)

	ok, _ = limiter.CanSend(userID)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_UsersAreIndependent(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(1, time.Minute)
	first := uuid.New()
	second := uuid.New()

	limiter.RecordSend(first)

	ok, _ := limiter.CanSend(first)
	assert.False(t, ok)
	ok, _ = limiter.CanSend(second)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_ConcurrentRecords(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(100, time.Minute)
	userID := uuid.New()

	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				limiter.RecordSend(userID)
			}
		}()
	}
	wg.Wait()

	// 20 goroutines * 5 sends fill the limit exactly.
	ok, _ := limiter.CanSend(userID)
	assert.False(t, ok)
}

func TestSlidingWindowLimiter_CleanupKeepsActiveUsers(t *testing.T) {
	limiter := chat.NewSlidingWindowLimiter(1, time.Minute)
	userID := uuid.New()

	limiter.RecordSend(userID)
	limiter.Cleanup()

	ok, _ := limiter.CanSend(userID)
	assert.False(t, ok, "recent sends must survive cleanup")
}
