package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RateLimiter ограничивает частоту отправки сообщений для пользователя.
type RateLimiter interface {
	// CanSend проверяет текущее окно, не меняя состояние.
	CanSend(userID uuid.UUID) (bool, time.Duration)
	// RecordSend фиксирует отправку. Вызывается только после того,
	// как прошли все остальные проверки.
	RecordSend(userID uuid.UUID)
}

// SlidingWindowLimiter — скользящее окно: не более limit отправок
// за последние window. Состояние процессное, на пользователя хранятся
// метки времени отправок внутри окна.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	sends  map[uuid.UUID][]time.Time
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:  limit,
		window: window,
		sends:  make(map[uuid.UUID][]time.Time),
	}
}

// CanSend возвращает true, если в хвостовом окне меньше limit отправок.
// При отказе вторым значением идёт время до истечения самой старой метки.
func (l *SlidingWindowLimiter) CanSend(userID uuid.UUID) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	count := 0
	var oldest time.Time
	for _, ts := range l.sends[userID] {
		if ts.After(cutoff) {
			if count == 0 || ts.Before(oldest) {
				oldest = ts
			}
			count++
		}
	}

	if count < l.limit {
		return true, 0
	}
	return false, oldest.Add(l.window).Sub(now)
}

// RecordSend добавляет метку времени и вытесняет устаревшие.
func (l *SlidingWindowLimiter) RecordSend(userID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	kept := l.sends[userID][:0]
	for _, ts := range l.sends[userID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.sends[userID] = append(kept, now)
}

// Cleanup удаляет пользователей без отправок внутри окна.
// Запускается периодически, чтобы карта не росла бесконечно.
func (l *SlidingWindowLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.window)
	for userID, sends := range l.sends {
		active := false
		for _, ts := range sends {
			if ts.After(cutoff) {
				active = true
				break
			}
		}
		if !active {
			delete(l.sends, userID)
		}
	}
}
