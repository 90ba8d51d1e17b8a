package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlockState — внешнее состояние блокировки пользователя.
type BlockState struct {
	Blocked bool
	Reason  string
	Until   *time.Time
}

// BlockSource — внешний источник блокировок (redis в проде).
type BlockSource interface {
	IsUserBlocked(ctx context.Context, userID uuid.UUID) (BlockState, error)
}

type session struct {
	connID       uuid.UUID
	userID       uuid.UUID
	ip           string
	userAgent    string
	connectedAt  time.Time
	lastActivity time.Time
	rooms        map[string]struct{}
}

// SessionTracker владеет метаданными соединений и множеством
// "соединение → комнаты". Это единственный источник истины о том,
// в каких комнатах состоит соединение, поэтому уборка при
// отключении всегда полная.
type SessionTracker struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	blocks   BlockSource
}

func NewSessionTracker(blocks BlockSource) *SessionTracker {
	return &SessionTracker{
		sessions: make(map[uuid.UUID]*session),
		blocks:   blocks,
	}
}

func (t *SessionTracker) Register(connID, userID uuid.UUID, ip, userAgent string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.sessions[connID] = &session{
		connID:       connID,
		userID:       userID,
		ip:           ip,
		userAgent:    userAgent,
		connectedAt:  now,
		lastActivity: now,
		rooms:        make(map[string]struct{}),
	}
}

// Remove удаляет сессию и возвращает комнаты, в которых она состояла.
// Повторный вызов для уже удалённой сессии возвращает nil.
func (t *SessionTracker) Remove(connID uuid.UUID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[connID]
	if !ok {
		return nil
	}
	delete(t.sessions, connID)

	rooms := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (t *SessionTracker) AddRoom(connID uuid.UUID, room string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[connID]
	if !ok {
		return ErrNotConnected
	}
	s.rooms[room] = struct{}{}
	return nil
}

// RemoveRoom убирает комнату из сессии. Идемпотентна.
func (t *SessionTracker) RemoveRoom(connID uuid.UUID, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[connID]; ok {
		delete(s.rooms, room)
	}
}

func (t *SessionTracker) InRoom(connID uuid.UUID, room string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[connID]
	if !ok {
		return false
	}
	_, in := s.rooms[room]
	return in
}

func (t *SessionTracker) Rooms(connID uuid.UUID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[connID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (t *SessionTracker) TouchActivity(connID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[connID]; ok {
		s.lastActivity = time.Now()
	}
}

func (t *SessionTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// IsUserBlocked делегирует внешнему источнику блокировок.
func (t *SessionTracker) IsUserBlocked(ctx context.Context, userID uuid.UUID) (BlockState, error) {
	return t.blocks.IsUserBlocked(ctx, userID)
}
