package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry ведёт множество живых соединений каждого пользователя.
// Присутствие производно: пользователь онлайн, пока у него есть
// хотя бы одно соединение. Членство в комнатах реестра не касается.
type Registry struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*registryEntry
}

type registryEntry struct {
	identity    Identity
	connections map[uuid.UUID]connectionInfo
	lastSeenAt  time.Time
}

type connectionInfo struct {
	UserAgent   string
	IP          string
	ConnectedAt time.Time
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[uuid.UUID]*registryEntry)}
}

func (r *Registry) Add(identity Identity, connID uuid.UUID, userAgent, ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.users[identity.UserID]
	if !ok {
		entry = &registryEntry{
			identity:    identity,
			connections: make(map[uuid.UUID]connectionInfo),
		}
		r.users[identity.UserID] = entry
	}
	entry.connections[connID] = connectionInfo{
		UserAgent:   userAgent,
		IP:          ip,
		ConnectedAt: time.Now(),
	}
	entry.lastSeenAt = time.Now()
}

// Remove убирает соединение и сообщает, остался ли пользователь онлайн.
// Повторное удаление того же соединения ничего не меняет.
func (r *Registry) Remove(userID, connID uuid.UUID) (stillOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.users[userID]
	if !ok {
		return false
	}

	delete(entry.connections, connID)
	entry.lastSeenAt = time.Now()
	if len(entry.connections) == 0 {
		delete(r.users, userID)
		return false
	}
	return true
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.users[userID]
	return ok && len(entry.connections) > 0
}

func (r *Registry) ConnectionCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.users[userID]
	if !ok {
		return 0
	}
	return len(entry.connections)
}

// PresenceOf возвращает присутствие перечисленных пользователей.
// Оффлайновые пользователи в ответ не попадают — реестр их уже забыл.
func (r *Registry) PresenceOf(userIDs []uuid.UUID) []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Presence, 0, len(userIDs))
	for _, id := range userIDs {
		entry, ok := r.users[id]
		if !ok {
			continue
		}
		out = append(out, Presence{
			UserID:     id,
			Username:   entry.identity.Username,
			Role:       entry.identity.Role,
			IsOnline:   true,
			LastSeenAt: entry.lastSeenAt,
		})
	}
	return out
}

// OnlineUserIDs возвращает всех пользователей хотя бы с одним соединением.
func (r *Registry) OnlineUserIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}
