package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/models"
)

// Broadcaster адресует события группам сокетов независимо от транспорта.
type Broadcaster interface {
	SendToRoom(room string, t EventType, data interface{})
	SendToUser(userID uuid.UUID, t EventType, data interface{})
	SendToOthersInRoom(room string, exceptUser uuid.UUID, t EventType, data interface{})
}

// Hub — оркестратор чата. Каждая операция клиента проходит проверки
// (блокировка/авторизация, для отправки — лимитер), затем персистится
// во внешнем хранилище и только после подтверждения рассылается.
type Hub struct {
	limiter  RateLimiter
	gate     Authorizer
	registry *Registry
	sessions *SessionTracker
	store    MessageStore
	dir      Directory

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	rooms   map[string]map[uuid.UUID]*Client
}

func NewHub(limiter RateLimiter, gate Authorizer, registry *Registry, sessions *SessionTracker, store MessageStore, dir Directory) *Hub {
	return &Hub{
		limiter:  limiter,
		gate:     gate,
		registry: registry,
		sessions: sessions,
		store:    store,
		dir:      dir,
		clients:  make(map[uuid.UUID]*Client),
		rooms:    make(map[string]map[uuid.UUID]*Client),
	}
}

// Connect регистрирует соединение. Заблокированным и неактивным
// пользователям отправляется connection_denied, состояние не меняется;
// вызывающий обязан закрыть соединение.
func (h *Hub) Connect(ctx context.Context, c *Client) error {
	if err := h.gate.CanConnect(ctx, c.Identity.UserID); err != nil {
		var blocked *BlockedError
		var deniedErr *AccessDeniedError
		switch {
		case errors.As(err, &blocked):
			c.SendEvent(TypeConnectionDenied, "", ConnectionDeniedPayload{
				Reason:       blocked.Reason,
				BlockedUntil: blocked.Until,
			})
		case errors.As(err, &deniedErr):
			c.SendEvent(TypeConnectionDenied, "", ConnectionDeniedPayload{
				Reason: deniedErr.Reason,
			})
		}
		return err
	}

	h.sessions.Register(c.ID, c.Identity.UserID, c.IP, c.UserAgent)
	h.registry.Add(c.Identity, c.ID, c.UserAgent, c.IP)

	h.mu.Lock()
	h.clients[c.ID] = c
	h.addToRoomLocked(PersonalRoom(c.Identity.UserID), c)
	if c.Identity.Role == models.RoleAdmin {
		h.addToRoomLocked(RoomAdmins, c)
	}
	h.mu.Unlock()

	h.sessions.AddRoom(c.ID, PersonalRoom(c.Identity.UserID))
	if c.Identity.Role == models.RoleAdmin {
		h.sessions.AddRoom(c.ID, RoomAdmins)
	}

	log.Printf("Client connected: %s (user %s)", c.ID, c.Identity.UserID)

	h.broadcastExcept(c.ID, TypeUserConnected, Presence{
		UserID:     c.Identity.UserID,
		Username:   c.Identity.Username,
		Role:       c.Identity.Role,
		IsOnline:   true,
		LastSeenAt: time.Now(),
	})
	return nil
}

// Disconnect выполняет полную уборку соединения ровно один раз.
// Членства в комнатах и запись в реестре снимаются до того, как
// уйдёт уведомление о присутствии.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)

	for _, room := range h.sessions.Remove(c.ID) {
		h.removeFromRoomLocked(room, c.ID)
	}
	close(c.Send)
	h.mu.Unlock()

	stillOnline := h.registry.Remove(c.Identity.UserID, c.ID)

	log.Printf("Client disconnected: %s (user %s)", c.ID, c.Identity.UserID)

	if !stillOnline {
		if err := h.dir.TouchLastSeen(context.Background(), c.Identity.UserID); err != nil {
			log.Printf("Failed to update last seen for %s: %v", c.Identity.UserID, err)
		}
		h.broadcastExcept(c.ID, TypeUserDisconnected, Presence{
			UserID:     c.Identity.UserID,
			Username:   c.Identity.Username,
			Role:       c.Identity.Role,
			IsOnline:   false,
			LastSeenAt: time.Now(),
		})
	}
}

// JoinRoom подключает соединение к комнате после проверки доступа.
// Отказ не меняет членство.
func (h *Hub) JoinRoom(ctx context.Context, c *Client, room string) error {
	if !h.isConnected(c.ID) {
		return ErrNotConnected
	}
	if err := h.gate.CanAccessRoom(ctx, c.Identity, room); err != nil {
		return err
	}

	h.mu.Lock()
	h.addToRoomLocked(room, c)
	h.mu.Unlock()
	h.sessions.AddRoom(c.ID, room)

	h.SendToRoom(room, TypeUserJoinedRoom, RoomJoinedPayload{
		UserID:   c.Identity.UserID,
		Username: c.Identity.Username,
		ChatRoom: room,
		JoinedAt: time.Now(),
	})
	return nil
}

// LeaveRoom отключает соединение от комнаты. Идемпотентна: выход
// из комнаты, в которой соединение не состоит, не ошибка.
func (h *Hub) LeaveRoom(c *Client, room string) {
	h.mu.Lock()
	wasMember := h.removeFromRoomLocked(room, c.ID)
	h.mu.Unlock()
	h.sessions.RemoveRoom(c.ID, room)

	if wasMember {
		h.SendToRoom(room, TypeUserLeftRoom, RoomLeftPayload{
			UserID:   c.Identity.UserID,
			Username: c.Identity.Username,
			ChatRoom: room,
			LeftAt:   time.Now(),
		})
	}
}

// SendMessage: лимитер → авторизация → фиксация отправки → персист →
// рассылка. Событие уходит только после подтверждённой записи.
func (h *Hub) SendMessage(ctx context.Context, c *Client, p SendPayload) (*models.ChatMessage, error) {
	if !h.isConnected(c.ID) {
		return nil, ErrNotConnected
	}

	allowed, retryAfter := h.limiter.CanSend(c.Identity.UserID)
	if !allowed {
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	if err := h.gate.CanSendMessage(ctx, c.Identity, p.Room); err != nil {
		return nil, err
	}

	h.limiter.RecordSend(c.Identity.UserID)

	msg, err := h.store.SaveMessage(ctx, c.Identity.UserID, p)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := h.dir.TouchLastSeen(context.Background(), c.Identity.UserID); err != nil {
			log.Printf("Failed to update last seen for %s: %v", c.Identity.UserID, err)
		}
	}()

	view := NewMessageView(msg)
	if view.SenderName == "" {
		view.SenderName = c.Identity.Username
	}

	h.SendToRoom(p.Room, TypeReceiveMessage, view)

	if p.RecipientID != nil {
		h.SendToUser(*p.RecipientID, TypeReceiveDirect, view)
	}

	if ParseRoom(p.Room).Kind == RoomKindSupport {
		h.SendToRoom(RoomAdmins, TypeNewSupportMessage, view)
	}
	return msg, nil
}

// EditMessage правит сообщение после проверки авторства и возраста.
func (h *Hub) EditMessage(ctx context.Context, c *Client, messageID uuid.UUID, content string) (*models.ChatMessage, error) {
	if !h.isConnected(c.ID) {
		return nil, ErrNotConnected
	}
	if _, err := h.gate.CanEditMessage(ctx, c.Identity, messageID); err != nil {
		return nil, err
	}

	msg, err := h.store.EditMessage(ctx, messageID, content)
	if err != nil {
		return nil, err
	}

	view := NewMessageView(msg)
	h.SendToRoom(msg.Room, TypeMessageEdited, view)
	return msg, nil
}

// DeleteMessage мягко удаляет сообщение.
func (h *Hub) DeleteMessage(ctx context.Context, c *Client, messageID uuid.UUID) error {
	if !h.isConnected(c.ID) {
		return ErrNotConnected
	}
	if _, err := h.gate.CanDeleteMessage(ctx, c.Identity, messageID); err != nil {
		return err
	}

	room, err := h.store.DeleteMessage(ctx, messageID)
	if err != nil {
		return err
	}

	h.SendToRoom(room, TypeMessageDeleted, MessageDeletedPayload{
		MessageID: messageID,
		DeletedBy: c.Identity.UserID,
		DeletedAt: time.Now(),
	})
	return nil
}

// MarkMessagesAsRead отмечает сообщения прочитанными и уведомляет комнату.
func (h *Hub) MarkMessagesAsRead(ctx context.Context, c *Client, room string, messageIDs []uuid.UUID) error {
	if !h.isConnected(c.ID) {
		return ErrNotConnected
	}
	if err := h.gate.CanAccessRoom(ctx, c.Identity, room); err != nil {
		return err
	}

	if err := h.store.MarkRead(ctx, c.Identity.UserID, messageIDs, room); err != nil {
		return err
	}

	h.SendToRoom(room, TypeMessagesRead, MessagesReadPayload{
		ReadBy:     c.Identity.UserID,
		MessageIDs: messageIDs,
		ReadAt:     time.Now(),
	})
	return nil
}

// Typing рассылается остальным участникам комнаты, без персиста.
func (h *Hub) Typing(c *Client, room string, isTyping bool) error {
	if !h.isConnected(c.ID) {
		return ErrNotConnected
	}

	h.SendToOthersInRoom(room, c.Identity.UserID, TypeTypingIndicator, TypingPayload{
		UserID:   c.Identity.UserID,
		Username: c.Identity.Username,
		ChatRoom: room,
		IsTyping: isTyping,
	})
	return nil
}

// OnlineUsers возвращает присутствие пользователей комнаты.
func (h *Hub) OnlineUsers(room string) []Presence {
	h.mu.RLock()
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, client := range h.rooms[room] {
		if !seen[client.Identity.UserID] {
			seen[client.Identity.UserID] = true
			ids = append(ids, client.Identity.UserID)
		}
	}
	h.mu.RUnlock()

	return h.registry.PresenceOf(ids)
}

// UnreadCount — количество непрочитанного; room пустой — по директам.
func (h *Hub) UnreadCount(ctx context.Context, userID uuid.UUID, room string) (int64, error) {
	return h.store.UnreadCount(ctx, userID, room)
}

func (h *Hub) TouchActivity(c *Client) {
	h.sessions.TouchActivity(c.ID)
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	return h.registry.IsOnline(userID)
}

// Stop закрывает все соединения.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		h.sessions.Remove(id)
		h.registry.Remove(client.Identity.UserID, id)
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.rooms = make(map[string]map[uuid.UUID]*Client)
}

// SendToRoom отправляет событие всем соединениям комнаты.
func (h *Hub) SendToRoom(room string, t EventType, data interface{}) {
	raw, err := newEnvelope(t, room, data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", t, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		h.enqueue(client, raw)
	}
}

// SendToUser доставляет событие во все соединения пользователя
// через его личную комнату.
func (h *Hub) SendToUser(userID uuid.UUID, t EventType, data interface{}) {
	h.SendToRoom(PersonalRoom(userID), t, data)
}

// SendToOthersInRoom — как SendToRoom, но соединения exceptUser пропускаются.
func (h *Hub) SendToOthersInRoom(room string, exceptUser uuid.UUID, t EventType, data interface{}) {
	raw, err := newEnvelope(t, room, data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", t, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		if client.Identity.UserID != exceptUser {
			h.enqueue(client, raw)
		}
	}
}

func (h *Hub) broadcastExcept(exceptConn uuid.UUID, t EventType, data interface{}) {
	raw, err := newEnvelope(t, "", data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", t, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.clients {
		if id != exceptConn {
			h.enqueue(client, raw)
		}
	}
}

func (h *Hub) enqueue(client *Client, raw []byte) {
	select {
	case client.Send <- raw:
	default:
		log.Printf("Client %s send channel full", client.ID)
	}
}

func (h *Hub) isConnected(connID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[connID]
	return ok
}

func (h *Hub) addToRoomLocked(room string, c *Client) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[uuid.UUID]*Client)
	}
	h.rooms[room][c.ID] = c
}

func (h *Hub) removeFromRoomLocked(room string, connID uuid.UUID) bool {
	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[connID]; !ok {
		return false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	return true
}
