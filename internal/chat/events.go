package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/models"
)

// EventType определяет типы сообщений в обе стороны
type EventType string

const (
	// Системные типы
	TypePing EventType = "ping"
	TypePong EventType = "pong"

	// Входящие операции клиента
	TypeSendMessage    EventType = "send_message"
	TypeEditMessage    EventType = "edit_message"
	TypeDeleteMessage  EventType = "delete_message"
	TypeJoinRoom       EventType = "join_room"
	TypeLeaveRoom      EventType = "leave_room"
	TypeTyping         EventType = "typing"
	TypeMarkRead       EventType = "mark_read"
	TypeGetOnlineUsers EventType = "get_online_users"
	TypeGetUnreadCount EventType = "get_unread_count"

	// Исходящие события
	TypeUserConnected     EventType = "user_connected"
	TypeUserDisconnected  EventType = "user_disconnected"
	TypeConnectionDenied  EventType = "connection_denied"
	TypeUserJoinedRoom    EventType = "user_joined_room"
	TypeUserLeftRoom      EventType = "user_left_room"
	TypeReceiveMessage    EventType = "receive_message"
	TypeReceiveDirect     EventType = "receive_direct_message"
	TypeNewSupportMessage EventType = "new_support_message"
	TypeMessageEdited     EventType = "message_edited"
	TypeMessageDeleted    EventType = "message_deleted"
	TypeMessagesRead      EventType = "messages_read"
	TypeTypingIndicator   EventType = "typing_indicator"
	TypeRateLimited       EventType = "rate_limited"
	TypeOnlineUsers       EventType = "online_users"
	TypeUnreadCount       EventType = "unread_count"
	TypeError             EventType = "error"
)

type Envelope struct {
	Type      EventType       `json:"type"`
	Room      string          `json:"room,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Presence — производное онлайн-состояние пользователя.
type Presence struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	IsOnline   bool      `json:"is_online"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type ConnectionDeniedPayload struct {
	Reason       string     `json:"reason"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

type RoomJoinedPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	ChatRoom string    `json:"chat_room"`
	JoinedAt time.Time `json:"joined_at"`
}

type RoomLeftPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	ChatRoom string    `json:"chat_room"`
	LeftAt   time.Time `json:"left_at"`
}

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

type MessagesReadPayload struct {
	ReadBy     uuid.UUID   `json:"read_by"`
	MessageIDs []uuid.UUID `json:"message_ids"`
	ReadAt     time.Time   `json:"read_at"`
}

type TypingPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	ChatRoom string    `json:"chat_room"`
	IsTyping bool      `json:"is_typing"`
}

type RateLimitedPayload struct {
	Reason            string `json:"reason"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

type OnlineUsersPayload struct {
	ChatRoom string     `json:"chat_room"`
	Users    []Presence `json:"users"`
}

type UnreadCountPayload struct {
	ChatRoom string `json:"chat_room,omitempty"`
	Count    int64  `json:"count"`
}

type ErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// MessageView — форма сообщения в исходящих событиях и REST-ответах.
type MessageView struct {
	ID             uuid.UUID  `json:"id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	SenderName     string     `json:"sender_name,omitempty"`
	RecipientID    *uuid.UUID `json:"recipient_id,omitempty"`
	OrderID        *uint      `json:"order_id,omitempty"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	ConversationID string     `json:"conversation_id"`
	Room           string     `json:"room"`
	Content        string     `json:"content"`
	Type           string     `json:"type"`
	Priority       string     `json:"priority"`
	IsPinned       bool       `json:"is_pinned"`
	ReplyCount     int        `json:"reply_count"`
	IsRead         bool       `json:"is_read"`
	IsEdited       bool       `json:"is_edited"`
	IsDeleted      bool       `json:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

func NewMessageView(m *models.ChatMessage) MessageView {
	v := MessageView{
		ID:             m.ID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		OrderID:        m.OrderID,
		ParentID:       m.ParentID,
		ConversationID: m.ConversationID,
		Room:           m.Room,
		Content:        m.Content,
		Type:           m.Type,
		Priority:       m.Priority,
		IsPinned:       m.IsPinned,
		ReplyCount:     m.ReplyCount,
		IsRead:         m.IsRead,
		IsEdited:       m.IsEdited,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt,
		EditedAt:       m.EditedAt,
	}
	if m.Sender.ID != uuid.Nil {
		v.SenderName = m.Sender.Username
	}
	return v
}

func newEnvelope(t EventType, room string, data interface{}) ([]byte, error) {
	env := Envelope{
		Type:      t,
		Room:      room,
		Timestamp: time.Now(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
