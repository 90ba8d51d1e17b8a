package models

import (
	"github.com/google/uuid"
	"time"
)

// Приоритеты сообщений (поддержка помечает срочные вопросы по заказам).
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ChatMessage — сообщение чата. Удаление всегда мягкое: запись остаётся,
// выставляется только IsDeleted/DeletedAt.
type ChatMessage struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID    *uuid.UUID `gorm:"type:uuid;index"`
	OrderID        *uint      `gorm:"index"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index"`
	ConversationID string     `gorm:"index"`
	Room           string     `gorm:"not null;index"`
	Content        string     `gorm:"not null"`
	Type           string     `gorm:"default:'text'"`
	Priority       string     `gorm:"default:'normal'"`
	IsPinned       bool       `gorm:"not null;default:false"`
	ReplyCount     int        `gorm:"not null;default:0"`
	IsRead         bool       `gorm:"not null;default:false"`
	IsEdited       bool       `gorm:"not null;default:false"`
	IsDeleted      bool       `gorm:"not null;default:false"`
	CreatedAt      time.Time
	EditedAt       *time.Time
	DeletedAt      *time.Time

	// Связи
	Sender User `gorm:"foreignKey:SenderID"`
}
