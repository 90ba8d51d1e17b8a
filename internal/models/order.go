package models

import (
	"github.com/google/uuid"
	"time"
)

// Статусы заказа на производство плат. Чат использует только
// признак "заказ закрыт" — в закрытых комнатах писать нельзя.
const (
	OrderStatusNew        = "new"
	OrderStatusQuoted     = "quoted"
	OrderStatusProduction = "production"
	OrderStatusShipped    = "shipped"
	OrderStatusClosed     = "closed"
	OrderStatusArchived   = "archived"
)

type Order struct {
	ID        uint      `gorm:"primaryKey"`
	Number    string    `gorm:"uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"not null;default:'new'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}

func (o *Order) IsClosed() bool {
	return o.Status == OrderStatusClosed || o.Status == OrderStatusArchived
}
