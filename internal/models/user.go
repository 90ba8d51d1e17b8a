package models

import (
	"github.com/google/uuid"
	"time"
)

// Роли пользователей чата. Менеджеры производства и поддержка
// подключаются с ролью admin.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username   string    `gorm:"uniqueIndex;not null"`
	Email      string    `gorm:"uniqueIndex;not null"`
	Role       string    `gorm:"not null;default:'client';check:role IN ('client','admin')"`
	IsActive   bool      `gorm:"not null;default:true"`
	LastSeenAt time.Time
	CreatedAt  time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
