package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/models"
)

func (d *Database) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UserIsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Select("is_active").First(&user, "id = ?", userID).Error; err != nil {
		return false, err
	}
	return user.IsActive, nil
}

func (d *Database) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", time.Now()).Error
}
