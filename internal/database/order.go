package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pcbfab/chat-service/internal/models"
)

func (d *Database) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := d.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// OwnsOrder проверяет принадлежность заказа пользователю.
// Несуществующий заказ никому не принадлежит.
func (d *Database) OwnsOrder(ctx context.Context, userID uuid.UUID, orderID uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND user_id = ?", orderID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *Database) OrderClosed(ctx context.Context, orderID uint) (bool, error) {
	var order models.Order
	err := d.db.WithContext(ctx).Select("status").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return order.IsClosed(), nil
}
