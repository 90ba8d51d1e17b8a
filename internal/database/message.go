package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/models"
)

// SaveMessage создаёт сообщение; для ответов в треде инкрементирует
// счётчик ответов родителя в той же транзакции.
func (d *Database) SaveMessage(ctx context.Context, senderID uuid.UUID, p chat.SendPayload) (*models.ChatMessage, error) {
	msgType := p.Type
	if msgType == "" {
		msgType = "text"
	}
	priority := p.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	message := models.ChatMessage{
		SenderID:       senderID,
		RecipientID:    p.RecipientID,
		OrderID:        p.OrderID,
		ParentID:       p.ParentID,
		ConversationID: p.Room,
		Room:           p.Room,
		Content:        p.Content,
		Type:           msgType,
		Priority:       priority,
		CreatedAt:      time.Now(),
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if p.ParentID != nil {
			return tx.Model(&models.ChatMessage{}).
				Where("id = ?", *p.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := d.db.WithContext(ctx).Preload("Sender").First(&message, "id = ?", message.ID).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *Database) GetMessage(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := d.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, chat.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *Database) EditMessage(ctx context.Context, id uuid.UUID, content string) (*models.ChatMessage, error) {
	now := time.Now()
	res := d.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
			"edited_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, chat.ErrMessageNotFound
	}

	var message models.ChatMessage
	if err := d.db.WithContext(ctx).Preload("Sender").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage мягко удаляет сообщение и возвращает его комнату.
func (d *Database) DeleteMessage(ctx context.Context, id uuid.UUID) (string, error) {
	message, err := d.GetMessage(ctx, id)
	if err != nil {
		return "", err
	}

	now := time.Now()
	err = d.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		}).Error
	if err != nil {
		return "", err
	}
	return message.Room, nil
}

// MarkRead помечает прочитанными чужие сообщения из перечисленных.
func (d *Database) MarkRead(ctx context.Context, readerID uuid.UUID, ids []uuid.UUID, room string) error {
	if len(ids) == 0 {
		return nil
	}

	query := d.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("id IN ? AND sender_id != ? AND is_deleted = false", ids, readerID)
	if room != "" {
		query = query.Where("room = ?", room)
	}
	return query.UpdateColumn("is_read", true).Error
}

// UnreadCount считает непрочитанное в комнате; без комнаты —
// непрочитанные директы пользователя.
func (d *Database) UnreadCount(ctx context.Context, userID uuid.UUID, room string) (int64, error) {
	var count int64

	query := d.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("is_read = false AND is_deleted = false AND sender_id != ?", userID)
	if room != "" {
		query = query.Where("room = ?", room)
	} else {
		query = query.Where("recipient_id = ?", userID)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RoomMessages получает историю комнаты с пагинацией назад от beforeID.
func (d *Database) RoomMessages(ctx context.Context, room string, limit int, beforeID *uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	query := d.db.WithContext(ctx).Where("room = ? AND is_deleted = false", room)

	if beforeID != nil {
		var beforeMsg models.ChatMessage
		if err := d.db.WithContext(ctx).First(&beforeMsg, "id = ?", beforeID).Error; err == nil {
			query = query.Where("created_at < ?", beforeMsg.CreatedAt)
		}
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
