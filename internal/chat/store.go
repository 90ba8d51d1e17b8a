package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/models"
)

// SendPayload — принятая к отправке полезная нагрузка сообщения.
type SendPayload struct {
	Room        string
	Content     string
	Type        string
	Priority    string
	RecipientID *uuid.UUID
	OrderID     *uint
	ParentID    *uuid.UUID
}

// MessageStore — внешнее хранилище сообщений. Ядро чата никогда не
// удаляет записи физически: DeleteMessage выставляет флаг.
// Отсутствующее сообщение приходит как ErrMessageNotFound.
type MessageStore interface {
	SaveMessage(ctx context.Context, senderID uuid.UUID, p SendPayload) (*models.ChatMessage, error)
	GetMessage(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error)
	EditMessage(ctx context.Context, id uuid.UUID, content string) (*models.ChatMessage, error)
	// DeleteMessage возвращает комнату сообщения для рассылки события.
	DeleteMessage(ctx context.Context, id uuid.UUID) (string, error)
	MarkRead(ctx context.Context, readerID uuid.UUID, ids []uuid.UUID, room string) error
	UnreadCount(ctx context.Context, userID uuid.UUID, room string) (int64, error)
}

// Directory — справочник пользователей и заказов бизнес-бэкенда.
type Directory interface {
	UserIsActive(ctx context.Context, userID uuid.UUID) (bool, error)
	OwnsOrder(ctx context.Context, userID uuid.UUID, orderID uint) (bool, error)
	OrderClosed(ctx context.Context, orderID uint) (bool, error)
	TouchLastSeen(ctx context.Context, userID uuid.UUID) error
}
