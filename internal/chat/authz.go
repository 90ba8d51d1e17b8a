package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/models"
)

// Authorizer принимает решения о доступе. nil означает "разрешено",
// отказ приходит как *AccessDeniedError или *BlockedError.
// Отказ никогда не меняет состояние других компонентов.
type Authorizer interface {
	CanConnect(ctx context.Context, userID uuid.UUID) error
	CanAccessRoom(ctx context.Context, identity Identity, room string) error
	CanSendMessage(ctx context.Context, identity Identity, room string) error
	CanEditMessage(ctx context.Context, identity Identity, messageID uuid.UUID) (*models.ChatMessage, error)
	CanDeleteMessage(ctx context.Context, identity Identity, messageID uuid.UUID) (*models.ChatMessage, error)
}

// Gate проверяет роль, владение заказом, блокировки и возраст сообщений.
type Gate struct {
	blocks   BlockSource
	dir      Directory
	messages MessageStore

	// Не-администраторы могут править и удалять свои сообщения
	// только в течение editWindow после создания.
	editWindow time.Duration
}

func NewGate(blocks BlockSource, dir Directory, messages MessageStore, editWindow time.Duration) *Gate {
	return &Gate{
		blocks:     blocks,
		dir:        dir,
		messages:   messages,
		editWindow: editWindow,
	}
}

// CanConnect: учётная запись активна и пользователь не заблокирован.
func (g *Gate) CanConnect(ctx context.Context, userID uuid.UUID) error {
	state, err := g.blocks.IsUserBlocked(ctx, userID)
	if err != nil {
		return err
	}
	if state.Blocked {
		return &BlockedError{Reason: state.Reason, Until: state.Until}
	}

	active, err := g.dir.UserIsActive(ctx, userID)
	if err != nil {
		return err
	}
	if !active {
		return denied("account is not active")
	}
	return nil
}

// CanAccessRoom: администратору доступна любая комната; остальным —
// личная комната, собственный тред поддержки и комнаты своих заказов.
func (g *Gate) CanAccessRoom(ctx context.Context, identity Identity, room string) error {
	if identity.Role == models.RoleAdmin {
		return nil
	}

	parsed := ParseRoom(room)
	switch parsed.Kind {
	case RoomKindAdmins:
		return denied("room %q is restricted to administrators", room)

	case RoomKindPersonal:
		if parsed.UserID == identity.UserID {
			return nil
		}
		return denied("personal room %q belongs to another user", room)

	case RoomKindSupport:
		if parsed.UserID == identity.UserID {
			return nil
		}
		return denied("support room %q belongs to another user", room)

	case RoomKindOrder:
		owns, err := g.dir.OwnsOrder(ctx, identity.UserID, parsed.OrderID)
		if err != nil {
			return err
		}
		if !owns {
			return denied("order %d does not belong to you", parsed.OrderID)
		}
		return nil
	}

	return denied("unknown room %q", room)
}

// CanSendMessage: доступ в комнату плюс запрет на запись
// в комнаты закрытых и архивных заказов.
func (g *Gate) CanSendMessage(ctx context.Context, identity Identity, room string) error {
	if err := g.CanAccessRoom(ctx, identity, room); err != nil {
		return err
	}

	parsed := ParseRoom(room)
	if parsed.Kind == RoomKindOrder {
		closed, err := g.dir.OrderClosed(ctx, parsed.OrderID)
		if err != nil {
			return err
		}
		if closed {
			return denied("order %d is closed, room is read-only", parsed.OrderID)
		}
	}
	return nil
}

// CanEditMessage: автор в пределах окна редактирования либо администратор.
// Возвращает сообщение, чтобы вызывающий не читал его повторно.
func (g *Gate) CanEditMessage(ctx context.Context, identity Identity, messageID uuid.UUID) (*models.ChatMessage, error) {
	return g.canMutateMessage(ctx, identity, messageID, "edit")
}

// CanDeleteMessage: те же правила, что и для редактирования.
func (g *Gate) CanDeleteMessage(ctx context.Context, identity Identity, messageID uuid.UUID) (*models.ChatMessage, error) {
	return g.canMutateMessage(ctx, identity, messageID, "delete")
}

func (g *Gate) canMutateMessage(ctx context.Context, identity Identity, messageID uuid.UUID, action string) (*models.ChatMessage, error) {
	msg, err := g.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsDeleted {
		return nil, ErrMessageNotFound
	}

	if identity.Role == models.RoleAdmin {
		return msg, nil
	}
	if msg.SenderID != identity.UserID {
		return nil, denied("you can only %s your own messages", action)
	}
	if time.Since(msg.CreatedAt) > g.editWindow {
		return nil, denied("message is too old to %s", action)
	}
	return msg, nil
}
