package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/handlers/dto"
)

// ChatMessageHandler разбирает операции, прочитанные из WebSocket,
// и передаёт их хабу. Ошибки возвращаются в ReadPump, который
// отправляет отказ только вызвавшему клиенту.
type ChatMessageHandler struct {
	hub *chat.Hub
}

func NewChatMessageHandler(hub *chat.Hub) *ChatMessageHandler {
	return &ChatMessageHandler{hub: hub}
}

func (h *ChatMessageHandler) HandleMessage(client *chat.Client, msg *chat.Envelope) error {
	ctx := context.Background()

	switch msg.Type {
	case chat.TypeJoinRoom:
		if msg.Room == "" {
			return chat.ErrInvalidMessage
		}
		return h.hub.JoinRoom(ctx, client, msg.Room)

	case chat.TypeLeaveRoom:
		if msg.Room == "" {
			return chat.ErrInvalidMessage
		}
		h.hub.LeaveRoom(client, msg.Room)
		return nil

	case chat.TypeSendMessage:
		return h.handleSend(ctx, client, msg)

	case chat.TypeEditMessage:
		var req dto.EditMessageRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return chat.ErrInvalidMessage
		}
		if req.Content == "" {
			return chat.ErrInvalidMessage
		}
		_, err := h.hub.EditMessage(ctx, client, req.MessageID, req.Content)
		return err

	case chat.TypeDeleteMessage:
		var req dto.DeleteMessageRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return chat.ErrInvalidMessage
		}
		return h.hub.DeleteMessage(ctx, client, req.MessageID)

	case chat.TypeTyping:
		if msg.Room == "" {
			return chat.ErrInvalidMessage
		}
		var req dto.TypingRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				return chat.ErrInvalidMessage
			}
		}
		return h.hub.Typing(client, msg.Room, req.IsTyping)

	case chat.TypeMarkRead:
		var req dto.MarkReadRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return chat.ErrInvalidMessage
		}
		return h.hub.MarkMessagesAsRead(ctx, client, msg.Room, req.MessageIDs)

	case chat.TypeGetOnlineUsers:
		users := h.hub.OnlineUsers(msg.Room)
		return client.SendEvent(chat.TypeOnlineUsers, msg.Room, chat.OnlineUsersPayload{
			ChatRoom: msg.Room,
			Users:    users,
		})

	case chat.TypeGetUnreadCount:
		count, err := h.hub.UnreadCount(ctx, client.Identity.UserID, msg.Room)
		if err != nil {
			return err
		}
		return client.SendEvent(chat.TypeUnreadCount, msg.Room, chat.UnreadCountPayload{
			ChatRoom: msg.Room,
			Count:    count,
		})

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

func (h *ChatMessageHandler) handleSend(ctx context.Context, client *chat.Client, msg *chat.Envelope) error {
	if msg.Room == "" {
		return chat.ErrInvalidMessage
	}

	var req dto.SendMessageRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return chat.ErrInvalidMessage
	}
	if req.Content == "" {
		return chat.ErrInvalidMessage
	}

	_, err := h.hub.SendMessage(ctx, client, chat.SendPayload{
		Room:        msg.Room,
		Content:     req.Content,
		Type:        req.Type,
		Priority:    req.Priority,
		RecipientID: req.RecipientID,
		OrderID:     req.OrderID,
		ParentID:    req.ParentID,
	})
	return err
}
