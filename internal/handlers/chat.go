package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/database"
)

// ChatHandler — REST-запросы чата: история, непрочитанное, онлайн.
type ChatHandler struct {
	db   *database.Database
	hub  *chat.Hub
	gate chat.Authorizer
}

func NewChatHandler(db *database.Database, hub *chat.Hub, gate chat.Authorizer) *ChatHandler {
	return &ChatHandler{db: db, hub: hub, gate: gate}
}

// GetRoomMessages получает историю сообщений комнаты
func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	room := c.Param("room")

	if err := h.gate.CanAccessRoom(c.Request.Context(), identity, room); err != nil {
		respondDenied(c, err)
		return
	}

	// Параметры пагинации
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		if id, err := uuid.Parse(before); err == nil {
			beforeID = &id
		}
	}

	messages, err := h.db.RoomMessages(c.Request.Context(), room, limit, beforeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]chat.MessageView, len(messages))
	for i := range messages {
		result[i] = chat.NewMessageView(&messages[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}

// GetOnlineUsers возвращает присутствие пользователей комнаты.
func (h *ChatHandler) GetOnlineUsers(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	room := c.Param("room")

	if err := h.gate.CanAccessRoom(c.Request.Context(), identity, room); err != nil {
		respondDenied(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":  room,
		"users": h.hub.OnlineUsers(room),
	})
}

// GetUnreadCount считает непрочитанное; без ?room= — по директам.
func (h *ChatHandler) GetUnreadCount(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	room := c.Query("room")
	if room != "" {
		if err := h.gate.CanAccessRoom(c.Request.Context(), identity, room); err != nil {
			respondDenied(c, err)
			return
		}
	}

	count, err := h.hub.UnreadCount(c.Request.Context(), identity.UserID, room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room, "count": count})
}

func respondDenied(c *gin.Context, err error) {
	var deniedErr *chat.AccessDeniedError
	if errors.As(err, &deniedErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": deniedErr.Reason})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
}
