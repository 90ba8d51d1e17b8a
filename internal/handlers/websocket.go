package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/middleware"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub            *chat.Hub
	messageHandler *ChatMessageHandler
	upgrader       websocket.Upgrader
}

func NewWebSocketHandler(hub *chat.Hub, messageHandler *ChatMessageHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		messageHandler: messageHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: проверять origin по списку доменов компании
				return true
			},
		},
	}
}

// HandleWebSocket обрабатывает подключение клиента чата.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := chat.NewClient(h.hub, conn, identity, c.ClientIP(), c.Request.UserAgent())

	go client.WritePump()

	if err := h.hub.Connect(c.Request.Context(), client); err != nil {
		// connection_denied уже в очереди клиента; закрытие канала
		// даёт WritePump дослать его и закрыть сокет
		close(client.Send)
		return
	}

	go client.ReadPump(h.messageHandler)
}

func identityFromContext(c *gin.Context) (chat.Identity, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return chat.Identity{}, false
	}
	return chat.Identity{
		UserID:   userID.(uuid.UUID),
		Username: c.GetString(middleware.UsernameKey),
		Role:     c.GetString(middleware.UserRoleKey),
	}, true
}
