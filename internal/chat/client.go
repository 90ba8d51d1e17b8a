package chat

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 64 * 1024

	sendQueueSize = 256
)

// Identity — аутентифицированный пользователь, извлечённый из токена
// выше по стеку. Ядро чата токены не разбирает.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// Client — одно живое соединение. Соединение принадлежит ровно
// одному пользователю на всём своём времени жизни.
type Client struct {
	ID        uuid.UUID
	Identity  Identity
	Conn      *websocket.Conn
	Send      chan []byte
	IP        string
	UserAgent string
	Hub       *Hub
}

// ClientMessageHandler разбирает операции, пришедшие от клиента.
type ClientMessageHandler interface {
	HandleMessage(client *Client, msg *Envelope) error
}

func NewClient(hub *Hub, conn *websocket.Conn, identity Identity, ip, userAgent string) *Client {
	return &Client{
		ID:        uuid.New(),
		Identity:  identity,
		Conn:      conn,
		Send:      make(chan []byte, sendQueueSize),
		IP:        ip,
		UserAgent: userAgent,
		Hub:       hub,
	}
}

// ReadPump читает операции клиента и передаёт их обработчику.
// Операции одного соединения обрабатываются строго по порядку чтения.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.Hub.Disconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Envelope
		err := c.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if msg.Type == TypePong {
			continue
		}
		if msg.Type == TypePing {
			c.SendEvent(TypePong, "", nil)
			continue
		}

		c.Hub.TouchActivity(c)

		if handler != nil {
			if err := handler.HandleMessage(c, &msg); err != nil {
				c.SendFailure(err)
			}
		}
	}
}

// WritePump отправляет события клиенту и пингует соединение.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent ставит событие в очередь клиента, не блокируясь.
func (c *Client) SendEvent(t EventType, room string, data interface{}) error {
	raw, err := newEnvelope(t, room, data)
	if err != nil {
		return err
	}

	select {
	case c.Send <- raw:
		return nil
	default:
		return ErrClientQueueFull
	}
}

// SendFailure сообщает вызвавшему клиенту об отказе операции.
// Отказы никогда не рассылаются другим участникам комнат.
func (c *Client) SendFailure(err error) {
	var rateLimited *RateLimitedError
	var deniedErr *AccessDeniedError

	switch {
	case errors.As(err, &rateLimited):
		retry := int(rateLimited.RetryAfter.Seconds())
		if retry < 1 {
			retry = 1
		}
		c.SendEvent(TypeRateLimited, "", RateLimitedPayload{
			Reason:            "too many messages",
			RetryAfterSeconds: retry,
		})

	case errors.As(err, &deniedErr):
		c.SendEvent(TypeError, "", ErrorPayload{
			Code:   "authorization_denied",
			Reason: deniedErr.Reason,
		})

	case errors.Is(err, ErrMessageNotFound):
		c.SendEvent(TypeError, "", ErrorPayload{
			Code:   "not_found",
			Reason: "message not found",
		})

	case errors.Is(err, ErrInvalidMessage):
		c.SendEvent(TypeError, "", ErrorPayload{
			Code:   "invalid_message",
			Reason: "invalid message format",
		})

	default:
		log.Printf("chat operation failed for user %s: %v", c.Identity.UserID, err)
		c.SendEvent(TypeError, "", ErrorPayload{
			Code:   "operation_failed",
			Reason: "operation failed",
		})
	}
}
