package chat_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/models"
)

// MockStore is a testify mock of the chat.MessageStore collaborator.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveMessage(ctx context.Context, senderID uuid.UUID, p chat.SendPayload) (*models.ChatMessage, error) {
	args := m.Called(ctx, senderID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStore) GetMessage(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStore) EditMessage(ctx context.Context, id uuid.UUID, content string) (*models.ChatMessage, error) {
	args := m.Called(ctx, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStore) DeleteMessage(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockStore) MarkRead(ctx context.Context, readerID uuid.UUID, ids []uuid.UUID, room string) error {
	args := m.Called(ctx, readerID, ids, room)
	return args.Error(0)
}

func (m *MockStore) UnreadCount(ctx context.Context, userID uuid.UUID, room string) (int64, error) {
	args := m.Called(ctx, userID, room)
	return args.Get(0).(int64), args.Error(1)
}

// MockBlockSource is a testify mock of the chat.BlockSource collaborator.
type MockBlockSource struct {
	mock.Mock
}

func (m *MockBlockSource) IsUserBlocked(ctx context.Context, userID uuid.UUID) (chat.BlockState, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(chat.BlockState), args.Error(1)
}

// MockDirectory is a testify mock of the chat.Directory collaborator.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) UserIsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectory) OwnsOrder(ctx context.Context, userID uuid.UUID, orderID uint) (bool, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectory) OrderClosed(ctx context.Context, orderID uint) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectory) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// testEnv wires a hub with mocked collaborators and real in-memory
// limiter, registry and session tracker.
type testEnv struct {
	blocks  *MockBlockSource
	dir     *MockDirectory
	store   *MockStore
	limiter *chat.SlidingWindowLimiter
	hub     *chat.Hub
}

func newTestEnv(rateLimit int, rateWindow time.Duration) *testEnv {
	blocks := new(MockBlockSource)
	dir := new(MockDirectory)
	store := new(MockStore)

	limiter := chat.NewSlidingWindowLimiter(rateLimit, rateWindow)
	gate := chat.NewGate(blocks, dir, store, 15*time.Minute)
	hub := chat.NewHub(limiter, gate, chat.NewRegistry(), chat.NewSessionTracker(blocks), store, dir)

	return &testEnv{
		blocks:  blocks,
		dir:     dir,
		store:   store,
		limiter: limiter,
		hub:     hub,
	}
}

// allowConnections stubs the checks every successful connect performs.
func (e *testEnv) allowConnections() {
	e.blocks.On("IsUserBlocked", mock.Anything, mock.Anything).Return(chat.BlockState{}, nil)
	e.dir.On("UserIsActive", mock.Anything, mock.Anything).Return(true, nil)
	e.dir.On("TouchLastSeen", mock.Anything, mock.Anything).Return(nil)
}

func (e *testEnv) connect(t *testing.T, identity chat.Identity) *chat.Client {
	t.Helper()
	client := chat.NewClient(e.hub, nil, identity, "127.0.0.1", "test-agent")
	require.NoError(t, e.hub.Connect(context.Background(), client))
	return client
}

func clientIdentity(name string) chat.Identity {
	return chat.Identity{UserID: uuid.New(), Username: name, Role: models.RoleClient}
}

func adminIdentity(name string) chat.Identity {
	return chat.Identity{UserID: uuid.New(), Username: name, Role: models.RoleAdmin}
}

// drainEvents reads everything queued for the client without blocking.
func drainEvents(t *testing.T, c *chat.Client) []chat.Envelope {
	t.Helper()
	var out []chat.Envelope
	for {
		select {
		case raw, ok := <-c.Send:
			if !ok {
				return out
			}
			var env chat.Envelope
			require.NoError(t, json.Unmarshal(raw, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func countEvents(events []chat.Envelope, eventType chat.EventType) int {
	n := 0
	for _, env := range events {
		if env.Type == eventType {
			n++
		}
	}
	return n
}

func findEvent(events []chat.Envelope, eventType chat.EventType) (chat.Envelope, bool) {
	for _, env := range events {
		if env.Type == eventType {
			return env, true
		}
	}
	return chat.Envelope{}, false
}

func storedMessage(senderID uuid.UUID, p chat.SendPayload) *models.ChatMessage {
	return &models.ChatMessage{
		ID:             uuid.New(),
		SenderID:       senderID,
		RecipientID:    p.RecipientID,
		OrderID:        p.OrderID,
		ParentID:       p.ParentID,
		ConversationID: p.Room,
		Room:           p.Room,
		Content:        p.Content,
		Type:           "text",
		Priority:       models.PriorityNormal,
		CreatedAt:      time.Now(),
	}
}
