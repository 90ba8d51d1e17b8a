package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/models"
)

func newGate(blocks *MockBlockSource, dir *MockDirectory, store *MockStore) *chat.Gate {
	return chat.NewGate(blocks, dir, store, 15*time.Minute)
}

func TestGate_CanConnectBlockedUser(t *testing.T) {
	blocks := new(MockBlockSource)
	gate := newGate(blocks, new(MockDirectory), new(MockStore))
	userID := uuid.New()
	until := time.Now().Add(24 * time.Hour)

	blocks.On("IsUserBlocked", mock.Anything, userID).
		Return(chat.BlockState{Blocked: true, Reason: "abusive language", Until: &until}, nil)

	err := gate.CanConnect(context.Background(), userID)

	var blockedErr *chat.BlockedError
	require.ErrorAs(t, err, &blockedErr)
	assert.Equal(t, "abusive language", blockedErr.Reason)
	require.NotNil(t, blockedErr.Until)
	assert.True(t, blockedErr.Until.Equal(until))
}

func TestGate_CanConnectInactiveAccount(t *testing.T) {
	blocks := new(MockBlockSource)
	dir := new(MockDirectory)
	gate := newGate(blocks, dir, new(MockStore))
	userID := uuid.New()

	blocks.On("IsUserBlocked", mock.Anything, userID).Return(chat.BlockState{}, nil)
	dir.On("UserIsActive", mock.Anything, userID).Return(false, nil)

	err := gate.CanConnect(context.Background(), userID)

	var deniedErr *chat.AccessDeniedError
	assert.ErrorAs(t, err, &deniedErr)
}

func TestGate_CanConnectActiveUser(t *testing.T) {
	blocks := new(MockBlockSource)
	dir := new(MockDirectory)
	gate := newGate(blocks, dir, new(MockStore))
	userID := uuid.New()

	blocks.On("IsUserBlocked", mock.Anything, userID).Return(chat.BlockState{}, nil)
	dir.On("UserIsActive", mock.Anything, userID).Return(true, nil)

	assert.NoError(t, gate.CanConnect(context.Background(), userID))
}

func TestGate_AdminAccessesAnyRoom(t *testing.T) {
	dir := new(MockDirectory)
	gate := newGate(new(MockBlockSource), dir, new(MockStore))
	admin := adminIdentity("anna")

	rooms := []string{
		chat.RoomAdmins,
		chat.OrderRoom(42),
		chat.PersonalRoom(uuid.New()),
		chat.SupportRoom(uuid.New()),
	}
	for _, room := range rooms {
		assert.NoError(t, gate.CanAccessRoom(context.Background(), admin, room))
	}
	// Admin access never consults order ownership.
	dir.AssertNotCalled(t, "OwnsOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_ClientRoomAccess(t *testing.T) {
	dir := new(MockDirectory)
	gate := newGate(new(MockBlockSource), dir, new(MockStore))
	client := clientIdentity("ivan")

	dir.On("OwnsOrder", mock.Anything, client.UserID, uint(42)).Return(true, nil)
	dir.On("OwnsOrder", mock.Anything, client.UserID, uint(7)).Return(false, nil)

	ctx := context.Background()

	assert.NoError(t, gate.CanAccessRoom(ctx, client, chat.PersonalRoom(client.UserID)))
	assert.NoError(t, gate.CanAccessRoom(ctx, client, chat.SupportRoom(client.UserID)))
	assert.NoError(t, gate.CanAccessRoom(ctx, client, chat.OrderRoom(42)))

	var deniedErr *chat.AccessDeniedError
	assert.ErrorAs(t, gate.CanAccessRoom(ctx, client, chat.OrderRoom(7)), &deniedErr)
	assert.ErrorAs(t, gate.CanAccessRoom(ctx, client, chat.RoomAdmins), &deniedErr)
	assert.ErrorAs(t, gate.CanAccessRoom(ctx, client, chat.PersonalRoom(uuid.New())), &deniedErr)
	assert.ErrorAs(t, gate.CanAccessRoom(ctx, client, chat.SupportRoom(uuid.New())), &deniedErr)
	assert.ErrorAs(t, gate.CanAccessRoom(ctx, client, "garbage_room"), &deniedErr)
}

func TestGate_CanSendMessageClosedOrder(t *testing.T) {
	dir := new(MockDirectory)
	gate := newGate(new(MockBlockSource), dir, new(MockStore))
	client := clientIdentity("ivan")

	dir.On("OwnsOrder", mock.Anything, client.UserID, uint(42)).Return(true, nil)
	dir.On("OrderClosed", mock.Anything, uint(42)).Return(true, nil)

	err := gate.CanSendMessage(context.Background(), client, chat.OrderRoom(42))

	var deniedErr *chat.AccessDeniedError
	require.ErrorAs(t, err, &deniedErr)
	assert.Contains(t, deniedErr.Reason, "read-only")
}

func TestGate_CanSendMessageOpenOrder(t *testing.T) {
	dir := new(MockDirectory)
	gate := newGate(new(MockBlockSource), dir, new(MockStore))
	client := clientIdentity("ivan")

	dir.On("OwnsOrder", mock.Anything, client.UserID, uint(42)).Return(true, nil)
	dir.On("OrderClosed", mock.Anything, uint(42)).Return(false, nil)

	assert.NoError(t, gate.CanSendMessage(context.Background(), client, chat.OrderRoom(42)))
}

func TestGate_EditOwnRecentMessage(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	client := clientIdentity("ivan")
	msg := &models.ChatMessage{ID: uuid.New(), SenderID: client.UserID, CreatedAt: time.Now().Add(-time.Minute)}

	store.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil)

	got, err := gate.CanEditMessage(context.Background(), client, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
}

func TestGate_EditForeignMessageDenied(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	client := clientIdentity("ivan")
	msg := &models.ChatMessage{ID: uuid.New(), SenderID: uuid.New(), CreatedAt: time.Now()}

	store.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil)

	_, err := gate.CanEditMessage(context.Background(), client, msg.ID)

	var deniedErr *chat.AccessDeniedError
	assert.ErrorAs(t, err, &deniedErr)
}

func TestGate_EditExpiredMessageDenied(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	client := clientIdentity("ivan")
	msg := &models.ChatMessage{ID: uuid.New(), SenderID: client.UserID, CreatedAt: time.Now().Add(-time.Hour)}

	store.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil)

	_, err := gate.CanEditMessage(context.Background(), client, msg.ID)

	var deniedErr *chat.AccessDeniedError
	require.ErrorAs(t, err, &deniedErr)
	assert.Contains(t, deniedErr.Reason, "too old")
}

func TestGate_AdminEditsForeignExpiredMessage(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	admin := adminIdentity("anna")
	msg := &models.ChatMessage{ID: uuid.New(), SenderID: uuid.New(), CreatedAt: time.Now().Add(-48 * time.Hour)}

	store.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil)

	_, err := gate.CanDeleteMessage(context.Background(), admin, msg.ID)
	assert.NoError(t, err)
}

func TestGate_MutateDeletedMessage(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	client := clientIdentity("ivan")
	msg := &models.ChatMessage{ID: uuid.New(), SenderID: client.UserID, IsDeleted: true, CreatedAt: time.Now()}

	store.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil)

	_, err := gate.CanDeleteMessage(context.Background(), client, msg.ID)
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}

func TestGate_MutateMissingMessage(t *testing.T) {
	store := new(MockStore)
	gate := newGate(new(MockBlockSource), new(MockDirectory), store)
	missingID := uuid.New()

	store.On("GetMessage", mock.Anything, missingID).Return(nil, chat.ErrMessageNotFound)

	_, err := gate.CanEditMessage(context.Background(), clientIdentity("ivan"), missingID)
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}
