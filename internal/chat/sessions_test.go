package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pcbfab/chat-service/internal/chat"
)

func TestSessionTracker_RoomMembership(t *testing.T) {
	tracker := chat.NewSessionTracker(new(MockBlockSource))
	connID := uuid.New()
	tracker.Register(connID, uuid.New(), "10.0.0.1", "browser")

	assert.NoError(t, tracker.AddRoom(connID, "order_42"))
	assert.NoError(t, tracker.AddRoom(connID, "admins"))
	assert.True(t, tracker.InRoom(connID, "order_42"))
	assert.False(t, tracker.InRoom(connID, "order_7"))

	rooms := tracker.Rooms(connID)
	assert.ElementsMatch(t, []string{"order_42", "admins"}, rooms)

	tracker.RemoveRoom(connID, "order_42")
	tracker.RemoveRoom(connID, "order_42")
	assert.False(t, tracker.InRoom(connID, "order_42"))
}

func TestSessionTracker_AddRoomUnknownConnection(t *testing.T) {
	tracker := chat.NewSessionTracker(new(MockBlockSource))

	err := tracker.AddRoom(uuid.New(), "order_42")
	assert.ErrorIs(t, err, chat.ErrNotConnected)
}

func TestSessionTracker_RemoveReturnsRoomsOnce(t *testing.T) {
	tracker := chat.NewSessionTracker(new(MockBlockSource))
	connID := uuid.New()
	tracker.Register(connID, uuid.New(), "10.0.0.1", "browser")
	assert.NoError(t, tracker.AddRoom(connID, "order_42"))
	assert.Equal(t, 1, tracker.Count())

	rooms := tracker.Remove(connID)
	assert.Equal(t, []string{"order_42"}, rooms)
	assert.Equal(t, 0, tracker.Count())

	assert.Nil(t, tracker.Remove(connID), "second removal returns nothing")
}

func TestSessionTracker_IsUserBlockedDelegates(t *testing.T) {
	blocks := new(MockBlockSource)
	tracker := chat.NewSessionTracker(blocks)
	userID := uuid.New()
	until := time.Now().Add(time.Hour)

	blocks.On("IsUserBlocked", mock.Anything, userID).
		Return(chat.BlockState{Blocked: true, Reason: "spam", Until: &until}, nil)

	state, err := tracker.IsUserBlocked(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, state.Blocked)
	assert.Equal(t, "spam", state.Reason)
	blocks.AssertExpectations(t)
}
