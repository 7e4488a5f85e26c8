package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"board/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub, role models.Role) *Client {
	return NewClient(hub, nil, &models.User{ID: uuid.New(), Role: role})
}

func receive(t *testing.T, c *Client) models.ModerationEvent {
	t.Helper()
	select {
	case payload := <-c.Send:
		var event models.ModerationEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.ModerationEvent{}
}

func TestPublishReachesModeratorsOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	mod := testClient(hub, models.RoleModerator)
	member := testClient(hub, models.RoleMember)
	hub.Register <- mod
	hub.Register <- member

	targetID := uuid.New()
	hub.Publish(context.Background(), models.ModerationEvent{
		Kind:       models.EventReportFiled,
		TargetType: models.TargetPost,
		TargetID:   targetID,
		Detail:     "spam",
	})

	event := receive(t, mod)
	assert.Equal(t, models.EventReportFiled, event.Kind)
	assert.Equal(t, targetID, event.TargetID)

	// Publish is processed in order, so a second event proves the member got nothing.
	hub.Publish(context.Background(), models.ModerationEvent{Kind: models.EventNoticeChanged})
	assert.Equal(t, models.EventNoticeChanged, receive(t, mod).Kind)
	assert.Len(t, member.Send, 0)
	assert.Equal(t, 2, hub.ConnectionCount())
}

func TestRoleChangeIsDeliveredToTargetUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	member := testClient(hub, models.RoleMember)
	hub.Register <- member

	hub.Publish(context.Background(), models.ModerationEvent{
		Kind:     models.EventRoleChanged,
		TargetID: member.UserID,
		Detail:   string(models.RoleModerator),
	})

	event := receive(t, member)
	assert.Equal(t, models.EventRoleChanged, event.Kind)
	assert.Equal(t, "moderator", event.Detail)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := testClient(hub, models.RoleModerator)
	hub.Register <- client
	hub.Unregister <- client

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Equal(t, 0, hub.ConnectionCount())
}
