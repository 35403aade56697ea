package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streakExtended struct {
	domain.BaseEvent
	Current int `json:"current_streak"`
}

func newStreakExtended(current int) *streakExtended {
	return &streakExtended{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Streak", "progression.streak.extended", time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC)),
		Current:   current,
	}
}

func TestNewMessage_Envelope(t *testing.T) {
	event := newStreakExtended(7)
	userID := uuid.New()
	event.SetMetadata(domain.EventMetadata{UserID: userID, CorrelationID: uuid.New()})

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "progression.streak.extended", msg.RoutingKey)
	assert.Equal(t, msg.RoutingKey, msg.EventType)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.False(t, msg.IsPublished())

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Payload, &env))
	assert.Equal(t, event.AggregateID(), env.AggregateID)
	assert.Equal(t, userID, env.Metadata.UserID)
	assert.JSONEq(t, `{"current_streak":7}`, string(env.Data))
}

func TestNewMessages(t *testing.T) {
	msgs, err := NewMessages([]domain.DomainEvent{newStreakExtended(1), newStreakExtended(2)})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	msgs, err = NewMessages(nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessage_CanRetry(t *testing.T) {
	msg := &Message{RetryCount: 3}
	assert.True(t, msg.CanRetry(5))
	msg.RetryCount = 4
	assert.False(t, msg.CanRetry(5))
	assert.False(t, (&Message{}).CanRetry(0))
}
