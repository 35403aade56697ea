package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordSession(ctx context.Context, eventID, userID uuid.UUID, endedAt time.Time, points float64, minutes int) error {
	args := m.Called(ctx, eventID, userID, endedAt, points, minutes)
	return args.Error(0)
}

func consumed(t *testing.T, data any) *eventbus.ConsumedEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "focus.session.completed",
		OccurredAt: time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC),
		Data:       raw,
	}
}

func TestLeaderboardSubscriber_Handle(t *testing.T) {
	recorder := new(mockRecorder)
	sub := NewLeaderboardSubscriber(recorder, nil)
	assert.Equal(t, []string{"focus.session.completed"}, sub.EventTypes())

	userID := uuid.New()
	ended := time.Date(2026, 3, 18, 10, 30, 0, 0, time.UTC)
	event := consumed(t, map[string]any{
		"user_id":           userID,
		"ended_at":          ended,
		"deep_work_minutes": 40,
		"adjusted_score":    88.5,
		"raw_score":         40,
	})
	recorder.On("RecordSession", mock.Anything, event.EventID, userID, ended, 88.5, 40).Return(nil).Once()

	require.NoError(t, sub.Handle(context.Background(), event))
	recorder.AssertExpectations(t)
}

func TestLeaderboardSubscriber_RecorderErrorIsReturned(t *testing.T) {
	recorder := new(mockRecorder)
	sub := NewLeaderboardSubscriber(recorder, nil)
	recorder.On("RecordSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down"))

	err := sub.Handle(context.Background(), consumed(t, map[string]any{"user_id": uuid.New()}))
	assert.EqualError(t, err, "redis down")
}

func TestLeaderboardSubscriber_BadPayloadIsDropped(t *testing.T) {
	recorder := new(mockRecorder)
	sub := NewLeaderboardSubscriber(recorder, nil)

	event := &eventbus.ConsumedEvent{EventID: uuid.New(), Data: json.RawMessage(`"nope"`)}
	assert.NoError(t, sub.Handle(context.Background(), event))
	recorder.AssertNotCalled(t, "RecordSession")
}
