package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
	"github.com/starfocus/starfocus/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingEvent struct {
	domain.BaseEvent
	Minutes int `json:"minutes"`
}

type batchRecorder struct {
	outbox.Repository
	saved []*outbox.Message
}

func (r *batchRecorder) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	r.saved = append(r.saved, msgs...)
	return nil
}

func newPing(minutes int) *pingEvent {
	return &pingEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Session", "focus.session.ping", time.Now()),
		Minutes:   minutes,
	}
}

func TestRecordEvents_SharesCommandCorrelation(t *testing.T) {
	userID := uuid.New()
	correlation := uuid.New()
	ctx := observability.WithCorrelationID(context.Background(), correlation.String())
	repo := &batchRecorder{}

	first, second := newPing(25), newPing(50)
	require.NoError(t, RecordEvents(ctx, repo, userID, []domain.DomainEvent{first, second}))

	require.Len(t, repo.saved, 2)
	assert.Equal(t, correlation, first.Metadata().CorrelationID)
	assert.Equal(t, first.Metadata(), second.Metadata())
	assert.Equal(t, userID, first.Metadata().UserID)

	var envelope outbox.Envelope
	require.NoError(t, json.Unmarshal(repo.saved[1].Payload, &envelope))
	assert.Equal(t, correlation, envelope.Metadata.CorrelationID)
	assert.JSONEq(t, `{"minutes":50}`, string(envelope.Data))
}

func TestRecordEvents_NonUUIDCorrelationGetsFreshID(t *testing.T) {
	ctx := observability.WithCorrelationID(context.Background(), "req-42")
	event := newPing(10)

	require.NoError(t, RecordEvents(ctx, &batchRecorder{}, uuid.New(), []domain.DomainEvent{event}))
	assert.NotEqual(t, uuid.Nil, event.Metadata().CorrelationID)
}

func TestRecordEvents_NothingToStore(t *testing.T) {
	repo := &batchRecorder{}
	require.NoError(t, RecordEvents(context.Background(), repo, uuid.New(), nil))
	assert.Empty(t, repo.saved)
}
