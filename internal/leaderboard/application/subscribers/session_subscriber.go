package subscribers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	focus "github.com/starfocus/starfocus/internal/focus/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/eventbus"
)

// SessionRecorder credits scored sprints to the leaderboard.
type SessionRecorder interface {
	RecordSession(ctx context.Context, eventID, userID uuid.UUID, endedAt time.Time, points float64, minutes int) error
}

// SessionCompletedPayload is the part of focus.session.completed the
// leaderboard reads.
type SessionCompletedPayload struct {
	UserID          uuid.UUID `json:"user_id"`
	EndedAt         time.Time `json:"ended_at"`
	DeepWorkMinutes int       `json:"deep_work_minutes"`
	AdjustedScore   float64   `json:"adjusted_score"`
}

// LeaderboardSubscriber feeds completed sprints into the weekly leaderboard.
type LeaderboardSubscriber struct {
	recorder SessionRecorder
	logger   *slog.Logger
}

// NewLeaderboardSubscriber creates a new leaderboard subscriber.
func NewLeaderboardSubscriber(recorder SessionRecorder, logger *slog.Logger) *LeaderboardSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardSubscriber{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *LeaderboardSubscriber) EventTypes() []string {
	return []string{focus.RoutingKeySessionCompleted}
}

// Handle processes an event.
func (s *LeaderboardSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload SessionCompletedPayload
	if err := event.Decode(&payload); err != nil {
		// redelivery cannot fix a bad payload
		s.logger.Error("invalid session payload", "event_id", event.EventID, "error", err)
		return nil
	}
	if payload.UserID == uuid.Nil {
		payload.UserID = event.Metadata.UserID
	}
	if payload.EndedAt.IsZero() {
		payload.EndedAt = event.OccurredAt
	}
	return s.recorder.RecordSession(ctx, event.EventID, payload.UserID, payload.EndedAt, payload.AdjustedScore, payload.DeepWorkMinutes)
}
