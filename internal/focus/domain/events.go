package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

const (
	AggregateType = "FocusSession"

	RoutingKeySessionCompleted = "focus.session.completed"
)

// SessionCompleted is emitted once when a sprint is scored. The leaderboard
// consumes it.
type SessionCompleted struct {
	sharedDomain.BaseEvent
	UserID          uuid.UUID    `json:"user_id"`
	TaskID          *uuid.UUID   `json:"task_id,omitempty"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         time.Time    `json:"ended_at"`
	DeepWorkMinutes int          `json:"deep_work_minutes"`
	AppSwitches     int          `json:"app_switches"`
	ImpulseOpens    int          `json:"impulse_opens"`
	RawScore        float64      `json:"raw_score"`
	AdjustedScore   float64      `json:"adjusted_score"`
	Multipliers     []Multiplier `json:"multipliers"`
}

// NewSessionCompleted creates the event from a finalized session.
func NewSessionCompleted(s *Session, at time.Time) *SessionCompleted {
	score, _ := s.Score()
	ev := &SessionCompleted{
		BaseEvent:       sharedDomain.NewBaseEvent(s.ID(), AggregateType, RoutingKeySessionCompleted, at),
		UserID:          s.UserID(),
		StartedAt:       s.StartedAt(),
		DeepWorkMinutes: s.DeepWorkMinutes(at),
		AppSwitches:     s.AppSwitches(),
		ImpulseOpens:    s.ImpulseOpens(),
		RawScore:        score.RawScore,
		AdjustedScore:   score.AdjustedScore,
		Multipliers:     score.Multipliers,
	}
	if end := s.EndedAt(); end != nil {
		ev.EndedAt = *end
	}
	if lt := s.LinkedTask(); lt != nil {
		id := lt.TaskID
		ev.TaskID = &id
	}
	return ev
}
