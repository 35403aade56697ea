package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
)

// SessionDTO is a stored sprint, flattened for listing and export.
type SessionDTO struct {
	ID              uuid.UUID           `json:"id"`
	TaskID          *uuid.UUID          `json:"task_id,omitempty"`
	TaskZone        string              `json:"task_zone,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	EndedAt         time.Time           `json:"ended_at"`
	DeepWorkMinutes int                 `json:"deep_work_minutes"`
	AppSwitches     int                 `json:"app_switches"`
	ImpulseOpens    int                 `json:"impulse_opens"`
	RawScore        float64             `json:"raw_score"`
	AdjustedScore   float64             `json:"adjusted_score"`
	Multipliers     []domain.Multiplier `json:"multipliers"`
}

// ListSessionsQuery selects sessions started in [From, To). Zero bounds are
// open.
type ListSessionsQuery struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

// ListSessionsHandler handles the ListSessionsQuery.
type ListSessionsHandler struct {
	sessions domain.Repository
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(sessions domain.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{sessions: sessions}
}

// Handle executes the ListSessionsQuery, oldest first.
func (h *ListSessionsHandler) Handle(ctx context.Context, query ListSessionsQuery) ([]SessionDTO, error) {
	var (
		sessions []*domain.Session
		err      error
	)
	if query.From.IsZero() && query.To.IsZero() {
		sessions, err = h.sessions.FindByUser(ctx, query.UserID)
	} else {
		to := query.To
		if to.IsZero() {
			to = time.Now().AddDate(100, 0, 0)
		}
		sessions, err = h.sessions.FindByUserBetween(ctx, query.UserID, query.From, to)
	}
	if err != nil {
		return nil, err
	}

	out := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionDTO(s))
	}
	return out, nil
}

// ToSessionDTO flattens a finalized session.
func ToSessionDTO(s *domain.Session) SessionDTO {
	score, _ := s.Score()
	dto := SessionDTO{
		ID:              s.ID(),
		StartedAt:       s.StartedAt(),
		DeepWorkMinutes: s.DeepWorkMinutes(s.StartedAt()),
		AppSwitches:     s.AppSwitches(),
		ImpulseOpens:    s.ImpulseOpens(),
		RawScore:        score.RawScore,
		AdjustedScore:   score.AdjustedScore,
		Multipliers:     score.Multipliers,
	}
	if end := s.EndedAt(); end != nil {
		dto.EndedAt = *end
	}
	if lt := s.LinkedTask(); lt != nil {
		id := lt.TaskID
		dto.TaskID = &id
		dto.TaskZone = lt.Zone.String()
	}
	return dto
}
