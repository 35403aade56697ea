package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// MaxHistoryDays caps how far back the history query looks.
const MaxHistoryDays = 366

// GetHistoryQuery asks for per-day focus summaries.
type GetHistoryQuery struct {
	UserID uuid.UUID
	Days   int
}

// GetHistoryHandler handles the GetHistoryQuery.
type GetHistoryHandler struct {
	sessions domain.Repository
	loc      *time.Location
	clock    func() time.Time
}

// NewGetHistoryHandler creates a new GetHistoryHandler.
func NewGetHistoryHandler(sessions domain.Repository, loc *time.Location) *GetHistoryHandler {
	if loc == nil {
		loc = time.Local
	}
	return &GetHistoryHandler{sessions: sessions, loc: loc, clock: time.Now}
}

// Handle returns one summary per day, oldest first, ending today.
func (h *GetHistoryHandler) Handle(ctx context.Context, query GetHistoryQuery) ([]domain.DailySummary, error) {
	days := min(max(query.Days, 1), MaxHistoryDays)
	today := sharedDomain.DayIn(h.clock(), h.loc)
	from := today.AddDays(-(days - 1)).Start(h.loc)
	to := today.AddDays(1).Start(h.loc)

	sessions, err := h.sessions.FindByUserBetween(ctx, query.UserID, from, to)
	if err != nil {
		return nil, err
	}
	return domain.History(sessions, today, days, h.loc), nil
}
