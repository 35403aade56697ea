package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/progression/domain"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

// UseFreezeTokenCommand spends one freeze token for today.
type UseFreezeTokenCommand struct {
	UserID uuid.UUID
}

// UseFreezeTokenHandler handles the UseFreezeTokenCommand.
type UseFreezeTokenHandler struct {
	streaks    domain.StreakRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	loc        *time.Location
	clock      func() time.Time
}

// NewUseFreezeTokenHandler creates a new UseFreezeTokenHandler.
func NewUseFreezeTokenHandler(streaks domain.StreakRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, loc *time.Location) *UseFreezeTokenHandler {
	if loc == nil {
		loc = time.Local
	}
	return &UseFreezeTokenHandler{
		streaks:    streaks,
		outboxRepo: outboxRepo,
		uow:        uow,
		loc:        loc,
		clock:      time.Now,
	}
}

// Handle executes the UseFreezeTokenCommand and returns the new state.
func (h *UseFreezeTokenHandler) Handle(ctx context.Context, cmd UseFreezeTokenCommand) (domain.State, error) {
	var next domain.State
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := h.clock()
		today := sharedDomain.DayIn(now, h.loc)

		state, err := h.streaks.Find(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		next, err = domain.UseFreezeToken(state, today)
		if err != nil {
			return err
		}
		if err := h.streaks.Save(txCtx, cmd.UserID, next, now); err != nil {
			return err
		}
		event := domain.NewFreezeTokenUsed(cmd.UserID, today, next.FreezeTokens, now)
		return sharedApplication.RecordEvents(txCtx, h.outboxRepo, cmd.UserID, []sharedDomain.DomainEvent{event})
	})
	if err != nil {
		return domain.State{}, err
	}
	return next, nil
}
