package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

// DeleteTaskCommand removes a task. An imported task comes back on the next
// Classroom import.
type DeleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      func() time.Time
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
	}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := findOwned(txCtx, h.taskRepo, cmd.TaskID, cmd.UserID)
		if err != nil {
			return err
		}
		t.MarkDeleted(h.clock())

		if err := h.taskRepo.Delete(txCtx, t.ID()); err != nil {
			return err
		}
		return sharedApplication.RecordEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents())
	})
}
