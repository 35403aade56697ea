package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

// UpdateTaskCommand contains the data needed to update a task.
type UpdateTaskCommand struct {
	TaskID            uuid.UUID
	UserID            uuid.UUID
	Description       *string    // nil means no change
	DueDate           *time.Time // nil means no change
	ClearDueDate      bool
	CompletionPercent *int     // nil means no change
	Priority          *int     // manual tasks only
	GradeWeight       *float64 // classroom tasks only
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      func() time.Time
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	return &UpdateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
	}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := findOwned(txCtx, h.taskRepo, cmd.TaskID, cmd.UserID)
		if err != nil {
			return err
		}
		now := h.clock()

		if cmd.Description != nil {
			t.SetDescription(*cmd.Description, now)
		}
		if cmd.ClearDueDate {
			t.SetDueDate(nil, now)
		} else if cmd.DueDate != nil {
			t.SetDueDate(cmd.DueDate, now)
		}
		if cmd.Priority != nil {
			p, err := value_objects.NewManualPriority(*cmd.Priority)
			if err != nil {
				return err
			}
			if err := t.SetManualPriority(p, now); err != nil {
				return err
			}
		}
		if cmd.GradeWeight != nil {
			if err := t.SetGradeWeight(*cmd.GradeWeight, now); err != nil {
				return err
			}
		}
		if cmd.CompletionPercent != nil {
			if err := t.SetCompletion(*cmd.CompletionPercent, now); err != nil {
				return err
			}
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := sharedApplication.RecordEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents()); err != nil {
			return err
		}
		t.ClearDomainEvents()
		return nil
	})
}

// findOwned loads a task and hides tasks of other users.
func findOwned(ctx context.Context, repo task.Repository, taskID, userID uuid.UUID) (*task.Task, error) {
	t, err := repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != userID {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}
