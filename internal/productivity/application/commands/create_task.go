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

// CreateTaskCommand contains the data needed to enter a manual task.
type CreateTaskCommand struct {
	UserID      uuid.UUID
	Title       string
	Description string
	// Priority is 1-10; 0 uses the default.
	Priority int
	DueDate  *time.Time
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      func() time.Time
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	priority, err := value_objects.NewManualPriority(cmd.Priority)
	if err != nil {
		return nil, err
	}

	var result *CreateTaskResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := h.clock()
		t, err := task.NewManualTask(cmd.UserID, cmd.Title, priority, cmd.DueDate, now)
		if err != nil {
			return err
		}
		if cmd.Description != "" {
			t.SetDescription(cmd.Description, now)
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := sharedApplication.RecordEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents()); err != nil {
			return err
		}
		t.ClearDomainEvents()

		result = &CreateTaskResult{TaskID: t.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
