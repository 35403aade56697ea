package commands

import (
	"context"

	"github.com/google/uuid"
)

// CompleteTaskCommand marks a task 100% done.
type CompleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	update *UpdateTaskHandler
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(update *UpdateTaskHandler) *CompleteTaskHandler {
	return &CompleteTaskHandler{update: update}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) error {
	done := 100
	return h.update.Handle(ctx, UpdateTaskCommand{
		TaskID:            cmd.TaskID,
		UserID:            cmd.UserID,
		CompletionPercent: &done,
	})
}
