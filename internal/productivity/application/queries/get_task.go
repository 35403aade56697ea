package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
)

// GetTaskQuery contains the parameters for getting a single task.
type GetTaskQuery struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
	clock    func() time.Time
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository, engine *services.PriorityEngine) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo, engine: engine, clock: time.Now}
}

// Handle executes the GetTaskQuery. The priority score of a single task is
// not normalized against the others and is reported as 0.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != query.UserID {
		return nil, task.ErrTaskNotFound
	}

	hours := task.HoursRemaining(t.DueDate(), h.clock())
	dto := toDTO(services.RankedTask{
		Task:          t,
		RawPriority:   h.engine.RawPriority(t, hours),
		Zone:          services.ZoneFor(t, hours),
		TimeRemaining: hours,
	})
	return &dto, nil
}
