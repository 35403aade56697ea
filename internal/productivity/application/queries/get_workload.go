package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
)

// GetWorkloadQuery asks for the user's current workload.
type GetWorkloadQuery struct {
	UserID uuid.UUID
}

// WorkloadDTO is the workload with the intervention marks it implies.
type WorkloadDTO struct {
	Score              int                    `json:"score"`
	Level              services.WorkloadLevel `json:"level"`
	OpenTasks          int                    `json:"open_tasks"`
	BreathingAfterMins int                    `json:"breathing_after_minutes"`
	GreyscaleAfterMins int                    `json:"greyscale_after_minutes"`
	VibrationAfterMins int                    `json:"vibration_after_minutes"`
}

// GetWorkloadHandler handles the GetWorkloadQuery.
type GetWorkloadHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
	workload *services.WorkloadAggregator
	clock    func() time.Time
}

// NewGetWorkloadHandler creates a new GetWorkloadHandler.
func NewGetWorkloadHandler(taskRepo task.Repository, engine *services.PriorityEngine, workload *services.WorkloadAggregator) *GetWorkloadHandler {
	return &GetWorkloadHandler{
		taskRepo: taskRepo,
		engine:   engine,
		workload: workload,
		clock:    time.Now,
	}
}

// Handle executes the GetWorkloadQuery.
func (h *GetWorkloadHandler) Handle(ctx context.Context, query GetWorkloadQuery) (*WorkloadDTO, error) {
	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	ranked := h.engine.Rank(tasks, h.clock())
	w := h.workload.Score(ranked)
	th := services.ThresholdsFor(w.Level)

	return &WorkloadDTO{
		Score:              w.Score,
		Level:              w.Level,
		OpenTasks:          len(ranked),
		BreathingAfterMins: int(th.Breathing / time.Minute),
		GreyscaleAfterMins: int(th.Greyscale / time.Minute),
		VibrationAfterMins: int(th.Vibration / time.Minute),
	}, nil
}
