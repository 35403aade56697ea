package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
)

// RankTasksQuery contains the parameters for the ranked task list.
type RankTasksQuery struct {
	UserID uuid.UUID
	Zone   string // optional filter: red, amber, green
	Limit  int    // 0 = no limit
}

// RankTasksResult is the ranked open tasks plus the workload they add up to.
type RankTasksResult struct {
	Tasks    []TaskDTO         `json:"tasks"`
	Workload services.Workload `json:"workload"`
}

// RankTasksHandler handles the RankTasksQuery.
type RankTasksHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
	workload *services.WorkloadAggregator
	clock    func() time.Time
}

// NewRankTasksHandler creates a new RankTasksHandler.
func NewRankTasksHandler(taskRepo task.Repository, engine *services.PriorityEngine, workload *services.WorkloadAggregator) *RankTasksHandler {
	return &RankTasksHandler{
		taskRepo: taskRepo,
		engine:   engine,
		workload: workload,
		clock:    time.Now,
	}
}

// Handle executes the RankTasksQuery. The workload always covers every open
// task, even when the list is filtered.
func (h *RankTasksHandler) Handle(ctx context.Context, query RankTasksQuery) (*RankTasksResult, error) {
	var zone value_objects.Zone
	if query.Zone != "" {
		z, err := value_objects.ParseZone(query.Zone)
		if err != nil {
			return nil, err
		}
		zone = z
	}

	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	ranked := h.engine.Rank(tasks, h.clock())
	result := &RankTasksResult{
		Tasks:    make([]TaskDTO, 0, len(ranked)),
		Workload: h.workload.Score(ranked),
	}
	for _, r := range ranked {
		if zone != "" && r.Zone != zone {
			continue
		}
		result.Tasks = append(result.Tasks, toDTO(r))
		if query.Limit > 0 && len(result.Tasks) == query.Limit {
			break
		}
	}
	return result, nil
}
