package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

// ImportClassroomCommand pulls the user's Google Classroom coursework.
type ImportClassroomCommand struct {
	UserID uuid.UUID
}

// ImportClassroomResult counts what the import did.
type ImportClassroomResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Fetched   int `json:"fetched"`
	Completed int `json:"completed"`
}

// ImportClassroomHandler handles the ImportClassroomCommand.
type ImportClassroomHandler struct {
	source     task.CourseworkSource
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	clock      func() time.Time
}

// NewImportClassroomHandler creates a new ImportClassroomHandler.
func NewImportClassroomHandler(
	source task.CourseworkSource,
	taskRepo task.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ImportClassroomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportClassroomHandler{
		source:     source,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		clock:      time.Now,
	}
}

// Handle fetches coursework outside the transaction, then upserts every item
// by course work id in one unit of work.
func (h *ImportClassroomHandler) Handle(ctx context.Context, cmd ImportClassroomCommand) (*ImportClassroomResult, error) {
	items, err := h.source.FetchCoursework(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch classroom coursework: %w", err)
	}

	result := &ImportClassroomResult{Fetched: len(items)}
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := h.clock()
		var touched []*task.Task

		for _, item := range items {
			existing, err := h.taskRepo.FindByCourseWork(txCtx, cmd.UserID, item.Details.CourseWorkID)
			switch {
			case errors.Is(err, task.ErrTaskNotFound):
				t, err := task.NewClassroomTask(cmd.UserID, item.Title, item.Details, item.DueDate, now)
				if err != nil {
					h.logger.Warn("skipping coursework", "course_work_id", item.Details.CourseWorkID, "error", err)
					continue
				}
				t.SetDescription(item.Description, now)
				if err := h.taskRepo.Save(txCtx, t); err != nil {
					return err
				}
				result.Created++
				if t.IsDone() {
					result.Completed++
				}
				touched = append(touched, t)
			case err != nil:
				return err
			default:
				wasDone := existing.IsDone()
				if err := existing.SyncClassroom(item.Title, item.Details, item.DueDate, now); err != nil {
					return err
				}
				existing.SetDescription(item.Description, now)
				if err := h.taskRepo.Save(txCtx, existing); err != nil {
					return err
				}
				result.Updated++
				if !wasDone && existing.IsDone() {
					result.Completed++
				}
				touched = append(touched, existing)
			}
		}

		for _, t := range touched {
			if err := sharedApplication.RecordEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents()); err != nil {
				return err
			}
			t.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("classroom import finished",
		"user_id", cmd.UserID,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
	)
	return result, nil
}
