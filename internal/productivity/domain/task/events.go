package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated    = "productivity.task.created"
	RoutingKeyProgressed = "productivity.task.progressed"
	RoutingKeyDeleted    = "productivity.task.deleted"
)

// TaskCreated is emitted when a task is entered or imported.
type TaskCreated struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title"`
	Source string    `json:"source"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t *Task, at time.Time) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCreated, at),
		UserID:    t.UserID(),
		Title:     t.Title(),
		Source:    string(t.Source()),
	}
}

// TaskProgressed is emitted when completion changes.
type TaskProgressed struct {
	domain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	Previous int       `json:"previous_percent"`
	Current  int       `json:"current_percent"`
	Done     bool      `json:"done"`
}

// NewTaskProgressed creates a TaskProgressed event.
func NewTaskProgressed(t *Task, previous int, at time.Time) *TaskProgressed {
	return &TaskProgressed{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyProgressed, at),
		UserID:    t.UserID(),
		Previous:  previous,
		Current:   t.CompletionPercent(),
		Done:      t.IsDone(),
	}
}

// TaskDeleted is emitted when a manual task is removed.
type TaskDeleted struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(t *Task, at time.Time) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyDeleted, at),
		UserID:    t.UserID(),
	}
}
