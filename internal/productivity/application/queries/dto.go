package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
)

// TaskDTO is a task as shown in the ranked list.
type TaskDTO struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Source            string     `json:"source"`
	CourseName        string     `json:"course_name,omitempty"`
	WorkType          string     `json:"work_type"`
	GradeWeight       float64    `json:"grade_weight"`
	ManualPriority    int        `json:"manual_priority,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	CompletionPercent int        `json:"completion_percent"`
	Zone              string     `json:"zone"`
	PriorityScore     float64    `json:"priority_score"`
	RawPriority       float64    `json:"raw_priority"`
	HoursRemaining    float64    `json:"hours_remaining"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toDTO(r services.RankedTask) TaskDTO {
	t := r.Task
	dto := TaskDTO{
		ID:                t.ID(),
		Title:             t.Title(),
		Description:       t.Description(),
		Source:            string(t.Source()),
		WorkType:          t.WorkType().String(),
		GradeWeight:       t.GradeWeight(),
		DueDate:           t.DueDate(),
		CompletionPercent: t.CompletionPercent(),
		Zone:              r.Zone.String(),
		PriorityScore:     r.NormalizedScore,
		RawPriority:       r.RawPriority,
		HoursRemaining:    r.TimeRemaining,
		CreatedAt:         t.CreatedAt(),
	}
	if c, ok := t.Classroom(); ok {
		dto.CourseName = c.CourseName
	}
	if t.Source() == task.SourceManual {
		dto.ManualPriority = t.ManualPriority().Int()
	}
	return dto
}
