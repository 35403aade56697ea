package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	"github.com/starfocus/starfocus/internal/shared/domain"
)

var (
	ErrEmptyTitle        = errors.New("task title cannot be empty")
	ErrInvalidInput      = errors.New("invalid task input")
	ErrTaskNotFound      = errors.New("task not found")
	ErrNotClassroomTask  = errors.New("task was not imported from classroom")
	ErrUnknownTaskSource = errors.New("unknown task source")
)

// DefaultGradeWeight applies to classroom work with no weight set.
const DefaultGradeWeight = 0.5

// Source tells where a task came from.
type Source string

const (
	SourceClassroom Source = "classroom"
	SourceManual    Source = "manual"
)

// ParseSource parses a source name.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceClassroom:
		return SourceClassroom, nil
	case SourceManual:
		return SourceManual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTaskSource, s)
	}
}

// SubmissionStatus mirrors the Classroom student submission state.
type SubmissionStatus string

const (
	SubmissionNew       SubmissionStatus = "NEW"
	SubmissionCreated   SubmissionStatus = "CREATED"
	SubmissionTurnedIn  SubmissionStatus = "TURNED_IN"
	SubmissionReturned  SubmissionStatus = "RETURNED"
	SubmissionReclaimed SubmissionStatus = "RECLAIMED_BY_STUDENT"
)

// ClassroomDetails holds the fields only imported coursework carries.
type ClassroomDetails struct {
	CourseWorkID string
	CourseID     string
	CourseName   string
	GradeWeight  float64
	WorkType     value_objects.WorkType
	Submission   SubmissionStatus
}

// EffectiveGradeWeight returns the weight, falling back to the default when unset.
func (d ClassroomDetails) EffectiveGradeWeight() float64 {
	if d.GradeWeight <= 0 {
		return DefaultGradeWeight
	}
	return d.GradeWeight
}

// ManualDetails holds the fields only hand-entered tasks carry.
type ManualDetails struct {
	Priority value_objects.ManualPriority
}

// Task is a unit of coursework the student has to finish. Exactly one of the
// classroom or manual variants is set.
type Task struct {
	domain.BaseAggregateRoot
	userID            uuid.UUID
	title             string
	description       string
	dueDate           *time.Time
	completionPercent int
	classroom         *ClassroomDetails
	manual            *ManualDetails
}

// NewManualTask creates a task typed in by the student.
func NewManualTask(userID uuid.UUID, title string, priority value_objects.ManualPriority, dueDate *time.Time, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if priority != 0 && !priority.IsValid() {
		return nil, value_objects.ErrInvalidPriority
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(now)),
		userID:            userID,
		title:             title,
		dueDate:           utcPtr(dueDate),
		manual:            &ManualDetails{Priority: priority.OrDefault()},
	}
	t.AddDomainEvent(NewTaskCreated(t, now))
	return t, nil
}

// NewClassroomTask creates a task from imported coursework.
func NewClassroomTask(userID uuid.UUID, title string, details ClassroomDetails, dueDate *time.Time, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if details.GradeWeight < 0 || details.GradeWeight > 1 {
		return nil, fmt.Errorf("%w: grade weight %v outside 0..1", ErrInvalidInput, details.GradeWeight)
	}
	if details.WorkType == "" {
		details.WorkType = value_objects.WorkTypeAssignment
	}
	if details.Submission == "" {
		details.Submission = SubmissionNew
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(now)),
		userID:            userID,
		title:             title,
		dueDate:           utcPtr(dueDate),
		classroom:         &details,
	}
	if details.Submission == SubmissionTurnedIn {
		t.completionPercent = 100
	}
	t.AddDomainEvent(NewTaskCreated(t, now))
	return t, nil
}

func (t *Task) UserID() uuid.UUID      { return t.userID }
func (t *Task) Title() string          { return t.title }
func (t *Task) Description() string    { return t.description }
func (t *Task) DueDate() *time.Time    { return t.dueDate }
func (t *Task) CompletionPercent() int { return t.completionPercent }

// Source reports which variant the task is.
func (t *Task) Source() Source {
	if t.classroom != nil {
		return SourceClassroom
	}
	return SourceManual
}

// Classroom returns the classroom variant, if this is one.
func (t *Task) Classroom() (ClassroomDetails, bool) {
	if t.classroom == nil {
		return ClassroomDetails{}, false
	}
	return *t.classroom, true
}

// Manual returns the manual variant, if this is one.
func (t *Task) Manual() (ManualDetails, bool) {
	if t.manual == nil {
		return ManualDetails{}, false
	}
	return *t.manual, true
}

// WorkType returns the coursework type; manual tasks are assignments.
func (t *Task) WorkType() value_objects.WorkType {
	if t.classroom != nil {
		return t.classroom.WorkType
	}
	return value_objects.WorkTypeAssignment
}

// IsDone reports whether the task drops out of ranking and workload.
func (t *Task) IsDone() bool {
	if t.completionPercent >= 100 {
		return true
	}
	return t.classroom != nil && t.classroom.Submission == SubmissionTurnedIn
}

// SetDescription updates the free-form notes.
func (t *Task) SetDescription(desc string, now time.Time) {
	t.description = strings.TrimSpace(desc)
	t.Touch(now)
}

// SetDueDate moves the deadline; nil clears it.
func (t *Task) SetDueDate(due *time.Time, now time.Time) {
	t.dueDate = utcPtr(due)
	t.Touch(now)
}

// SetCompletion records progress as a percentage.
func (t *Task) SetCompletion(percent int, now time.Time) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: completion %d outside 0..100", ErrInvalidInput, percent)
	}
	if percent == t.completionPercent {
		return nil
	}
	previous := t.completionPercent
	t.completionPercent = percent
	t.Touch(now)
	t.AddDomainEvent(NewTaskProgressed(t, previous, now))
	return nil
}

// SetGradeWeight overrides the default relevance of classroom work.
func (t *Task) SetGradeWeight(weight float64, now time.Time) error {
	if t.classroom == nil {
		return ErrNotClassroomTask
	}
	if weight < 0 || weight > 1 {
		return fmt.Errorf("%w: grade weight %v outside 0..1", ErrInvalidInput, weight)
	}
	t.classroom.GradeWeight = weight
	t.Touch(now)
	return nil
}

// SyncClassroom refreshes imported fields from a later Classroom sync without
// losing local overrides such as grade weight or partial progress.
func (t *Task) SyncClassroom(title string, details ClassroomDetails, dueDate *time.Time, now time.Time) error {
	if t.classroom == nil {
		return ErrNotClassroomTask
	}
	if title = strings.TrimSpace(title); title != "" {
		t.title = title
	}
	weight := t.classroom.GradeWeight
	*t.classroom = details
	if t.classroom.WorkType == "" {
		t.classroom.WorkType = value_objects.WorkTypeAssignment
	}
	if t.classroom.Submission == "" {
		t.classroom.Submission = SubmissionNew
	}
	t.classroom.GradeWeight = weight
	t.dueDate = utcPtr(dueDate)
	if details.Submission == SubmissionTurnedIn && t.completionPercent < 100 {
		previous := t.completionPercent
		t.completionPercent = 100
		t.AddDomainEvent(NewTaskProgressed(t, previous, now))
	}
	t.Touch(now)
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// RehydrateTask recreates a task from persisted state without emitting events.
func RehydrateTask(
	id uuid.UUID,
	userID uuid.UUID,
	title string,
	description string,
	dueDate *time.Time,
	completionPercent int,
	classroom *ClassroomDetails,
	manual *ManualDetails,
	createdAt time.Time,
	updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		userID:            userID,
		title:             title,
		description:       description,
		dueDate:           dueDate,
		completionPercent: completionPercent,
		classroom:         classroom,
		manual:            manual,
	}
}

// ManualPriority returns the user-set 1–10 priority; classroom tasks report the default.
func (t *Task) ManualPriority() value_objects.ManualPriority {
	if t.manual == nil {
		return value_objects.DefaultManualPriority
	}
	return t.manual.Priority.OrDefault()
}

// GradeWeight returns the effective grade weight; manual tasks report the default.
func (t *Task) GradeWeight() float64 {
	if t.classroom == nil {
		return DefaultGradeWeight
	}
	return t.classroom.EffectiveGradeWeight()
}

// SetManualPriority changes the priority of a manual task.
func (t *Task) SetManualPriority(p value_objects.ManualPriority, now time.Time) error {
	if t.manual == nil {
		return fmt.Errorf("%w: classroom tasks have no manual priority", ErrInvalidInput)
	}
	if !p.IsValid() {
		return value_objects.ErrInvalidPriority
	}
	t.manual.Priority = p
	t.Touch(now)
	return nil
}

// MarkDeleted records the deletion event. The caller removes the row.
func (t *Task) MarkDeleted(now time.Time) {
	t.AddDomainEvent(NewTaskDeleted(t, now))
}
