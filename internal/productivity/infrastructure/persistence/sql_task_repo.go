package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

// SQLTaskRepository implements task.Repository on SQLite or PostgreSQL.
type SQLTaskRepository struct {
	conn database.Connection
}

// NewSQLTaskRepository creates a new task repository.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn}
}

const taskColumns = `id, user_id, source, title, description, due_date, completion_percent,
	course_work_id, course_id, course_name, grade_weight, work_type, submission_status,
	manual_priority, created_at, updated_at`

const upsertTask = `INSERT INTO tasks (` + taskColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	description = excluded.description,
	due_date = excluded.due_date,
	completion_percent = excluded.completion_percent,
	course_name = excluded.course_name,
	grade_weight = excluded.grade_weight,
	work_type = excluded.work_type,
	submission_status = excluded.submission_status,
	manual_priority = excluded.manual_priority,
	updated_at = excluded.updated_at`

// Save inserts or updates a task.
func (r *SQLTaskRepository) Save(ctx context.Context, t *task.Task) error {
	var (
		courseWorkID, courseID, courseName, workType, submission any
		gradeWeight, manualPriority                              any
	)
	if c, ok := t.Classroom(); ok {
		courseWorkID = c.CourseWorkID
		courseID = c.CourseID
		courseName = c.CourseName
		gradeWeight = c.GradeWeight
		workType = c.WorkType.String()
		submission = string(c.Submission)
	}
	if m, ok := t.Manual(); ok {
		manualPriority = m.Priority.Int()
	}

	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, upsertTask,
		t.ID().String(),
		t.UserID().String(),
		string(t.Source()),
		t.Title(),
		t.Description(),
		database.FormatNullableTime(t.DueDate()),
		t.CompletionPercent(),
		courseWorkID,
		courseID,
		courseName,
		gradeWeight,
		workType,
		submission,
		manualPriority,
		database.FormatTime(t.CreatedAt()),
		database.FormatTime(t.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID(), err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// FindByUserID retrieves all tasks for a user, oldest first.
func (r *SQLTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// FindByCourseWork finds the imported copy of a classroom assignment.
func (r *SQLTaskRepository) FindByCourseWork(ctx context.Context, userID uuid.UUID, courseWorkID string) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND course_work_id = ?`,
		userID.String(), courseWorkID)
	t, err := scanTask(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// Delete removes a task.
func (r *SQLTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func scanTask(row database.Row) (*task.Task, error) {
	var (
		id, userID, source, title, description string
		dueDate                                sql.NullString
		completion                             int
		courseWorkID, courseID, courseName     sql.NullString
		gradeWeight                            sql.NullFloat64
		workType, submission                   sql.NullString
		manualPriority                         sql.NullInt64
		createdAt, updatedAt                   string
	)
	if err := row.Scan(&id, &userID, &source, &title, &description, &dueDate, &completion,
		&courseWorkID, &courseID, &courseName, &gradeWeight, &workType, &submission,
		&manualPriority, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", id, err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	due, err := database.ParseNullableTime(dueDate)
	if err != nil {
		return nil, err
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := database.ParseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	src, err := task.ParseSource(source)
	if err != nil {
		return nil, err
	}

	var (
		classroom *task.ClassroomDetails
		manual    *task.ManualDetails
	)
	switch src {
	case task.SourceClassroom:
		classroom = &task.ClassroomDetails{
			CourseWorkID: courseWorkID.String,
			CourseID:     courseID.String,
			CourseName:   courseName.String,
			GradeWeight:  gradeWeight.Float64,
			WorkType:     value_objects.ParseWorkType(workType.String),
			Submission:   task.SubmissionStatus(submission.String),
		}
	case task.SourceManual:
		manual = &task.ManualDetails{Priority: value_objects.ManualPriority(manualPriority.Int64)}
	}

	return task.RehydrateTask(taskID, owner, title, description, due, completion,
		classroom, manual, created, updated), nil
}
