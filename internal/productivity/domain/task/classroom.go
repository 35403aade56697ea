package task

import (
	"context"
	"time"
)

// Coursework is one assignment fetched from Google Classroom, ready to be
// imported or synced.
type Coursework struct {
	Title       string
	Description string
	Details     ClassroomDetails
	DueDate     *time.Time
}

// CourseworkSource lists the signed-in student's coursework across courses.
type CourseworkSource interface {
	FetchCoursework(ctx context.Context) ([]Coursework, error)
}
