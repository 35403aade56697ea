package task

import (
	"fmt"
	"time"
)

// parseDue reads a due date in loc. A date without a time is due at 23:59,
// the same default Classroom coursework gets.
func parseDue(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, loc); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date format (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"): %w", err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 0, 0, loc), nil
}
