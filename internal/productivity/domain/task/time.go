package task

import "time"

// NoDeadlineHours stands in for tasks without a due date: one week out.
const NoDeadlineHours = 168.0

// HoursRemaining returns the hours from now until due. Overdue tasks yield a
// negative value; callers that need "due now" vs "overdue" rely on the sign.
func HoursRemaining(due *time.Time, now time.Time) float64 {
	if due == nil {
		return NoDeadlineHours
	}
	return due.Sub(now).Hours()
}
