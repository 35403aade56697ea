package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// parseDue reads "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" in loc; a bare date is
// due at 23:59.
func parseDue(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if parsed, err := time.ParseInLocation(dateTimeLayout, value, loc); err == nil {
		return &parsed, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid due date format, use YYYY-MM-DD or YYYY-MM-DD HH:MM: %w", err)
	}
	due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 0, 0, loc)
	return &due, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseUUID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
