package value_objects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ManualPriority is the 1–10 importance a student assigns to a manual task.
type ManualPriority int

const (
	MinManualPriority     ManualPriority = 1
	MaxManualPriority     ManualPriority = 10
	DefaultManualPriority ManualPriority = 5
)

var ErrInvalidPriority = errors.New("priority must be between 1 and 10")

// NewManualPriority validates a user supplied priority. Zero means "not set"
// and resolves to the default.
func NewManualPriority(value int) (ManualPriority, error) {
	if value == 0 {
		return DefaultManualPriority, nil
	}
	p := ManualPriority(value)
	if !p.IsValid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPriority, value)
	}
	return p, nil
}

// ParseManualPriority parses a priority from CLI or import input.
func ParseManualPriority(s string) (ManualPriority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultManualPriority, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return NewManualPriority(v)
}

// IsValid reports whether p is within 1–10.
func (p ManualPriority) IsValid() bool {
	return p >= MinManualPriority && p <= MaxManualPriority
}

// OrDefault returns p, or the default when p was never set.
func (p ManualPriority) OrDefault() ManualPriority {
	if !p.IsValid() {
		return DefaultManualPriority
	}
	return p
}

// Fraction maps the priority onto 0.1–1.0.
func (p ManualPriority) Fraction() float64 {
	return float64(p.OrDefault()) / float64(MaxManualPriority)
}

// Zone classifies a manual priority: 8+ is red, 4–7 amber, the rest green.
func (p ManualPriority) Zone() Zone {
	switch v := p.OrDefault(); {
	case v >= 8:
		return ZoneRed
	case v >= 4:
		return ZoneAmber
	default:
		return ZoneGreen
	}
}

// Int returns the raw value.
func (p ManualPriority) Int() int {
	return int(p)
}
