package value_objects

import (
	"errors"
	"strings"
)

// Zone is the urgency band shown next to a task.
type Zone string

const (
	ZoneRed   Zone = "red"
	ZoneAmber Zone = "amber"
	ZoneGreen Zone = "green"
)

// Hour limits for deadline-driven zones.
const (
	RedZoneMaxHours   = 24.0
	AmberZoneMaxHours = 96.0
)

var ErrInvalidZone = errors.New("invalid priority zone")

// ZoneForHours classifies a deadline by the hours left. Overdue work is red.
func ZoneForHours(hours float64) Zone {
	switch {
	case hours <= RedZoneMaxHours:
		return ZoneRed
	case hours <= AmberZoneMaxHours:
		return ZoneAmber
	default:
		return ZoneGreen
	}
}

// ParseZone parses a zone name.
func ParseZone(s string) (Zone, error) {
	z := Zone(strings.ToLower(strings.TrimSpace(s)))
	if !z.IsValid() {
		return "", ErrInvalidZone
	}
	return z, nil
}

// IsValid reports whether z is a known zone.
func (z Zone) IsValid() bool {
	switch z {
	case ZoneRed, ZoneAmber, ZoneGreen:
		return true
	default:
		return false
	}
}

// Order sorts red before amber before green.
func (z Zone) Order() int {
	switch z {
	case ZoneRed:
		return 0
	case ZoneAmber:
		return 1
	case ZoneGreen:
		return 2
	default:
		return 3
	}
}

func (z Zone) String() string {
	return string(z)
}
