package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout is the ISO calendar date format.
const DayLayout = "2006-01-02"

// Day is a calendar date with no time of day. The zero value means "no day".
type Day struct {
	t time.Time // midnight UTC
}

// NewDay returns the calendar day of t in t's own location.
func NewDay(t time.Time) Day {
	y, m, d := t.Date()
	return Day{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DayIn returns the calendar day of t as seen in loc.
func DayIn(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return NewDay(t.In(loc))
}

// ParseDay parses "2006-01-02".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for constants and tests.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) AddDays(n int) Day     { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) Before(o Day) bool     { return d.t.Before(o.t) }
func (d Day) After(o Day) bool      { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool      { return d.t.Equal(o.t) }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// Start returns midnight of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, dd := d.t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

// DaysUntil returns the whole days from d to o; negative when o is earlier.
func (d Day) DaysUntil(o Day) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// ISOWeek returns the ISO year and week of the day.
func (d Day) ISOWeek() (year, week int) {
	return d.t.ISOWeek()
}

// WeekStart returns the Monday of the day's ISO week.
func (d Day) WeekStart() Day {
	offset := (int(d.t.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// MarshalJSON encodes the day as "2006-01-02", or null for the zero day.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "2006-01-02" or null.
func (d *Day) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Day{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
