package domain

import (
	"context"
	"sync"
	"time"
)

// InterventionLevel is how hard the app pushes back on a distraction.
type InterventionLevel int

const (
	InterventionNone InterventionLevel = iota
	InterventionBreathing
	InterventionGreyscale
	InterventionVibration
)

func (l InterventionLevel) String() string {
	switch l {
	case InterventionBreathing:
		return "breathing"
	case InterventionGreyscale:
		return "greyscale"
	case InterventionVibration:
		return "vibration"
	default:
		return "none"
	}
}

// InterventionFor maps the running count of impulse opens to an intervention.
// The caller performs the effect.
func InterventionFor(impulseOpens int) InterventionLevel {
	switch {
	case impulseOpens <= 0:
		return InterventionNone
	case impulseOpens == 1:
		return InterventionBreathing
	case impulseOpens == 2:
		return InterventionGreyscale
	default:
		return InterventionVibration
	}
}

// SprintContext is the handle a distraction monitor uses to report into the
// one running sprint. It is safe for use from the monitor's goroutine.
type SprintContext struct {
	mu      sync.Mutex
	session *Session
	now     func() time.Time
}

// NewSprintContext wraps a started session. A nil clock means time.Now.
func NewSprintContext(session *Session, clock func() time.Time) *SprintContext {
	if clock == nil {
		clock = time.Now
	}
	return &SprintContext{session: session, now: clock}
}

// Active reports whether the sprint is running and not paused.
func (c *SprintContext) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.IsRunning()
}

// AppSwitched records that the app lost foreground.
func (c *SprintContext) AppSwitched() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.RecordAppSwitch(c.now())
}

// ImpulseOpened records a flagged app open and returns the intervention to show.
func (c *SprintContext) ImpulseOpened() (InterventionLevel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.RecordImpulseOpen(c.now())
}

// Do runs fn with exclusive access to the session, for pause, resume and finalize.
func (c *SprintContext) Do(fn func(s *Session, now time.Time) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.session, c.now())
}

// DistractionMonitor watches the device while a sprint is active and reports
// through the sprint context. Watch blocks until ctx is done.
type DistractionMonitor interface {
	Watch(ctx context.Context, sprint *SprintContext) error
}
