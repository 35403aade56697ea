package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
)

var (
	ErrSprintRunning   = errors.New("a sprint is already running")
	ErrNoRunningSprint = errors.New("no sprint is running")
)

// SprintTracker holds the live sprint of each user between start and finish
// and runs the optional distraction monitor alongside it.
type SprintTracker struct {
	mu       sync.Mutex
	active   map[uuid.UUID]*liveSprint
	complete *CompleteSprintHandler
	monitor  domain.DistractionMonitor
	logger   *slog.Logger
	clock    func() time.Time
}

type liveSprint struct {
	sprint *domain.SprintContext
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSprintTracker creates a tracker. monitor may be nil.
func NewSprintTracker(complete *CompleteSprintHandler, monitor domain.DistractionMonitor, logger *slog.Logger) *SprintTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SprintTracker{
		active:   make(map[uuid.UUID]*liveSprint),
		complete: complete,
		monitor:  monitor,
		logger:   logger,
		clock:    time.Now,
	}
}

// Start begins a sprint for the user, optionally linked to a task.
func (t *SprintTracker) Start(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID) (*domain.SprintContext, error) {
	now := t.clock()
	linked, err := t.complete.LinkTask(ctx, userID, taskID, now)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[userID]; ok {
		return nil, ErrSprintRunning
	}

	sprint := domain.NewSprintContext(domain.StartSession(userID, linked, now), t.clock)
	live := &liveSprint{sprint: sprint, cancel: func() {}, done: make(chan struct{})}
	if t.monitor != nil {
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		live.cancel = cancel
		go func() {
			defer close(live.done)
			if err := t.monitor.Watch(watchCtx, sprint); err != nil && !errors.Is(err, context.Canceled) {
				t.logger.Warn("distraction monitor stopped", "user_id", userID, "error", err)
			}
		}()
	} else {
		close(live.done)
	}
	t.active[userID] = live
	return sprint, nil
}

// Sprint returns the user's running sprint.
func (t *SprintTracker) Sprint(userID uuid.UUID) (*domain.SprintContext, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	live, ok := t.active[userID]
	if !ok {
		return nil, ErrNoRunningSprint
	}
	return live.sprint, nil
}

// Pause stops the deep-work clock of the running sprint.
func (t *SprintTracker) Pause(userID uuid.UUID) error {
	sprint, err := t.Sprint(userID)
	if err != nil {
		return err
	}
	return sprint.Do(func(s *domain.Session, now time.Time) error { return s.Pause(now) })
}

// Resume restarts the deep-work clock of the running sprint.
func (t *SprintTracker) Resume(userID uuid.UUID) error {
	sprint, err := t.Sprint(userID)
	if err != nil {
		return err
	}
	return sprint.Do(func(s *domain.Session, now time.Time) error { return s.Resume(now) })
}

// Finish stops the monitor, scores the sprint and records it.
func (t *SprintTracker) Finish(ctx context.Context, userID uuid.UUID) (*CompleteSprintResult, error) {
	live, err := t.detach(userID)
	if err != nil {
		return nil, err
	}
	return t.complete.HandleSprint(ctx, live.sprint)
}

// Abandon drops the running sprint without scoring it.
func (t *SprintTracker) Abandon(userID uuid.UUID) error {
	_, err := t.detach(userID)
	return err
}

// Close abandons every running sprint.
func (t *SprintTracker) Close() {
	t.mu.Lock()
	users := make([]uuid.UUID, 0, len(t.active))
	for id := range t.active {
		users = append(users, id)
	}
	t.mu.Unlock()
	for _, id := range users {
		_ = t.Abandon(id)
	}
}

func (t *SprintTracker) detach(userID uuid.UUID) (*liveSprint, error) {
	t.mu.Lock()
	live, ok := t.active[userID]
	delete(t.active, userID)
	t.mu.Unlock()
	if !ok {
		return nil, ErrNoRunningSprint
	}
	live.cancel()
	<-live.done
	return live, nil
}
