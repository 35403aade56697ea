package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

var (
	ErrSessionFinalized = errors.New("focus session already finalized")
	ErrSessionPaused    = errors.New("focus session is paused")
	ErrSessionNotPaused = errors.New("focus session is not paused")
	ErrSessionNotFound  = errors.New("focus session not found")
)

// Session is one focus sprint. Counters change while it runs; it is scored
// exactly once and never changes afterwards.
type Session struct {
	sharedDomain.BaseAggregateRoot
	userID       uuid.UUID
	linkedTask   *LinkedTask
	startedAt    time.Time
	endedAt      *time.Time
	pausedAt     *time.Time
	pausedTotal  time.Duration
	deepMinutes  int
	appSwitches  int
	impulseOpens int
	score        *FocusScore
}

// StartSession begins a sprint, optionally linked to a task snapshot.
func StartSession(userID uuid.UUID, linked *LinkedTask, now time.Time) *Session {
	return &Session{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.NewBaseEntity(now)),
		userID:            userID,
		linkedTask:        linked,
		startedAt:         now.UTC(),
	}
}

// RecordedSession builds and scores a sprint whose telemetry was collected
// elsewhere, e.g. on the device, and submitted when it ended.
func RecordedSession(userID uuid.UUID, linked *LinkedTask, startedAt, endedAt time.Time, in ScoreInput, calc *ScoreCalculator) (*Session, error) {
	if endedAt.Before(startedAt) {
		return nil, fmt.Errorf("%w: session ends before it starts", ErrInvalidInput)
	}
	if elapsed := int(endedAt.Sub(startedAt) / time.Minute); in.DeepWorkMinutes > elapsed {
		return nil, fmt.Errorf("%w: %d deep work minutes in a %d minute session", ErrInvalidInput, in.DeepWorkMinutes, elapsed)
	}
	s := StartSession(userID, linked, startedAt)
	s.appSwitches = in.AppSwitches
	s.impulseOpens = in.ImpulseOpens
	s.deepMinutes = in.DeepWorkMinutes
	if _, err := s.finalize(calc, endedAt, in.DeepWorkMinutes); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) UserID() uuid.UUID       { return s.userID }
func (s *Session) LinkedTask() *LinkedTask { return s.linkedTask }
func (s *Session) StartedAt() time.Time    { return s.startedAt }
func (s *Session) EndedAt() *time.Time     { return s.endedAt }
func (s *Session) AppSwitches() int        { return s.appSwitches }
func (s *Session) ImpulseOpens() int       { return s.impulseOpens }
func (s *Session) IsFinalized() bool       { return s.score != nil }
func (s *Session) IsPaused() bool          { return s.pausedAt != nil }

// IsRunning reports whether the timer is counting.
func (s *Session) IsRunning() bool {
	return !s.IsFinalized() && !s.IsPaused()
}

// Score returns the final score once the sprint is finalized.
func (s *Session) Score() (FocusScore, bool) {
	if s.score == nil {
		return FocusScore{}, false
	}
	return *s.score, true
}

// DeepWorkMinutes is elapsed time minus paused time, in whole minutes.
func (s *Session) DeepWorkMinutes(now time.Time) int {
	if s.IsFinalized() {
		return s.deepMinutes
	}
	end := now
	paused := s.pausedTotal
	if s.pausedAt != nil {
		paused += now.Sub(*s.pausedAt)
	}
	worked := end.Sub(s.startedAt) - paused
	if worked < 0 {
		return 0
	}
	return int(worked / time.Minute)
}

// RecordAppSwitch counts one loss of foreground.
func (s *Session) RecordAppSwitch(now time.Time) error {
	if s.IsFinalized() {
		return ErrSessionFinalized
	}
	s.appSwitches++
	s.Touch(now)
	return nil
}

// RecordImpulseOpen counts a flagged app open and returns the escalated
// intervention for the new count.
func (s *Session) RecordImpulseOpen(now time.Time) (InterventionLevel, error) {
	if s.IsFinalized() {
		return InterventionNone, ErrSessionFinalized
	}
	s.impulseOpens++
	s.Touch(now)
	return InterventionFor(s.impulseOpens), nil
}

// Pause stops the deep-work clock.
func (s *Session) Pause(now time.Time) error {
	if s.IsFinalized() {
		return ErrSessionFinalized
	}
	if s.IsPaused() {
		return ErrSessionPaused
	}
	at := now.UTC()
	s.pausedAt = &at
	s.Touch(now)
	return nil
}

// Resume restarts the deep-work clock.
func (s *Session) Resume(now time.Time) error {
	if s.IsFinalized() {
		return ErrSessionFinalized
	}
	if !s.IsPaused() {
		return ErrSessionNotPaused
	}
	s.pausedTotal += now.Sub(*s.pausedAt)
	s.pausedAt = nil
	s.Touch(now)
	return nil
}

// Finalize ends the sprint and scores it. Time spent paused is not counted.
func (s *Session) Finalize(calc *ScoreCalculator, now time.Time) (FocusScore, error) {
	if s.IsFinalized() {
		return FocusScore{}, ErrSessionFinalized
	}
	return s.finalize(calc, now, s.DeepWorkMinutes(now))
}

func (s *Session) finalize(calc *ScoreCalculator, now time.Time, minutes int) (FocusScore, error) {
	score, err := calc.Score(ScoreInput{
		DeepWorkMinutes: minutes,
		AppSwitches:     s.appSwitches,
		ImpulseOpens:    s.impulseOpens,
		LinkedTask:      s.linkedTask,
	})
	if err != nil {
		return FocusScore{}, err
	}

	end := now.UTC()
	s.endedAt = &end
	s.pausedAt = nil
	s.deepMinutes = minutes
	s.score = &score
	s.Touch(now)
	s.AddDomainEvent(NewSessionCompleted(s, now))
	return score, nil
}

// RehydrateSession recreates a finalized session from storage.
func RehydrateSession(
	id, userID uuid.UUID,
	linked *LinkedTask,
	startedAt, endedAt time.Time,
	deepMinutes, appSwitches, impulseOpens int,
	score FocusScore,
	createdAt time.Time,
) *Session {
	end := endedAt
	return &Session{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, endedAt)),
		userID:            userID,
		linkedTask:        linked,
		startedAt:         startedAt,
		endedAt:           &end,
		deepMinutes:       deepMinutes,
		appSwitches:       appSwitches,
		impulseOpens:      impulseOpens,
		score:             &score,
	}
}
