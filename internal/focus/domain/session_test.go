package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 8, 7, 0, 0, 0, time.UTC)

func TestSession_Lifecycle(t *testing.T) {
	calc := NewScoreCalculator(DefaultScoreConfig())
	linked := &LinkedTask{TaskID: uuid.New(), Zone: value_objects.ZoneRed, WorkType: value_objects.WorkTypeAssignment}
	s := StartSession(uuid.New(), linked, start)

	require.NoError(t, s.RecordAppSwitch(start.Add(5*time.Minute)))
	level, err := s.RecordImpulseOpen(start.Add(10 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, InterventionBreathing, level)
	level, err = s.RecordImpulseOpen(start.Add(11 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, InterventionGreyscale, level)

	require.NoError(t, s.Pause(start.Add(20*time.Minute)))
	assert.ErrorIs(t, s.Pause(start.Add(21*time.Minute)), ErrSessionPaused)
	assert.False(t, s.IsRunning())
	assert.Equal(t, 20, s.DeepWorkMinutes(start.Add(40*time.Minute)))
	require.NoError(t, s.Resume(start.Add(30*time.Minute)))
	assert.ErrorIs(t, s.Resume(start.Add(31*time.Minute)), ErrSessionNotPaused)

	score, err := s.Finalize(calc, start.Add(70*time.Minute))
	require.NoError(t, err)
	// 60 minutes / (1 + 2 + 1) = 15, red × deep work
	assert.Equal(t, 15.0, score.RawScore)
	assert.InDelta(t, 24.75, score.AdjustedScore, 1e-9)
	assert.Equal(t, []Multiplier{MultiplierRedPriority, MultiplierDeepWork}, score.Multipliers)
	assert.Equal(t, 60, s.DeepWorkMinutes(start.Add(5*time.Hour)))

	events := s.DomainEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(*SessionCompleted)
	require.True(t, ok)
	assert.Equal(t, 60, completed.DeepWorkMinutes)
	assert.Equal(t, linked.TaskID, *completed.TaskID)
	assert.Equal(t, RoutingKeySessionCompleted, completed.RoutingKey())

	t.Run("finalized sessions are frozen", func(t *testing.T) {
		_, err := s.Finalize(calc, start.Add(80*time.Minute))
		assert.ErrorIs(t, err, ErrSessionFinalized)
		assert.ErrorIs(t, s.RecordAppSwitch(start), ErrSessionFinalized)
		_, err = s.RecordImpulseOpen(start)
		assert.ErrorIs(t, err, ErrSessionFinalized)
		assert.ErrorIs(t, s.Pause(start), ErrSessionFinalized)
		assert.Len(t, s.DomainEvents(), 1)
	})
}

func TestSession_FinalizeWhilePaused(t *testing.T) {
	s := StartSession(uuid.New(), nil, start)
	require.NoError(t, s.Pause(start.Add(30*time.Minute)))

	score, err := s.Finalize(NewScoreCalculator(DefaultScoreConfig()), start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 30.0, score.RawScore)
	assert.False(t, s.IsPaused())
}

func TestRecordedSession(t *testing.T) {
	calc := NewScoreCalculator(DefaultScoreConfig())

	s, err := RecordedSession(uuid.New(), nil, start, start.Add(time.Hour), ScoreInput{DeepWorkMinutes: 50}, calc)
	require.NoError(t, err)
	score, ok := s.Score()
	require.True(t, ok)
	assert.InDelta(t, 71.5, score.AdjustedScore, 1e-9)

	_, err = RecordedSession(uuid.New(), nil, start, start.Add(-time.Minute), ScoreInput{}, calc)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = RecordedSession(uuid.New(), nil, start, start.Add(time.Hour), ScoreInput{AppSwitches: -1}, calc)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// deep work cannot exceed the wall clock
	_, err = RecordedSession(uuid.New(), nil, start, start.Add(time.Minute), ScoreInput{DeepWorkMinutes: 500}, calc)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err = RecordedSession(uuid.New(), nil, start, start.Add(25*time.Minute), ScoreInput{DeepWorkMinutes: 25}, calc)
	require.NoError(t, err)
	assert.True(t, s.IsFinalized())
}

func TestSprintContext_ConcurrentReports(t *testing.T) {
	s := StartSession(uuid.New(), nil, start)
	sprint := NewSprintContext(s, func() time.Time { return start.Add(time.Minute) })
	assert.True(t, sprint.Active())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sprint.AppSwitched()
			_, _ = sprint.ImpulseOpened()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.AppSwitches())
	assert.Equal(t, 20, s.ImpulseOpens())

	require.NoError(t, sprint.Do(func(s *Session, now time.Time) error { return s.Pause(now) }))
	assert.False(t, sprint.Active())
}

func recorded(t *testing.T, at time.Time, minutes int, in ScoreInput) *Session {
	t.Helper()
	in.DeepWorkMinutes = minutes
	s, err := RecordedSession(uuid.New(), nil, at, at.Add(time.Duration(minutes)*time.Minute), in, NewScoreCalculator(DefaultScoreConfig()))
	require.NoError(t, err)
	return s
}

func TestDailyScoreAndHistory(t *testing.T) {
	assert.Equal(t, DailySummary{}, DailyScore(nil))

	mon := recorded(t, start, 30, ScoreInput{ImpulseOpens: 2})                   // 10
	mon2 := recorded(t, start.Add(3*time.Hour), 20, ScoreInput{AppSwitches: 1})  // 10 × 1.3
	wed := recorded(t, start.Add(48*time.Hour), 10, ScoreInput{ImpulseOpens: 1}) // 5

	summary := DailyScore([]*Session{mon, mon2})
	assert.Equal(t, 11.5, summary.AverageFocusScore)
	assert.Equal(t, 50, summary.TotalFocusMinutes)
	assert.Equal(t, 2, summary.SessionsCount)

	today := sharedDomain.MustParseDay("2024-01-10")
	hist := History([]*Session{mon, mon2, wed}, today, 4, time.UTC)
	require.Len(t, hist, 4)
	assert.Equal(t, "2024-01-07", hist[0].Day.String())
	assert.Equal(t, 0, hist[0].SessionsCount)
	assert.Equal(t, 2, hist[1].SessionsCount)
	assert.Equal(t, 0, hist[2].SessionsCount)
	assert.Equal(t, 5.0, hist[3].AverageFocusScore)

	assert.Nil(t, History(nil, today, 0, time.UTC))
}

func TestComputeProfileStats(t *testing.T) {
	today := sharedDomain.MustParseDay("2024-01-10") // Wednesday
	var sessions []*Session

	// three previous weeks with high scores: 100 minutes undisturbed → 143
	for w := 1; w <= 3; w++ {
		sessions = append(sessions, recorded(t, start.Add(time.Duration(-7*w)*24*time.Hour+10*time.Hour), 100, ScoreInput{}))
	}
	// this week: an early 240 minute session and a weak one
	sessions = append(sessions,
		recorded(t, start, 240, ScoreInput{}),
		recorded(t, start.Add(26*time.Hour), 10, ScoreInput{AppSwitches: 9}),
	)

	stats := ComputeProfileStats(sessions, today, time.UTC)
	assert.Equal(t, 5, stats.TotalSprints)
	assert.Equal(t, 550, stats.TotalFocusMinutes)
	assert.Equal(t, 9.2, stats.TotalFocusHours)
	assert.Equal(t, 240, stats.LongestSessionMinutes)
	assert.Equal(t, 1, stats.EarlySprintsThisWeek)
	assert.InDelta(t, 143, stats.PreviousWeeklyScore, 1e-9)
	assert.Equal(t, 4, stats.ConsecutiveWeeksAbove90)
}
