package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)

func classroomTask(t *testing.T, weight float64, wt value_objects.WorkType, dueIn *time.Duration, completion int) *task.Task {
	t.Helper()
	var due *time.Time
	if dueIn != nil {
		d := now.Add(*dueIn)
		due = &d
	}
	tk, err := task.NewClassroomTask(uuid.New(), "coursework", task.ClassroomDetails{
		GradeWeight: weight,
		WorkType:    wt,
	}, due, now)
	require.NoError(t, err)
	require.NoError(t, tk.SetCompletion(completion, now))
	return tk
}

func manualTask(t *testing.T, priority int, dueIn *time.Duration, completion int) *task.Task {
	t.Helper()
	var due *time.Time
	if dueIn != nil {
		d := now.Add(*dueIn)
		due = &d
	}
	tk, err := task.NewManualTask(uuid.New(), "todo", value_objects.ManualPriority(priority), due, now)
	require.NoError(t, err)
	require.NoError(t, tk.SetCompletion(completion, now))
	return tk
}

func hours(h float64) *time.Duration {
	d := time.Duration(h * float64(time.Hour))
	return &d
}

func TestNewPriorityEngine(t *testing.T) {
	engine := NewPriorityEngine(PriorityEngineConfig{})
	assert.Equal(t, 1.0, engine.config.MinHours)
	assert.Equal(t, 1.0, engine.config.QuizMultiplier)

	assert.Equal(t, 1.5, DefaultPriorityEngineConfig().QuizMultiplier)
}

func TestPriorityEngine_Rank(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, engine.Rank(nil, now))
	})

	t.Run("classroom assignment due in twelve hours", func(t *testing.T) {
		tk := classroomTask(t, 0.8, value_objects.WorkTypeAssignment, hours(12), 0)

		ranked := engine.Rank([]*task.Task{tk}, now)
		require.Len(t, ranked, 1)
		assert.InDelta(t, 12, ranked[0].TimeRemaining, 1e-9)
		assert.InDelta(t, 0.0667, ranked[0].RawPriority, 1e-4)
		assert.Equal(t, value_objects.ZoneRed, ranked[0].Zone)
		// a single task normalizes to zero because the range falls back to one
		assert.Equal(t, 0.0, ranked[0].NormalizedScore)
	})

	t.Run("high manual priority without deadline is red", func(t *testing.T) {
		tk := manualTask(t, 9, nil, 50)

		ranked := engine.Rank([]*task.Task{tk}, now)
		require.Len(t, ranked, 1)
		assert.Equal(t, value_objects.ZoneRed, ranked[0].Zone)
		assert.Equal(t, task.NoDeadlineHours, ranked[0].TimeRemaining)
		assert.InDelta(t, 0.9*0.5/168, ranked[0].RawPriority, 1e-12)
	})

	t.Run("drops finished work", func(t *testing.T) {
		done := manualTask(t, 5, hours(3), 100)
		turnedIn, err := task.NewClassroomTask(uuid.New(), "quiz", task.ClassroomDetails{
			Submission: task.SubmissionTurnedIn,
		}, nil, now)
		require.NoError(t, err)
		open := manualTask(t, 5, hours(3), 20)

		ranked := engine.Rank([]*task.Task{done, turnedIn, open, nil}, now)
		require.Len(t, ranked, 1)
		assert.Equal(t, open.ID(), ranked[0].Task.ID())
	})

	t.Run("quiz bonus", func(t *testing.T) {
		quiz := classroomTask(t, 0.5, value_objects.WorkTypeShortAnswerQuestion, hours(10), 0)
		essay := classroomTask(t, 0.5, value_objects.WorkTypeAssignment, hours(10), 0)

		ranked := engine.Rank([]*task.Task{essay, quiz}, now)
		require.Len(t, ranked, 2)
		assert.Equal(t, quiz.ID(), ranked[0].Task.ID())
		assert.InDelta(t, ranked[1].RawPriority*1.5, ranked[0].RawPriority, 1e-12)
		assert.Equal(t, 1.0, ranked[0].NormalizedScore)
		assert.Equal(t, 0.0, ranked[1].NormalizedScore)
	})

	t.Run("overdue floors hours at one and stays red", func(t *testing.T) {
		overdue := classroomTask(t, 0.5, value_objects.WorkTypeAssignment, hours(-5), 0)

		ranked := engine.Rank([]*task.Task{overdue}, now)
		require.Len(t, ranked, 1)
		assert.InDelta(t, -5, ranked[0].TimeRemaining, 1e-9)
		assert.InDelta(t, 0.5, ranked[0].RawPriority, 1e-12)
		assert.Equal(t, value_objects.ZoneRed, ranked[0].Zone)
	})

	t.Run("sorts by zone then deadline", func(t *testing.T) {
		green := classroomTask(t, 1, value_objects.WorkTypeAssignment, hours(200), 0)
		amberLate := classroomTask(t, 1, value_objects.WorkTypeAssignment, hours(90), 0)
		amberSoon := classroomTask(t, 1, value_objects.WorkTypeAssignment, hours(30), 0)
		redManual := manualTask(t, 8, hours(150), 0)
		red := classroomTask(t, 0.1, value_objects.WorkTypeAssignment, hours(20), 0)

		ranked := engine.Rank([]*task.Task{green, amberLate, redManual, amberSoon, red}, now)
		require.Len(t, ranked, 5)

		var ids []uuid.UUID
		for _, r := range ranked {
			ids = append(ids, r.Task.ID())
		}
		assert.Equal(t, []uuid.UUID{red.ID(), redManual.ID(), amberSoon.ID(), amberLate.ID(), green.ID()}, ids)
	})
}

func TestPriorityEngine_NormalizationBounds(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())
	tasks := []*task.Task{
		classroomTask(t, 0.2, value_objects.WorkTypeAssignment, hours(2), 10),
		classroomTask(t, 1, value_objects.WorkTypeMultipleChoice, hours(0.2), 0),
		manualTask(t, 1, nil, 90),
		manualTask(t, 10, hours(500), 0),
		classroomTask(t, 0, value_objects.WorkTypeAssignment, hours(-100), 50),
	}

	for _, r := range engine.Rank(tasks, now) {
		assert.GreaterOrEqual(t, r.NormalizedScore, 0.0)
		assert.LessOrEqual(t, r.NormalizedScore, 1.0)
	}
}

func TestPriorityEngine_ZoneStability(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())
	a := classroomTask(t, 0.9, value_objects.WorkTypeAssignment, hours(50), 0)
	b := classroomTask(t, 0.3, value_objects.WorkTypeAssignment, hours(20), 0)
	c := manualTask(t, 5, hours(5), 0)

	zones := func() map[uuid.UUID]value_objects.Zone {
		out := make(map[uuid.UUID]value_objects.Zone)
		for _, r := range engine.Rank([]*task.Task{a, b, c}, now) {
			out[r.Task.ID()] = r.Zone
		}
		return out
	}

	before := zones()
	for _, pct := range []int{10, 50, 99} {
		require.NoError(t, a.SetCompletion(pct, now))
		after := zones()
		assert.Equal(t, before[b.ID()], after[b.ID()])
		assert.Equal(t, before[c.ID()], after[c.ID()])
	}
}

func TestZoneFor(t *testing.T) {
	tests := []struct {
		name  string
		task  func(t *testing.T) *task.Task
		hours float64
		want  value_objects.Zone
	}{
		{"manual 8 is red", func(t *testing.T) *task.Task { return manualTask(t, 8, nil, 0) }, 168, value_objects.ZoneRed},
		{"manual 4 is amber", func(t *testing.T) *task.Task { return manualTask(t, 4, nil, 0) }, 1, value_objects.ZoneAmber},
		{"manual 3 is green", func(t *testing.T) *task.Task { return manualTask(t, 3, nil, 0) }, 1, value_objects.ZoneGreen},
		{"classroom 24h is red", func(t *testing.T) *task.Task { return classroomTask(t, 0.5, "", nil, 0) }, 24, value_objects.ZoneRed},
		{"classroom 96h is amber", func(t *testing.T) *task.Task { return classroomTask(t, 0.5, "", nil, 0) }, 96, value_objects.ZoneAmber},
		{"classroom 97h is green", func(t *testing.T) *task.Task { return classroomTask(t, 0.5, "", nil, 0) }, 97, value_objects.ZoneGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZoneFor(tt.task(t), tt.hours))
		})
	}
}
