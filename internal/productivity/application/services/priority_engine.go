package services

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
)

// PriorityEngineConfig tunes how task signals combine into a raw score.
type PriorityEngineConfig struct {
	QuizMultiplier float64
	// MinHours floors the hours divisor so tasks due within the hour stay finite.
	MinHours float64
}

// DefaultPriorityEngineConfig returns the production configuration.
func DefaultPriorityEngineConfig() PriorityEngineConfig {
	return PriorityEngineConfig{
		QuizMultiplier: 1.5,
		MinHours:       1,
	}
}

// RankedTask is a task annotated by the engine.
type RankedTask struct {
	Task            *task.Task
	RawPriority     float64
	NormalizedScore float64 // 0..1 across the ranked set
	Zone            value_objects.Zone
	TimeRemaining   float64 // hours, negative when overdue
}

// PriorityEngine ranks open tasks by deadline pressure and importance.
type PriorityEngine struct {
	config PriorityEngineConfig
}

// NewPriorityEngine creates a new engine with the given configuration.
func NewPriorityEngine(cfg PriorityEngineConfig) *PriorityEngine {
	if cfg.MinHours <= 0 {
		cfg.MinHours = 1
	}
	if cfg.QuizMultiplier <= 0 {
		cfg.QuizMultiplier = 1
	}
	return &PriorityEngine{config: cfg}
}

// Rank drops finished tasks, scores and zones the rest, and returns them in
// display order: red, amber, green, soonest deadline first within a zone.
func (e *PriorityEngine) Rank(tasks []*task.Task, now time.Time) []RankedTask {
	ranked := make([]RankedTask, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.IsDone() {
			continue
		}
		hours := task.HoursRemaining(t.DueDate(), now)
		ranked = append(ranked, RankedTask{
			Task:          t,
			RawPriority:   e.RawPriority(t, hours),
			Zone:          ZoneFor(t, hours),
			TimeRemaining: hours,
		})
	}
	if len(ranked) == 0 {
		return ranked
	}

	normalize(ranked)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Zone.Order() != b.Zone.Order() {
			return a.Zone.Order() < b.Zone.Order()
		}
		if a.TimeRemaining != b.TimeRemaining {
			return a.TimeRemaining < b.TimeRemaining
		}
		if a.NormalizedScore != b.NormalizedScore {
			return a.NormalizedScore > b.NormalizedScore
		}
		return lessID(a.Task.ID(), b.Task.ID())
	})
	return ranked
}

// RawPriority scores one task given its hours remaining.
func (e *PriorityEngine) RawPriority(t *task.Task, hours float64) float64 {
	remaining := 1 - float64(t.CompletionPercent())/100
	divisor := math.Max(hours, e.config.MinHours)

	if details, ok := t.Classroom(); ok {
		score := details.EffectiveGradeWeight() * remaining / divisor
		if details.WorkType.IsQuiz() {
			score *= e.config.QuizMultiplier
		}
		return score
	}
	return t.ManualPriority().Fraction() * remaining / divisor
}

// ZoneFor classifies a task with absolute thresholds so one task's progress
// never moves another task between zones.
func ZoneFor(t *task.Task, hours float64) value_objects.Zone {
	if _, ok := t.Manual(); ok {
		return t.ManualPriority().Zone()
	}
	return value_objects.ZoneForHours(hours)
}

func normalize(ranked []RankedTask) {
	lo, hi := ranked[0].RawPriority, ranked[0].RawPriority
	for _, r := range ranked[1:] {
		lo = math.Min(lo, r.RawPriority)
		hi = math.Max(hi, r.RawPriority)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i := range ranked {
		ranked[i].NormalizedScore = clamp01((ranked[i].RawPriority - lo) / span)
	}
}

func lessID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
