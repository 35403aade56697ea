package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
)

var ErrInvalidInput = errors.New("invalid focus input")

// Multiplier is a bonus tag applied to a session score.
type Multiplier string

const (
	MultiplierRedPriority Multiplier = "red_priority"
	MultiplierQuizTask    Multiplier = "quiz_task"
	MultiplierDeepWork    Multiplier = "deep_work"
	MultiplierZeroOpens   Multiplier = "zero_opens"
)

// LinkedTask is the snapshot of the task a sprint worked on, taken when the
// sprint started.
type LinkedTask struct {
	TaskID   uuid.UUID              `json:"task_id"`
	Zone     value_objects.Zone     `json:"zone"`
	WorkType value_objects.WorkType `json:"work_type"`
}

// ScoreInput is the accumulated telemetry of a finished sprint.
type ScoreInput struct {
	DeepWorkMinutes int
	AppSwitches     int
	ImpulseOpens    int
	LinkedTask      *LinkedTask
}

// FocusScore is the result of scoring one sprint.
type FocusScore struct {
	RawScore      float64      `json:"raw_score"`
	Multipliers   []Multiplier `json:"multipliers"`
	AdjustedScore float64      `json:"adjusted_score"`
}

// ScoreConfig holds the multiplier factors and the deep-work cutoff.
type ScoreConfig struct {
	RedPriority     float64
	QuizTask        float64
	DeepWork        float64
	ZeroOpens       float64
	DeepWorkMinutes int
}

// DefaultScoreConfig returns the production factors.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		RedPriority:     1.5,
		QuizTask:        1.3,
		DeepWork:        1.1,
		ZeroOpens:       1.3,
		DeepWorkMinutes: 45,
	}
}

// ScoreCalculator turns sprint telemetry into a focus score.
type ScoreCalculator struct {
	config ScoreConfig
}

// NewScoreCalculator creates a calculator.
func NewScoreCalculator(cfg ScoreConfig) *ScoreCalculator {
	return &ScoreCalculator{config: cfg}
}

// Score computes raw = minutes/(switches+opens+1) and stacks the applicable
// multipliers. Multipliers are listed in evaluation order; the product does
// not depend on that order.
func (c *ScoreCalculator) Score(in ScoreInput) (FocusScore, error) {
	if in.DeepWorkMinutes < 0 || in.AppSwitches < 0 || in.ImpulseOpens < 0 {
		return FocusScore{}, fmt.Errorf("%w: minutes=%d switches=%d opens=%d",
			ErrInvalidInput, in.DeepWorkMinutes, in.AppSwitches, in.ImpulseOpens)
	}

	raw := float64(in.DeepWorkMinutes) / float64(in.AppSwitches+in.ImpulseOpens+1)

	applied := make([]Multiplier, 0, 4)
	product := 1.0
	apply := func(m Multiplier, factor float64) {
		applied = append(applied, m)
		product *= factor
	}

	if in.LinkedTask != nil && in.LinkedTask.Zone == value_objects.ZoneRed {
		apply(MultiplierRedPriority, c.config.RedPriority)
	}
	if in.LinkedTask != nil && in.LinkedTask.WorkType.IsQuiz() {
		apply(MultiplierQuizTask, c.config.QuizTask)
	}
	if in.DeepWorkMinutes >= c.config.DeepWorkMinutes {
		apply(MultiplierDeepWork, c.config.DeepWork)
	}
	if in.ImpulseOpens == 0 {
		apply(MultiplierZeroOpens, c.config.ZeroOpens)
	}

	return FocusScore{
		RawScore:      round2(raw),
		Multipliers:   applied,
		AdjustedScore: round2(raw * product),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
