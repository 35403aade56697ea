package services

import (
	"math"
	"time"
)

// WorkloadLevel is the coarse bucket of a workload score.
type WorkloadLevel string

const (
	WorkloadLow      WorkloadLevel = "low"
	WorkloadModerate WorkloadLevel = "moderate"
	WorkloadHigh     WorkloadLevel = "high"
)

// Workload summarizes outstanding task pressure.
type Workload struct {
	Score int           `json:"score"`
	Level WorkloadLevel `json:"level"`
}

// WorkloadConfig holds the aggregation constants.
type WorkloadConfig struct {
	SaturationCount   int
	HighThreshold     int
	ModerateThreshold int
}

// DefaultWorkloadConfig saturates at eight tasks with levels at 60 and 30.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		SaturationCount:   8,
		HighThreshold:     60,
		ModerateThreshold: 30,
	}
}

// WorkloadAggregator reduces a ranked task list to a single 0–100 score.
type WorkloadAggregator struct {
	config WorkloadConfig
}

// NewWorkloadAggregator creates an aggregator.
func NewWorkloadAggregator(cfg WorkloadConfig) *WorkloadAggregator {
	if cfg.SaturationCount <= 0 {
		cfg.SaturationCount = 8
	}
	return &WorkloadAggregator{config: cfg}
}

// Score averages normalized priority weighted by remaining work, scaled by how
// many tasks are open.
func (a *WorkloadAggregator) Score(ranked []RankedTask) Workload {
	var (
		sum   float64
		count int
	)
	for _, r := range ranked {
		if r.Task == nil || r.Task.IsDone() {
			continue
		}
		sum += r.NormalizedScore * (1 - float64(r.Task.CompletionPercent())/100)
		count++
	}
	if count == 0 {
		return Workload{Score: 0, Level: WorkloadLow}
	}

	avg := sum / float64(count)
	volume := math.Min(float64(count)/float64(a.config.SaturationCount), 1)
	score := int(math.Round(avg * volume * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Workload{Score: score, Level: a.levelFor(score)}
}

func (a *WorkloadAggregator) levelFor(score int) WorkloadLevel {
	switch {
	case score >= a.config.HighThreshold:
		return WorkloadHigh
	case score >= a.config.ModerateThreshold:
		return WorkloadModerate
	default:
		return WorkloadLow
	}
}

// InterventionThresholds are the sprint-elapsed marks at which each
// distraction intervention unlocks.
type InterventionThresholds struct {
	Breathing time.Duration `json:"breathing"`
	Greyscale time.Duration `json:"greyscale"`
	Vibration time.Duration `json:"vibration"`
}

// ThresholdsFor tightens interventions as the workload rises.
func ThresholdsFor(level WorkloadLevel) InterventionThresholds {
	switch level {
	case WorkloadHigh:
		return InterventionThresholds{Breathing: 30 * time.Minute, Greyscale: 60 * time.Minute, Vibration: 90 * time.Minute}
	case WorkloadModerate:
		return InterventionThresholds{Breathing: 45 * time.Minute, Greyscale: 90 * time.Minute, Vibration: 135 * time.Minute}
	default:
		return InterventionThresholds{Breathing: 60 * time.Minute, Greyscale: 120 * time.Minute, Vibration: 180 * time.Minute}
	}
}
