package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
)

type sprintStartInput struct {
	TaskID string `json:"task_id,omitempty"`
}

type sprintScoreInput struct {
	DeepWorkMinutes int    `json:"deep_work_minutes" jsonschema:"required"`
	AppSwitches     int    `json:"app_switches,omitempty"`
	ImpulseOpens    int    `json:"impulse_opens,omitempty"`
	Zone            string `json:"zone,omitempty"`
	WorkType        string `json:"work_type,omitempty"`
}

type sprintRecordInput struct {
	StartedAt       string `json:"started_at" jsonschema:"required"`
	EndedAt         string `json:"ended_at" jsonschema:"required"`
	DeepWorkMinutes int    `json:"deep_work_minutes" jsonschema:"required"`
	AppSwitches     int    `json:"app_switches,omitempty"`
	ImpulseOpens    int    `json:"impulse_opens,omitempty"`
	TaskID          string `json:"task_id,omitempty"`
}

// sprintStatus is a snapshot of the running sprint.
type sprintStatus struct {
	Running         bool       `json:"running"`
	Paused          bool       `json:"paused"`
	StartedAt       time.Time  `json:"started_at"`
	TaskID          *uuid.UUID `json:"task_id,omitempty"`
	TaskZone        string     `json:"task_zone,omitempty"`
	DeepWorkMinutes int        `json:"deep_work_minutes"`
	AppSwitches     int        `json:"app_switches"`
	ImpulseOpens    int        `json:"impulse_opens"`
}

type interventionResult struct {
	ImpulseOpens int    `json:"impulse_opens"`
	Intervention string `json:"intervention"`
}

func registerSprintTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("sprint.score").
		Description("Calculate the focus score of a sprint without recording it").
		Handler(ts.scoreSprint)

	srv.Tool("sprint.record").
		Description("Record a finished sprint measured on the device (RFC 3339 timestamps)").
		Handler(ts.recordSprint)

	if ts.sprints == nil {
		return
	}

	srv.Tool("sprint.start").
		Description("Start a live focus sprint, optionally for a task").
		Handler(ts.startSprint)

	srv.Tool("sprint.status").
		Description("Show the running sprint").
		Handler(ts.sprintStatus)

	srv.Tool("sprint.pause").
		Description("Pause the running sprint; paused time is not deep work").
		Handler(ts.pauseSprint)

	srv.Tool("sprint.resume").
		Description("Resume a paused sprint").
		Handler(ts.resumeSprint)

	srv.Tool("sprint.app_switch").
		Description("Report that the user left the focus app during the sprint").
		Handler(ts.appSwitch)

	srv.Tool("sprint.impulse_open").
		Description("Report an impulse open of a blocked app; returns the intervention to show").
		Handler(ts.impulseOpen)

	srv.Tool("sprint.finish").
		Description("Finish the running sprint, score it and update streak and badges").
		Handler(ts.finishSprint)

	srv.Tool("sprint.abandon").
		Description("Drop the running sprint without scoring it").
		Handler(ts.abandonSprint)
}

func (ts *toolset) calculator() *focusDomain.ScoreCalculator {
	if ts.app.Calculator != nil {
		return ts.app.Calculator
	}
	return focusDomain.NewScoreCalculator(focusDomain.DefaultScoreConfig())
}

func (ts *toolset) scoreSprint(_ context.Context, input sprintScoreInput) (*focusDomain.FocusScore, error) {
	in := focusDomain.ScoreInput{
		DeepWorkMinutes: input.DeepWorkMinutes,
		AppSwitches:     input.AppSwitches,
		ImpulseOpens:    input.ImpulseOpens,
	}
	if input.Zone != "" || input.WorkType != "" {
		zone := value_objects.ZoneGreen
		if input.Zone != "" {
			z, err := value_objects.ParseZone(input.Zone)
			if err != nil {
				return nil, err
			}
			zone = z
		}
		in.LinkedTask = &focusDomain.LinkedTask{Zone: zone, WorkType: value_objects.ParseWorkType(input.WorkType)}
	}
	score, err := ts.calculator().Score(in)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (ts *toolset) recordSprint(ctx context.Context, input sprintRecordInput) (*focusCommands.CompleteSprintResult, error) {
	if ts.app.CompleteSprintHandler == nil {
		return nil, fmt.Errorf("sprint recording %w", errNoDatabase)
	}
	started, err := time.Parse(time.RFC3339, input.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at, use RFC 3339: %w", err)
	}
	ended, err := time.Parse(time.RFC3339, input.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid ended_at, use RFC 3339: %w", err)
	}
	taskID, err := parseOptionalUUID(input.TaskID)
	if err != nil {
		return nil, err
	}

	result, err := ts.app.CompleteSprintHandler.Handle(ctx, focusCommands.CompleteSprintCommand{
		UserID:          ts.app.CurrentUserID,
		TaskID:          taskID,
		StartedAt:       started,
		EndedAt:         ended,
		DeepWorkMinutes: input.DeepWorkMinutes,
		AppSwitches:     input.AppSwitches,
		ImpulseOpens:    input.ImpulseOpens,
	})
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return result, nil
}

func (ts *toolset) startSprint(ctx context.Context, input sprintStartInput) (*sprintStatus, error) {
	taskID, err := parseOptionalUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	sprint, err := ts.sprints.Start(ctx, ts.app.CurrentUserID, taskID)
	if err != nil {
		return nil, err
	}
	return snapshot(sprint)
}

func (ts *toolset) sprintStatus(_ context.Context, _ struct{}) (*sprintStatus, error) {
	sprint, err := ts.sprints.Sprint(ts.app.CurrentUserID)
	if errors.Is(err, focusCommands.ErrNoRunningSprint) {
		return &sprintStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot(sprint)
}

func (ts *toolset) pauseSprint(ctx context.Context, _ struct{}) (*sprintStatus, error) {
	if err := ts.sprints.Pause(ts.app.CurrentUserID); err != nil {
		return nil, err
	}
	return ts.sprintStatus(ctx, struct{}{})
}

func (ts *toolset) resumeSprint(ctx context.Context, _ struct{}) (*sprintStatus, error) {
	if err := ts.sprints.Resume(ts.app.CurrentUserID); err != nil {
		return nil, err
	}
	return ts.sprintStatus(ctx, struct{}{})
}

func (ts *toolset) appSwitch(_ context.Context, _ struct{}) (*sprintStatus, error) {
	sprint, err := ts.sprints.Sprint(ts.app.CurrentUserID)
	if err != nil {
		return nil, err
	}
	if err := sprint.AppSwitched(); err != nil {
		return nil, err
	}
	return snapshot(sprint)
}

func (ts *toolset) impulseOpen(_ context.Context, _ struct{}) (*interventionResult, error) {
	sprint, err := ts.sprints.Sprint(ts.app.CurrentUserID)
	if err != nil {
		return nil, err
	}
	level, err := sprint.ImpulseOpened()
	if err != nil {
		return nil, err
	}
	result := &interventionResult{Intervention: level.String()}
	_ = sprint.Do(func(s *focusDomain.Session, _ time.Time) error {
		result.ImpulseOpens = s.ImpulseOpens()
		return nil
	})
	return result, nil
}

func (ts *toolset) finishSprint(ctx context.Context, _ struct{}) (*focusCommands.CompleteSprintResult, error) {
	result, err := ts.sprints.Finish(ctx, ts.app.CurrentUserID)
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return result, nil
}

func (ts *toolset) abandonSprint(_ context.Context, _ struct{}) (map[string]any, error) {
	if err := ts.sprints.Abandon(ts.app.CurrentUserID); err != nil {
		return nil, err
	}
	return map[string]any{"abandoned": true}, nil
}

func snapshot(sprint *focusDomain.SprintContext) (*sprintStatus, error) {
	var status sprintStatus
	err := sprint.Do(func(s *focusDomain.Session, now time.Time) error {
		status = sprintStatus{
			Running:         s.IsRunning(),
			Paused:          s.IsPaused(),
			StartedAt:       s.StartedAt(),
			DeepWorkMinutes: s.DeepWorkMinutes(now),
			AppSwitches:     s.AppSwitches(),
			ImpulseOpens:    s.ImpulseOpens(),
		}
		if lt := s.LinkedTask(); lt != nil {
			id := lt.TaskID
			status.TaskID = &id
			status.TaskZone = lt.Zone.String()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
