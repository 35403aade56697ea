package sprint

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
)

var (
	recordMinutes  int
	recordDeep     int
	recordSwitches int
	recordOpens    int
	recordTask     string
	recordStart    string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a finished sprint",
	Long: `Record a sprint you just finished. It is scored, added to today's
total and carried into your streak, badges and the weekly leaderboard.

Examples:
  starfocus sprint record --minutes 50
  starfocus sprint record --minutes 45 --deep 40 --switches 3 --opens 1
  starfocus sprint record --minutes 30 --task <task-id>
  starfocus sprint record --minutes 25 --start 07:15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteSprintHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		if recordMinutes <= 0 {
			return fmt.Errorf("--minutes must be positive")
		}

		now := app.Now()
		start := now.Add(-time.Duration(recordMinutes) * time.Minute)
		if recordStart != "" {
			clock, err := time.ParseInLocation("15:04", recordStart, now.Location())
			if err != nil {
				return fmt.Errorf("invalid --start (use HH:MM): %w", err)
			}
			start = time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		}
		end := start.Add(time.Duration(recordMinutes) * time.Minute)

		deep := recordMinutes
		if cmd.Flags().Changed("deep") {
			deep = recordDeep
		}

		complete := focusCommands.CompleteSprintCommand{
			UserID:          app.CurrentUserID,
			StartedAt:       start,
			EndedAt:         end,
			DeepWorkMinutes: deep,
			AppSwitches:     recordSwitches,
			ImpulseOpens:    recordOpens,
		}
		if recordTask != "" {
			taskID, err := uuid.Parse(recordTask)
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
			complete.TaskID = &taskID
		}

		result, err := app.CompleteSprintHandler.Handle(cmd.Context(), complete)
		if err != nil {
			return fmt.Errorf("failed to record sprint: %w", err)
		}
		app.Flush(cmd.Context())

		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	recordCmd.Flags().IntVarP(&recordMinutes, "minutes", "m", 0, "sprint length in minutes")
	recordCmd.Flags().IntVar(&recordDeep, "deep", 0, "deep work minutes (default: the whole sprint)")
	recordCmd.Flags().IntVar(&recordSwitches, "switches", 0, "app switches during the sprint")
	recordCmd.Flags().IntVar(&recordOpens, "opens", 0, "impulse opens of blocked apps")
	recordCmd.Flags().StringVarP(&recordTask, "task", "t", "", "ID of the task the sprint was for")
	recordCmd.Flags().StringVar(&recordStart, "start", "", "local start time today (HH:MM), default: minutes ago")
}
