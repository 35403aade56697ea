package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		t, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", zoneMarker(t.Zone), t.Title)
		fmt.Fprintf(out, "  id:         %s\n", t.ID)
		fmt.Fprintf(out, "  source:     %s\n", t.Source)
		if t.CourseName != "" {
			fmt.Fprintf(out, "  course:     %s\n", t.CourseName)
		}
		if t.Description != "" {
			fmt.Fprintf(out, "  notes:      %s\n", t.Description)
		}
		if t.Source == "manual" {
			fmt.Fprintf(out, "  priority:   %d\n", t.ManualPriority)
		} else {
			fmt.Fprintf(out, "  work type:  %s\n", t.WorkType)
			fmt.Fprintf(out, "  weight:     %.2f\n", t.GradeWeight)
		}
		if t.DueDate != nil {
			fmt.Fprintf(out, "  due:        %s (%s)\n", t.DueDate.In(app.Now().Location()).Format("Mon Jan 2 15:04"), formatRemaining(t.HoursRemaining))
		}
		fmt.Fprintf(out, "  progress:   %d%%\n", t.CompletionPercent)
		return nil
	},
}
