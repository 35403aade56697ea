package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
)

var (
	updateProgress    int
	updatePriority    int
	updateWeight      float64
	updateDue         string
	updateClearDue    bool
	updateDescription string
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Update a task's progress, priority, grade weight or due date.
Only the flags you pass are changed.

Examples:
  starfocus task update <id> --progress 50
  starfocus task update <id> --priority 9
  starfocus task update <id> --weight 0.8
  starfocus task update <id> --clear-due`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateTaskCommand{
			TaskID:       taskID,
			UserID:       app.CurrentUserID,
			ClearDueDate: updateClearDue,
		}
		flags := cmd.Flags()
		if flags.Changed("progress") {
			update.CompletionPercent = &updateProgress
		}
		if flags.Changed("priority") {
			update.Priority = &updatePriority
		}
		if flags.Changed("weight") {
			update.GradeWeight = &updateWeight
		}
		if flags.Changed("description") {
			update.Description = &updateDescription
		}
		if updateDue != "" {
			parsed, err := parseDue(updateDue, app.Location)
			if err != nil {
				return err
			}
			update.DueDate = &parsed
		}

		if err := app.UpdateTaskHandler.Handle(cmd.Context(), update); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		app.Flush(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Task updated: %s\n", taskID)
		return nil
	},
}

func init() {
	updateCmd.Flags().IntVar(&updateProgress, "progress", 0, "completion percent 0-100")
	updateCmd.Flags().IntVarP(&updatePriority, "priority", "p", 0, "manual priority 1-10 (manual tasks)")
	updateCmd.Flags().Float64Var(&updateWeight, "weight", 0, "grade weight 0-1 (classroom tasks)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", `new due date ("YYYY-MM-DD" or "YYYY-MM-DD HH:MM")`)
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "remove the due date")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "task description")
}
