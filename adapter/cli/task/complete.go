package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
)

var completeCmd = &cobra.Command{
	Use:     "complete [task-id]",
	Aliases: []string{"done"},
	Short:   "Mark a task as complete",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		err = app.CompleteTaskHandler.Handle(cmd.Context(), commands.CompleteTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		app.Flush(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Task completed: %s\n", taskID)
		return nil
	},
}
