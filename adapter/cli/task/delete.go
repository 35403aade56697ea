package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task. Deleted Classroom coursework comes back on the next
import while it is still open in Classroom.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		err = app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		app.Flush(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s\n", taskID)
		return nil
	},
}
