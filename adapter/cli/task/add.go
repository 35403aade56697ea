package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
)

var (
	priority    int
	description string
	dueDate     string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a manual task",
	Long: `Add a task that is not from Classroom. Priority runs from 1 (whenever)
to 10 (drop everything); 8 and above lands in the red zone.

Examples:
  starfocus task add "Read chapter 4"
  starfocus task add "Math revision" -p 8 --due 2026-03-14
  starfocus task add "Lab prep" --due "2026-03-14 09:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		createCmd := commands.CreateTaskCommand{
			UserID:      app.CurrentUserID,
			Title:       args[0],
			Description: description,
			Priority:    priority,
		}
		if dueDate != "" {
			parsed, err := parseDue(dueDate, app.Location)
			if err != nil {
				return err
			}
			createCmd.DueDate = &parsed
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		app.Flush(cmd.Context())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task created: %s\n", result.TaskID)
		fmt.Fprintf(out, "  title: %s\n", args[0])
		if priority > 0 {
			fmt.Fprintf(out, "  priority: %d\n", priority)
		}
		if createCmd.DueDate != nil {
			fmt.Fprintf(out, "  due: %s\n", createCmd.DueDate.Format("Mon Jan 2 15:04"))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&priority, "priority", "p", 0, "manual priority 1-10 (default 5)")
	addCmd.Flags().StringVar(&description, "description", "", "task description")
	addCmd.Flags().StringVar(&dueDate, "due", "", `due date ("YYYY-MM-DD" or "YYYY-MM-DD HH:MM")`)
}
