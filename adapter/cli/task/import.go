package task

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import coursework from Google Classroom",
	Long: `Fetch coursework from every active Google Classroom course and merge it
into your task list. Turned-in work is marked complete.

Requires GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		if app.ImportClassroomHandler == nil {
			return fmt.Errorf("google classroom is not configured - set GOOGLE_REFRESH_TOKEN")
		}

		result, err := app.ImportClassroomHandler.Handle(cmd.Context(), commands.ImportClassroomCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to import coursework: %w", err)
		}
		app.Flush(cmd.Context())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %d coursework items\n", result.Fetched)
		fmt.Fprintf(out, "  new:       %d\n", result.Created)
		fmt.Fprintf(out, "  updated:   %d\n", result.Updated)
		fmt.Fprintf(out, "  completed: %d\n", result.Completed)
		return nil
	},
}
