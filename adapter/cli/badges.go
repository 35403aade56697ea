package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	progressionQueries "github.com/starfocus/starfocus/internal/progression/application/queries"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges and which ones you have earned",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetProgressHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progress, err := app.GetProgressHandler.Handle(cmd.Context(), progressionQueries.GetProgressQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to load badges: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Badges: %d of %d earned\n\n", progress.EarnedCount, len(progress.Badges))
		for _, b := range progress.Badges {
			mark := "  "
			if b.Earned {
				mark = "✓ "
			}
			fmt.Fprintf(out, "%s%s %-18s %s\n", mark, b.Emoji, b.Name, b.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(badgesCmd)
}
