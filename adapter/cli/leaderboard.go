package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	leaderboardDomain "github.com/starfocus/starfocus/internal/leaderboard/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show this week's leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		if app.Leaderboard == nil {
			return fmt.Errorf("leaderboard requires Redis - set REDIS_URL")
		}

		now := app.Now()
		today := sharedDomain.DayIn(now, now.Location())
		entries, err := app.Leaderboard.Top(cmd.Context(), today, leaderboardLimit)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Leaderboard %s\n", leaderboardDomain.WeekOf(today))
		if len(entries) == 0 {
			fmt.Fprintln(out, "  no sprints recorded this week yet")
			return nil
		}
		for _, e := range entries {
			you := ""
			if e.UserID == app.CurrentUserID {
				you = "  <- you"
			}
			fmt.Fprintf(out, "%3d. %s  %8.1f pts  %4d min%s\n", e.Rank, e.UserID, e.Points, e.Minutes, you)
		}

		standing, err := app.Leaderboard.Standing(cmd.Context(), app.CurrentUserID, today)
		if err != nil {
			return fmt.Errorf("failed to load standing: %w", err)
		}
		fmt.Fprintf(out, "\nYour improvement over last week: %+.1f pts\n", standing.WeeklyImprovement)
		if standing.ConsecutiveWeeksTop3 > 0 {
			fmt.Fprintf(out, "Weeks in the top %d: %d\n", leaderboardDomain.TopPlaces, standing.ConsecutiveWeeksTop3)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 10, "number of places to show")
	rootCmd.AddCommand(leaderboardCmd)
}
