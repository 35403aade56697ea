package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	focusQueries "github.com/starfocus/starfocus/internal/focus/application/queries"
)

var historyDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's focus and your lifetime stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetStatsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		stats, err := app.GetStatsHandler.Handle(cmd.Context(), focusQueries.GetStatsQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Today")
		fmt.Fprintf(out, "  focus score: %.1f\n", stats.Today.AverageFocusScore)
		fmt.Fprintf(out, "  focus time:  %d min in %d sprints\n", stats.Today.TotalFocusMinutes, stats.Today.SessionsCount)

		p := stats.Profile
		fmt.Fprintln(out, "All time")
		fmt.Fprintf(out, "  sprints:         %d\n", p.TotalSprints)
		fmt.Fprintf(out, "  focus hours:     %.1f\n", p.TotalFocusHours)
		fmt.Fprintf(out, "  longest sprint:  %d min\n", p.LongestSessionMinutes)
		fmt.Fprintln(out, "This week")
		fmt.Fprintf(out, "  weekly score:    %.1f (last week %.1f)\n", p.WeeklyScore, p.PreviousWeeklyScore)
		fmt.Fprintf(out, "  early sprints:   %d\n", p.EarlySprintsThisWeek)
		if p.ConsecutiveWeeksAbove90 > 0 {
			fmt.Fprintf(out, "  weeks above 90:  %d in a row\n", p.ConsecutiveWeeksAbove90)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show focus minutes per day",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetHistoryHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		days, err := app.GetHistoryHandler.Handle(cmd.Context(), focusQueries.GetHistoryQuery{
			UserID: app.CurrentUserID,
			Days:   historyDays,
		})
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, d := range days {
			bar := strings.Repeat("#", min(d.TotalFocusMinutes/10, 30))
			fmt.Fprintf(out, "%s %4d min  %5.1f  %s\n", d.Day, d.TotalFocusMinutes, d.AverageFocusScore, bar)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyDays, "days", "d", 14, "number of days to show")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
}
