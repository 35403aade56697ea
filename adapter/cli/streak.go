package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	progressionCommands "github.com/starfocus/starfocus/internal/progression/application/commands"
	progressionQueries "github.com/starfocus/starfocus/internal/progression/application/queries"
	progression "github.com/starfocus/starfocus/internal/progression/domain"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your focus streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetProgressHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progress, err := app.GetProgressHandler.Handle(cmd.Context(), progressionQueries.GetProgressQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to load streak: %w", err)
		}

		out := cmd.OutOrStdout()
		s := progress.Streak
		fmt.Fprintf(out, "Streak: %d days\n", s.CurrentStreak)
		fmt.Fprintf(out, "  longest:       %d days\n", s.LongestStreak)
		fmt.Fprintf(out, "  freeze tokens: %d (used %d)\n", s.FreezeTokens, s.FreezeTokensUsed)
		if !s.LastFocusDate.IsZero() {
			fmt.Fprintf(out, "  last focus:    %s\n", s.LastFocusDate)
		}
		if progress.NextMilestone > 0 {
			fmt.Fprintf(out, "  next milestone: %d days\n", progress.NextMilestone)
		}
		if progress.AtRisk {
			fmt.Fprintln(out, "Your streak is at risk: focus today or use a freeze token.")
		}
		return nil
	},
}

var streakFreezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Spend a freeze token to keep your streak alive today",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.UseFreezeTokenHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		state, err := app.UseFreezeTokenHandler.Handle(cmd.Context(), progressionCommands.UseFreezeTokenCommand{UserID: app.CurrentUserID})
		if errors.Is(err, progression.ErrNoFreezeTokens) {
			return fmt.Errorf("no freeze tokens left - earn one every 7 streak days")
		}
		if err != nil {
			return fmt.Errorf("failed to use freeze token: %w", err)
		}
		app.Flush(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Streak frozen at %d days. %d freeze tokens left.\n", state.CurrentStreak, state.FreezeTokens)
		return nil
	},
}

func init() {
	streakCmd.AddCommand(streakFreezeCmd)
	rootCmd.AddCommand(streakCmd)
}
