package sprint

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
)

// Cmd is the sprint command group
var Cmd = &cobra.Command{
	Use:   "sprint",
	Short: "Score and record focus sprints",
}

func init() {
	Cmd.AddCommand(scoreCmd)
	Cmd.AddCommand(recordCmd)
}

func printScore(out io.Writer, score focusDomain.FocusScore) {
	fmt.Fprintf(out, "Focus score: %.2f\n", score.AdjustedScore)
	fmt.Fprintf(out, "  raw:         %.2f\n", score.RawScore)
	if len(score.Multipliers) > 0 {
		fmt.Fprint(out, "  multipliers:")
		for _, m := range score.Multipliers {
			fmt.Fprintf(out, " %s", m)
		}
		fmt.Fprintln(out)
	}
}

func printResult(out io.Writer, result *focusCommands.CompleteSprintResult) {
	printScore(out, result.Score)
	fmt.Fprintf(out, "  deep work:   %d min (today %d min)\n", result.DeepMinutes, result.TodayMinutes)
	fmt.Fprintf(out, "Streak: %d days (longest %d, %d freeze tokens)\n",
		result.Streak.CurrentStreak, result.Streak.LongestStreak, result.Streak.FreezeTokens)
	if result.Milestone != nil {
		fmt.Fprintf(out, "  %s\n", result.Milestone.Message)
		if result.Milestone.FreezeTokenAwarded {
			fmt.Fprintln(out, "  +1 freeze token")
		}
	}
	for _, b := range result.NewBadges {
		fmt.Fprintf(out, "New badge: %s %s - %s\n", b.Emoji, b.Name, b.Description)
	}
}
