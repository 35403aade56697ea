package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
)

var (
	listZone  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"rank"},
	Short:   "List open tasks by priority",
	Long: `List open tasks ranked red, amber, green, most urgent first.

Examples:
  starfocus task list
  starfocus task list --zone red
  starfocus task list -n 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RankTasksHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		result, err := app.RankTasksHandler.Handle(cmd.Context(), queries.RankTasksQuery{
			UserID: app.CurrentUserID,
			Zone:   listZone,
			Limit:  listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Tasks) == 0 {
			fmt.Fprintln(out, "No open tasks. Nice work!")
			return nil
		}

		fmt.Fprintf(out, "Workload: %d (%s)\n\n", result.Workload.Score, result.Workload.Level)
		for i, t := range result.Tasks {
			fmt.Fprintf(out, "%2d. %s %s", i+1, zoneMarker(t.Zone), t.Title)
			if t.CourseName != "" {
				fmt.Fprintf(out, " (%s)", t.CourseName)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "      score %.1f", t.PriorityScore)
			if t.DueDate != nil {
				fmt.Fprintf(out, " | due %s (%s)", t.DueDate.In(app.Now().Location()).Format("Mon Jan 2 15:04"), formatRemaining(t.HoursRemaining))
			}
			if t.CompletionPercent > 0 {
				fmt.Fprintf(out, " | %d%% done", t.CompletionPercent)
			}
			fmt.Fprintln(out)
			if cli.Verbose() {
				fmt.Fprintf(out, "      id %s\n", t.ID)
			}
		}
		return nil
	},
}

func formatRemaining(hours float64) string {
	if hours < 0 {
		return "overdue"
	}
	d := time.Duration(hours * float64(time.Hour)).Round(time.Minute)
	if d >= 48*time.Hour {
		return fmt.Sprintf("%dd left", int(d.Hours())/24)
	}
	return fmt.Sprintf("%dh%02dm left", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	listCmd.Flags().StringVarP(&listZone, "zone", "z", "", "only show one zone (red, amber, green)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of tasks (0 = all)")
}
