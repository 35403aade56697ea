package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Show your workload and when interventions kick in",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetWorkloadHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		w, err := app.GetWorkloadHandler.Handle(cmd.Context(), queries.GetWorkloadQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to compute workload: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Workload: %d/100 (%s)\n", w.Score, w.Level)
		fmt.Fprintf(out, "  open tasks: %d\n", w.OpenTasks)
		fmt.Fprintln(out, "Interventions during a sprint:")
		fmt.Fprintf(out, "  breathing after %d min\n", w.BreathingAfterMins)
		fmt.Fprintf(out, "  greyscale after %d min\n", w.GreyscaleAfterMins)
		fmt.Fprintf(out, "  vibration after %d min\n", w.VibrationAfterMins)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workloadCmd)
}
