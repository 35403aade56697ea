package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	focusQueries "github.com/starfocus/starfocus/internal/focus/application/queries"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/security"
)

var (
	exportFormat string
	exportOutput string
	exportDays   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export focus sessions to CSV or JSON",
	Long: `Export your recorded focus sprints for spreadsheets or other tools.

Examples:
  starfocus export                         # CSV to stdout, all sessions
  starfocus export --format json -o s.json # JSON to a file
  starfocus export --days 7                # last 7 days only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListSessionsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := focusQueries.ListSessionsQuery{UserID: app.CurrentUserID}
		if exportDays > 0 {
			now := app.Now()
			today := sharedDomain.DayIn(now, now.Location())
			query.From = today.AddDays(-(exportDays - 1)).Start(now.Location())
		}
		sessions, err := app.ListSessionsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := security.CreateOutputFile(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}
			defer f.Close()
			out = f
		}

		switch strings.ToLower(exportFormat) {
		case "csv":
			err = writeSessionsCSV(out, sessions)
		case "json":
			err = writeSessionsJSON(out, sessions)
		default:
			return fmt.Errorf("unsupported format: %s (supported: csv, json)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		if exportOutput != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d sessions to %s\n", len(sessions), exportOutput)
		}
		return nil
	},
}

var sessionCSVHeader = []string{
	"id", "task_id", "task_zone", "started_at", "ended_at",
	"deep_work_minutes", "app_switches", "impulse_opens",
	"raw_score", "adjusted_score", "multipliers",
}

func writeSessionsCSV(w io.Writer, sessions []focusQueries.SessionDTO) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sessionCSVHeader); err != nil {
		return err
	}
	for _, s := range sessions {
		taskID := ""
		if s.TaskID != nil {
			taskID = s.TaskID.String()
		}
		multipliers := make([]string, 0, len(s.Multipliers))
		for _, m := range s.Multipliers {
			multipliers = append(multipliers, string(m))
		}
		record := []string{
			s.ID.String(),
			taskID,
			s.TaskZone,
			s.StartedAt.UTC().Format(time.RFC3339),
			s.EndedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(s.DeepWorkMinutes),
			strconv.Itoa(s.AppSwitches),
			strconv.Itoa(s.ImpulseOpens),
			strconv.FormatFloat(s.RawScore, 'f', 2, 64),
			strconv.FormatFloat(s.AdjustedScore, 'f', 2, 64),
			strings.Join(multipliers, ";"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSessionsJSON(w io.Writer, sessions []focusQueries.SessionDTO) error {
	if sessions == nil {
		sessions = []focusQueries.SessionDTO{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessions)
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format (csv, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportDays, "days", "d", 0, "only sessions from the last N days (0 = all)")

	rootCmd.AddCommand(exportCmd)
}
