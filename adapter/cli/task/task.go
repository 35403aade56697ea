package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Add, rank, update and complete your coursework and personal tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(importCmd)
}

func parseTaskID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task ID: %w", err)
	}
	return id, nil
}

func zoneMarker(zone string) string {
	switch zone {
	case "red":
		return "[RED]  "
	case "amber":
		return "[AMBER]"
	default:
		return "[GREEN]"
	}
}
