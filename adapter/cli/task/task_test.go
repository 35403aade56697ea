package task

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	internalApp "github.com/starfocus/starfocus/internal/app"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
	"github.com/starfocus/starfocus/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testUserID is a fixed user ID for tests
var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// setupTestApp creates a CLI app on a temp-dir SQLite database.
func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             filepath.Join(t.TempDir(), "test.db"),
		LogLevel:               "error",
		UserID:                 testUserID.String(),
		Timezone:               "UTC",
		OutboxBatchSize:        50,
		OutboxMaxRetries:       3,
		StreakThresholdMinutes: 30,
	}

	container, err := internalApp.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)

	app := cli.NewApp(container)
	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetAddFlags() {
	priority = 0
	description = ""
	dueDate = ""
}

func resetUpdateFlags() {
	for _, name := range []string{"progress", "priority", "weight", "description"} {
		updateCmd.Flags().Lookup(name).Changed = false
	}
	updateDue = ""
	updateClearDue = false
}

func rankedTasks(t *testing.T, app *cli.App) []queries.TaskDTO {
	t.Helper()
	result, err := app.RankTasksHandler.Handle(context.Background(), queries.RankTasksQuery{UserID: testUserID})
	require.NoError(t, err)
	return result.Tasks
}

func TestAddCmd_CreatesTask(t *testing.T) {
	app := setupTestApp(t)
	resetAddFlags()
	priority = 9
	description = "Chapters 3-4"

	out, err := run(t, addCmd, "Math revision")
	require.NoError(t, err)
	assert.Contains(t, out, "Task created:")
	assert.Contains(t, out, "priority: 9")

	tasks := rankedTasks(t, app)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Math revision", tasks[0].Title)
	assert.Equal(t, "Chapters 3-4", tasks[0].Description)
	assert.Equal(t, 9, tasks[0].ManualPriority)
	assert.Equal(t, "red", tasks[0].Zone)
}

func TestAddCmd_DueDateDefaultsToEndOfDay(t *testing.T) {
	app := setupTestApp(t)
	resetAddFlags()
	dueDate = "2031-02-15"

	_, err := run(t, addCmd, "Essay")
	require.NoError(t, err)

	tasks := rankedTasks(t, app)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, time.Date(2031, 2, 15, 23, 59, 0, 0, time.UTC), tasks[0].DueDate.UTC())
}

func TestAddCmd_InvalidDueDate(t *testing.T) {
	setupTestApp(t)
	resetAddFlags()
	dueDate = "next tuesday"

	_, err := run(t, addCmd, "Task with bad date")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date format")
}

func TestListCmd_RanksRedFirst(t *testing.T) {
	setupTestApp(t)
	resetAddFlags()
	priority = 2
	_, err := run(t, addCmd, "Tidy notes")
	require.NoError(t, err)
	priority = 10
	_, err = run(t, addCmd, "Exam prep")
	require.NoError(t, err)

	listZone, listLimit = "", 0
	out, err := run(t, listCmd)
	require.NoError(t, err)

	assert.Less(t, bytes.Index([]byte(out), []byte("Exam prep")), bytes.Index([]byte(out), []byte("Tidy notes")))
	assert.Contains(t, out, "[RED]")
	assert.Contains(t, out, "Workload:")
}

func TestListCmd_Empty(t *testing.T) {
	setupTestApp(t)
	listZone, listLimit = "", 0

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No open tasks")
}

func TestUpdateAndShowCmd(t *testing.T) {
	app := setupTestApp(t)
	resetAddFlags()
	_, err := run(t, addCmd, "Lab prep")
	require.NoError(t, err)
	id := rankedTasks(t, app)[0].ID.String()

	resetUpdateFlags()
	require.NoError(t, updateCmd.Flags().Set("progress", "40"))
	require.NoError(t, updateCmd.Flags().Set("priority", "7"))
	_, err = run(t, updateCmd, id)
	require.NoError(t, err)

	out, err := run(t, showCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "progress:   40%")
	assert.Contains(t, out, "priority:   7")
	assert.Contains(t, out, "[AMBER]")
}

func TestCompleteCmd_RemovesFromList(t *testing.T) {
	app := setupTestApp(t)
	resetAddFlags()
	_, err := run(t, addCmd, "Flashcards")
	require.NoError(t, err)
	id := rankedTasks(t, app)[0].ID.String()

	out, err := run(t, completeCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Task completed")
	assert.Empty(t, rankedTasks(t, app))
}

func TestDeleteCmd(t *testing.T) {
	app := setupTestApp(t)
	resetAddFlags()
	_, err := run(t, addCmd, "Old task")
	require.NoError(t, err)
	id := rankedTasks(t, app)[0].ID.String()

	_, err = run(t, deleteCmd, id)
	require.NoError(t, err)
	assert.Empty(t, rankedTasks(t, app))

	_, err = run(t, showCmd, id)
	assert.Error(t, err)
}

func TestCommands_RejectBadTaskID(t *testing.T) {
	setupTestApp(t)
	for _, cmd := range []*cobra.Command{showCmd, completeCmd, deleteCmd, updateCmd} {
		_, err := run(t, cmd, "not-a-uuid")
		require.Error(t, err, cmd.Name())
		assert.Contains(t, err.Error(), "invalid task ID")
	}
}

func TestImportCmd_RequiresClassroom(t *testing.T) {
	setupTestApp(t)
	_, err := run(t, importCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)
	_, err := run(t, listCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application not initialized")
}

func TestParseDue(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)

	withTime, err := parseDue("2026-03-14 09:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, loc), withTime)

	dateOnly, err := parseDue("2026-03-14", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 0, 0, loc), dateOnly)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "overdue", formatRemaining(-1))
	assert.Equal(t, "5h30m left", formatRemaining(5.5))
	assert.Equal(t, "3d left", formatRemaining(80))
}
