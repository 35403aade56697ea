package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

func openTestDB(t *testing.T) database.Connection {
	t.Helper()
	conn, err := database.NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "starfocus.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE sprints (id TEXT PRIMARY KEY, minutes INTEGER NOT NULL)`)
	require.NoError(t, err)
	return conn
}

func countSprints(t *testing.T, conn database.Connection) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(context.Background(), `SELECT COUNT(*) FROM sprints`).Scan(&n))
	return n
}

func TestNewConnection_RegisteredThroughFactory(t *testing.T) {
	conn := openTestDB(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	res, err := conn.Exec(ctx, `INSERT INTO sprints (id, minutes) VALUES (?, ?), (?, ?)`, "a", 25, "b", 50)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	var minutes int
	require.NoError(t, conn.QueryRow(ctx, `SELECT minutes FROM sprints WHERE id = ?`, "b").Scan(&minutes))
	assert.Equal(t, 50, minutes)

	err = conn.QueryRow(ctx, `SELECT minutes FROM sprints WHERE id = ?`, "missing").Scan(&minutes)
	assert.True(t, database.IsNoRows(err))

	rows, err := conn.Query(ctx, `SELECT id FROM sprints ORDER BY minutes DESC`)
	require.NoError(t, err)
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	uow := database.NewUnitOfWork(conn)

	insert := func(txCtx context.Context, id string) error {
		_, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO sprints (id, minutes) VALUES (?, 30)`, id)
		return err
	}

	err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		return insert(txCtx, "kept")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countSprints(t, conn))

	boom := errors.New("boom")
	err = sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		require.NoError(t, insert(txCtx, "dropped"))
		// nested units share the outer transaction
		return sharedApplication.WithUnitOfWork(txCtx, uow, func(inner context.Context) error {
			require.NoError(t, insert(inner, "also-dropped"))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countSprints(t, conn))
}

func TestRunInTx_JoinsOrOpens(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	err := database.RunInTx(ctx, conn, func(txCtx context.Context) error {
		assert.True(t, database.InTransaction(txCtx))
		_, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO sprints (id, minutes) VALUES ('solo', 20)`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countSprints(t, conn))

	boom := errors.New("boom")
	uow := database.NewUnitOfWork(conn)
	err = sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		require.NoError(t, database.RunInTx(txCtx, conn, func(inner context.Context) error {
			_, err := database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO sprints (id, minutes) VALUES ('joined', 20)`)
			return err
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countSprints(t, conn))
}
