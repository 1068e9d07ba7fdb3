package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureConfig seeds a throwaway SQLite database and returns its config.
func fixtureConfig(t *testing.T) Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec("CREATE TABLE users (name TEXT, age INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO users VALUES ('amy', 30), ('bob', 40)")
	require.NoError(t, err)

	return Config{Type: "sqlite", Path: path}
}

func TestExecutorRun(t *testing.T) {
	e := NewExecutor(ExecutorOptions{})
	cfg := fixtureConfig(t)

	got := e.Run(context.Background(), cfg, "SELECT name FROM users ORDER BY name")
	require.False(t, got.IsErrorTable(), got.ErrorMessage())
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, "amy", got.Columns[0].Values[0].Str)
}

func TestExecutorRunQueryFailure(t *testing.T) {
	e := NewExecutor(ExecutorOptions{})
	cfg := fixtureConfig(t)

	got := e.Run(context.Background(), cfg, "SELECT nope FROM missing_table")
	require.True(t, got.IsErrorTable())
	assert.False(t, got.IsTimeoutTable())
	assert.NotEmpty(t, got.ErrorMessage())
}

func TestExecutorRunUnknownStore(t *testing.T) {
	e := NewExecutor(ExecutorOptions{})

	got := e.Run(context.Background(), Config{Type: "unknown_store"}, "SELECT 1")
	require.True(t, got.IsErrorTable())
}

func TestExecutorRunTimeout(t *testing.T) {
	e := NewExecutor(ExecutorOptions{QueryTimeout: 50 * time.Millisecond})
	cfg := fixtureConfig(t)

	// A recursive CTE large enough to outlive the timeout.
	slow := `WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x+1 FROM c WHERE x < 500000000)
	         SELECT count(*) FROM c`

	start := time.Now()
	got := e.Run(context.Background(), cfg, slow)
	require.True(t, got.IsTimeoutTable())
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must not wait for the query")
}

func TestExecutorRunCancelledContext(t *testing.T) {
	e := NewExecutor(ExecutorOptions{})
	cfg := fixtureConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.Run(ctx, cfg, "SELECT name FROM users")
	require.True(t, got.IsErrorTable())
}

func TestBagEqualQueries(t *testing.T) {
	cfg := fixtureConfig(t)
	ctx := context.Background()

	equal, err := BagEqualQueries(ctx, nil, cfg,
		"SELECT name FROM users ORDER BY name",
		"SELECT name FROM users ORDER BY name DESC")
	require.NoError(t, err)
	assert.True(t, equal, "row order must not matter")

	equal, err = BagEqualQueries(ctx, nil, cfg,
		"SELECT name FROM users",
		"SELECT age FROM users")
	require.NoError(t, err)
	assert.False(t, equal)

	_, err = BagEqualQueries(ctx, nil, cfg, "SELECT nope FROM missing", "SELECT 1")
	require.Error(t, err, "execution failures surface as errors here")
}
