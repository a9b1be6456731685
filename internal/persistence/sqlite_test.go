package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/chamados-service/internal/config"
)

func testConfig(t *testing.T) config.SQLiteConfig {
	t.Helper()
	return config.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "chamados.db"),
		RunMigrations: true,
		Seed:          true,
	}
}

func countTickets(t *testing.T, store *SQLite) int {
	t.Helper()
	var count int
	err := store.DB().QueryRow("SELECT COUNT(*) FROM tickets").Scan(&count)
	require.NoError(t, err)
	return count
}

func TestOpen_SeedsEmptyStore(t *testing.T) {
	store, err := Open(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 2, countTickets(t, store))

	rows, err := store.DB().Query("SELECT title, status, priority FROM tickets ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	type seed struct{ title, status, priority string }
	var got []seed
	for rows.Next() {
		var s seed
		require.NoError(t, rows.Scan(&s.title, &s.status, &s.priority))
		got = append(got, s)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2)
	assert.Equal(t, seed{"Wi-Fi problem", "In Progress", "High"}, got[0])
	assert.Equal(t, seed{"Office license request", "Open", "Medium"}, got[1])
}

func TestOpen_DoesNotReseedExistingStore(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = store.DB().Exec(
		"INSERT INTO tickets (title, description, opened_at) VALUES (?, ?, ?)",
		"Extra", "Added between restarts.", "2025-01-01T00:00:00Z",
	)
	require.NoError(t, err)
	store.Close()

	reopened, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	// Non-empty table: migrations are a no-op and no new seeds appear.
	assert.Equal(t, 3, countTickets(t, reopened))
}

func TestOpen_SkipsSeedWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed = false

	store, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 0, countTickets(t, store))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), config.SQLiteConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestSQLite_Ping(t *testing.T) {
	store, err := Open(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, store.Ping(context.Background()))

	store.Close()
	assert.Error(t, store.Ping(context.Background()))
}
