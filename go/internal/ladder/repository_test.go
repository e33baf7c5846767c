package ladder

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when GLORYNEWS_TEST_DATABASE_URL is set
func TestRepositorySnapshots(t *testing.T) {
	dsn := os.Getenv("GLORYNEWS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("GLORYNEWS_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, 2)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE standings_snapshots`)
	require.NoError(t, err)

	latest, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i := 0; i < 3; i++ {
		table := wellFormed()
		table.LastUpdated = testNow.Add(time.Duration(i) * time.Hour)
		table.Entries[0].Points = 50 + i
		require.NoError(t, repo.SaveSnapshot(ctx, table))
	}

	latest, err = repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 52, latest.Entries[0].Points)
	assert.True(t, latest.LastUpdated.Equal(testNow.Add(2*time.Hour)))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM standings_snapshots`).Scan(&count))
	assert.Equal(t, 2, count, "older snapshots are pruned")
}
