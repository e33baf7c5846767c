package ladder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sqlutil"
)

// DefaultSnapshotRetention is how many archived tables are kept
const DefaultSnapshotRetention = 50

const schema = `
CREATE TABLE IF NOT EXISTS standings_snapshots (
    id          UUID PRIMARY KEY,
    source      TEXT        NOT NULL,
    season      TEXT        NOT NULL,
    fetched_at  TIMESTAMPTZ NOT NULL,
    payload     JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS standings_snapshots_fetched_at_idx ON standings_snapshots (fetched_at DESC);
`

// DB is what the repository needs from the connection pool
type DB interface {
	sqlutil.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository archives validated tables so the orchestrator has a last known good
// table to serve when every source is down
type Repository struct {
	db        DB
	retention int
}

// NewRepository creates a new snapshot repository
func NewRepository(db DB, retention int) *Repository {
	if retention <= 0 {
		retention = DefaultSnapshotRetention
	}
	return &Repository{db: db, retention: retention}
}

// EnsureSchema creates the snapshot table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// SaveSnapshot stores table and prunes snapshots beyond the retention count
func (r *Repository) SaveSnapshot(ctx context.Context, table *models.StandingsTable) error {
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return sqlutil.Run(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO standings_snapshots (id, source, season, fetched_at, payload)
            VALUES ($1, $2, $3, $4, $5)
        `, uuid.New(), table.Source.Name, table.Season, table.LastUpdated, payload)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		_, err = tx.Exec(ctx, `
            DELETE FROM standings_snapshots
            WHERE id NOT IN (
              SELECT id FROM standings_snapshots ORDER BY fetched_at DESC LIMIT $1
            )
        `, r.retention)
		if err != nil {
			return fmt.Errorf("failed to prune snapshots: %w", err)
		}
		return nil
	})
}

// LatestSnapshot returns the most recent archived table, or nil when the archive is empty
func (r *Repository) LatestSnapshot(ctx context.Context) (*models.StandingsTable, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `
        SELECT payload FROM standings_snapshots ORDER BY fetched_at DESC LIMIT 1
    `).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	var table models.StandingsTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &table, nil
}
