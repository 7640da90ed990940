package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/outbox"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/season"
	"github.com/mcdev12/touchline/go/internal/sqlutil"
)

// keepSnapshots is how many plain weekly snapshots survive pruning.
// Snapshots carrying a season summary are never pruned.
const keepSnapshots = 20

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS season_snapshots (
	seq      BIGSERIAL PRIMARY KEY,
	season   TEXT NOT NULL,
	week     INT NOT NULL,
	state    JSONB NOT NULL,
	summary  JSONB,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS season_snapshots_summary
	ON season_snapshots (season) WHERE summary IS NOT NULL;
`

// PgStore saves snapshots to Postgres. Notifications go to the outbox in
// the same transaction so the relay never publishes an unsaved change.
type PgStore struct {
	pool   *pgxpool.Pool
	outbox *outbox.Repository
	keep   int
}

func NewPgStore(pool *pgxpool.Pool, channel string) *PgStore {
	return &PgStore{
		pool:   pool,
		outbox: outbox.NewRepository(pool, channel),
		keep:   keepSnapshots,
	}
}

// Migrate creates the snapshot and outbox tables
func (s *PgStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, snapshotSchema+outbox.Schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Outbox returns the outbox repository backed by the same pool
func (s *PgStore) Outbox() *outbox.Repository {
	return s.outbox
}

type queries struct {
	tx     pgx.Tx
	outbox *outbox.Repository
}

func (s *PgStore) bind(tx pgx.Tx) *queries {
	return &queries{tx: tx, outbox: s.outbox.WithTx(tx)}
}

// Save implements season.Repository
func (s *PgStore) Save(ctx context.Context, snap season.Snapshot) error {
	state, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	summary, err := sqlutil.ToNullJSON(snap.Summary)
	if err != nil {
		return err
	}

	return sqlutil.Run(ctx, s.pool, s.bind, func(q *queries) error {
		var seq int64
		err := q.tx.QueryRow(ctx,
			`INSERT INTO season_snapshots (season, week, state, summary) VALUES ($1, $2, $3, $4) RETURNING seq`,
			snap.State.Label, snap.State.CurrentWeek, state, summary).Scan(&seq)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		if err := q.outbox.Insert(ctx, snap.State.Label, snap.Notifications); err != nil {
			return err
		}
		tag, err := q.tx.Exec(ctx,
			`DELETE FROM season_snapshots WHERE summary IS NULL AND seq <= $1`, seq-int64(s.keep))
		if err != nil {
			return fmt.Errorf("failed to prune snapshots: %w", err)
		}
		if n := tag.RowsAffected(); n > 0 {
			log.Debug().Int64("pruned", n).Msg("pruned old snapshots")
		}
		return nil
	})
}

// Load implements season.Repository
func (s *PgStore) Load(ctx context.Context) (*models.SeasonState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM season_snapshots ORDER BY seq DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var state models.SeasonState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &state, nil
}

// Summary returns the end-of-season summary saved for a season label
func (s *PgStore) Summary(ctx context.Context, label string) (*rewards.Summary, error) {
	var col pqtype.NullRawMessage
	err := s.pool.QueryRow(ctx,
		`SELECT summary FROM season_snapshots WHERE season = $1 AND summary IS NOT NULL`, label).Scan(&col)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return sqlutil.FromNullJSON[rewards.Summary](col)
}
