package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mcdev12/touchline/go/internal/models"
)

// DefaultChannel is the LISTEN/NOTIFY channel new outbox rows are announced on
const DefaultChannel = "touchline_outbox_events"

// Schema creates the outbox table
const Schema = `
CREATE TABLE IF NOT EXISTS notification_outbox (
	id         UUID PRIMARY KEY,
	season     TEXT NOT NULL,
	week       INT NOT NULL,
	severity   TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS notification_outbox_unsent
	ON notification_outbox (created_at) WHERE sent_at IS NULL;
`

var ErrEventNotFound = errors.New("outbox event not found or already sent")

// Querier is satisfied by *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db      Querier
	channel string
}

func NewRepository(db Querier, channel string) *Repository {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Repository{
		db:      db,
		channel: channel,
	}
}

// WithTx binds the repository to a transaction
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx, channel: r.channel}
}

// Insert appends notifications to the outbox and announces each row. The
// notify is delivered only when the surrounding transaction commits.
func (r *Repository) Insert(ctx context.Context, season string, notes []models.Notification) error {
	for _, n := range notes {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to marshal notification %s: %w", n.ID, err)
		}
		_, err = r.db.Exec(ctx,
			`INSERT INTO notification_outbox (id, season, week, severity, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, season, n.Week, string(n.Severity), payload, n.At)
		if err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
		if _, err := r.db.Exec(ctx, `SELECT pg_notify($1, $2)`, r.channel, n.ID.String()); err != nil {
			return fmt.Errorf("failed to notify outbox channel: %w", err)
		}
	}
	return nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, season, week, severity, payload, created_at FROM notification_outbox
		 WHERE sent_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unsent outbox events: %w", err)
	}
	return events, nil
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, season, week, severity, payload, created_at FROM notification_outbox
		 WHERE id = $1 AND sent_at IS NULL`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return &e, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notification_outbox SET sent_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notification_outbox WHERE sent_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending outbox events: %w", err)
	}
	return count, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		e        Event
		severity string
		payload  []byte
	)
	if err := row.Scan(&e.ID, &e.Season, &e.Week, &severity, &payload, &e.CreatedAt); err != nil {
		return Event{}, err
	}
	e.Severity = models.Severity(severity)
	e.Payload = payload
	return e, nil
}
