// Package journal persists every order attempt to PostgreSQL.
//
// One row per client order id: the order as built, the venue's order id and
// status when acknowledged, or the error when the submission failed. Dry-run
// orders are journaled with status "dry_run".
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/kalshi-quoter/internal/order"
)

// Schema creates the journal table.
const Schema = `
CREATE TABLE IF NOT EXISTS order_attempts (
	client_order_id UUID PRIMARY KEY,
	venue_order_id  TEXT,
	ticker          TEXT        NOT NULL,
	action          TEXT        NOT NULL,
	side            TEXT        NOT NULL,
	count           INTEGER     NOT NULL,
	price_cents     SMALLINT    NOT NULL,
	expiration_ts   BIGINT,
	status          TEXT        NOT NULL,
	error           TEXT,
	attempted_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS order_attempts_ticker_idx ON order_attempts (ticker, attempted_at);
`

const insertSQL = `
	INSERT INTO order_attempts (client_order_id, venue_order_id, ticker, action, side, count, price_cents, expiration_ts, status, error, attempted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (client_order_id) DO NOTHING
`

// Execer runs a statement. Satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Stats tracks journal writes.
type Stats struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
}

// Journal writes order attempts. It satisfies order.Recorder.
type Journal struct {
	db     Execer
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a Journal.
func New(db Execer, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, logger: logger}
}

// EnsureSchema creates the table if it does not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Record inserts one attempt. A repeated client order id is ignored.
func (j *Journal) Record(ctx context.Context, a order.Attempt) error {
	o := a.Order

	var errText *string
	if a.Err != nil {
		s := a.Err.Error()
		errText = &s
	}

	ct, err := j.db.Exec(ctx, insertSQL,
		o.ClientOrderID,
		nullString(a.VenueOrderID),
		o.Ticker,
		string(o.Action),
		string(o.Side),
		o.Count,
		o.PriceCents,
		nullInt64(o.ExpirationTS),
		a.Status,
		errText,
		a.At,
	)

	j.mu.Lock()
	defer j.mu.Unlock()

	if err != nil {
		j.stats.Errors++
		return fmt.Errorf("insert order attempt %s: %w", o.ClientOrderID, err)
	}
	if ct.RowsAffected() == 0 {
		j.stats.Conflicts++
		j.logger.Debug("order attempt already journaled", "client_order_id", o.ClientOrderID)
		return nil
	}
	j.stats.Inserts++
	return nil
}

// Stats returns current counters.
func (j *Journal) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
