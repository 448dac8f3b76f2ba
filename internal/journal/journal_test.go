package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/order"
)

var _ order.Recorder = (*Journal)(nil)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records statements and replies with a fixed tag or error.
type fakeDB struct {
	calls []execCall
	tag   string
	err   error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func attempt() order.Attempt {
	return order.Attempt{
		Order: model.Order{
			ClientOrderID: "4f9c2a0e-6a55-4b8f-9d7e-1d3c5f0a2b11",
			Ticker:        "KXNBATOTAL-25NOV01LALBOS-T220",
			Action:        model.ActionBuy,
			Side:          model.SideYes,
			Count:         100,
			PriceCents:    35,
		},
		VenueOrderID: "venue-1",
		Status:       "resting",
		At:           time.Date(2025, 11, 1, 20, 0, 0, 0, time.UTC),
	}
}

func TestJournal_Record(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	j := New(db, nil)

	if err := j.Record(context.Background(), attempt()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if len(db.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(db.calls))
	}
	call := db.calls[0]
	if !strings.Contains(call.sql, "INSERT INTO order_attempts") || !strings.Contains(call.sql, "ON CONFLICT") {
		t.Errorf("unexpected sql: %s", call.sql)
	}
	if len(call.args) != 11 {
		t.Fatalf("args = %d, want 11", len(call.args))
	}
	if call.args[0] != "4f9c2a0e-6a55-4b8f-9d7e-1d3c5f0a2b11" || call.args[2] != "KXNBATOTAL-25NOV01LALBOS-T220" {
		t.Errorf("args = %v", call.args)
	}
	if v, ok := call.args[1].(*string); !ok || v == nil || *v != "venue-1" {
		t.Errorf("venue_order_id = %v", call.args[1])
	}
	if v, ok := call.args[7].(*int64); !ok || v != nil {
		t.Errorf("zero expiration should be NULL, got %v", call.args[7])
	}
	if v, ok := call.args[9].(*string); !ok || v != nil {
		t.Errorf("error should be NULL, got %v", call.args[9])
	}
	if got := j.Stats(); got.Inserts != 1 {
		t.Errorf("Stats = %+v", got)
	}
}

func TestJournal_RecordFailedAttempt(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	j := New(db, nil)

	a := attempt()
	a.VenueOrderID = ""
	a.Status = "failed"
	a.Err = errors.New("status 400")
	a.Order.ExpirationTS = 1762027200

	if err := j.Record(context.Background(), a); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	args := db.calls[0].args
	if v := args[1].(*string); v != nil {
		t.Errorf("venue_order_id = %q, want NULL", *v)
	}
	if v := args[7].(*int64); v == nil || *v != 1762027200 {
		t.Errorf("expiration_ts = %v", v)
	}
	if v := args[9].(*string); v == nil || *v != "status 400" {
		t.Errorf("error = %v", v)
	}
}

func TestJournal_Conflict(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 0"}
	j := New(db, nil)

	if err := j.Record(context.Background(), attempt()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got := j.Stats(); got.Conflicts != 1 || got.Inserts != 0 {
		t.Errorf("Stats = %+v, want one conflict", got)
	}
}

func TestJournal_Error(t *testing.T) {
	db := &fakeDB{err: errors.New("connection refused")}
	j := New(db, nil)

	err := j.Record(context.Background(), attempt())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err = %v", err)
	}
	if got := j.Stats(); got.Errors != 1 {
		t.Errorf("Stats = %+v", got)
	}
}

func TestJournal_EnsureSchema(t *testing.T) {
	db := &fakeDB{tag: "CREATE TABLE"}
	j := New(db, nil)

	if err := j.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if len(db.calls) != 1 || !strings.Contains(db.calls[0].sql, "CREATE TABLE IF NOT EXISTS order_attempts") {
		t.Errorf("calls = %+v", db.calls)
	}
}
