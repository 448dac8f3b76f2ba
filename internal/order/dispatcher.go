// Package order validates and submits limit orders.
package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/model"
)

// Submitter sends an order to the venue. Satisfied by *api.Client.
type Submitter interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.APIOrder, error)
}

// Attempt is one submission and its outcome.
type Attempt struct {
	Order        model.Order
	VenueOrderID string
	Status       string // venue status, "dry_run", or "failed"
	Err          error
	At           time.Time
}

// Recorder persists attempts. Failures are logged and never block trading.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// Config holds dispatcher settings.
type Config struct {
	DryRun  bool          // Log and record orders without sending them
	Timeout time.Duration // Per-submission timeout (0 = caller's context only)
}

// Dispatcher builds and submits orders. It never retries: a resubmission
// with a new client order id could double the position.
type Dispatcher struct {
	cfg       Config
	submitter Submitter
	recorder  Recorder
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithRecorder records every attempt, including dry runs and failures.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithIDGenerator overrides client order id generation.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		d.newID = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher.
func New(submitter Submitter, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:       cfg,
		submitter: submitter,
		logger:    slog.Default(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func validate(ticker string, action model.Action, side model.Side, count, priceCents int, expirationTS int64) error {
	if ticker == "" {
		return &ValidationError{Field: "ticker", Value: ticker, Reason: "required"}
	}
	if action != model.ActionBuy && action != model.ActionSell {
		return &ValidationError{Field: "action", Value: action, Reason: "must be buy or sell"}
	}
	if side != model.SideYes && side != model.SideNo {
		return &ValidationError{Field: "side", Value: side, Reason: "must be yes or no"}
	}
	if count < 1 {
		return &ValidationError{Field: "count", Value: count, Reason: "must be >= 1"}
	}
	if !model.ValidPrice(priceCents) {
		return &ValidationError{Field: "price", Value: priceCents, Reason: "must be between 1 and 99 cents"}
	}
	if expirationTS < 0 {
		return &ValidationError{Field: "expiration_ts", Value: expirationTS, Reason: "must be >= 0"}
	}
	return nil
}

// Submit places a limit order and returns the venue order id. Invalid input
// fails with *ValidationError before any request is made; venue or transport
// failures come back as *OrderError. A dry run returns an empty id.
func (d *Dispatcher) Submit(ctx context.Context, ticker string, action model.Action, side model.Side, count, priceCents int, expirationTS int64) (string, error) {
	if err := validate(ticker, action, side, count, priceCents, expirationTS); err != nil {
		return "", err
	}

	o := model.Order{
		ClientOrderID: d.newID(),
		Ticker:        ticker,
		Action:        action,
		Side:          side,
		Count:         count,
		PriceCents:    priceCents,
		ExpirationTS:  expirationTS,
	}

	if d.cfg.DryRun {
		d.logger.Info("dry run: order not sent",
			"ticker", ticker,
			"action", action,
			"side", side,
			"count", count,
			"price", priceCents,
			"expiration_ts", expirationTS,
		)
		d.record(ctx, Attempt{Order: o, Status: "dry_run", At: d.now()})
		return "", nil
	}

	sendCtx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	ack, err := d.submitter.CreateOrder(sendCtx, buildRequest(o))
	if err != nil {
		d.record(ctx, Attempt{Order: o, Status: "failed", Err: err, At: d.now()})
		return "", &OrderError{Ticker: ticker, Side: side, Err: err}
	}

	d.logger.Info("order placed",
		"ticker", ticker,
		"action", action,
		"side", side,
		"count", count,
		"price", priceCents,
		"order_id", ack.OrderID,
		"status", ack.Status,
	)
	d.record(ctx, Attempt{Order: o, VenueOrderID: ack.OrderID, Status: ack.Status, At: d.now()})

	return ack.OrderID, nil
}

func (d *Dispatcher) record(ctx context.Context, a Attempt) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(ctx, a); err != nil {
		d.logger.Warn("failed to record order attempt",
			"ticker", a.Order.Ticker,
			"client_order_id", a.Order.ClientOrderID,
			"error", err,
		)
	}
}

// buildRequest maps an order to the wire format. Only the price field for the
// order's side is set, and a zero expiration is left out.
func buildRequest(o model.Order) api.CreateOrderRequest {
	req := api.CreateOrderRequest{
		ClientOrderID: o.ClientOrderID,
		Ticker:        o.Ticker,
		Action:        string(o.Action),
		Side:          string(o.Side),
		Count:         o.Count,
		Type:          "limit",
	}
	price := o.PriceCents
	if o.Side == model.SideYes {
		req.YesPrice = &price
	} else {
		req.NoPrice = &price
	}
	if o.ExpirationTS > 0 {
		ts := o.ExpirationTS
		req.ExpirationTS = &ts
	}
	return req
}

// BuyYes places a limit order to buy YES contracts.
func (d *Dispatcher) BuyYes(ctx context.Context, ticker string, count, priceCents int, expirationTS int64) (string, error) {
	return d.Submit(ctx, ticker, model.ActionBuy, model.SideYes, count, priceCents, expirationTS)
}

// SellYes places a limit order to sell YES contracts.
func (d *Dispatcher) SellYes(ctx context.Context, ticker string, count, priceCents int, expirationTS int64) (string, error) {
	return d.Submit(ctx, ticker, model.ActionSell, model.SideYes, count, priceCents, expirationTS)
}

// BuyNo places a limit order to buy NO contracts.
func (d *Dispatcher) BuyNo(ctx context.Context, ticker string, count, priceCents int, expirationTS int64) (string, error) {
	return d.Submit(ctx, ticker, model.ActionBuy, model.SideNo, count, priceCents, expirationTS)
}

// SellNo places a limit order to sell NO contracts.
func (d *Dispatcher) SellNo(ctx context.Context, ticker string, count, priceCents int, expirationTS int64) (string, error) {
	return d.Submit(ctx, ticker, model.ActionSell, model.SideNo, count, priceCents, expirationTS)
}
