package scanner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/eligibility"
	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/pricing"
)

// Mode selects between a single sweep and repeated sweeps.
type Mode string

const (
	ModeOnce       Mode = "once"
	ModeContinuous Mode = "continuous"
)

// Pager lists a series' markets page by page. Satisfied by *api.Client.
type Pager interface {
	MarketPages(ctx context.Context, opts api.GetMarketsOptions) iter.Seq2[[]model.Market, error]
}

// Filter decides whether a market is inside the quoting window.
type Filter interface {
	Check(m model.Market, now time.Time) eligibility.Verdict
}

// Pricer resolves a limit price for one side of a market.
type Pricer interface {
	Price(m model.Market, side model.Side, now time.Time) pricing.Result
}

// Dispatcher submits orders. Satisfied by *order.Dispatcher.
type Dispatcher interface {
	Submit(ctx context.Context, ticker string, action model.Action, side model.Side, count, priceCents int, expirationTS int64) (string, error)
}

// Skip stages reported to an Observer.
const (
	SkipTraded     = "traded"
	SkipIneligible = "ineligible"
	SkipExcluded   = "excluded_side"
	SkipUnpriced   = "unpriced"
)

// Observer receives sweep events, typically for metrics.
type Observer interface {
	ObserveSweep(stats SweepStats)
	ObserveSkip(stage string)
	ObserveOrder(side model.Side, err error)
}

// Config holds scan loop settings.
type Config struct {
	Mode              Mode
	Series            []string
	ExcludeSides      map[string][]model.Side // Series -> sides never quoted
	PageSize          int                     // Markets per page (default: 12)
	Status            string                  // Listing status filter (default: open)
	ContractsPerOrder int                     // Contracts per order (default: 100)
	Throttle          time.Duration           // Pause after each page (default: 500ms)
	SweepInterval     time.Duration           // Pause between sweeps (default: 100s)
	TradedReset       ResetPolicy             // TradedSet lifetime (default: sweep)
}

// DefaultConfig returns the production settings with no series configured.
func DefaultConfig() Config {
	return Config{
		Mode:              ModeContinuous,
		PageSize:          12,
		Status:            "open",
		ContractsPerOrder: 100,
		Throttle:          500 * time.Millisecond,
		SweepInterval:     100 * time.Second,
		TradedReset:       ResetSweep,
	}
}

// SweepStats summarizes one sweep.
type SweepStats struct {
	Series       int
	Markets      int
	Eligible     int
	Submitted    int
	Failed       int
	Skipped      int
	SeriesErrors int
	Duration     time.Duration
}

// Scanner runs sweeps. It is single-threaded: one Run at a time.
type Scanner struct {
	cfg        Config
	pager      Pager
	filter     Filter
	pricer     Pricer
	dispatcher Dispatcher
	traded     *TradedSet
	clock      Clock
	observer   Observer
	logger     *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scanner) {
		s.clock = c
	}
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(s *Scanner) {
		s.observer = o
	}
}

// New creates a Scanner.
func New(cfg Config, pager Pager, filter Filter, pricer Pricer, dispatcher Dispatcher, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:        cfg,
		pager:      pager,
		filter:     filter,
		pricer:     pricer,
		dispatcher: dispatcher,
		traded:     NewTradedSet(),
		clock:      realClock{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Traded exposes the set of quoted tickers.
func (s *Scanner) Traded() *TradedSet {
	return s.traded
}

// Run sweeps once or repeatedly depending on the mode. Cancellation is
// checked between series and between sweeps; a cancelled run returns nil.
func (s *Scanner) Run(ctx context.Context) error {
	if len(s.cfg.Series) == 0 {
		return errors.New("scanner: no series configured")
	}

	s.logger.Info("scanner started",
		"mode", s.cfg.Mode,
		"series", len(s.cfg.Series),
		"sweep_interval", s.cfg.SweepInterval,
		"throttle", s.cfg.Throttle,
	)

	for sweep := 1; ; sweep++ {
		stats := s.RunOnce(ctx)
		s.logger.Info("sweep complete",
			"sweep", sweep,
			"markets", stats.Markets,
			"eligible", stats.Eligible,
			"submitted", stats.Submitted,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
			"series_errors", stats.SeriesErrors,
			"traded", s.traded.Len(),
			"duration", stats.Duration,
		)

		if s.cfg.Mode != ModeContinuous {
			return nil
		}
		if err := s.clock.Sleep(ctx, s.cfg.SweepInterval); err != nil {
			s.logger.Info("scanner stopped", "sweeps", sweep)
			return nil
		}
	}
}

// RunOnce performs one sweep over every configured series. A series whose
// listing fails is logged and skipped; the sweep continues with the next one.
func (s *Scanner) RunOnce(ctx context.Context) SweepStats {
	start := s.clock.Now()
	stats := SweepStats{Series: len(s.cfg.Series)}

	if s.cfg.TradedReset != ResetRun {
		s.traded.Reset()
	}

	for _, series := range s.cfg.Series {
		if ctx.Err() != nil {
			break
		}
		if err := s.sweepSeries(ctx, series, &stats); err != nil {
			stats.SeriesErrors++
			s.logger.Error("series scan failed", "series", series, "error", err)
		}
	}

	stats.Duration = s.clock.Now().Sub(start)
	if s.observer != nil {
		s.observer.ObserveSweep(stats)
	}
	return stats
}

func (s *Scanner) sweepSeries(ctx context.Context, series string, stats *SweepStats) error {
	opts := api.GetMarketsOptions{
		SeriesTicker: series,
		Status:       s.cfg.Status,
		Limit:        s.cfg.PageSize,
	}

	s.logger.Debug("scanning series", "series", series)

	for page, err := range s.pager.MarketPages(ctx, opts) {
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("list markets: %w", err)
		}
		for _, m := range page {
			if m.SeriesTicker == "" {
				m.SeriesTicker = series
			}
			s.handleMarket(ctx, m, stats)
		}
		if err := s.clock.Sleep(ctx, s.cfg.Throttle); err != nil {
			return nil
		}
	}
	return nil
}

func (s *Scanner) handleMarket(ctx context.Context, m model.Market, stats *SweepStats) {
	stats.Markets++

	if s.traded.Has(m.Ticker) {
		stats.Skipped++
		s.skip(SkipTraded)
		return
	}

	now := s.clock.Now()
	if v := s.filter.Check(m, now); !v.Eligible {
		stats.Skipped++
		s.skip(SkipIneligible)
		s.logger.Debug("market skipped", "ticker", m.Ticker, "reason", v.Reason)
		return
	}
	stats.Eligible++

	for _, side := range model.Sides {
		if s.excluded(m.SeriesTicker, side) {
			s.skip(SkipExcluded)
			continue
		}

		res := s.pricer.Price(m, side, now)
		if !res.OK {
			s.skip(SkipUnpriced)
			s.logger.Debug("side not priced", "ticker", m.Ticker, "side", side, "reason", res.Reason)
			continue
		}

		d := res.Decision
		_, err := s.dispatcher.Submit(ctx, m.Ticker, model.ActionBuy, side, s.cfg.ContractsPerOrder, d.LimitPriceCents, d.ExpirationTS)
		if s.observer != nil {
			s.observer.ObserveOrder(side, err)
		}
		if err != nil {
			stats.Failed++
			s.logger.Warn("order failed",
				"ticker", m.Ticker,
				"side", side,
				"price", d.LimitPriceCents,
				"rule", d.Rule,
				"error", err,
			)
			continue
		}
		stats.Submitted++
	}

	s.traded.Add(m.Ticker)
}

func (s *Scanner) excluded(series string, side model.Side) bool {
	return slices.Contains(s.cfg.ExcludeSides[series], side)
}

func (s *Scanner) skip(stage string) {
	if s.observer != nil {
		s.observer.ObserveSkip(stage)
	}
}
