// Package eligibility decides whether a market is inside the quoting window.
package eligibility

import (
	"strings"
	"time"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

// ClassLeadTime overrides the minimum lead time for tickers containing Match.
type ClassLeadTime struct {
	Match    string
	LeadTime time.Duration
}

// Config holds the quoting window.
type Config struct {
	// Lookahead is the farthest expiration accepted, measured from now. Zero disables the bound.
	Lookahead time.Duration
	// DefaultLeadTime is the minimum time left before expiration.
	DefaultLeadTime time.Duration
	// ClassLeadTimes are checked in order; the first match wins.
	ClassLeadTimes []ClassLeadTime
	// ExcludeTitles rejects markets whose title contains any of these substrings.
	ExcludeTitles []string
}

// DefaultConfig returns the continuous-mode window: up to 4h out, at least 1h30m
// left, or 1h for hockey.
func DefaultConfig() Config {
	return Config{
		Lookahead:       4 * time.Hour,
		DefaultLeadTime: 90 * time.Minute,
		ClassLeadTimes: []ClassLeadTime{
			{Match: "NHL", LeadTime: time.Hour},
		},
	}
}

// Verdict is the outcome of a check. Reason is empty when Eligible.
type Verdict struct {
	Eligible bool
	Reason   string
}

// Filter is a stateless eligibility check. Safe for concurrent use.
type Filter struct {
	cfg Config
}

// New creates a Filter.
func New(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// LeadTime returns the minimum lead time for a ticker's instrument class.
func (f *Filter) LeadTime(ticker string) time.Duration {
	for _, c := range f.cfg.ClassLeadTimes {
		if c.Match != "" && strings.Contains(ticker, c.Match) {
			return c.LeadTime
		}
	}
	return f.cfg.DefaultLeadTime
}

// Check evaluates m against the window anchored at now.
func (f *Filter) Check(m model.Market, now time.Time) Verdict {
	if m.ExpectedExpiration == nil {
		return Verdict{Reason: "no expected expiration"}
	}
	for _, s := range f.cfg.ExcludeTitles {
		if s != "" && strings.Contains(m.Title, s) {
			return Verdict{Reason: "excluded title"}
		}
	}

	exp := *m.ExpectedExpiration
	if f.cfg.Lookahead > 0 && exp.After(now.Add(f.cfg.Lookahead)) {
		return Verdict{Reason: "expires beyond lookahead"}
	}
	if exp.Before(now.Add(f.LeadTime(m.Ticker))) {
		return Verdict{Reason: "inside lead time"}
	}

	return Verdict{Eligible: true}
}

// IsEligible is Check without the reason.
func (f *Filter) IsEligible(m model.Market, now time.Time) bool {
	return f.Check(m, now).Eligible
}
