// Package pricing turns a market's bid/ask into a limit price and order lifetime.
//
// The policy is an ordered rule table. For each (market, side) the first rule
// whose Match holds decides the method, rounding and expiry. Rules are data,
// so new instrument classes or tiers are configuration, not code.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

// Method is how a rule derives the price from the bid.
type Method string

const (
	// MethodPercent prices at bid * (100 - Percent) / 100, rounded per Rounding.
	MethodPercent Method = "percent"
	// MethodOffset prices at bid + Offset cents.
	MethodOffset Method = "offset"
	// MethodSkip produces no order.
	MethodSkip Method = "skip"
)

// Rounding is applied to percentage prices. Each rule states its own mode.
type Rounding string

const (
	RoundUp   Rounding = "up"
	RoundDown Rounding = "down"
)

// Match selects the markets and sides a rule applies to. Zero fields match anything.
type Match struct {
	Class     string     // substring of the ticker
	Side      model.Side // "" for both sides
	MinSpread *int       // spread >= MinSpread
	MaxSpread *int       // spread < MaxSpread
	BidAbove  *int       // bid > BidAbove
}

func (m Match) matches(ticker string, side model.Side, bid, spread int) bool {
	if m.Class != "" && !strings.Contains(ticker, m.Class) {
		return false
	}
	if m.Side != "" && m.Side != side {
		return false
	}
	if m.MinSpread != nil && spread < *m.MinSpread {
		return false
	}
	if m.MaxSpread != nil && spread >= *m.MaxSpread {
		return false
	}
	if m.BidAbove != nil && bid <= *m.BidAbove {
		return false
	}
	return true
}

// Expiry sets the order's lifetime. BeforeEvent wins when set and the market
// has an expected expiration; otherwise the order lives for After from now.
// Both zero means the order rests until cancelled.
type Expiry struct {
	After       time.Duration
	BeforeEvent time.Duration
}

// Rule is one row of the policy table.
type Rule struct {
	Name     string
	Match    Match
	Method   Method
	Percent  decimal.Decimal // discount below the bid; negative prices above it
	Rounding Rounding
	Offset   int // cents added to the bid
	Expiry   Expiry
}

func (r Rule) validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	switch r.Method {
	case MethodPercent:
		if r.Rounding != RoundUp && r.Rounding != RoundDown {
			return fmt.Errorf("rule %s: rounding must be %q or %q", r.Name, RoundUp, RoundDown)
		}
	case MethodOffset, MethodSkip:
	default:
		return fmt.Errorf("rule %s: unknown method %q", r.Name, r.Method)
	}
	if r.Expiry.After < 0 || r.Expiry.BeforeEvent < 0 {
		return fmt.Errorf("rule %s: expiry durations must be >= 0", r.Name)
	}
	return nil
}

// Bounds restrict computed prices beyond the venue's 1-99 range.
type Bounds struct {
	Min int
	Max int
	// LenientSpread relaxes Min/Max to 1-99 when the spread is strictly wider.
	// Zero disables the relaxation.
	LenientSpread int
}

func cents(v int) *int { return &v }

// ContinuousRules is the table used by the continuous quoter: wide discounts
// with minute-scale order lifetimes.
//
// Percentage tiers round down here while OneShotRules rounds up.
// TODO: confirm with product whether the rounding split is intended.
func ContinuousRules() []Rule {
	low := Expiry{After: 2 * time.Minute}
	high := Expiry{After: time.Minute}
	return []Rule{
		{Name: "nhl-no", Match: Match{Class: "NHL", Side: model.SideNo}, Method: MethodSkip},
		{Name: "nhl-yes", Match: Match{Class: "NHL", Side: model.SideYes, MaxSpread: cents(30)}, Method: MethodOffset, Offset: -3, Expiry: low},
		{Name: "nhl-yes-confident", Match: Match{Class: "NHL", Side: model.SideYes, BidAbove: cents(54)}, Method: MethodOffset, Offset: -3, Expiry: low},
		{Name: "high-confidence", Match: Match{Side: model.SideYes, BidAbove: cents(59)}, Method: MethodPercent, Percent: decimal.NewFromInt(15), Rounding: RoundDown, Expiry: low},
		{Name: "confident", Match: Match{Side: model.SideYes, BidAbove: cents(54)}, Method: MethodPercent, Percent: decimal.NewFromInt(35), Rounding: RoundDown, Expiry: low},
		{Name: "low-spread", Match: Match{MaxSpread: cents(30)}, Method: MethodPercent, Percent: decimal.NewFromInt(35), Rounding: RoundDown, Expiry: low},
		{Name: "high-spread", Method: MethodPercent, Percent: decimal.NewFromInt(-6), Rounding: RoundDown, Expiry: high},
	}
}

// ContinuousBounds keeps prices strictly between 7 and 99 unless the spread exceeds 30.
func ContinuousBounds() Bounds {
	return Bounds{Min: 8, Max: 98, LenientSpread: 30}
}

// OneShotRules is the table used by a single sweep ahead of game day: tight
// discounts, orders expiring 2h58m before the event.
func OneShotRules() []Rule {
	exp := Expiry{BeforeEvent: 2*time.Hour + 58*time.Minute}
	return []Rule{
		{Name: "zero-spread", Match: Match{MaxSpread: cents(1)}, Method: MethodSkip},
		{Name: "tight", Match: Match{MaxSpread: cents(9)}, Method: MethodPercent, Percent: decimal.NewFromInt(13), Rounding: RoundUp, Expiry: exp},
		{Name: "medium", Match: Match{MaxSpread: cents(22)}, Method: MethodPercent, Percent: decimal.NewFromInt(6), Rounding: RoundUp, Expiry: exp},
		{Name: "wide-yes", Match: Match{Side: model.SideYes}, Method: MethodOffset, Offset: 1, Expiry: exp},
		{Name: "wide-no", Match: Match{Side: model.SideNo}, Method: MethodOffset, Offset: 0, Expiry: exp},
	}
}

// OneShotBounds accepts the venue's full range.
func OneShotBounds() Bounds {
	return Bounds{Min: model.MinPriceCents, Max: model.MaxPriceCents}
}
