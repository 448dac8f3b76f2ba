package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Decision is a resolved quote for one side of one market.
type Decision struct {
	Side            model.Side
	LimitPriceCents int
	ExpirationTS    int64 // Seconds since epoch; 0 = rests until cancelled
	Rule            string
	Bid             int
	Ask             int
	Spread          int
}

// Result is either a Decision (OK) or a skip with a reason.
type Result struct {
	Decision Decision
	OK       bool
	Reason   string
}

func skip(reason string) Result { return Result{Reason: reason} }

// Policy evaluates the rule table. It holds no mutable state.
type Policy struct {
	rules  []Rule
	bounds Bounds
}

// NewPolicy validates rules and bounds.
func NewPolicy(rules []Rule, bounds Bounds) (*Policy, error) {
	if len(rules) == 0 {
		return nil, errors.New("pricing: at least one rule is required")
	}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("pricing: %w", err)
		}
	}
	if bounds.Min < model.MinPriceCents || bounds.Max > model.MaxPriceCents || bounds.Min > bounds.Max {
		return nil, fmt.Errorf("pricing: bounds %d-%d must lie within %d-%d", bounds.Min, bounds.Max, model.MinPriceCents, model.MaxPriceCents)
	}
	if bounds.LenientSpread < 0 {
		return nil, errors.New("pricing: lenient spread must be >= 0")
	}
	return &Policy{rules: append([]Rule(nil), rules...), bounds: bounds}, nil
}

// Classify returns the rule that governs a side with the given bid and spread.
func (p *Policy) Classify(ticker string, side model.Side, bid, spread int) (Rule, bool) {
	for _, r := range p.rules {
		if r.Match.matches(ticker, side, bid, spread) {
			return r, true
		}
	}
	return Rule{}, false
}

// Price quotes one side of m at now. It never fails: missing quotes, skip
// rules and out-of-range prices come back as a Result with OK false.
func (p *Policy) Price(m model.Market, side model.Side, now time.Time) Result {
	bid, ask, ok := m.Quote(side)
	if !ok {
		return skip("missing bid/ask")
	}
	spread := ask - bid

	rule, ok := p.Classify(m.Ticker, side, bid, spread)
	if !ok {
		return skip("no matching rule")
	}

	var price int
	switch rule.Method {
	case MethodSkip:
		return skip("rule " + rule.Name)
	case MethodOffset:
		price = bid + rule.Offset
	case MethodPercent:
		price = discount(bid, rule.Percent, rule.Rounding)
	}

	if !p.inBounds(price, spread) {
		return skip(fmt.Sprintf("price %d out of range", price))
	}

	expTS, ok := expiration(rule.Expiry, m.ExpectedExpiration, now)
	if !ok {
		return skip("order would expire before it is placed")
	}

	return Result{
		OK: true,
		Decision: Decision{
			Side:            side,
			LimitPriceCents: price,
			ExpirationTS:    expTS,
			Rule:            rule.Name,
			Bid:             bid,
			Ask:             ask,
			Spread:          spread,
		},
	}
}

func (p *Policy) inBounds(price, spread int) bool {
	if !model.ValidPrice(price) {
		return false
	}
	if p.bounds.LenientSpread > 0 && spread > p.bounds.LenientSpread {
		return true
	}
	return price >= p.bounds.Min && price <= p.bounds.Max
}

// discount computes bid * (100 - pct) / 100 in exact decimal arithmetic.
func discount(bid int, pct decimal.Decimal, rounding Rounding) int {
	v := decimal.NewFromInt(int64(bid)).Mul(hundred.Sub(pct)).Div(hundred)
	if rounding == RoundUp {
		v = v.Ceil()
	} else {
		v = v.Floor()
	}
	return int(v.IntPart())
}

func expiration(e Expiry, event *time.Time, now time.Time) (int64, bool) {
	if e.BeforeEvent > 0 && event != nil {
		at := event.Add(-e.BeforeEvent)
		if !at.After(now) {
			return 0, false
		}
		return at.Unix(), true
	}
	if e.After > 0 {
		return now.Add(e.After).Unix(), true
	}
	return 0, true
}
