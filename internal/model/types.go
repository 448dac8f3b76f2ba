package model

import (
	"strings"
	"time"
)

// Side is one outcome of a binary market.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Sides lists both outcomes in the order the quoter prices them.
var Sides = []Side{SideYes, SideNo}

// ParseSide converts "yes"/"no" (any case) to a Side.
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideYes:
		return SideYes, true
	case SideNo:
		return SideNo, true
	}
	return "", false
}

// Action is the direction of an order.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Price bounds accepted by the venue for a limit order, in cents.
const (
	MinPriceCents = 1
	MaxPriceCents = 99
)

// ValidPrice reports whether cents is a submittable limit price.
func ValidPrice(cents int) bool {
	return cents >= MinPriceCents && cents <= MaxPriceCents
}

// Market is a snapshot of a binary market taken from one listing page.
type Market struct {
	Ticker       string // Unique id (e.g., "KXNBATOTAL-25NOV01LALBOS-T220")
	EventTicker  string
	SeriesTicker string // Series the market was listed under
	Title        string
	Status       string

	// ExpectedExpiration is when the underlying event is expected to settle.
	ExpectedExpiration *time.Time

	// Quotes in cents; nil when the venue has no quote on that side.
	YesBid *int
	YesAsk *int
	NoBid  *int
	NoAsk  *int
}

// Quote returns the bid/ask pair for one side. ok is false if either is absent.
func (m Market) Quote(side Side) (bid, ask int, ok bool) {
	var b, a *int
	switch side {
	case SideYes:
		b, a = m.YesBid, m.YesAsk
	case SideNo:
		b, a = m.NoBid, m.NoAsk
	}
	if b == nil || a == nil {
		return 0, 0, false
	}
	return *b, *a, true
}

// HasQuotes reports whether at least one side carries a full bid/ask pair.
func (m Market) HasQuotes() bool {
	for _, s := range Sides {
		if _, _, ok := m.Quote(s); ok {
			return true
		}
	}
	return false
}

// Order is a limit order ready for submission.
type Order struct {
	ClientOrderID string // Idempotency token, fresh per submission attempt
	Ticker        string
	Action        Action
	Side          Side
	Count         int
	PriceCents    int
	ExpirationTS  int64 // Seconds since epoch; 0 = good until cancelled
}

// Cents returns a pointer to v, for building Market literals.
func Cents(v int) *int {
	return &v
}
