package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DollarsToCents converts a dollar string to cents, rounding half up.
// "0.52" -> 52, "0.5250" -> 53. ok is false for empty or invalid input.
func DollarsToCents(dollars string) (cents int, ok bool) {
	dollars = strings.TrimSpace(dollars)
	if dollars == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(dollars)
	if err != nil {
		return 0, false
	}

	return int(d.Mul(hundred).Round(0).IntPart()), true
}

// ParseTimestamp parses an ISO 8601 timestamp. ok is false for empty or invalid input.
func ParseTimestamp(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}, false
		}
	}

	return t.UTC(), true
}

// quote prefers the integer cents field and falls back to the dollar string.
func quote(cents *int, dollars string) *int {
	if cents != nil {
		v := *cents
		return &v
	}
	if v, ok := DollarsToCents(dollars); ok {
		return &v
	}
	return nil
}

// ToModel converts an APIMarket to model.Market.
func (m *APIMarket) ToModel() model.Market {
	out := model.Market{
		Ticker:      m.Ticker,
		EventTicker: m.EventTicker,
		Title:       m.Title,
		Status:      m.Status,
		YesBid:      quote(m.YesBid, m.YesBidDollars),
		YesAsk:      quote(m.YesAsk, m.YesAskDollars),
		NoBid:       quote(m.NoBid, m.NoBidDollars),
		NoAsk:       quote(m.NoAsk, m.NoAskDollars),
	}
	if t, ok := ParseTimestamp(m.ExpectedExpirationTime); ok {
		out.ExpectedExpiration = &t
	}
	return out
}
