package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

var now = time.Date(2025, 11, 1, 18, 0, 0, 0, time.UTC)

func mustPolicy(t *testing.T, rules []Rule, bounds Bounds) *Policy {
	t.Helper()
	p, err := NewPolicy(rules, bounds)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p
}

func yesMarket(ticker string, bid, ask int) model.Market {
	return model.Market{Ticker: ticker, YesBid: model.Cents(bid), YesAsk: model.Cents(ask)}
}

func noMarket(ticker string, bid, ask int) model.Market {
	return model.Market{Ticker: ticker, NoBid: model.Cents(bid), NoAsk: model.Cents(ask)}
}

func TestOneShotPolicy(t *testing.T) {
	p := mustPolicy(t, OneShotRules(), OneShotBounds())
	event := now.Add(6 * time.Hour)

	tests := []struct {
		name   string
		market model.Market
		side   model.Side
		price  int
		rule   string
	}{
		{"tight spread rounds up", yesMarket("KXNBATOTAL-A", 40, 48), model.SideYes, 35, "tight"},
		{"medium spread rounds up", yesMarket("KXNBATOTAL-A", 50, 65), model.SideYes, 47, "medium"},
		{"spread at tight threshold is medium", yesMarket("KXNBATOTAL-A", 40, 49), model.SideYes, 38, "medium"},
		{"wide yes is bid plus one", yesMarket("KXNBATOTAL-A", 20, 60), model.SideYes, 21, "wide-yes"},
		{"wide no is the bid", noMarket("KXNBATOTAL-A", 30, 70), model.SideNo, 30, "wide-no"},
		{"no side uses its own spread", noMarket("KXNBATOTAL-A", 60, 64), model.SideNo, 53, "tight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.market.ExpectedExpiration = &event
			res := p.Price(tt.market, tt.side, now)
			if !res.OK {
				t.Fatalf("Price skipped: %s", res.Reason)
			}
			if res.Decision.LimitPriceCents != tt.price {
				t.Errorf("price = %d, want %d", res.Decision.LimitPriceCents, tt.price)
			}
			if res.Decision.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", res.Decision.Rule, tt.rule)
			}
			wantExp := event.Add(-(2*time.Hour + 58*time.Minute)).Unix()
			if res.Decision.ExpirationTS != wantExp {
				t.Errorf("ExpirationTS = %d, want %d", res.Decision.ExpirationTS, wantExp)
			}
		})
	}

	t.Run("zero spread is skipped", func(t *testing.T) {
		m := yesMarket("KXNBATOTAL-A", 50, 50)
		m.ExpectedExpiration = &event
		if res := p.Price(m, model.SideYes, now); res.OK || res.Reason != "rule zero-spread" {
			t.Errorf("Price = %+v, want zero-spread skip", res)
		}
	})

	t.Run("event too close for before-event expiry", func(t *testing.T) {
		m := yesMarket("KXNBATOTAL-A", 40, 48)
		soon := now.Add(2 * time.Hour)
		m.ExpectedExpiration = &soon
		if res := p.Price(m, model.SideYes, now); res.OK {
			t.Errorf("expected skip, got %+v", res.Decision)
		}
	})
}

func TestContinuousPolicy(t *testing.T) {
	p := mustPolicy(t, ContinuousRules(), ContinuousBounds())

	tests := []struct {
		name   string
		market model.Market
		side   model.Side
		price  int
		rule   string
		expiry time.Duration
	}{
		{"high confidence override ignores spread tier", yesMarket("KXNBASPREAD-A", 90, 95), model.SideYes, 76, "high-confidence", 2 * time.Minute},
		{"confident bid", yesMarket("KXNBASPREAD-A", 57, 99), model.SideYes, 37, "confident", 2 * time.Minute},
		{"low spread yes rounds down", yesMarket("KXNBASPREAD-A", 40, 48), model.SideYes, 26, "low-spread", 2 * time.Minute},
		{"high spread yes prices above bid", yesMarket("KXNBASPREAD-A", 20, 60), model.SideYes, 21, "high-spread", time.Minute},
		{"low spread no", noMarket("KXNBASPREAD-A", 50, 55), model.SideNo, 32, "low-spread", 2 * time.Minute},
		{"high no bid does not use the yes override", noMarket("KXNBASPREAD-A", 90, 95), model.SideNo, 58, "low-spread", 2 * time.Minute},
		{"hockey yes uses fixed offset", yesMarket("KXNHLTOTAL-A", 40, 45), model.SideYes, 37, "nhl-yes", 2 * time.Minute},
		{"hockey confident yes with wide spread", yesMarket("KXNHLTOTAL-A", 60, 95), model.SideYes, 57, "nhl-yes-confident", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Price(tt.market, tt.side, now)
			if !res.OK {
				t.Fatalf("Price skipped: %s", res.Reason)
			}
			d := res.Decision
			if d.LimitPriceCents != tt.price {
				t.Errorf("price = %d, want %d", d.LimitPriceCents, tt.price)
			}
			if d.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", d.Rule, tt.rule)
			}
			if d.ExpirationTS != now.Add(tt.expiry).Unix() {
				t.Errorf("ExpirationTS = %d, want now+%v", d.ExpirationTS, tt.expiry)
			}
			if d.Side != tt.side {
				t.Errorf("Side = %q, want %q", d.Side, tt.side)
			}
		})
	}

	t.Run("hockey no side is skipped", func(t *testing.T) {
		if res := p.Price(noMarket("KXNHLTOTAL-A", 50, 55), model.SideNo, now); res.OK {
			t.Errorf("expected skip, got %+v", res.Decision)
		}
	})

	t.Run("below strict bound is skipped", func(t *testing.T) {
		// floor(10 * 0.65) = 6, under the strict minimum of 8.
		res := p.Price(yesMarket("KXNBASPREAD-A", 10, 15), model.SideYes, now)
		if res.OK {
			t.Errorf("expected skip, got %+v", res.Decision)
		}
	})

	t.Run("lenient spread lets low prices through", func(t *testing.T) {
		// spread 40 > 30: floor(5 * 1.06) = 5 passes.
		res := p.Price(yesMarket("KXNBASPREAD-A", 5, 45), model.SideYes, now)
		if !res.OK || res.Decision.LimitPriceCents != 5 {
			t.Errorf("Price = %+v, want 5", res)
		}
	})

	t.Run("spread equal to lenient threshold stays strict", func(t *testing.T) {
		res := p.Price(yesMarket("KXNBASPREAD-A", 5, 35), model.SideYes, now)
		if res.OK {
			t.Errorf("expected skip, got %+v", res.Decision)
		}
	})

	t.Run("lenient never exceeds 99", func(t *testing.T) {
		// spread 45 takes the high-spread tier: floor(95 * 1.06) = 100.
		res := p.Price(model.Market{Ticker: "X", NoBid: model.Cents(95), NoAsk: model.Cents(140)}, model.SideNo, now)
		if res.OK {
			t.Errorf("expected skip for price above 99, got %+v", res.Decision)
		}
	})

	t.Run("missing quotes", func(t *testing.T) {
		res := p.Price(model.Market{Ticker: "X", YesBid: model.Cents(40)}, model.SideYes, now)
		if res.OK || res.Reason != "missing bid/ask" {
			t.Errorf("Price = %+v, want missing bid/ask", res)
		}
	})
}

func TestPolicy_SpreadTierBoundary(t *testing.T) {
	p := mustPolicy(t, []Rule{
		{Name: "low", Match: Match{MaxSpread: cents(9)}, Method: MethodPercent, Percent: decimal.NewFromInt(13), Rounding: RoundUp},
		{Name: "high", Method: MethodPercent, Percent: decimal.NewFromInt(6), Rounding: RoundUp},
	}, OneShotBounds())

	for spread, want := range map[int]string{7: "low", 8: "low", 9: "high", 10: "high"} {
		res := p.Price(yesMarket("X", 40, 40+spread), model.SideYes, now)
		if res.Decision.Rule != want {
			t.Errorf("spread %d -> %q, want %q", spread, res.Decision.Rule, want)
		}
	}
}

func TestPolicy_DecisionClassifiesBack(t *testing.T) {
	for _, table := range []struct {
		name   string
		rules  []Rule
		bounds Bounds
	}{
		{"continuous", ContinuousRules(), ContinuousBounds()},
		{"one-shot", OneShotRules(), OneShotBounds()},
	} {
		p := mustPolicy(t, table.rules, table.bounds)
		for bid := 1; bid <= 98; bid++ {
			for ask := bid; ask <= 99; ask += 3 {
				for _, side := range model.Sides {
					m := model.Market{Ticker: "KXNBATOTAL-A"}
					if side == model.SideYes {
						m.YesBid, m.YesAsk = model.Cents(bid), model.Cents(ask)
					} else {
						m.NoBid, m.NoAsk = model.Cents(bid), model.Cents(ask)
					}
					res := p.Price(m, side, now)
					if !res.OK {
						continue
					}
					d := res.Decision
					if !model.ValidPrice(d.LimitPriceCents) {
						t.Fatalf("%s: price %d out of range for bid=%d ask=%d", table.name, d.LimitPriceCents, bid, ask)
					}
					rule, _ := p.Classify(m.Ticker, side, d.Bid, d.Spread)
					if rule.Name != d.Rule {
						t.Fatalf("%s: decision rule %q reclassifies as %q", table.name, d.Rule, rule.Name)
					}
				}
			}
		}
	}
}

func TestPolicy_Deterministic(t *testing.T) {
	p := mustPolicy(t, ContinuousRules(), ContinuousBounds())
	m := yesMarket("KXNBATOTAL-A", 40, 48)

	first := p.Price(m, model.SideYes, now)
	for i := 0; i < 5; i++ {
		if got := p.Price(m, model.SideYes, now); got != first {
			t.Fatalf("call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		bid      int
		pct      string
		rounding Rounding
		want     int
	}{
		{40, "13", RoundUp, 35},
		{40, "13", RoundDown, 34},
		{50, "6", RoundUp, 47},
		{100, "15", RoundDown, 85},
		{50, "-6", RoundDown, 53},
		{33, "0", RoundUp, 33},
		{7, "35", RoundDown, 4},
	}
	for _, tt := range tests {
		got := discount(tt.bid, decimal.RequireFromString(tt.pct), tt.rounding)
		if got != tt.want {
			t.Errorf("discount(%d, %s, %s) = %d, want %d", tt.bid, tt.pct, tt.rounding, got, tt.want)
		}
	}
}

func TestNewPolicy_Validation(t *testing.T) {
	tests := []struct {
		name   string
		rules  []Rule
		bounds Bounds
	}{
		{"no rules", nil, OneShotBounds()},
		{"missing name", []Rule{{Method: MethodSkip}}, OneShotBounds()},
		{"percent without rounding", []Rule{{Name: "r", Method: MethodPercent}}, OneShotBounds()},
		{"unknown method", []Rule{{Name: "r", Method: "magic"}}, OneShotBounds()},
		{"negative expiry", []Rule{{Name: "r", Method: MethodSkip, Expiry: Expiry{After: -time.Second}}}, OneShotBounds()},
		{"bounds outside venue range", []Rule{{Name: "r", Method: MethodSkip}}, Bounds{Min: 0, Max: 99}},
		{"inverted bounds", []Rule{{Name: "r", Method: MethodSkip}}, Bounds{Min: 50, Max: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPolicy(tt.rules, tt.bounds); err == nil {
				t.Error("expected error")
			}
		})
	}
}
