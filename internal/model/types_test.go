package model

import "testing"

func TestMarketQuote(t *testing.T) {
	m := Market{
		Ticker: "KXNBATOTAL-TEST",
		YesBid: Cents(40),
		YesAsk: Cents(48),
		NoBid:  Cents(52),
	}

	t.Run("yes pair present", func(t *testing.T) {
		bid, ask, ok := m.Quote(SideYes)
		if !ok {
			t.Fatal("expected yes quote")
		}
		if bid != 40 || ask != 48 {
			t.Errorf("Quote(yes) = %d/%d, want 40/48", bid, ask)
		}
	})

	t.Run("no pair missing ask", func(t *testing.T) {
		if _, _, ok := m.Quote(SideNo); ok {
			t.Error("expected no quote when ask is absent")
		}
	})

	t.Run("zero bid is still present", func(t *testing.T) {
		m := Market{YesBid: Cents(0), YesAsk: Cents(3)}
		bid, ask, ok := m.Quote(SideYes)
		if !ok || bid != 0 || ask != 3 {
			t.Errorf("Quote(yes) = %d/%d/%v, want 0/3/true", bid, ask, ok)
		}
	})

	t.Run("HasQuotes", func(t *testing.T) {
		if !m.HasQuotes() {
			t.Error("HasQuotes() = false, want true")
		}
		if (Market{Ticker: "EMPTY"}).HasQuotes() {
			t.Error("HasQuotes() on empty market = true, want false")
		}
	})
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
		ok   bool
	}{
		{"yes", SideYes, true},
		{"NO", SideNo, true},
		{" Yes ", SideYes, true},
		{"maybe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSide(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSide(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidPrice(t *testing.T) {
	for _, tt := range []struct {
		cents int
		want  bool
	}{
		{0, false}, {1, true}, {50, true}, {99, true}, {100, false}, {-3, false},
	} {
		if got := ValidPrice(tt.cents); got != tt.want {
			t.Errorf("ValidPrice(%d) = %v, want %v", tt.cents, got, tt.want)
		}
	}
}
