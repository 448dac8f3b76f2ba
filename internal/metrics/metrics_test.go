package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/scanner"
)

var _ scanner.Observer = (*Collector)(nil)

// counterValue sums a counter family across label sets matching labels.
func counterValue(t *testing.T, c *Collector, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestCollector_ObserveSweep(t *testing.T) {
	c := New()
	c.ObserveSweep(scanner.SweepStats{Markets: 12, Eligible: 4, SeriesErrors: 1, Duration: 3 * time.Second})
	c.ObserveSweep(scanner.SweepStats{Markets: 8, Eligible: 2})

	tests := []struct {
		name string
		want float64
	}{
		{"quoter_sweeps_total", 2},
		{"quoter_markets_scanned_total", 20},
		{"quoter_markets_eligible_total", 6},
		{"quoter_series_errors_total", 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, c, tt.name, nil); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCollector_ObserveOrderAndSkip(t *testing.T) {
	c := New()
	c.ObserveOrder(model.SideYes, nil)
	c.ObserveOrder(model.SideYes, nil)
	c.ObserveOrder(model.SideNo, errors.New("rejected"))
	c.ObserveSkip(scanner.SkipIneligible)
	c.ObserveSkip(scanner.SkipIneligible)
	c.ObserveSkip(scanner.SkipTraded)

	if got := counterValue(t, c, "quoter_orders_total", map[string]string{"side": "yes", "outcome": "submitted"}); got != 2 {
		t.Errorf("yes submitted = %v, want 2", got)
	}
	if got := counterValue(t, c, "quoter_orders_total", map[string]string{"side": "no", "outcome": "failed"}); got != 1 {
		t.Errorf("no failed = %v, want 1", got)
	}
	if got := counterValue(t, c, "quoter_skips_total", map[string]string{"stage": "ineligible"}); got != 2 {
		t.Errorf("ineligible skips = %v, want 2", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	var observe api.ObserveFunc = c.ObserveRequest
	observe("GET", 200, 150*time.Millisecond)
	observe("POST", 0, time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`quoter_venue_request_duration_seconds_count{method="GET",status="200"} 1`,
		`quoter_venue_request_duration_seconds_count{method="POST",status="0"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
