package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/scanner"
)

const namespace = "quoter"

// Collector holds the quoter's metrics. It satisfies scanner.Observer and
// its ObserveRequest method fits api.ObserveFunc.
type Collector struct {
	registry *prometheus.Registry

	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	markets       prometheus.Counter
	eligible      prometheus.Counter
	seriesErrors  prometheus.Counter
	skipped       *prometheus.CounterVec
	orders        *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

// New creates a Collector on its own registry, including Go runtime and
// process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed sweeps.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a sweep.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		markets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markets_scanned_total",
			Help:      "Markets read from listing pages.",
		}),
		eligible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markets_eligible_total",
			Help:      "Markets inside the quoting window.",
		}),
		seriesErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_errors_total",
			Help:      "Series listings that failed mid-walk.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skips_total",
			Help:      "Markets or sides not quoted, by stage.",
		}, []string{"stage"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Order submissions by side and outcome.",
		}, []string{"side", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "venue_request_duration_seconds",
			Help:      "Venue API round trips by method and HTTP status (0 = no response).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	c.registry.MustRegister(
		c.sweeps,
		c.sweepDuration,
		c.markets,
		c.eligible,
		c.seriesErrors,
		c.skipped,
		c.orders,
		c.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveSweep records a finished sweep.
func (c *Collector) ObserveSweep(s scanner.SweepStats) {
	c.sweeps.Inc()
	c.sweepDuration.Observe(s.Duration.Seconds())
	c.markets.Add(float64(s.Markets))
	c.eligible.Add(float64(s.Eligible))
	c.seriesErrors.Add(float64(s.SeriesErrors))
}

// ObserveSkip counts one skip at the given stage.
func (c *Collector) ObserveSkip(stage string) {
	c.skipped.WithLabelValues(stage).Inc()
}

// ObserveOrder counts one submission.
func (c *Collector) ObserveOrder(side model.Side, err error) {
	outcome := "submitted"
	if err != nil {
		outcome = "failed"
	}
	c.orders.WithLabelValues(string(side), outcome).Inc()
}

// ObserveRequest records one venue round trip.
func (c *Collector) ObserveRequest(method string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
