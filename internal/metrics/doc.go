// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Sweep count, duration and per-sweep market totals
//   - Markets skipped by stage (traded, ineligible, excluded side, unpriced)
//   - Orders submitted and failed per side
//   - Venue request latency by method and status
package metrics
