// Package api provides the signed Kalshi REST client used by the quoter.
//
// REST endpoints (all under /trade-api/v2):
//   - Production: https://api.elections.kalshi.com
//   - Demo: https://demo-api.kalshi.co
//
// The client never retries. Order submission is not idempotent from the
// caller's point of view, so retry policy belongs to the caller.
package api
