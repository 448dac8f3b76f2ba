// Package scanner drives the quoting sweep.
//
// A sweep walks every configured series page by page, filters markets by
// expiration, prices each side and submits a buy order for every side that
// prices. Calls are issued one at a time with a fixed pause after each page.
// In continuous mode sweeps repeat after a fixed interval until the context
// is cancelled.
package scanner
