package scanner

import "sync"

// ResetPolicy controls the lifetime of a TradedSet.
type ResetPolicy string

const (
	ResetSweep ResetPolicy = "sweep" // Cleared at the start of every sweep
	ResetRun   ResetPolicy = "run"   // Kept for the life of the process
)

// TradedSet holds tickers already quoted. Safe for concurrent use.
type TradedSet struct {
	mu      sync.Mutex
	tickers map[string]struct{}
}

// NewTradedSet creates an empty set.
func NewTradedSet() *TradedSet {
	return &TradedSet{tickers: make(map[string]struct{})}
}

// Has reports whether ticker was already quoted.
func (s *TradedSet) Has(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tickers[ticker]
	return ok
}

// Add marks ticker as quoted.
func (s *TradedSet) Add(ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[ticker] = struct{}{}
}

// Len returns the number of tickers held.
func (s *TradedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// Reset empties the set.
func (s *TradedSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tickers)
}
