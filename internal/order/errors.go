package order

import (
	"fmt"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

// ValidationError is a local precondition failure. The order never reached the venue.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order %s=%v: %s", e.Field, e.Value, e.Reason)
}

// OrderError wraps a submission the venue rejected or never acknowledged.
type OrderError struct {
	Ticker string
	Side   model.Side
	Err    error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %s %s: %v", e.Ticker, e.Side, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }
