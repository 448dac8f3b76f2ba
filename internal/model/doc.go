// Package model defines the domain types shared by the quoter components.
//
// Conventions:
//   - Prices: integer cents (1-99 for a valid limit price)
//   - Absent venue quotes are nil pointers, never zero
//   - Order expirations: int64 seconds since Unix epoch
package model
