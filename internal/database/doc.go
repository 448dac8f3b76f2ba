// Package database provides the PostgreSQL connection pool used by the order journal.
package database
