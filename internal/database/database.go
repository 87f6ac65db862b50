// Package database provides the remote-store abstraction layer for jimpitan.
//
// This package defines the Database interface that abstracts SurrealDB
// operations, allowing for clean separation between the synchronization
// engine and data access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPSERT/DELETE mutations)
//
// plus Subscribe, which opens the change-notification feed used by the
// realtime invalidator. Change events carry no payload: the engine responds
// to any event with a full reload, never an incremental patch.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//   - ErrSubscription: Change-feed setup failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrSubscription indicates a failure to open the change-notification feed.
	ErrSubscription = errors.New("subscription error")
)

// ChangeEvent signals that a watched table changed. The payload is
// intentionally absent: receipt of any event triggers a full reload.
type ChangeEvent struct {
	Table string
}

// Database defines the interface for remote-store operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error

	// Subscribe opens a change feed covering the given tables. The channel is
	// closed when ctx is cancelled.
	Subscribe(ctx context.Context, tables []string) (<-chan ChangeEvent, error)
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
