package interfaces

import (
	"context"
	"time"

	"fx-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IRateStore defines the contract for the exchange rate history store.
// -----------------------------------------------------------------------------

type IRateStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema if missing.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// SaveRate appends one sample.
	SaveRate(ctx context.Context, pair string, rate float64, tsUTC time.Time) error

	// -----------------------------------------------------------------------------

	// LoadHistory returns up to limit rows ordered by ts_utc ascending.
	// Nil bounds are open; set bounds are inclusive.
	LoadHistory(ctx context.Context, pair string, limit int, start, end *time.Time) ([]models.MStoredRate, error)

	// -----------------------------------------------------------------------------

	// DeleteHistory removes rows of pair inside the (inclusive) bounds and
	// returns the number of deleted rows.
	DeleteHistory(ctx context.Context, pair string, start, end *time.Time) (int64, error)

	// -----------------------------------------------------------------------------

	// Ping checks the connection.
	Ping(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
