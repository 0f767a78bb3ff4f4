package interfaces

import (
	"context"

	"fx-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IRateProvider fetches the current exchange rate of a "BASE/QUOTE" pair.
// -----------------------------------------------------------------------------

type IRateProvider interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// FetchRate returns the latest quote. Failures wrap helpers.ErrRateLimited
	// or helpers.ErrBadQuote when the provider answered but gave no usable rate.
	FetchRate(ctx context.Context, pair string) (models.MRateQuote, error)
}
