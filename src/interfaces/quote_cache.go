package interfaces

import (
	"context"
	"time"

	"fx-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteCache keeps the last persisted quote per pair for a short TTL.
// -----------------------------------------------------------------------------

type IQuoteCache interface {
	Get(ctx context.Context, pair string) (models.MRateQuote, bool)
	Set(ctx context.Context, quote models.MRateQuote, ttl time.Duration) error
	Close() error
}
