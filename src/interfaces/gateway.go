package interfaces

import (
	"context"

	"fx-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IGateway is the typed client of the rate history backend.
//
//go:generate mockgen -source gateway.go -destination=mock/gateway_mock.go -package=mock
// -----------------------------------------------------------------------------

type IGateway interface {

	// FetchHistory returns the persisted points of an instrument, oldest first.
	// A nil range asks for the default window. An empty backend answer is an
	// empty slice, not an error.
	FetchHistory(ctx context.Context, instrument string, dateRange *models.MDateRange) ([]models.MSamplePoint, error)

	// -----------------------------------------------------------------------------

	// FetchAndPersistFreshSample samples the live rate; the backend persists it.
	// Returns nil without error on a non-2xx status or malformed payload.
	FetchAndPersistFreshSample(ctx context.Context, instrument string) (*models.MSamplePoint, error)

	// -----------------------------------------------------------------------------

	// DeleteRange asks the backend to delete persisted points inside the range.
	DeleteRange(ctx context.Context, instrument string, dateRange models.MDateRange) error
}
