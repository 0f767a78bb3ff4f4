package datasource

import (
	"testing"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateProvider(t *testing.T) {
	log := logger.NewNopLogger()

	p, err := NewRateProvider(&models.MConfig{}, nil, log)
	require.NoError(t, err)
	assert.Equal(t, "alphavantage", p.Name())

	p, err = NewRateProvider(&models.MConfig{Provider: models.MProviderConfig{Type: "synthetic", Seed: 1}}, nil, log)
	require.NoError(t, err)
	assert.Equal(t, "synthetic", p.Name())

	_, err = NewRateProvider(&models.MConfig{Provider: models.MProviderConfig{Type: "bloomberg"}}, nil, log)
	var cfgErr *helpers.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
