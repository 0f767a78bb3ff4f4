package datasource

import (
	"fx-dashboard/src/data_source/alphavantage"
	"fx-dashboard/src/data_source/synthetic"
	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// NewRateProvider builds the provider named by provider.type.
func NewRateProvider(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) (interfaces.IRateProvider, error) {
	switch cfg.Provider.Type {
	case "alphavantage", "":
		return alphavantage.NewAlphaVantageSource(cfg.Provider, netMgr, log.Named("alphavantage")), nil
	case "synthetic":
		return synthetic.NewSyntheticSource(cfg.Provider.Seed), nil
	default:
		return nil, helpers.NewConfigurationError("unsupported provider type "+cfg.Provider.Type, nil)
	}
}
