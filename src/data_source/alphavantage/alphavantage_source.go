package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

// -----------------------------------------------------------------------------

type AlphaVantageSource struct {
	APIKey  string
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	now func() time.Time
}

// exchangeRateResponse is the CURRENCY_EXCHANGE_RATE payload. Throttled calls
// come back as 200 with only a Note (or Information) field.
type exchangeRateResponse struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
	Realtime     *struct {
		FromCode      string `json:"1. From_Currency Code"`
		ToCode        string `json:"3. To_Currency Code"`
		ExchangeRate  string `json:"5. Exchange Rate"`
		LastRefreshed string `json:"6. Last Refreshed"`
	} `json:"Realtime Currency Exchange Rate"`
}

// -----------------------------------------------------------------------------

func NewAlphaVantageSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *AlphaVantageSource {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "demo"
	}

	return &AlphaVantageSource{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Network: netMgr,
		Logger:  log,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Name() string {
	return "alphavantage"
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) FetchRate(ctx context.Context, pair string) (models.MRateQuote, error) {
	base, quote, err := utils.SplitPair(pair)
	if err != nil {
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrBadQuote, err.Error())
	}

	body, err := s.Network.Get(ctx, s.BaseURL, map[string]string{
		"function":      "CURRENCY_EXCHANGE_RATE",
		"from_currency": base,
		"to_currency":   quote,
		"apikey":        s.APIKey,
	})
	if err != nil {
		return models.MRateQuote{}, fmt.Errorf("alpha vantage request for %s: %w", pair, err)
	}

	var resp exchangeRateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrBadQuote, "Malformed quote from provider.")
	}

	if resp.Note != "" {
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrRateLimited, resp.Note)
	}
	if resp.Realtime == nil {
		if resp.Information != "" {
			return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrRateLimited, resp.Information)
		}
		if resp.ErrorMessage != "" {
			s.Logger.Warning("Alpha Vantage rejected %s: %s", pair, resp.ErrorMessage)
		}
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrBadQuote, "Provider did not return a quote.")
	}

	rate, err := decimal.NewFromString(resp.Realtime.ExchangeRate)
	if err != nil || !rate.IsPositive() {
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrBadQuote, "Malformed quote from provider.")
	}

	value, _ := rate.Float64()
	return models.MRateQuote{
		Pair:      pair,
		Rate:      value,
		FetchedAt: s.now().UTC(),
	}, nil
}
