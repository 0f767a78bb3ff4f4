package models

import "time"

// -----------------------------------------------------------------------------
// Backend wire payloads (/api/history, /api/rate, /api/delete_history)
// -----------------------------------------------------------------------------

type MHistoryItem struct {
	TsUTC string  `json:"ts_utc"`
	Rate  float64 `json:"rate"`
}

type MHistoryResponse struct {
	Pair  string         `json:"pair"`
	Items []MHistoryItem `json:"items"`
	Start *string        `json:"start"`
	End   *string        `json:"end"`
}

type MRateResponse struct {
	Pair  string  `json:"pair"`
	Rate  float64 `json:"rate"`
	TsUTC string  `json:"ts_utc"`
}

type MDeleteHistoryRequest struct {
	Pair  string  `json:"pair"`
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type MDeleteHistoryResponse struct {
	Pair    string `json:"pair"`
	Deleted int64  `json:"deleted"`
}

type MErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// -----------------------------------------------------------------------------

// MRateQuote is a provider quote. FetchedAt is set when the backend persisted it.
type MRateQuote struct {
	Pair      string    `json:"pair"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// MStoredRate is one row of the exchange_rates table.
type MStoredRate struct {
	Pair  string
	Rate  float64
	TsUTC time.Time
}
