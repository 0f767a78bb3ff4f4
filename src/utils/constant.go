package utils

import (
	"fmt"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------

// Dashboard defaults, used when the config leaves a value unset.
const (
	DefaultBufferCapacity  = 600
	DefaultHistoryLimit    = 500
	DefaultRefreshInterval = 60 * time.Second

	// DefaultServerHistoryLimit is what /api/history uses without a limit param.
	DefaultServerHistoryLimit = 1000

	DefaultPair = "EUR/USD"
)

// DefaultInstruments is the fixed instrument set of this deployment.
var DefaultInstruments = []string{"EUR/USD", "USD/JPY", "GBP/USD"}

// -----------------------------------------------------------------------------

// SplitPair splits "BASE/QUOTE" into its currency codes.
func SplitPair(pair string) (base, quote string, err error) {
	base, quote, ok := strings.Cut(pair, "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return "", "", fmt.Errorf("invalid pair %q, expected BASE/QUOTE", pair)
	}
	return strings.ToUpper(base), strings.ToUpper(quote), nil
}
