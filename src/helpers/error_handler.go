package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Sentinel errors
// -----------------------------------------------------------------------------

var (
	// ErrGatewayUnavailable: network or decode failure talking to the backend.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// ErrInvalidRange: a range operation needs at least one bound.
	ErrInvalidRange = errors.New("invalid range: at least one of start/end is required")
	// ErrUnknownInstrument: instrument not part of the configured set.
	ErrUnknownInstrument = errors.New("unknown instrument")
	// ErrRateLimited: the rate provider refused the call for quota reasons.
	ErrRateLimited = errors.New("rate provider rate limit")
	// ErrBadQuote: the rate provider answered without a usable quote.
	ErrBadQuote = errors.New("rate provider returned no quote")
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ DashboardError }
type DatabaseError struct{ DashboardError }

// GatewayUnavailableError matches ErrGatewayUnavailable with errors.Is.
type GatewayUnavailableError struct{ DashboardError }

func (e *GatewayUnavailableError) Is(target error) bool { return target == ErrGatewayUnavailable }

// ValidationError matches ErrInvalidRange with errors.Is.
type ValidationError struct{ DashboardError }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRange }

// ProviderError carries the provider failure kind (ErrRateLimited or ErrBadQuote).
type ProviderError struct {
	DashboardError
	Kind error
}

func (e *ProviderError) Is(target error) bool { return target == e.Kind }

// -----------------------------------------------------------------------------

func NewGatewayUnavailable(op string, cause error) error {
	return &GatewayUnavailableError{DashboardError{Message: op + " failed", Cause: cause}}
}

func NewInvalidRange(msg string) error {
	return &ValidationError{DashboardError{Message: msg}}
}

func NewProviderError(kind error, msg string) error {
	return &ProviderError{DashboardError: DashboardError{Message: msg}, Kind: kind}
}

func NewDatabaseError(op string, cause error) error {
	return &DatabaseError{DashboardError{Message: op + " failed", Cause: cause}}
}

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{DashboardError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// HTTPStatusError is returned by the network layer for non-2xx answers.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.StatusCode)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries times with exponential backoff,
// giving up early when ctx is cancelled.
func RetryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		}
	}

	return lastErr
}
