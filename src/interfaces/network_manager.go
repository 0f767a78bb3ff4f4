package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with potential proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request with retries. Only use it for idempotent reads.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Send performs a single attempt with an optional JSON body. Use it for calls
	// with side effects, which must never be repeated implicitly.
	Send(ctx context.Context, method, url string, params map[string]string, body interface{}) ([]byte, error)
}
