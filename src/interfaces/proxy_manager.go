package interfaces

import (
	"net/http"
	"net/url"
)

// -----------------------------------------------------------------------------
// IProxyManager chooses the egress path of outbound provider/gateway calls.
// -----------------------------------------------------------------------------

type IProxyManager interface {

	// ProxyURL has the http.Transport.Proxy signature; nil means a direct connection.
	ProxyURL(req *http.Request) (*url.URL, error)

	// Rotate moves to the next proxy after a throttled or failed attempt.
	Rotate()

	// Count reports how many usable proxies are configured.
	Count() int

	// UserAgent is sent on every outbound request.
	UserAgent() string
}
