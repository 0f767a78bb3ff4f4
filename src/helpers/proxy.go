package helpers

import (
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"fx-dashboard/src/logger"
)

// DefaultUserAgent identifies this service to rate providers
const DefaultUserAgent = "fx-dashboard/1.0 (+https://github.com/fx-dashboard)"

// -----------------------------------------------------------------------------

// ProxyManager round-robins a fixed proxy list. Rotation is read per request
// by the transport, so rotating never rebuilds the HTTP client.
type ProxyManager struct {
	proxies   []*url.URL
	userAgent string
	index     atomic.Uint32
	logger    *logger.Logger
}

// -----------------------------------------------------------------------------

// NewProxyManager keeps the proxies that parse as http, https or socks5 URLs.
// Entries without a scheme are treated as http.
func NewProxyManager(proxies []string, userAgent string, log *logger.Logger) *ProxyManager {
	pm := &ProxyManager{userAgent: userAgent, logger: log}
	if pm.userAgent == "" {
		pm.userAgent = DefaultUserAgent
	}

	for _, raw := range proxies {
		u, ok := ParseProxy(raw)
		if !ok {
			log.Warning("Ignoring invalid proxy %q", raw)
			continue
		}
		pm.proxies = append(pm.proxies, u)
	}
	return pm
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) ProxyURL(*http.Request) (*url.URL, error) {
	if len(pm.proxies) == 0 {
		return nil, nil
	}
	return pm.proxies[int(pm.index.Load())%len(pm.proxies)], nil
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) Rotate() {
	if len(pm.proxies) <= 1 {
		return
	}
	next := int(pm.index.Add(1)) % len(pm.proxies)
	pm.logger.Info("Rotating egress proxy to %s", pm.proxies[next].Host)
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) Count() int { return len(pm.proxies) }

func (pm *ProxyManager) UserAgent() string { return pm.userAgent }

// -----------------------------------------------------------------------------

// ParseProxy normalises host:port entries to http:// and validates the scheme.
func ParseProxy(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, true
	default:
		return nil, false
	}
}
