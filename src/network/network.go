package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
)

// maxBodyBytes caps response bodies read into memory
const maxBodyBytes = 8 << 20

type AsyncNetworkManager struct {
	Config       models.MNetworkConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	RetryDelay   time.Duration

	client *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg models.MNetworkConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Enabled {
		proxies = cfg.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.UserAgent, log),
		Logger:       log,
		RetryDelay:   time.Second,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if nm.ProxyManager.Count() > 0 {
		transport.Proxy = nm.ProxyManager.ProxyURL
	}

	timeout := time.Duration(nm.Config.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// -----------------------------------------------------------------------------

func buildURL(urlStr string, params map[string]string) (string, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	return reqUrl.String(), nil
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	finalUrl, err := buildURL(urlStr, params)
	if err != nil {
		return nil, err
	}

	maxRetries := nm.Config.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * nm.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			nm.ProxyManager.Rotate()
		}

		body, err := nm.do(ctx, http.MethodGet, finalUrl, nil)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var statusErr *helpers.HTTPStatusError
		if errors.As(err, &statusErr) {
			// Only throttling and server-side failures are worth another attempt
			if statusErr.StatusCode != http.StatusTooManyRequests && statusErr.StatusCode != http.StatusForbidden && statusErr.StatusCode < 500 {
				return nil, err
			}
			nm.Logger.Info("Request rejected (%d), attempt %d/%d", statusErr.StatusCode, i+1, maxRetries+1)
			continue
		}
		nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
	}

	if maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// -----------------------------------------------------------------------------

// Send performs exactly one request; body, when non-nil, is sent as JSON.
func (nm *AsyncNetworkManager) Send(ctx context.Context, method, urlStr string, params map[string]string, body interface{}) ([]byte, error) {
	finalUrl, err := buildURL(urlStr, params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	return nm.do(ctx, method, finalUrl, payload)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, method, finalUrl string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, finalUrl, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.UserAgent())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := nm.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &helpers.HTTPStatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
