package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// HTTPGateway talks to the rate history backend over its JSON API.
// -----------------------------------------------------------------------------

type HTTPGateway struct {
	baseURL      string
	historyLimit int
	network      interfaces.INetworkManager
	logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHTTPGateway(baseURL string, historyLimit int, network interfaces.INetworkManager, log *logger.Logger) *HTTPGateway {
	if historyLimit <= 0 {
		historyLimit = utils.DefaultHistoryLimit
	}
	return &HTTPGateway{
		baseURL:      strings.TrimRight(baseURL, "/"),
		historyLimit: historyLimit,
		network:      network,
		logger:       log,
	}
}

// -----------------------------------------------------------------------------

func (g *HTTPGateway) FetchHistory(ctx context.Context, instrument string, dateRange *models.MDateRange) ([]models.MSamplePoint, error) {
	params := map[string]string{
		"pair":  instrument,
		"limit": strconv.Itoa(g.historyLimit),
	}
	if dateRange != nil {
		if dateRange.Start != nil {
			params["start"] = utils.FormatTimestamp(*dateRange.Start)
		}
		if dateRange.End != nil {
			params["end"] = utils.FormatTimestamp(*dateRange.End)
		}
	}

	body, err := g.network.Get(ctx, g.baseURL+"/api/history", params)
	if err != nil {
		return nil, helpers.NewGatewayUnavailable("fetch history "+instrument, err)
	}

	var resp models.MHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewGatewayUnavailable("decode history "+instrument, err)
	}

	points := make([]models.MSamplePoint, 0, len(resp.Items))
	for _, item := range resp.Items {
		ts, err := utils.ParseTimestamp(item.TsUTC)
		if err != nil {
			g.logger.Warning("Skipping %s history item: %v", instrument, err)
			continue
		}
		points = append(points, models.MSamplePoint{TimestampUTC: ts, Value: item.Rate})
	}

	return points, nil
}

// -----------------------------------------------------------------------------

// FetchAndPersistFreshSample is a single attempt: the backend persists what it
// samples, so a retry could store the point twice.
func (g *HTTPGateway) FetchAndPersistFreshSample(ctx context.Context, instrument string) (*models.MSamplePoint, error) {
	body, err := g.network.Send(ctx, http.MethodGet, g.baseURL+"/api/rate", map[string]string{"pair": instrument}, nil)
	if err != nil {
		var statusErr *helpers.HTTPStatusError
		if errors.As(err, &statusErr) {
			g.logger.Warning("Fresh sample for %s rejected (%d): %s", instrument, statusErr.StatusCode, strings.TrimSpace(string(statusErr.Body)))
			return nil, nil
		}
		return nil, helpers.NewGatewayUnavailable("fetch rate "+instrument, err)
	}

	var resp models.MRateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		g.logger.Warning("Malformed rate payload for %s: %v", instrument, err)
		return nil, nil
	}

	ts, err := utils.ParseTimestamp(resp.TsUTC)
	if err != nil {
		g.logger.Warning("Malformed rate timestamp for %s: %v", instrument, err)
		return nil, nil
	}

	return &models.MSamplePoint{TimestampUTC: ts, Value: resp.Rate}, nil
}

// -----------------------------------------------------------------------------

// DeleteRange posts the delete request. The acknowledgement body is ignored;
// callers re-query history to learn what the store actually holds.
func (g *HTTPGateway) DeleteRange(ctx context.Context, instrument string, dateRange models.MDateRange) error {
	req := models.MDeleteHistoryRequest{Pair: instrument}
	if dateRange.Start != nil {
		s := utils.FormatTimestamp(*dateRange.Start)
		req.Start = &s
	}
	if dateRange.End != nil {
		e := utils.FormatTimestamp(*dateRange.End)
		req.End = &e
	}

	if _, err := g.network.Send(ctx, http.MethodPost, g.baseURL+"/api/delete_history", nil, req); err != nil {
		return helpers.NewGatewayUnavailable("delete history "+instrument, err)
	}
	return nil
}
