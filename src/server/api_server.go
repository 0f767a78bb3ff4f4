package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// healthTimeout bounds the store ping of /api/health
const healthTimeout = 2 * time.Second

// -----------------------------------------------------------------------------
// APIServer serves the rate history backend: live rates, history queries and
// history deletion over the exchange_rates store.
// -----------------------------------------------------------------------------

type APIServer struct {
	*httpServer

	Config   *models.MConfig
	Logger   *logger.Logger
	Store    interfaces.IRateStore
	Provider interfaces.IRateProvider
	Cache    interfaces.IQuoteCache

	quoteTTL  time.Duration
	startedAt time.Time
	now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, store interfaces.IRateStore, provider interfaces.IRateProvider, cache interfaces.IQuoteCache, log *logger.Logger) *APIServer {
	s := &APIServer{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Provider:  provider,
		Cache:     cache,
		quoteTTL:  time.Duration(cfg.Cache.QuoteTTLSeconds) * time.Second,
		startedAt: time.Now(),
		now:       time.Now,
	}

	engine := newEngine(cfg.LogLevel, log)
	s.httpServer = newHTTPServer("api", cfg.Host, cfg.Port, engine, log)
	s.setupRoutes(engine)
	return s
}

// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	api.GET("/history", s.getHistory)
	api.GET("/rate", s.getRate)
	api.POST("/delete_history", s.deleteHistory)
	api.GET("/health", s.getHealth)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHistory(c *gin.Context) {
	pair := c.DefaultQuery("pair", utils.DefaultPair)
	limit := parseLimit(c.Query("limit"), utils.DefaultServerHistoryLimit)
	start, end := queryPtr(c, "start"), queryPtr(c, "end")

	rng, err := parseRange(start, end)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_range", err)
		return
	}

	rows, err := s.Store.LoadHistory(c.Request.Context(), pair, limit, rng.Start, rng.End)
	if err != nil {
		s.Logger.Error("History query for %s failed: %v", pair, err)
		abortWithError(c, http.StatusInternalServerError, "database_error", err)
		return
	}

	items := make([]models.MHistoryItem, len(rows))
	for i, r := range rows {
		items[i] = models.MHistoryItem{TsUTC: utils.FormatTimestamp(r.TsUTC), Rate: r.Rate}
	}

	c.JSON(http.StatusOK, models.MHistoryResponse{Pair: pair, Items: items, Start: start, End: end})
}

// -----------------------------------------------------------------------------

// getRate samples the provider and persists the sample. The quote cache only
// shields the provider: a cached rate is still stamped and stored as a new row.
func (s *APIServer) getRate(c *gin.Context) {
	ctx := c.Request.Context()
	pair := c.DefaultQuery("pair", utils.DefaultPair)

	quote, cached := s.cachedQuote(ctx, pair)
	if !cached {
		var err error
		quote, err = s.Provider.FetchRate(ctx, pair)
		switch {
		case errors.Is(err, helpers.ErrRateLimited):
			s.Logger.Warning("Provider rate limit for %s: %v", pair, err)
			abortWithError(c, http.StatusTooManyRequests, "rate_limit", err)
			return
		case errors.Is(err, helpers.ErrBadQuote):
			s.Logger.Warning("Provider returned no quote for %s: %v", pair, err)
			abortWithError(c, http.StatusBadGateway, "bad_response", err)
			return
		case err != nil:
			s.Logger.Error("Provider call for %s failed: %v", pair, err)
			abortWithError(c, http.StatusBadGateway, "provider_unavailable", err)
			return
		}
	}

	// stores keep microseconds; the response must match what history returns
	quote.Pair = pair
	quote.FetchedAt = s.now().UTC().Truncate(time.Microsecond)

	if err := s.Store.SaveRate(ctx, pair, quote.Rate, quote.FetchedAt); err != nil {
		s.Logger.Error("Failed to persist %s rate: %v", pair, err)
	}

	if !cached && s.Cache != nil && s.quoteTTL > 0 {
		if err := s.Cache.Set(ctx, quote, s.quoteTTL); err != nil {
			s.Logger.Warning("Quote cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, models.MRateResponse{Pair: pair, Rate: quote.Rate, TsUTC: utils.FormatTimestamp(quote.FetchedAt)})
}

func (s *APIServer) cachedQuote(ctx context.Context, pair string) (models.MRateQuote, bool) {
	if s.Cache == nil || s.quoteTTL <= 0 {
		return models.MRateQuote{}, false
	}
	return s.Cache.Get(ctx, pair)
}

// -----------------------------------------------------------------------------

// deleteHistory removes the pair's rows inside the bounds. Without bounds the
// whole history of the pair is removed.
func (s *APIServer) deleteHistory(c *gin.Context) {
	var req models.MDeleteHistoryRequest
	// a missing or broken body means defaults
	_ = c.ShouldBindJSON(&req)
	if req.Pair == "" {
		req.Pair = utils.DefaultPair
	}

	rng, err := parseRange(req.Start, req.End)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_range", err)
		return
	}

	deleted, err := s.Store.DeleteHistory(c.Request.Context(), req.Pair, rng.Start, rng.End)
	if err != nil {
		s.Logger.Error("Delete for %s failed: %v", req.Pair, err)
		abortWithError(c, http.StatusInternalServerError, "database_error", err)
		return
	}

	s.Logger.Info("Deleted %d %s rows", deleted, req.Pair)
	c.JSON(http.StatusOK, models.MDeleteHistoryResponse{Pair: req.Pair, Deleted: deleted})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	uptime := int64(time.Since(s.startedAt).Seconds())
	if err := s.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":         "degraded",
			"error":          err.Error(),
			"uptime_seconds": uptime,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"provider":       s.Provider.Name(),
		"uptime_seconds": uptime,
	})
}
