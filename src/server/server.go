package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fx-dashboard/src/logger"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// httpServer is the lifecycle shared by the API and dashboard servers.
// -----------------------------------------------------------------------------

type httpServer struct {
	name   string
	addr   string
	engine *gin.Engine
	logger *logger.Logger
	srv    *http.Server
}

// -----------------------------------------------------------------------------

func newEngine(logLevel string, log *logger.Logger) *gin.Engine {
	// Set Gin mode
	if !strings.EqualFold(logLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware(log), corsMiddleware())
	return engine
}

func newHTTPServer(name, host string, port int, engine *gin.Engine, log *logger.Logger) *httpServer {
	addr := fmt.Sprintf("%s:%d", host, port)
	return &httpServer{
		name:   name,
		addr:   addr,
		engine: engine,
		logger: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Start blocks serving until Stop is called.
func (s *httpServer) Start() error {
	s.logger.Info("Starting %s server on %s", s.name, s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *httpServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping %s server", s.name)
	return s.srv.Shutdown(ctx)
}

// Handler exposes the routes, mainly for tests.
func (s *httpServer) Handler() http.Handler {
	return s.engine
}
