package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fx-dashboard/src/controller"
	"fx-dashboard/src/helpers"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// Dashboard commands, over the socket or the REST routes
const (
	CommandNext        = "next"
	CommandPrevious    = "previous"
	CommandSelect      = "select"
	CommandApplyFilter = "apply_filter"
	CommandClearFilter = "clear_filter"
	CommandDeleteRange = "delete_range"
)

var (
	ErrConfirmationRequired = errors.New("delete_range needs confirm=true")
	ErrUnknownCommand       = errors.New("unknown command")
)

// dashboardController is what the dashboard surface needs from the sync controller.
type dashboardController interface {
	Status(ctx context.Context) (models.MDashboardStatus, error)
	Running() bool
	Activate(instrument string) error
	SwitchInstrument(direction controller.Direction) error
	ApplyFilter(dateRange models.MDateRange) error
	ClearFilter() error
	DeleteRange(instrument string, dateRange models.MDateRange) error
}

// -----------------------------------------------------------------------------
// DashboardServer exposes the sync controller to browsers: a websocket feed
// of frames, control routes and a PNG export of the current series.
// -----------------------------------------------------------------------------

type DashboardServer struct {
	*httpServer

	Config     *models.MConfig
	Logger     *logger.Logger
	Controller dashboardController
	Hub        *Hub

	location *time.Location
}

// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, ctrl dashboardController, hub *Hub, loc *time.Location, log *logger.Logger) *DashboardServer {
	if loc == nil {
		loc = time.Local
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		Controller: ctrl,
		Hub:        hub,
		location:   loc,
	}
	hub.OnCommand = s.execute

	engine := newEngine(cfg.LogLevel, log)
	s.httpServer = newHTTPServer("dashboard", cfg.Dashboard.Host, cfg.Dashboard.Port, engine, log)
	s.setupRoutes(engine)
	return s
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes(engine *gin.Engine) {
	engine.GET("/ws", s.Hub.handleWebSocket)

	d := engine.Group("/dashboard")
	d.GET("/state", s.getState)
	d.GET("/health", s.getHealth)
	d.GET("/chart.png", s.getChart)

	d.POST("/next", s.command(CommandNext))
	d.POST("/previous", s.command(CommandPrevious))
	d.POST("/select", s.command(CommandSelect))
	d.POST("/filter", s.command(CommandApplyFilter))
	d.POST("/filter/clear", s.command(CommandClearFilter))
	d.POST("/delete", s.command(CommandDeleteRange))
}

// -----------------------------------------------------------------------------

// execute validates and forwards one command to the controller.
func (s *DashboardServer) execute(ctx context.Context, cmd models.MDashboardCommand) error {
	switch cmd.Command {
	case CommandNext:
		return s.Controller.SwitchInstrument(controller.DirectionNext)

	case CommandPrevious:
		return s.Controller.SwitchInstrument(controller.DirectionPrevious)

	case CommandSelect:
		return s.Controller.Activate(cmd.Instrument)

	case CommandApplyFilter:
		rng, err := parseOrderedRange(cmd)
		if err != nil {
			return err
		}
		return s.Controller.ApplyFilter(rng)

	case CommandClearFilter:
		return s.Controller.ClearFilter()

	case CommandDeleteRange:
		rng, err := parseOrderedRange(cmd)
		if err != nil {
			return err
		}
		if rng.IsEmpty() {
			return helpers.NewInvalidRange("select at least one date to delete")
		}
		if !cmd.Confirm {
			return ErrConfirmationRequired
		}

		instrument := cmd.Instrument
		if instrument == "" {
			status, err := s.Controller.Status(ctx)
			if err != nil {
				return err
			}
			instrument = status.Instrument
		}
		s.Logger.Info("Deleting %s history in range", instrument)
		return s.Controller.DeleteRange(instrument, rng)
	}

	return ErrUnknownCommand
}

func parseOrderedRange(cmd models.MDashboardCommand) (models.MDateRange, error) {
	rng, err := parseRange(cmd.Start, cmd.End)
	if err != nil {
		return rng, err
	}
	if rng.Start != nil && rng.End != nil && rng.Start.After(*rng.End) {
		return rng, helpers.NewInvalidRange("start must not be after end")
	}
	return rng, nil
}

// -----------------------------------------------------------------------------

func statusForCommandError(err error) (int, string) {
	switch {
	case errors.Is(err, helpers.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusConflict, "confirmation_required"
	case errors.Is(err, helpers.ErrUnknownInstrument):
		return http.StatusBadRequest, "unknown_instrument"
	case errors.Is(err, ErrUnknownCommand):
		return http.StatusBadRequest, "unknown_command"
	case errors.Is(err, controller.ErrControllerStopped):
		return http.StatusServiceUnavailable, "controller_stopped"
	}
	return http.StatusInternalServerError, "internal_error"
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) command(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd models.MDashboardCommand
		// bodies are optional for next/previous/clear
		_ = c.ShouldBindJSON(&cmd)
		cmd.Command = name

		if err := s.execute(c.Request.Context(), cmd); err != nil {
			status, code := statusForCommandError(err)
			abortWithError(c, status, code, err)
			return
		}

		c.JSON(http.StatusAccepted, models.MCommandReply{Type: "ACK", Command: name})
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getState(c *gin.Context) {
	status, err := s.Controller.Status(c.Request.Context())
	if err != nil {
		code, name := statusForCommandError(err)
		abortWithError(c, code, name, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	latest := int64(0)
	if frame, ok := s.Hub.Latest(); ok {
		latest = frame.Timestamp
	}

	status := http.StatusOK
	state := "ok"
	if !s.Controller.Running() {
		status, state = http.StatusServiceUnavailable, "stopped"
	}

	c.JSON(status, gin.H{
		"status":        state,
		"connections":   s.Hub.ClientCount(),
		"latest_update": latest,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getChart(c *gin.Context) {
	status, err := s.Controller.Status(c.Request.Context())
	if err != nil {
		code, name := statusForCommandError(err)
		abortWithError(c, code, name, err)
		return
	}
	if len(status.Points) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, models.MErrorResponse{Error: "no_data", Message: "No data for " + status.Instrument})
		return
	}

	png, err := renderChartPNG(status.Instrument, status.Points, s.location)
	if err != nil {
		s.Logger.Error("Chart render failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
