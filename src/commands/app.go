package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"fx-dashboard/src/cache"
	"fx-dashboard/src/config"
	"fx-dashboard/src/controller"
	datasource "fx-dashboard/src/data_source"
	"fx-dashboard/src/gateway"
	"fx-dashboard/src/grpc_control"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/network"
	"fx-dashboard/src/scheduler"
	"fx-dashboard/src/server"
	"fx-dashboard/src/storage"
)

const shutdownTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewLogger(cfg.MConfig, cfg.Name), nil
}

// -----------------------------------------------------------------------------
// Backend: history store, rate provider, quote cache and the /api surface
// -----------------------------------------------------------------------------

type backend struct {
	store interfaces.IRateStore
	cache interfaces.IQuoteCache
	api   *server.APIServer
}

func newBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	netMgr := network.NewAsyncNetworkManager(cfg.Network, log.Named("network"))
	provider, err := datasource.NewRateProvider(cfg.MConfig, netMgr, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	quoteCache := cache.NewQuoteCache(ctx, cfg.Cache, log.Named("cache"))

	return &backend{
		store: store,
		cache: quoteCache,
		api:   server.NewAPIServer(cfg.MConfig, store, provider, quoteCache, log.Named("api")),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (interfaces.IRateStore, error) {
	store, err := storage.NewRateStore(cfg.MConfig, log.Named("storage"))
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func (b *backend) close(log *logger.Logger) {
	if err := b.cache.Close(); err != nil {
		log.Warning("Closing quote cache: %v", err)
	}
	if err := b.store.Close(); err != nil {
		log.Warning("Closing store: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Dashboard: gateway, controller, refresh scheduler and the websocket surface
// -----------------------------------------------------------------------------

type dashboard struct {
	hub        *server.Hub
	controller *controller.SyncController
	scheduler  *scheduler.RefreshScheduler
	server     *server.DashboardServer
}

func newDashboard(cfg *config.Config, log *logger.Logger) (*dashboard, error) {
	loc, err := displayLocation(cfg.Dashboard.DisplayTimezone)
	if err != nil {
		return nil, err
	}

	netMgr := network.NewAsyncNetworkManager(cfg.Network, log.Named("gateway.network"))
	gw := gateway.NewHTTPGateway(cfg.Dashboard.GatewayURL, cfg.Dashboard.HistoryLimit, netMgr, log.Named("gateway"))

	hub := server.NewHub(log.Named("hub"))
	ctrl, err := controller.NewSyncController(gw, hub, controller.Options{
		Instruments:    cfg.Dashboard.Instruments,
		BufferCapacity: cfg.Dashboard.BufferCapacity,
		Location:       loc,
	}, log.Named("controller"))
	if err != nil {
		return nil, err
	}

	period := time.Duration(cfg.Dashboard.RefreshIntervalSeconds) * time.Second

	return &dashboard{
		hub:        hub,
		controller: ctrl,
		scheduler:  scheduler.NewRefreshScheduler(period, ctrl.PeriodicTick, log.Named("scheduler")),
		server:     server.NewDashboardServer(cfg.MConfig, ctrl, hub, loc, log.Named("dashboard")),
	}, nil
}

func displayLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", name, err)
	}
	return loc, nil
}

// -----------------------------------------------------------------------------
// Process lifecycle
// -----------------------------------------------------------------------------

type component struct {
	name  string
	start func() error
	stop  func(ctx context.Context) error
}

// runUntilSignal starts every component and blocks until SIGINT/SIGTERM or
// the first component failure, then stops them in reverse order.
func runUntilSignal(ctx context.Context, log *logger.Logger, components ...component) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(components))
	var wg sync.WaitGroup

	for _, c := range components {
		wg.Add(1)
		go func(c component) {
			defer wg.Done()
			if err := c.start(); err != nil {
				errCh <- fmt.Errorf("%s: %w", c.name, err)
			}
		}(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case runErr = <-errCh:
		log.Error("Component failed: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].stop(shutdownCtx); err != nil {
			log.Warning("Stopping %s: %v", components[i].name, err)
		}
	}
	wg.Wait()

	return runErr
}

// -----------------------------------------------------------------------------

func apiComponent(b *backend) component {
	return component{name: "api", start: b.api.Start, stop: b.api.Stop}
}

// dashboardComponents runs the hub and controller loops under ctx and
// starts the scheduler once the controller accepts commands.
func dashboardComponents(ctx context.Context, d *dashboard) []component {
	loopCtx, cancel := context.WithCancel(ctx)

	loops := component{
		name: "dashboard loops",
		start: func() error {
			go d.hub.Run(loopCtx)
			d.scheduler.Start()
			return d.controller.Run(loopCtx)
		},
		stop: func(context.Context) error {
			d.scheduler.Stop()
			cancel()
			return nil
		},
	}

	return []component{
		loops,
		{name: "dashboard", start: d.server.Start, stop: d.server.Stop},
	}
}

func grpcComponent(ctx context.Context, cfg *config.Config, log *logger.Logger, probes map[string]grpc_control.Probe) (component, bool) {
	if cfg.GrpcPort == 0 {
		return component{}, false
	}

	addr := net.JoinHostPort(cfg.GrpcHost, strconv.Itoa(cfg.GrpcPort))
	svc := grpc_control.NewControlService(addr, log.Named("grpc"))
	for name, probe := range probes {
		svc.AddProbe(name, probe)
	}

	return component{
		name:  "grpc",
		start: func() error { return svc.Start(ctx) },
		stop: func(context.Context) error {
			svc.Stop()
			return nil
		},
	}, true
}

// -----------------------------------------------------------------------------

func storeProbe(store interfaces.IRateStore) grpc_control.Probe {
	return store.Ping
}

func controllerProbe(ctrl *controller.SyncController) grpc_control.Probe {
	return func(ctx context.Context) error {
		if !ctrl.Running() {
			return errors.New("controller loop not running")
		}
		_, err := ctrl.Status(ctx)
		return err
	}
}
