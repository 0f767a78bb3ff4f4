package grpc_control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"fx-dashboard/src/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	// APIService is reported healthy while the history store answers pings.
	APIService = "fxdashboard.api"
	// DashboardService is reported healthy while the controller loop runs.
	DashboardService = "fxdashboard.dashboard"

	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 3 * time.Second
)

// Probe reports nil while the component behind a service name is usable.
type Probe func(ctx context.Context) error

// ControlService exposes the standard gRPC health protocol for the
// processes of this module, driven by periodic probes.
type ControlService struct {
	Logger   *logger.Logger
	Interval time.Duration

	addr   string
	server *grpc.Server
	health *health.Server

	mu     sync.Mutex
	probes map[string]Probe
	cancel context.CancelFunc
	done   chan struct{}
}

// -----------------------------------------------------------------------------

func NewControlService(addr string, log *logger.Logger) *ControlService {
	s := &ControlService{
		Logger:   log,
		Interval: defaultProbeInterval,
		addr:     addr,
		server:   grpc.NewServer(),
		health:   health.NewServer(),
		probes:   make(map[string]Probe),
	}

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

// -----------------------------------------------------------------------------

// AddProbe registers a service name. It starts NOT_SERVING until the first
// probe succeeds.
func (s *ControlService) AddProbe(service string, probe Probe) {
	s.mu.Lock()
	s.probes[service] = probe
	s.mu.Unlock()

	s.health.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
}

// -----------------------------------------------------------------------------

// CheckNow runs every probe once and publishes the result.
func (s *ControlService) CheckNow(ctx context.Context) {
	s.mu.Lock()
	probes := make(map[string]Probe, len(s.probes))
	for name, probe := range s.probes {
		probes[name] = probe
	}
	s.mu.Unlock()

	for name, probe := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := probe(probeCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.Logger.Warning("Health probe %s failed: %v", name, err)
		}
		s.health.SetServingStatus(name, status)
	}
}

// -----------------------------------------------------------------------------

// Start listens on the configured address and serves until Stop.
func (s *ControlService) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, lis)
}

// -----------------------------------------------------------------------------

// Serve runs the probe loop and blocks serving lis.
func (s *ControlService) Serve(ctx context.Context, lis net.Listener) error {
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.CheckNow(probeCtx)
	go s.monitor(probeCtx, done)

	s.Logger.Info("gRPC health service listening on %s", lis.Addr())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) monitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (s *ControlService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	s.health.Shutdown()
	s.server.GracefulStop()
}
