package grpc_control

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"fx-dashboard/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startService(t *testing.T, svc *ControlService) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = svc.Serve(context.Background(), lis) }()
	t.Cleanup(svc.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func check(client healthpb.HealthClient, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// -----------------------------------------------------------------------------

func TestControlServiceReportsProbeResults(t *testing.T) {
	var storeDown atomic.Bool

	svc := NewControlService("127.0.0.1:0", logger.NewNopLogger())
	svc.Interval = 20 * time.Millisecond
	svc.AddProbe(APIService, func(context.Context) error {
		if storeDown.Load() {
			return errors.New("ping failed")
		}
		return nil
	})
	svc.AddProbe(DashboardService, func(context.Context) error { return nil })

	client := startService(t, svc)

	require.Eventually(t, func() bool {
		status, err := check(client, APIService)
		return err == nil && status == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	status, err := check(client, DashboardService)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	storeDown.Store(true)
	require.Eventually(t, func() bool {
		status, err := check(client, APIService)
		return err == nil && status == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)
}

func TestControlServiceUnknownService(t *testing.T) {
	svc := NewControlService("127.0.0.1:0", logger.NewNopLogger())
	client := startService(t, svc)

	_, err := check(client, "fxdashboard.unknown")
	assert.Error(t, err)
}

func TestControlServiceStartRejectsBadAddress(t *testing.T) {
	svc := NewControlService("not-an-address", logger.NewNopLogger())
	err := svc.Start(context.Background())
	assert.Error(t, err)
}
