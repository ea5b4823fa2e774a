package utilities

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthServer registers the gRPC health check service and returns it
// so callers can flip its serving status.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

// UpdateHealth sets the overall and per-service status from a single ping.
func UpdateHealth(ctx context.Context, hs *health.Server, service string, p Pinger) error {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	err := p.Ping(ctx)
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	hs.SetServingStatus("", status)
	if service != "" {
		hs.SetServingStatus(service, status)
	}

	return err
}

// WatchHealth pings p every interval until ctx is done.
func WatchHealth(
	ctx context.Context,
	logger *zerolog.Logger,
	hs *health.Server,
	service string,
	p Pinger,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		if err := UpdateHealth(pingCtx, hs, service, p); err != nil {
			logger.Warn().Err(err).Msg("health check failed")
		}
		cancel()

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
