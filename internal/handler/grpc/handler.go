package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "denylist.v1.Lookup"

// Handler implements grpc.health.v1.Health, serving while the provider is usable.
type Handler struct {
	health  *health.Server
	readyFn func() error
}

// NewHandler creates a health handler driven by readyFn. The initial status
// is computed immediately.
func NewHandler(readyFn func() error) *Handler {
	h := &Handler{health: health.NewServer(), readyFn: readyFn}
	h.Refresh()
	return h
}

// Register adds the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Refresh re-evaluates readyFn and publishes the resulting status.
func (h *Handler) Refresh() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.readyFn != nil {
		if err := h.readyFn(); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Run refreshes the status every interval until ctx is done, then marks all
// services NOT_SERVING so watchers see the shutdown.
func (h *Handler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}
