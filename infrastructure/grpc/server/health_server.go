package server

import (
	"chat-broadcaster/contract"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported by the health endpoint next to the overall ("") status.
const ServiceName = "chat.Broadcaster"

var _ contract.IServingStatus = (*HealthServer)(nil)

// HealthServer exposes the standard grpc.health.v1 service for load balancers and orchestrators.
type HealthServer struct {
	log    *slog.Logger
	health *health.Server
}

// NewHealthServer starts NOT_SERVING until the first health check passes.
func NewHealthServer(log *slog.Logger) *HealthServer {
	h := &HealthServer{log: log, health: health.NewServer()}
	h.SetServing(false)
	return h
}

func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.log.Info("Health service going down")
	h.health.Shutdown()
}

func (h *HealthServer) Server() healthpb.HealthServer {
	return h.health
}
