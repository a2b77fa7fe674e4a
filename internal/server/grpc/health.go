package grpc

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name accepted by the health service besides "".
const ServiceName = "postboard"

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	checker HealthChecker
	logger  logging.Logger
}

// Check pings storage. An unreachable backend is reported as NOT_SERVING,
// not as an RPC error.
func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	st := grpc_health_v1.HealthCheckResponse_SERVING
	if err := h.checker.CheckHealth(ctx); err != nil {
		h.logger.Warn(ctx, "health check failed", "error", apperr.Public(err))
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return &grpc_health_v1.HealthCheckResponse{Status: st}, nil
}
