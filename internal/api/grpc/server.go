package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"mediarental-backend/internal/api/grpc/interceptor"
)

// NewServer builds the gRPC server exposing the standard health service,
// whose status the database probe job keeps current, and reflection for
// grpcurl.
func NewServer(healthSrv *health.Server) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.Unary()),
	)

	healthpb.RegisterHealthServer(s, healthSrv)
	reflection.Register(s)
	return s
}
