package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	geoipgrpc "github.com/TomasB/geoip2-server/internal/handler/grpc"
	"github.com/TomasB/geoip2-server/internal/lookup"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	// defaultMaxConnectionAge is the maximum amount of time a connection may exist before it will be closed by sending a GoAway.
	defaultMaxConnectionAge = 60 * time.Second
	// defaultMaxConnectionAgeGrace allows pending RPCs to complete before forcibly closing connections.
	defaultMaxConnectionAgeGrace = 10 * time.Second
)

// GRPCServer serves the lookup API and the standard health service over gRPC.
type GRPCServer struct {
	s       *grpc.Server
	health  *health.Server
	serving atomic.Bool
}

// NewGRPCServer returns a gRPC server backed by resolver.
func NewGRPCServer(resolver *lookup.Resolver, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			unaryLogger(logger),
			grpcrecovery.UnaryServerInterceptor(grpcrecovery.WithRecoveryHandler(func(p any) error {
				return geoipgrpc.Status(fmt.Errorf("panic: %v", p))
			})),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionAge:      defaultMaxConnectionAge,
			MaxConnectionAgeGrace: defaultMaxConnectionAgeGrace,
		}),
	)

	geoipgrpc.RegisterGeoIPServer(s, geoipgrpc.NewHandler(resolver))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(geoipgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &GRPCServer{s: s, health: hs}
}

// Serve accepts connections on lis until GracefulStop is called.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.serving.Store(true)
	defer s.serving.Store(false)

	return s.s.Serve(lis)
}

// Serving reports whether Serve is running.
func (s *GRPCServer) Serving() bool {
	return s.serving.Load()
}

// SetNotServing flips the health service to NOT_SERVING. Lookups keep working.
func (s *GRPCServer) SetNotServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(geoipgrpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// GracefulStop stops accepting connections and waits for pending RPCs.
func (s *GRPCServer) GracefulStop() {
	s.health.Shutdown()
	s.s.GracefulStop()
}

func unaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration_us", time.Since(start).Microseconds(),
		}
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			attrs = append(attrs, "client_ip", p.Addr.String())
		}

		switch cause := geoipgrpc.Cause(err); {
		case cause != nil:
			logger.Error("rpc completed with errors", append(attrs, "errors", cause.Error())...)
		case code == codes.OK:
			logger.Info("rpc completed", attrs...)
		case code == codes.Internal, code == codes.Unknown, code == codes.Unavailable:
			logger.Error("rpc completed", attrs...)
		default:
			logger.Warn("rpc completed", attrs...)
		}

		return resp, err
	}
}
