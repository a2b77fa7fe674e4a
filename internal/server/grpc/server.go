// Package grpc exposes the process over gRPC: the account and post service
// (postboard.v1.Postboard, JSON-encoded) and the standard health service
// backed by the storage health check, both behind logging, error-mapping and
// access-token interceptors.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthChecker is satisfied by repositories.Repository.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// TokenVerifier is satisfied by *auth.Auth.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*models.User, error)
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	health   HealthChecker
	verifier TokenVerifier
	users    Users
	posts    Posts
	tokenKey string
}

// NewGRPCServer builds a server listening on address. tokenKey is the
// metadata key that carries the access token.
func NewGRPCServer(address string, l logging.Logger, health HealthChecker, verifier TokenVerifier, users Users, posts Posts, tokenKey string) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		health:   health,
		verifier: verifier,
		users:    users,
		posts:    posts,
		tokenKey: tokenKey,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		errorInterceptor,
		s.accessTokenInterceptor,
	))
	srv.RegisterService(&postboardServiceDesc, s)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{checker: s.health, logger: s.logger})
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
