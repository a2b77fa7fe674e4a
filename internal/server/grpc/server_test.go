package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeHealth struct{ err error }

func (f fakeHealth) CheckHealth(context.Context) error { return f.err }

type fakeVerifier struct{}

func (fakeVerifier) VerifyAccessToken(token string) (*models.User, error) {
	if token == "good" {
		return &models.User{ID: "u-1", Email: "a@x.com", Name: "A"}, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired token")
}

func startBufServer(t *testing.T, health HealthChecker) grpc_health_v1.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := NewGRPCServer("bufnet", nopLogger{}, health, fakeVerifier{}, nil, nil, "access_token")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return grpc_health_v1.NewHealthClient(conn)
}

func TestHealth_Serving(t *testing.T) {
	client := startBufServer(t, fakeHealth{})

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestHealth_NotServing(t *testing.T) {
	client := startBufServer(t, fakeHealth{err: apperr.Internal(errors.New("connection refused"))})

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealth_UnknownService(t *testing.T) {
	client := startBufServer(t, fakeHealth{})

	_, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "other"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealth_InvalidTokenRejected(t *testing.T) {
	client := startBufServer(t, fakeHealth{})

	ctx := metadata.AppendToOutgoingContext(context.Background(), "access_token", "forged")
	_, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Invalid or expired token", status.Convert(err).Message())

	ctx = metadata.AppendToOutgoingContext(context.Background(), "access_token", "good")
	_, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	assert.NoError(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, fakeHealth{}, fakeVerifier{}, nil, nil, "access_token")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, fakeHealth{}, fakeVerifier{}, nil, nil, "access_token")
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
