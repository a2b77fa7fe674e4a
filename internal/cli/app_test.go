package cli

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/config"
	servergrpc "github.com/dmitrijs2005/postboard/internal/server/grpc"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"github.com/dmitrijs2005/postboard/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app  *App
	repo *memory.Repository
	out  *bytes.Buffer
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseType = config.DatabaseMemory

	repo := memory.New(logging.Nop())
	out := &bytes.Buffer{}
	app := NewApp(cfg, logging.Nop(), strings.NewReader(input), out)
	app.openRepo = func(ctx context.Context) (repositories.Repository, error) {
		return repo, nil
	}
	return &fixture{app: app, repo: repo, out: out}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantArgs []string
	}{
		{"bare", []string{"health"}, "health", []string{}},
		{"global flags", []string{"-t", "memory", "-v=debug", "register", "-email", "a@x.com"}, "register", []string{"-email", "a@x.com"}},
		{"config flag", []string{"-config", "c.json", "clear", "-yes"}, "clear", []string{"-yes"}},
		{"unknown flag is command", []string{"-h"}, "-h", []string{}},
		{"empty", nil, "", nil},
		{"only globals", []string{"-a", ":1"}, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := splitCommand(tt.args)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, len(tt.wantArgs), len(args))
			for i := range tt.wantArgs {
				assert.Equal(t, tt.wantArgs[i], args[i])
			}
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	f := newFixture(t, "")

	err := f.app.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, f.out.String(), "Commands:")

	err = f.app.Run(context.Background(), []string{"frobnicate"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)

	assert.NoError(t, f.app.Run(context.Background(), []string{"help"}))
}

func TestRegister(t *testing.T) {
	stubPassword(t, "correct horse", nil)
	f := newFixture(t, "")

	err := f.app.Run(context.Background(), []string{"-t", "memory", "register", "-email", "alice@example.com", "-name", "Alice"})
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "Registered user ")
	assert.Contains(t, f.out.String(), "Access token: ")

	u, err := f.repo.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
}

func TestRegister_PromptsForMissingFields(t *testing.T) {
	stubPassword(t, "correct horse", nil)
	f := newFixture(t, "bob@example.com\nBob\n")

	require.NoError(t, f.app.Run(context.Background(), []string{"register"}))

	u, err := f.repo.GetUserByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
}

func TestRegister_Errors(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		stubPassword(t, "correct horse", nil)
		f := newFixture(t, "")
		args := []string{"register", "-email", "a@x.com", "-name", "A"}
		require.NoError(t, f.app.Run(context.Background(), args))

		err := f.app.Run(context.Background(), args)
		assert.ErrorContains(t, err, "User 'a@x.com' already exists")
	})

	t.Run("validation", func(t *testing.T) {
		stubPassword(t, "short", nil)
		f := newFixture(t, "")
		err := f.app.Run(context.Background(), []string{"register", "-email", "a@x.com", "-name", "A"})
		assert.ErrorContains(t, err, "Invalid request payload")
		assert.ErrorContains(t, err, "password")
	})

	t.Run("password read", func(t *testing.T) {
		stubPassword(t, "", errors.New("not a terminal"))
		f := newFixture(t, "")
		err := f.app.Run(context.Background(), []string{"register", "-email", "a@x.com", "-name", "A"})
		assert.ErrorContains(t, err, "read password: not a terminal")
	})

	t.Run("bad flag", func(t *testing.T) {
		f := newFixture(t, "")
		err := f.app.Run(context.Background(), []string{"register", "-nope"})
		assert.ErrorIs(t, err, ErrUsage)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	u, err := f.repo.CreateUser(ctx, models.NewUser("a@x.com", "A", "hash"))
	require.NoError(t, err)

	require.NoError(t, f.app.Run(ctx, []string{"delete-user", "-id", u.ID}))
	assert.Contains(t, f.out.String(), "Deleted user "+u.ID)

	err = f.app.Run(ctx, []string{"delete-user", "-id", u.ID})
	assert.ErrorContains(t, err, "not found")

	err = f.app.Run(ctx, []string{"delete-user"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestClear(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.repo.CreateUser(ctx, models.NewUser("a@x.com", "A", "hash"))
	require.NoError(t, err)

	err = f.app.Run(ctx, []string{"clear"})
	assert.ErrorIs(t, err, ErrUsage)
	_, err = f.repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	require.NoError(t, f.app.Run(ctx, []string{"clear", "-yes"}))
	assert.Contains(t, f.out.String(), "Cleared memory storage")
	_, err = f.repo.GetUserByEmail(ctx, "a@x.com")
	assert.ErrorContains(t, err, "not found")
}

func TestWithRepo_OpenError(t *testing.T) {
	f := newFixture(t, "")
	f.app.openRepo = func(ctx context.Context) (repositories.Repository, error) {
		return nil, errors.New("connection refused")
	}

	err := f.app.Run(context.Background(), []string{"clear", "-yes"})
	assert.EqualError(t, err, "connection refused")
}

type healthStub struct{ err error }

func (h healthStub) CheckHealth(ctx context.Context) error { return h.err }

type verifierStub struct{}

func (verifierStub) VerifyAccessToken(string) (*models.User, error) { return nil, errors.New("unused") }

func startServer(t *testing.T, health servergrpc.HealthChecker) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	srv := servergrpc.NewGRPCServer(lis.Addr().String(), logging.Nop(), health, verifierStub{}, nil, nil, "access_token")
	go func() {
		_ = srv.Serve(ctx, lis)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
		}
	})
	return lis.Addr().String()
}

func TestHealth(t *testing.T) {
	t.Run("serving", func(t *testing.T) {
		f := newFixture(t, "")
		f.app.config.EndpointAddrGRPC = startServer(t, healthStub{})

		require.NoError(t, f.app.Run(context.Background(), []string{"health"}))
		assert.Contains(t, f.out.String(), "SERVING")
	})

	t.Run("not serving", func(t *testing.T) {
		f := newFixture(t, "")
		f.app.config.EndpointAddrGRPC = startServer(t, healthStub{err: errors.New("down")})

		err := f.app.Run(context.Background(), []string{"health", "-service", servergrpc.ServiceName})
		assert.EqualError(t, err, "server is NOT_SERVING")
	})

	t.Run("unknown service", func(t *testing.T) {
		f := newFixture(t, "")
		f.app.config.EndpointAddrGRPC = startServer(t, healthStub{})

		err := f.app.Run(context.Background(), []string{"health", "-service", "other"})
		assert.ErrorContains(t, err, "health check")
		assert.ErrorContains(t, err, "NotFound")
	})
}
