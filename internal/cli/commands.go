package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/auth"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"github.com/dmitrijs2005/postboard/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const healthTimeout = 5 * time.Second

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.newFlagSet("register")
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var err error
	if *email == "" {
		if *email, err = GetSimpleText(a.in, "Enter email", a.out); err != nil {
			return err
		}
	}
	if *name == "" {
		if *name, err = GetSimpleText(a.in, "Enter name", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(password)

	return a.withRepo(ctx, func(repo repositories.Repository) error {
		us := services.NewUserService(repo, auth.New(a.config, a.logger), a.logger)
		s, err := us.Register(ctx, services.RegisterRequest{Email: *email, Name: *name, Password: string(password)})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(a.out, "Registered user %s (%s)\n", s.User.ID, s.User.Email)
		fmt.Fprintf(a.out, "Access token: %s\n", s.AccessToken)
		return nil
	})
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete-user")
	id := fs.String("id", "", "user id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	return a.withRepo(ctx, func(repo repositories.Repository) error {
		us := services.NewUserService(repo, auth.New(a.config, a.logger), a.logger)
		if err := us.DeleteUser(ctx, *id); err != nil {
			return describe(err)
		}
		fmt.Fprintf(a.out, "Deleted user %s\n", *id)
		return nil
	})
}

func (a *App) clear(ctx context.Context, args []string) error {
	fs := a.newFlagSet("clear")
	yes := fs.Bool("yes", false, "confirm wiping all data")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if !*yes {
		return fmt.Errorf("%w: refusing to clear %s storage without -yes", ErrUsage, a.config.DatabaseType)
	}

	return a.withRepo(ctx, func(repo repositories.Repository) error {
		if err := repositories.Clear(ctx, repo); err != nil {
			return describe(err)
		}
		fmt.Fprintf(a.out, "Cleared %s storage\n", a.config.DatabaseType)
		return nil
	})
}

func (a *App) health(ctx context.Context, args []string) error {
	fs := a.newFlagSet("health")
	service := fs.String("service", "", "service name to check")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	conn, err := grpc.NewClient(a.config.EndpointAddrGRPC, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.config.EndpointAddrGRPC, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: *service})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	fmt.Fprintf(a.out, "%s: %s\n", a.config.EndpointAddrGRPC, resp.GetStatus())
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("server is %s", resp.GetStatus())
	}
	return nil
}

// describe turns an application error into a message fit for the terminal.
func describe(err error) error {
	e := apperr.From(err)
	if e.Kind == apperr.KindValidation && len(e.Details) > 0 {
		return fmt.Errorf("%s: %v", e.Message, e.Details)
	}
	return fmt.Errorf("%s: %s", e.Kind, apperr.Public(err))
}
