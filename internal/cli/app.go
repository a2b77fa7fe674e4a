// Package cli implements the postboard maintenance tool:
//
//	postboard-cli [global flags] register -email a@x.com [-name A]
//	postboard-cli [global flags] delete-user -id <uuid>
//	postboard-cli [global flags] health [-service postboard]
//	postboard-cli [global flags] clear -yes
//
// Global flags are the server's configuration flags (-t, -d, -n, -a, ...).
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/config"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"github.com/dmitrijs2005/postboard/internal/server/repositories/repomanager"
)

// ErrUsage is returned for an unknown command or bad command flags.
var ErrUsage = errors.New("usage error")

const usage = `Usage: postboard-cli [global flags] <command> [flags]

Commands:
  register     create a user (password is read from the terminal)
  delete-user  delete a user and their posts
  health       query the server's gRPC health service
  clear        wipe all users and posts (requires -yes)
`

// globalValueFlags are configuration flags that consume the next argument.
var globalValueFlags = map[string]struct{}{
	"-a": {}, "-t": {}, "-d": {}, "-n": {}, "-s": {}, "-l": {}, "-v": {}, "-c": {}, "-config": {},
}

type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer
	in     *bufio.Reader

	openRepo func(ctx context.Context) (repositories.Repository, error)
}

func NewApp(c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{config: c, logger: logger, out: out, in: bufio.NewReader(in)}
	a.openRepo = func(ctx context.Context) (repositories.Repository, error) {
		return repomanager.Open(ctx, a.config, a.logger)
	}
	return a
}

// Run dispatches the command found in args.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, cmdArgs := splitCommand(args)

	switch cmd {
	case "register":
		return a.register(ctx, cmdArgs)
	case "delete-user":
		return a.deleteUser(ctx, cmdArgs)
	case "health":
		return a.health(ctx, cmdArgs)
	case "clear":
		return a.clear(ctx, cmdArgs)
	case "", "help", "-h", "-help":
		fmt.Fprint(a.out, usage)
		if cmd == "" {
			return ErrUsage
		}
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// withRepo opens the configured repository for the duration of fn.
func (a *App) withRepo(ctx context.Context, fn func(repositories.Repository) error) error {
	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := repo.Close(ctx); cErr != nil {
			a.logger.Warn(ctx, "closing repository", "error", cErr.Error())
		}
	}()
	return fn(repo)
}

// splitCommand skips the global configuration flags and returns the first
// remaining argument as the command, with everything after it.
func splitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return arg, args[i+1:]
		}
		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := globalValueFlags[arg]; ok {
			i++
			continue
		}
		return arg, args[i+1:]
	}
	return "", nil
}
