// Package repomanager selects and opens the storage adapter named by the
// configuration. The choice is made once at startup; callers only see
// repositories.Repository afterwards.
package repomanager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/config"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"github.com/dmitrijs2005/postboard/internal/server/repositories/memory"
	"github.com/dmitrijs2005/postboard/internal/server/repositories/mongo"
	"github.com/dmitrijs2005/postboard/internal/server/repositories/postgres"
)

// Adapter constructors are seams for tests.
var (
	openPostgres = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (repositories.Repository, error) {
		return postgres.Open(cfg.DatabaseURL, logger)
	}
	openMongo = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (repositories.Repository, error) {
		return mongo.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName, logger)
	}
	openMemory = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (repositories.Repository, error) {
		return memory.New(logger), nil
	}
)

// Open constructs the adapter for cfg.DatabaseType and runs its Init.
// If Init fails the adapter is closed before the error is returned.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (repositories.Repository, error) {
	var open func(context.Context, *config.Config, logging.Logger) (repositories.Repository, error)

	switch strings.ToLower(cfg.DatabaseType) {
	case config.DatabasePostgres:
		open = openPostgres
	case config.DatabaseMongo:
		open = openMongo
	case config.DatabaseMemory:
		open = openMemory
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}

	repo, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := repo.Init(ctx); err != nil {
		if cErr := repo.Close(ctx); cErr != nil {
			err = errors.Join(err, cErr)
		}
		return nil, fmt.Errorf("init %s repository: %w", cfg.DatabaseType, err)
	}

	logger.Info(ctx, "repository ready", "database_type", cfg.DatabaseType)
	return repo, nil
}
