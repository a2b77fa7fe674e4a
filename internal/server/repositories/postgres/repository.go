// Package postgres implements repositories.Repository over PostgreSQL using
// database/sql with the pgx driver. Author joins are native SQL joins and the
// schema is provisioned by goose from embedded migrations.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/dbx"
	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/migrations"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Repository is safe for concurrent use; *sql.DB owns the connection pool.
type Repository struct {
	db     *sql.DB
	q      dbx.DBTX
	logger logging.Logger
}

var (
	_ repositories.Repository = (*Repository)(nil)
	_ repositories.Clearer    = (*Repository)(nil)
)

// New wraps an already opened database handle.
func New(db *sql.DB, logger logging.Logger) *Repository {
	return &Repository{db: db, q: db, logger: logger.With("adapter", "postgres")}
}

// Open opens a pooled handle for dsn. No connection is made until first use.
func Open(dsn string, logger logging.Logger) (*Repository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db, logger), nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Init applies the embedded migrations. Every statement is
// "create if not exists", so repeated calls are no-ops.
func (r *Repository) Init(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return r.translateError(ctx, err, "", "")
	}
	if err := gooseUpContext(ctx, r.db, "."); err != nil {
		return r.translateError(ctx, fmt.Errorf("migrate: %w", err), "", "")
	}
	return nil
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return r.translateError(ctx, fmt.Errorf("ping: %w", err), "", "")
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if err := r.db.Close(); err != nil {
		return r.translateError(ctx, err, "", "")
	}
	return nil
}

// Clear deletes every post and user in one transaction.
func (r *Repository) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM users`)
		return err
	})
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("clear: %w", err), "", "")
	}
	return nil
}
