package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"

	usersEmailConstraint = "users_email_key"
)

// translateError maps a driver error onto the apperr taxonomy. key names the
// record for NotFound and Conflict messages; entity is empty on inserts. For
// lookups a key that is not a valid UUID can never match a row, so the
// server's 22P02 rejection is reported as NotFound.
func (r *Repository) translateError(ctx context.Context, err error, entity, key string) error {
	var pgErr *pgconn.PgError
	isPgErr := errors.As(err, &pgErr)
	switch {
	case isPgErr && pgErr.Code == uniqueViolation && isUsersEmail(pgErr):
		return apperr.Conflict("User '%s' already exists", key)
	case isPgErr && pgErr.Code == invalidTextRepresentation && entity != "":
		return apperr.NotFound("%s '%s' not found", entity, key)
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("%s '%s' not found", entity, key)
	}

	e := apperr.InternalCaller(err, 1)
	r.logger.Error(ctx, "postgres error", "diagnostic", e.Diagnostic, "origin", e.Origin)
	return e
}

// isUsersEmail reports whether a unique violation comes from the email
// constraint rather than, say, the primary key.
func isUsersEmail(pgErr *pgconn.PgError) bool {
	if pgErr.ConstraintName == usersEmailConstraint {
		return true
	}
	return pgErr.TableName == "users" && pgErr.ColumnName == "email"
}
