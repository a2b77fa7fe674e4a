package mongo

import (
	"context"
	"errors"
	"regexp"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	dupCollectionRe = regexp.MustCompile(`collection: [^.\s]+\.(\S+)`)
	dupEmailRe      = regexp.MustCompile(`dup key: \{ email: "([^"]*)" \}`)
)

// translateError maps a driver error onto the apperr taxonomy. entity and key
// name the looked-up record for NotFound and Conflict messages.
func (r *Repository) translateError(ctx context.Context, err error, entity, key string) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		if email, ok := duplicateUserEmail(err, key); ok {
			return apperr.Conflict("User '%s' already exists", email)
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("%s '%s' not found", entity, key)
	}

	e := apperr.InternalCaller(err, 1)
	r.logger.Error(ctx, "mongo error", "diagnostic", e.Diagnostic, "origin", e.Origin)
	return e
}

// duplicateUserEmail reports whether a duplicate-key error was raised by the
// users collection and extracts the offending email, falling back to fallback.
func duplicateUserEmail(err error, fallback string) (string, bool) {
	msg := err.Error()
	if m := dupCollectionRe.FindStringSubmatch(msg); m != nil && m[1] != usersCollection {
		return "", false
	}
	if m := dupEmailRe.FindStringSubmatch(msg); m != nil {
		return m[1], true
	}
	return fallback, true
}
