// Package logging is the structured logger shared by the server, the storage
// adapters and the admin CLI. Output is JSON through log/slog with secret
// attributes masked before they reach the handler.
package logging

import "context"

// Logger writes leveled records carrying the request context. Attributes
// follow msg as alternating keys and values:
//
//	logger.Warn(ctx, "ownership check failed", "post_id", id, "user_id", uid)
//
// Values of the keys in sensitiveKeys are masked at every level.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	// Error is reserved for failures a caller cannot act on, such as
	// apperr.Internal diagnostics.
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes to every record of the returned logger, e.g.
	// logger.With("module", "auth").
	With(args ...any) Logger
}

var _ Logger = (*SlogLogger)(nil)
