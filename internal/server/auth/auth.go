// Package auth hashes passwords and issues the stateless access tokens that
// identify a user between requests.
package auth

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/config"
)

const (
	// Issuer and Audience are fixed registered claims checked on every token.
	Issuer   = "api"
	Audience = "web"

	// KeyID names the signing key in the token header.
	KeyID = "primary"
)

// Auth combines the password hasher and the token issuer.
//
// Auth is immutable after New and safe for concurrent use.
type Auth struct {
	secret []byte
	ttl    time.Duration
	params Argon2Params
	logger logging.Logger

	now  func() time.Time
	rand io.Reader
}

// New creates an Auth signing tokens with cfg.SecretKey and cfg.AccessTokenTTL.
func New(cfg *config.Config, logger logging.Logger) *Auth {
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = config.DefaultAccessTokenTTL
	}
	return &Auth{
		secret: []byte(cfg.SecretKey),
		ttl:    ttl,
		params: DefaultArgon2Params(),
		logger: logger.With("module", "auth"),
		now:    time.Now,
		rand:   rand.Reader,
	}
}

// internal wraps err as an Internal error originating at the caller and logs it.
func (a *Auth) internal(err error) error {
	e := apperr.InternalCaller(err, 1)
	a.logger.Error(context.Background(), "auth error", "diagnostic", e.Diagnostic, "origin", e.Origin)
	return e
}

// TTL returns the lifetime of issued tokens.
func (a *Auth) TTL() time.Duration {
	return a.ttl
}
