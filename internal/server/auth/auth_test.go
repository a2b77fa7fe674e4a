package auth

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/config"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return New(cfg, logging.Nop())
}

func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	tok.Header["kid"] = KeyID
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}
	return s
}

func validClaims(now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        "jti",
		},
		Email: "a@x.com",
		Name:  "A",
	}
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v (%s)", err, apperr.KindOf(err))
	}
	if err.Error() != invalidTokenMessage {
		t.Fatalf("message mismatch: got %q want %q", err.Error(), invalidTokenMessage)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	a := New(&config.Config{SecretKey: "k"}, logging.Nop())
	if a.TTL() != 24*time.Hour {
		t.Fatalf("ttl mismatch: got %s", a.TTL())
	}
}

func TestHashPassword_Format(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	h, err := a.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Fatalf("unexpected hash prefix: %s", h)
	}
	if parts := strings.Split(h, "$"); len(parts) != 6 {
		t.Fatalf("expected 6 segments, got %d", len(parts))
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	h1, _ := a.HashPassword("same")
	h2, _ := a.HashPassword("same")
	if h1 == h2 {
		t.Fatalf("hashes of the same password must differ")
	}
	if err := a.VerifyPassword("same", h1); err != nil {
		t.Fatalf("verify h1: %v", err)
	}
	if err := a.VerifyPassword("same", h2); err != nil {
		t.Fatalf("verify h2: %v", err)
	}
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	h, _ := a.HashPassword("right")

	err := a.VerifyPassword("wrong", h)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	cases := []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	}
	for _, c := range cases {
		err := a.VerifyPassword("pw", c)
		if !apperr.Is(err, apperr.KindInternal) {
			t.Fatalf("hash %q: expected Internal, got %v", c, err)
		}
		if err.Error() != apperr.InternalMessage {
			t.Fatalf("hash %q: internal message leaked: %q", c, err.Error())
		}
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	u := models.NewUser("a@x.com", "Alice", "hash")

	tok, err := a.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	got, err := a.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if got.ID != u.ID || got.Email != u.Email || got.Name != u.Name {
		t.Fatalf("user mismatch: got %+v want %+v", got, u)
	}
	if got.PasswordHash != "" {
		t.Fatalf("password hash must not be carried in the token")
	}
}

func TestAccessToken_Claims(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	tok, err := a.GenerateAccessToken(&models.User{ID: "u1", Email: "e", Name: "n"})
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims := &Claims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	if err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}

	if parsed.Header["kid"] != KeyID {
		t.Fatalf("kid mismatch: %v", parsed.Header["kid"])
	}
	if parsed.Method.Alg() != "HS256" {
		t.Fatalf("alg mismatch: %s", parsed.Method.Alg())
	}
	if claims.Issuer != "api" || len(claims.Audience) != 1 || claims.Audience[0] != "web" {
		t.Fatalf("iss/aud mismatch: %+v", claims.RegisteredClaims)
	}
	if d := claims.ExpiresAt.Sub(claims.IssuedAt.Time); d != 86400*time.Second {
		t.Fatalf("exp-iat mismatch: %s", d)
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil || id.Version() != 7 {
		t.Fatalf("jti must be a v7 uuid, got %q", claims.ID)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	issued := time.Now().Add(-48 * time.Hour)
	a.now = func() time.Time { return issued }

	tok, err := a.GenerateAccessToken(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	a.now = time.Now
	_, err = a.VerifyAccessToken(tok)
	assertUnauthorized(t, err)
}

func TestVerifyAccessToken_Rejects(t *testing.T) {
	t.Parallel()

	a := newTestAuth(t)
	now := time.Now()

	wrongAud := validClaims(now)
	wrongAud.Audience = jwt.ClaimStrings{"mobile"}

	wrongIss := validClaims(now)
	wrongIss.Issuer = "other"

	noSub := validClaims(now)
	noSub.Subject = ""

	noExp := validClaims(now)
	noExp.ExpiresAt = nil

	good := signClaims(t, "test-secret", jwt.SigningMethodHS256, validClaims(now))
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	unknownKid := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(now))
	unknownKid.Header["kid"] = "rotated"
	unknownKidStr, _ := unknownKid.SignedString([]byte("test-secret"))

	cases := map[string]string{
		"wrong secret":   signClaims(t, "other-secret", jwt.SigningMethodHS256, validClaims(now)),
		"wrong alg":      signClaims(t, "test-secret", jwt.SigningMethodHS512, validClaims(now)),
		"wrong audience": signClaims(t, "test-secret", jwt.SigningMethodHS256, wrongAud),
		"wrong issuer":   signClaims(t, "test-secret", jwt.SigningMethodHS256, wrongIss),
		"missing sub":    signClaims(t, "test-secret", jwt.SigningMethodHS256, noSub),
		"missing exp":    signClaims(t, "test-secret", jwt.SigningMethodHS256, noExp),
		"tampered":       tampered,
		"unknown kid":    unknownKidStr,
		"garbage":        "not.a.jwt",
		"empty":          "",
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.VerifyAccessToken(tok)
			assertUnauthorized(t, err)
		})
	}

	if _, err := a.VerifyAccessToken(good); err != nil {
		t.Fatalf("control token rejected: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func newLoggedAuth(t *testing.T) (*Auth, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	var logs bytes.Buffer
	return New(cfg, logging.New("debug", &logs)), &logs
}

func TestHashPassword_SaltFailureIsLoggedInternal(t *testing.T) {
	t.Parallel()

	a, logs := newLoggedAuth(t)
	a.rand = failingReader{}

	_, err := a.HashPassword("hunter2")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected Internal, got %v", err)
	}
	if got := apperr.From(err).Diagnostic; !strings.Contains(got, "entropy exhausted") {
		t.Fatalf("diagnostic mismatch: %q", got)
	}
	out := logs.String()
	if !strings.Contains(out, "auth error") || !strings.Contains(out, `"origin":"password.go:`) {
		t.Fatalf("expected logged origin, got %s", out)
	}
}

func TestVerifyPassword_MalformedHashIsLogged(t *testing.T) {
	t.Parallel()

	a, logs := newLoggedAuth(t)
	if err := a.VerifyPassword("x", "$bcrypt$nope"); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected Internal, got %v", err)
	}
	if !strings.Contains(logs.String(), "password hash") {
		t.Fatalf("expected diagnostic in logs, got %s", logs.String())
	}
}
