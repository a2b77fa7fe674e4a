package auth

import (
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// invalidTokenMessage is returned for every verification failure so callers
// cannot tell an expired token from a forged one.
const invalidTokenMessage = "Invalid or expired token"

// Claims are the access token claims: the registered set plus the user's
// email and display name.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GenerateAccessToken signs an HS256 token for user valid for the configured TTL.
func (a *Auth) GenerateAccessToken(user *models.User) (string, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return "", a.internal(fmt.Errorf("generate token id: %w", err))
	}

	now := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        jti.String(),
		},
		Email: user.Email,
		Name:  user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = KeyID

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", a.internal(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

// VerifyAccessToken validates signature, algorithm, issuer, audience and
// expiry, then returns the user the token was issued to. The returned User
// carries only ID, Email and Name.
func (a *Auth) VerifyAccessToken(tokenString string) (*models.User, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, a.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, apperr.Unauthorized(invalidTokenMessage)
	}

	return &models.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

func (a *Auth) keyFunc(t *jwt.Token) (any, error) {
	if kid, ok := t.Header["kid"].(string); ok && kid != KeyID {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return a.secret, nil
}
