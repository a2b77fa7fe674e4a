// Package services holds the application logic that sits on top of the
// storage contract and the credential adapter: account registration and
// login, and post management with ownership checks.
//
// Request validation and ownership (Forbidden) are decided here; storage
// adapters trust their input.
package services

import (
	"github.com/dmitrijs2005/postboard/internal/server/models"
)

// Authenticator is the subset of auth.Auth used by the services.
type Authenticator interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, encoded string) error
	GenerateAccessToken(user *models.User) (string, error)
}

// Session is returned on successful registration or login.
type Session struct {
	User        *models.User
	AccessToken string
}
