// Package models defines the domain entities shared by every storage adapter
// and by the credential layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Email uniqueness is enforced by storage.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"password,omitempty" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// NewUser builds a User with a fresh time-ordered identifier.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    Now(),
	}
}

// Redacted returns a copy of u with the password hash cleared.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// NewID returns a UUIDv7 string. Version 7 ids sort by creation time, so
// "newest id first" is also "newest first".
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Now returns the current UTC time truncated to milliseconds, the finest
// precision both storage engines keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
