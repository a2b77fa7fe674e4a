// Package repositories defines the storage contract implemented by every
// backend adapter (mongo, postgres, memory).
//
// Adapters translate engine errors into apperr kinds before returning:
// duplicate email is Conflict, a missing row or document is NotFound, and
// everything else is Internal.
package repositories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/server/models"
)

type UserRepository interface {
	// CreateUser stores user as given and returns it.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	DeleteUserByID(ctx context.Context, id string) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	// GetPostByID returns the post with its author attached.
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// GetPosts returns at most p.Limit posts, newest id first, each with its
	// author attached. An empty page is not an error.
	GetPosts(ctx context.Context, p models.Pagination) ([]*models.Post, error)
	// UpdatePost replaces title, content and updatedAt of the post with the
	// same id. Ownership is not checked here.
	UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	DeletePostByID(ctx context.Context, id string) error
}

// Repository is the full storage contract plus lifecycle.
type Repository interface {
	UserRepository
	PostRepository

	// Init provisions indexes or tables. It is safe to call repeatedly.
	Init(ctx context.Context) error
	// CheckHealth performs a cheap round-trip to the engine.
	CheckHealth(ctx context.Context) error
	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}

// Clearer wipes every managed collection or table. It is intentionally not
// part of Repository and is reached only through Clear.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear wipes repo if its adapter supports it.
func Clear(ctx context.Context, repo Repository) error {
	c, ok := repo.(Clearer)
	if !ok {
		return fmt.Errorf("repository %T does not support clearing", repo)
	}
	return c.Clear(ctx)
}
