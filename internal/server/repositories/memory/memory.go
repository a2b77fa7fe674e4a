// Package memory implements repositories.Repository over guarded maps.
// It follows the same error semantics as the database adapters and is used
// for local development (database type "memory") and in service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
)

type Repository struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
	posts   map[string]*models.Post
	logger  logging.Logger
}

var (
	_ repositories.Repository = (*Repository)(nil)
	_ repositories.Clearer    = (*Repository)(nil)
)

func New(logger logging.Logger) *Repository {
	r := &Repository{logger: logger}
	r.reset()
	return r
}

func (r *Repository) reset() {
	r.users = make(map[string]*models.User)
	r.byEmail = make(map[string]string)
	r.posts = make(map[string]*models.Post)
}

func (r *Repository) Init(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.internal(ctx, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, apperr.Conflict("User '%s' already exists", user.Email)
	}
	if _, ok := r.users[user.ID]; ok {
		return nil, r.internal(ctx, fmt.Errorf("duplicate user id %s", user.ID))
	}

	c := *user
	r.users[c.ID] = &c
	r.byEmail[c.Email] = c.ID
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User '%s' not found", email)
	}
	c := *r.users[id]
	return &c, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User '%s' not found", id)
	}
	c := *u
	return &c, nil
}

// DeleteUserByID removes the user and, like the relational foreign key,
// every post the user authored.
func (r *Repository) DeleteUserByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("User '%s' not found", id)
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	for pid, p := range r.posts {
		if p.AuthorID == id {
			delete(r.posts, pid)
		}
	}
	return nil
}

func (r *Repository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[post.AuthorID]; !ok {
		return nil, r.internal(ctx, fmt.Errorf("author %q does not exist", post.AuthorID))
	}
	if _, ok := r.posts[post.ID]; ok {
		return nil, r.internal(ctx, fmt.Errorf("duplicate post id %s", post.ID))
	}

	c := *post
	c.Author = nil
	r.posts[c.ID] = &c
	return post, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post '%s' not found", id)
	}
	return r.joined(ctx, p)
}

func (r *Repository) GetPosts(ctx context.Context, pg models.Pagination) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if pg.AuthorID == "" || p.AuthorID == pg.AuthorID {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if pg.Offset >= int64(len(matched)) {
		return []*models.Post{}, nil
	}
	matched = matched[pg.Offset:]
	if pg.Limit < int64(len(matched)) {
		matched = matched[:pg.Limit]
	}

	out := make([]*models.Post, 0, len(matched))
	for _, p := range matched {
		j, err := r.joined(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.posts[post.ID]
	if !ok {
		return nil, apperr.NotFound("Post '%s' not found", post.ID)
	}
	cur.Title = post.Title
	cur.Content = post.Content
	cur.UpdatedAt = post.UpdatedAt
	return post, nil
}

func (r *Repository) DeletePostByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return apperr.NotFound("Post '%s' not found", id)
	}
	delete(r.posts, id)
	return nil
}

// joined must be called with r.mu held.
func (r *Repository) joined(ctx context.Context, p *models.Post) (*models.Post, error) {
	author, ok := r.users[p.AuthorID]
	if !ok {
		return nil, r.internal(ctx, fmt.Errorf("post %s references missing author %s", p.ID, p.AuthorID))
	}
	c := *p
	return c.WithAuthor(author), nil
}

func (r *Repository) internal(ctx context.Context, err error) error {
	e := apperr.Internal(err)
	r.logger.Error(ctx, "memory repository error", "diagnostic", e.Diagnostic, "origin", e.Origin)
	return e
}
