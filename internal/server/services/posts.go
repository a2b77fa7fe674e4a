package services

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
)

// PostInput is the client-editable part of a post.
type PostInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type PostService struct {
	posts  repositories.PostRepository
	users  repositories.UserRepository
	logger logging.Logger
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, logger logging.Logger) *PostService {
	return &PostService{posts: posts, users: users, logger: logger}
}

// Create stores a new post authored by caller and returns it with the author
// attached. Tokens outlive deleted accounts, so the caller is looked up first
// and a missing account is Unauthorized.
func (s *PostService) Create(ctx context.Context, caller *models.User, in PostInput) (*models.Post, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, caller.ID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.logger.Warn(ctx, "post from deleted account rejected", "user_id", caller.ID)
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, err
	}

	post, err := s.posts.CreatePost(ctx, models.NewPost(caller.ID, in.Title, in.Content))
	if err != nil {
		return nil, err
	}
	return s.posts.GetPostByID(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, p models.Pagination) ([]*models.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.posts.GetPosts(ctx, p)
}

// Update replaces title and content of a post owned by caller.
func (s *PostService) Update(ctx context.Context, caller *models.User, id string, in PostInput) (*models.Post, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	post, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.UpdatedAt = models.Now()

	return s.posts.UpdatePost(ctx, post)
}

// Delete removes a post owned by caller.
func (s *PostService) Delete(ctx context.Context, caller *models.User, id string) error {
	if _, err := s.owned(ctx, caller, id, "delete"); err != nil {
		return err
	}
	return s.posts.DeletePostByID(ctx, id)
}

func (s *PostService) owned(ctx context.Context, caller *models.User, id, action string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OwnerID() != caller.ID {
		s.logger.Warn(ctx, "ownership check failed", "post_id", id, "user_id", caller.ID, "action", action)
		return nil, apperr.Forbidden("User isn't allowed to %s this post", action)
	}
	return post, nil
}
