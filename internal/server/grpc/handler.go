package grpc

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/services"
)

// Users is satisfied by *services.UserService.
type Users interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.Session, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.Session, error)
	Current(ctx context.Context, caller *models.User) (*models.User, error)
}

// Posts is satisfied by *services.PostService.
type Posts interface {
	Create(ctx context.Context, caller *models.User, in services.PostInput) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, p models.Pagination) ([]*models.Post, error)
	Update(ctx context.Context, caller *models.User, id string, in services.PostInput) (*models.Post, error)
	Delete(ctx context.Context, caller *models.User, id string) error
}

var _ PostboardServer = (*GRPCServer)(nil)

// requireUser returns the caller attached by the access-token interceptor.
func requireUser(ctx context.Context) (*models.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return u, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *services.RegisterRequest) (*SessionResponse, error) {
	session, err := s.users.Register(ctx, *req)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registered", "user_id", session.User.ID)
	return &SessionResponse{User: session.User, AccessToken: session.AccessToken}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *services.LoginRequest) (*SessionResponse, error) {
	session, err := s.users.Login(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{User: session.User, AccessToken: session.AccessToken}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *Empty) (*models.User, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.users.Current(ctx, caller)
}

func (s *GRPCServer) CreatePost(ctx context.Context, req *services.PostInput) (*models.Post, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.posts.Create(ctx, caller, *req)
}

// GetPost and ListPosts are open to anonymous callers.
func (s *GRPCServer) GetPost(ctx context.Context, req *PostIDRequest) (*models.Post, error) {
	return s.posts.Get(ctx, req.ID)
}

func (s *GRPCServer) ListPosts(ctx context.Context, req *models.Pagination) (*PostList, error) {
	posts, err := s.posts.List(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &PostList{Posts: posts}, nil
}

func (s *GRPCServer) UpdatePost(ctx context.Context, req *UpdatePostRequest) (*models.Post, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.posts.Update(ctx, caller, req.ID, services.PostInput{Title: req.Title, Content: req.Content})
}

func (s *GRPCServer) DeletePost(ctx context.Context, req *PostIDRequest) (*Empty, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Delete(ctx, caller, req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}
