package services

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserService registers accounts, checks credentials and resolves the
// stored record of an authenticated caller.
type UserService struct {
	users  repositories.UserRepository
	auth   Authenticator
	logger logging.Logger
}

func NewUserService(users repositories.UserRepository, auth Authenticator, logger logging.Logger) *UserService {
	return &UserService{users: users, auth: auth, logger: logger}
}

// Register creates the account and returns it (without the password hash)
// together with a fresh access token. A taken email yields Conflict.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, models.NewUser(req.Email, req.Name, hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks the credentials. An unknown email and a wrong password both
// yield the same Unauthorized error.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if err := s.auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		if apperr.Is(err, apperr.KindInternal) {
			s.logger.Error(ctx, "stored password hash unusable", "user_id", user.ID, "error", apperr.From(err).Diagnostic)
		}
		return nil, err
	}

	return s.session(user)
}

// Current returns the stored record of an already authenticated caller. An
// account deleted since the token was issued is Unauthorized.
func (s *UserService) Current(ctx context.Context, caller *models.User) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, err
	}
	return user.Redacted(), nil
}

// DeleteUser removes an account and, through storage, the posts it owns.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUserByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.auth.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Redacted(), AccessToken: token}, nil
}
