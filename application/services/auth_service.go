package services

import (
	"context"

	"chirp/application/ports"
	"chirp/domain/entities"
	"chirp/pkg/auth"
	"chirp/pkg/errors"

	"go.uber.org/zap"
)

// minPasswordLength is enforced here, before hashing; the credential
// manager itself imposes no length rule.
const minPasswordLength = 6

// AuthService handles registration, login and identity resolution
type AuthService struct {
	users  ports.UserRepository
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users ports.UserRepository, tokens *auth.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new identity and issues a session token.
// Username and email uniqueness is enforced by the store's constrained
// insert, not by a prior query.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*entities.User, string, error) {
	if len(password) < minPasswordLength {
		return nil, "", errors.NewValidationError("password is not long enough")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", errors.NewInternalError("failed to hash password").WithCause(err)
	}

	user, err := entities.NewUser(username, email, hash)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", errors.NewInternalError("failed to issue session token").WithCause(err)
	}

	s.logger.Info("user registered",
		zap.String("userID", user.ID),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*entities.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", errors.NewNotFoundError("user")
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", errors.NewUnauthorizedError("invalid password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", errors.NewInternalError("failed to issue session token").WithCause(err)
	}

	s.logger.Info("user logged in", zap.String("userID", user.ID))

	return user, token, nil
}

// Me returns the current identity, fetched fresh from the store
func (s *AuthService) Me(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}
	return user, nil
}
