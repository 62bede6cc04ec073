package services_test

import (
	"context"
	"testing"

	"chirp/application/services"
	"chirp/domain/entities"
	"chirp/infrastructure/persistence/memory"
	"chirp/pkg/auth"
	"chirp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(users *memory.UserStore) (*services.AuthService, *auth.TokenService) {
	tokens := auth.NewTokenService("test-secret", "chirp-test")
	return services.NewAuthService(users, tokens, zap.NewNop()), tokens
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	svc, tokens := newAuthService(users)

	user, token, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	// The issued token binds the new identity
	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc, _ := newAuthService(memory.NewUserStore())

	_, _, err := svc.Register(context.Background(), "ada", "ada@example.com", "12345")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "password is not long enough", appErr.Message)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(memory.NewUserStore())

	_, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ada", "other@example.com", "hunter22")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "username is already taken", appErr.Message)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(memory.NewUserStore())

	_, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "grace", "ada@example.com", "hunter22")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "email is already taken", appErr.Message)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	svc, tokens := newAuthService(users)

	registered, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "ada", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _ := newAuthService(memory.NewUserStore())

	_, _, err := svc.Login(context.Background(), "nobody", "hunter22")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "user not found", appErr.Message)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(memory.NewUserStore())

	_, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada", "wrong-password")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid password", appErr.Message)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	svc, _ := newAuthService(users)

	registered, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	user, err := svc.Me(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = svc.Me(ctx, "missing-id")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func mustCreateUser(t *testing.T, users *memory.UserStore, username string) *entities.User {
	t.Helper()
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	user, err := entities.NewUser(username, username+"@example.com", hash)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))
	return user
}
