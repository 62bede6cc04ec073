package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chirp/domain/entities"
	"chirp/infrastructure/persistence/memory"
	"chirp/interfaces/http/rest/middleware"
	"chirp/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGate(t *testing.T) (*memory.UserStore, *auth.TokenService, http.Handler) {
	t.Helper()
	users := memory.NewUserStore()
	tokens := auth.NewTokenService("test-secret", "chirp-test")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.UserFromContext(r.Context())
		require.NoError(t, err)
		w.Write([]byte(user.Username))
	})

	gate := middleware.Authenticate(tokens, users, zap.NewNop())(next)
	return users, tokens, gate
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthenticate_NoCookie(t *testing.T) {
	_, _, gate := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unauthorized request", errorBody(t, rec))
}

func TestAuthenticate_BadToken(t *testing.T) {
	_, _, gate := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid token", errorBody(t, rec))
}

func TestAuthenticate_UserGone(t *testing.T) {
	_, tokens, gate := newGate(t)

	// Valid token for an identity the store no longer has
	token, err := tokens.Issue("vanished-id")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user not found", errorBody(t, rec))
}

func TestAuthenticate_Success(t *testing.T) {
	users, tokens, gate := newGate(t)

	user, err := entities.NewUser("ada", "ada@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", rec.Body.String())
}
