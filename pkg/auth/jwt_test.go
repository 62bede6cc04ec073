package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", "chirp-test")

	token, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", "chirp-test")
	verifier := NewTokenService("secret-b", "chirp-test")

	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Verify_Garbage(t *testing.T) {
	svc := NewTokenService("test-secret", "chirp-test")

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", "chirp-test")

	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue("user-123")
	require.NoError(t, err)

	// Just inside the validity window
	svc.now = func() time.Time { return issued.Add(SessionTTL - time.Minute) }
	_, err = svc.Verify(token)
	require.NoError(t, err)

	// Just past it
	svc.now = func() time.Time { return issued.Add(SessionTTL + time.Minute) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionCookie_Flags(t *testing.T) {
	cookie := SessionCookie("token-value")

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestClearedSessionCookie(t *testing.T) {
	cookie := ClearedSessionCookie()

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}
