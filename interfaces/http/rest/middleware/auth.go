// Package middleware holds the HTTP middleware for the REST interface.
package middleware

import (
	"net/http"

	"chirp/application/ports"
	"chirp/pkg/auth"
	"chirp/pkg/common"

	"go.uber.org/zap"
)

// Authenticate gates a route group behind the session cookie. The token
// is verified, the bound user is loaded fresh from the store and stored
// in the request context; handlers pass the actor ID into services from
// there. Missing cookie, bad token and vanished user all answer 400.
func Authenticate(tokens *auth.TokenService, users ports.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				common.RespondError(w, http.StatusBadRequest, "unauthorized request")
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				common.RespondError(w, http.StatusBadRequest, "invalid token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("failed to resolve session user", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "server error")
				return
			}
			if user == nil {
				common.RespondError(w, http.StatusBadRequest, "user not found")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
