package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"minipaint/internal/database/models"
	"minipaint/internal/services/session"
)

type contextKey string

const userContextKey contextKey = "minipaint.user"

// bearerToken extracts the token from the Authorization header, falling
// back to a query parameter for endpoints the browser cannot set headers
// on (OAuth callback redirects, WebSocket upgrades).
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// requireUser resolves the session token and stores the user in the
// request context. Banned accounts are refused outright.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.Resolve(r.Context(), bearerToken(r))
		if err != nil {
			switch {
			case errors.Is(err, session.ErrBanned):
				respondError(w, http.StatusForbidden, err)
			case errors.Is(err, session.ErrUnauthorized):
				respondError(w, http.StatusUnauthorized, err)
			default:
				respondError(w, http.StatusInternalServerError, err)
			}
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin refuses non-admin users. Must run after requireUser.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.IsAdmin(currentUser(r)) {
			respondErrorMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the authenticated user placed by requireUser.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
