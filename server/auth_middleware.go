package server

import (
	"context"
	"net/http"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the session's user ID
	ContextKeyUserID ContextKey = "user_id"
)

// RequireSession rejects requests that carry no user id cookie.
// It only checks presence: the API remains the authority on whether the tokens are still good.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID := s.sessions.UserID(s.sessionStore(w, r))
			if userID == nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, *userID)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserIDFromContext returns the user id set by RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}
