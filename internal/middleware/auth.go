package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/services"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
	sessionIDKey contextKey = "session_id"
)

// SessionCookie carries the server-side session id issued at login.
const SessionCookie = "mm_session"

// TokenVerifier is the single token verification entry point. Every piece of
// middleware and every handler derives actor identity through it; nothing
// trusts unauthenticated request fields.
type TokenVerifier interface {
	ValidateToken(token string) (*services.Claims, error)
}

// AuthMiddleware verifies the bearer token and threads the verified identity
// through the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "No authorization token provided", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.ValidateToken(parts[1])
			if err != nil {
				var appErr *apperrors.AppError
				if errors.As(err, &appErr) && appErr.Code == apperrors.CodeTokenExpired {
					respondError(w, "Token expired", http.StatusUnauthorized)
					return
				}
				respondError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession additionally demands a live server-side session belonging
// to the same user as the bearer token. Used by handlers that mutate the
// caller's own account.
func RequireSession(sessions services.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				respondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			session, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				respondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if session.UserID != GetUserID(r.Context()) {
				respondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the verified user id from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetSessionID extracts the session id from context
func GetSessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	if !ok {
		return ""
	}
	return sessionID
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
