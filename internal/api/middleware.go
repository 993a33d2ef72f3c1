package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	userKey   contextKey = "user"
)

// authStore is the part of the store the auth middleware needs.
type authStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates the bearer JWT, rejects revoked tokens and loads
// the current user into the request context. The stored role is
// authoritative, so role changes take effect without a new token.
func AuthMiddleware(issuer *auth.Issuer, st authStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims, err := issuer.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			revoked, err := st.IsTokenRevoked(r.Context(), claims.ID)
			if err != nil {
				serverError(w, "Server error checking token", err)
				return
			}
			if revoked {
				jsonError(w, http.StatusUnauthorized, "Not authorized, token revoked")
				return
			}

			user, err := st.GetUser(r.Context(), claims.UserID)
			if err != nil {
				serverError(w, "Server error loading user", err)
				return
			}
			if user == nil {
				jsonError(w, http.StatusUnauthorized, "Not authorized, user not found")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				jsonError(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			if !model.RoleAtLeast(user.Role, minimum) {
				jsonError(w, http.StatusForbidden, "Access denied, "+minimum+" only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// CurrentUser retrieves the authenticated user from the context.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"remote", r.RemoteAddr,
		)
	})
}
