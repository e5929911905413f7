package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/obs"
)

type identityContextKey struct{}

// GetIdentity returns the authenticated identity from context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// GetUserID returns the authenticated user ID from context, or "".
func GetUserID(ctx context.Context) string {
	id, _ := GetIdentity(ctx)
	return id.UserID
}

// WithIdentity stores an identity in context. Used by tests to bypass the
// middleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// BearerToken extracts the bearer token from a request, or "".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth verifies the bearer token and stores the identity in context.
// Requests without a valid token get a 401 JSON response.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeAuthError(w, errs.New(errs.Unauthenticated, "authorization required"))
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = obs.WithUserID(ctx, id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromRequest returns the user ID of a request's bearer token, or ""
// when the token is missing or invalid. Used by the rate limiter to key
// requests before the auth middleware runs.
func UserIDFromRequest(tokens *TokenService) func(r *http.Request) string {
	return func(r *http.Request) string {
		raw := BearerToken(r)
		if raw == "" {
			return ""
		}
		id, err := tokens.Verify(raw)
		if err != nil {
			return ""
		}
		return id.UserID
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	code := errs.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errs.HTTPStatus(code))
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": errs.MessageOf(err),
	})
}
