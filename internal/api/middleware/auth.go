package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/logger"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the profile token from the named cookie or the Authorization header
func ExtractToken(r *http.Request, cookieName string) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	// Fall back to Authorization header (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const (
	ProfileContextKey contextKey = "profile"
)

// RequireProfile validates the profile token and adds its claims to the context
func RequireProfile(tokens *auth.TokenService, cookieName string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r, cookieName)
			if tokenString == "" {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				respondError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, log)))
		})
	}
}

// OptionalProfile adds profile claims to the context if a valid token is present, but doesn't require it
func OptionalProfile(tokens *auth.TokenService, cookieName string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := ExtractToken(r, cookieName); tokenString != "" {
				if claims, err := tokens.Validate(tokenString); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims, log))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withClaims(ctx context.Context, claims *auth.Claims, log *logger.Logger) context.Context {
	ctx = context.WithValue(ctx, ProfileContextKey, claims)
	if log != nil {
		ctx = log.WithProfileID(ctx, claims.ProfileID())
	}
	return ctx
}

// ClaimsFromContext retrieves profile claims from the request context
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ProfileContextKey).(*auth.Claims)
	return claims, ok
}

// ProfileID is a helper to get just the profile ID from context
func ProfileID(ctx context.Context) string {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.ProfileID()
}
