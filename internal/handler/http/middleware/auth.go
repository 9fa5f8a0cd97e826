package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	scopeKey  contextKey = "scope"
)

// AuthRequired rejects requests without a verified access token. It must run
// after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claimMap, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		claims, ok := jwt.ParseClaims(claimMap)
		if !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by AuthRequired.
func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(jwt.Claims)
	return claims, ok
}

// WithScope stores scope in ctx.
func WithScope(ctx context.Context, scope user.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFromContext returns the scope stored by ResolveScope.
func ScopeFromContext(ctx context.Context) (user.Scope, error) {
	scope, ok := ctx.Value(scopeKey).(user.Scope)
	if !ok {
		return user.Scope{}, user.ErrScopeMissing
	}
	return scope, nil
}
