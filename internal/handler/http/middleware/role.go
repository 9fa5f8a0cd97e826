package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
)

// RequirePermission checks if the caller's role has a specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := ScopeFromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !user.HasPermission(scope.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, scope.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
