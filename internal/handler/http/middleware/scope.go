package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
)

// ResolveScope turns the token claims into a user.Scope. Tokens without an
// employee_id claim are resolved through the employee store; accounts with no
// employee record get a scope with a nil EmployeeID.
func ResolveScope(employees employee.EmployeeRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			scope := user.Scope{
				UserID:     claims.UserID,
				Role:       claims.Role,
				EmployeeID: claims.EmployeeID,
			}

			if scope.EmployeeID == nil {
				emp, err := employees.GetByUserID(r.Context(), claims.UserID)
				switch {
				case err == nil:
					scope.EmployeeID = &emp.ID
				case errors.Is(err, employee.ErrEmployeeNotFound):
					// unlinked account
				default:
					slog.Error("Failed to resolve employee for user", "user_id", claims.UserID, "error", err)
					response.HandleError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}
