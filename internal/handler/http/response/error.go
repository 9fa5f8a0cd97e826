package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// First match wins; wrapped errors match through errors.Is.
var errorMappings = []errorMapping{
	{user.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired access token"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, CodeForbidden, "Insufficient permissions"},
	{user.ErrEmployeeNotLinked, http.StatusForbidden, CodeEmployeeNotLinked, "No employee record is linked to this account"},

	{employee.ErrEmployeeNotFound, http.StatusNotFound, CodeNotFound, "Employee not found"},

	{attendance.ErrNotCheckedIn, http.StatusNotFound, CodeNotFound, "No clock-in recorded for today"},
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, CodeConflict, "Already clocked in today"},
	{attendance.ErrAlreadyCheckedOut, http.StatusConflict, CodeConflict, "Already clocked out today"},

	{leave.ErrLeaveRequestNotFound, http.StatusNotFound, CodeNotFound, "Leave request not found"},
	{leave.ErrLeaveRequestAlreadyProcessed, http.StatusConflict, CodeConflict, "Leave request already processed"},
}

// HandleError maps domain errors to HTTP responses. Anything unmapped is
// logged and reported as a 500 without its cause.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Fail(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Fail(w, m.status, m.code, m.message, nil)
			return
		}
	}

	slog.Error("Unhandled error", "error", err)
	Fail(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
}
