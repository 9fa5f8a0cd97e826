package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

// callerScope writes a 403 and returns false when the request carries no scope.
func callerScope(w http.ResponseWriter, r *http.Request) (user.Scope, bool) {
	scope, err := middleware.ScopeFromContext(r.Context())
	if err != nil {
		response.Forbidden(w, "Caller scope is missing")
		return user.Scope{}, false
	}
	return scope, true
}

func optionalQuery(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// queryInt reads an integer query parameter, falling back to def when it is
// absent. A present but malformed value is a validation error.
func queryInt(r *http.Request, name string, def int, errs *validator.ValidationErrors) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(name, name+" must be an integer")
		return def
	}
	return v
}

// period reads ?month&year, defaulting to the current month in loc.
func period(r *http.Request, clk clock.Clock, loc *time.Location) (month, year int, err error) {
	today := clock.Today(clk, loc)
	var errs validator.ValidationErrors
	month = queryInt(r, "month", int(today.Month()), &errs)
	year = queryInt(r, "year", today.Year(), &errs)
	return month, year, errs.Err()
}

// yearParam reads ?year, defaulting to the current year in loc.
func yearParam(r *http.Request, clk clock.Clock, loc *time.Location) (int, error) {
	var errs validator.ValidationErrors
	year := queryInt(r, "year", clock.Today(clk, loc).Year(), &errs)
	return year, errs.Err()
}
