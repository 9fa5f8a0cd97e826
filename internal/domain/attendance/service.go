package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
)

// AttendanceService mediates the clock-in -> clock-out transitions of an
// employee-day and the read views built on them. Every call receives the
// caller's scope explicitly.
type AttendanceService interface {
	// ClockIn opens today's session for req.EmployeeID.
	ClockIn(ctx context.Context, scope user.Scope, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes today's session for req.EmployeeID.
	ClockOut(ctx context.Context, scope user.Scope, req ClockOutRequest) (AttendanceResponse, error)

	// GetToday returns nil when the employee has no record today.
	GetToday(ctx context.Context, scope user.Scope, employeeID string) (*AttendanceResponse, error)

	// ListAttendance lists records visible to scope.
	ListAttendance(ctx context.Context, scope user.Scope, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ComputeStats aggregates one calendar month.
	ComputeStats(ctx context.Context, scope user.Scope, employeeID string, month, year int) (StatsResponse, error)
}
