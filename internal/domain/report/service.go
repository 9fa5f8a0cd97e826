package report

import (
	"context"
	"io"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
)

// ReportService composes read-only views over attendance and leave. Every
// call recomputes from the stores.
type ReportService interface {
	EmployeeSummary(ctx context.Context, scope user.Scope, employeeID string, month, year int) (EmployeeSummaryResponse, error)

	// ExportAttendanceXLSX writes a workbook with a "Records" sheet (one row
	// per day) and a "Summary" sheet.
	ExportAttendanceXLSX(ctx context.Context, scope user.Scope, employeeID string, month, year int, w io.Writer) error

	// ExportLeaveBalancePDF writes a one-page balance statement.
	ExportLeaveBalancePDF(ctx context.Context, scope user.Scope, employeeID string, year int, w io.Writer) error
}
