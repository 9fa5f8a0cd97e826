package report

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

type ReportServiceImpl struct {
	attendanceService attendance.AttendanceService
	leaveService      leave.LeaveService
	employeeRepo      employee.EmployeeRepository
	location          *time.Location
}

// NewReportService builds reports on top of the two engines, so access
// rules are the engines' own. loc renders clock times in exports.
func NewReportService(
	attendanceService attendance.AttendanceService,
	leaveService leave.LeaveService,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		attendanceService: attendanceService,
		leaveService:      leaveService,
		employeeRepo:      employeeRepo,
		location:          loc,
	}
}

// EmployeeSummary implements report.ReportService.
func (s *ReportServiceImpl) EmployeeSummary(ctx context.Context, scope user.Scope, employeeID string, month, year int) (report.EmployeeSummaryResponse, error) {
	stats, err := s.attendanceService.ComputeStats(ctx, scope, employeeID, month, year)
	if err != nil {
		return report.EmployeeSummaryResponse{}, err
	}

	balance, err := s.leaveService.ComputeBalance(ctx, scope, employeeID, year)
	if err != nil {
		return report.EmployeeSummaryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return report.EmployeeSummaryResponse{}, err
	}

	return report.EmployeeSummaryResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
		Month:        month,
		Year:         year,
		Attendance:   stats,
		LeaveBalance: balance,
	}, nil
}

// monthRecords lists the employee's records of one month, oldest first.
func (s *ReportServiceImpl) monthRecords(ctx context.Context, scope user.Scope, stats attendance.StatsResponse) ([]attendance.AttendanceResponse, error) {
	list, err := s.attendanceService.ListAttendance(ctx, scope, attendance.AttendanceFilter{
		EmployeeID: &stats.EmployeeID,
		StartDate:  &stats.PeriodStart,
		EndDate:    &stats.PeriodEnd,
		Limit:      31,
	})
	if err != nil {
		return nil, err
	}

	records := list.Attendances
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// clockTime renders an RFC 3339 instant as HH:MM in the report location.
func (s *ReportServiceImpl) clockTime(ts *string) string {
	if ts == nil {
		return ""
	}
	t, err := time.Parse(time.RFC3339, *ts)
	if err != nil {
		return *ts
	}
	return t.In(s.location).Format("15:04")
}

func validatePeriod(employeeID string, month, year int) error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if err := attendance.ValidatePeriod(month, year); err != nil {
		var periodErrs validator.ValidationErrors
		if errors.As(err, &periodErrs) {
			errs = append(errs, periodErrs...)
		}
	}
	return errs.Err()
}
