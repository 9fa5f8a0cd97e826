package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-attendance/internal/service/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	empID     = "0190a6a0-0000-7000-8000-0000000000e1"
	otherID   = "0190a6a0-0000-7000-8000-0000000000e2"
	managerID = "0190a6a0-0000-7000-8000-0000000000a1"
)

type fixture struct {
	reports    report.ReportService
	attendance attendance.AttendanceService
	leave      leave.LeaveService
	clock      *clock.Fixed
	emp        user.Scope
	other      user.Scope
	manager    user.Scope
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := &clock.Fixed{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore(clk)
	for _, e := range []employee.Employee{
		{ID: empID, EmployeeCode: "E-001", FullName: "Ayu Lestari"},
		{ID: otherID, EmployeeCode: "E-002", FullName: "Budi Santoso"},
		{ID: managerID, EmployeeCode: "M-001", FullName: "Citra Dewi"},
	} {
		_, err := store.Employees().Create(context.Background(), e)
		require.NoError(t, err)
	}

	att := attendanceService.NewAttendanceService(store.Attendance(), store.Employees(), nil, clk, attendance.Policy{})
	lv := leaveService.NewLeaveService(store.LeaveRequests(), store.Employees(), nil, clk)

	return &fixture{
		reports:    NewReportService(att, lv, store.Employees(), time.UTC),
		attendance: att,
		leave:      lv,
		clock:      clk,
		emp:        user.Scope{UserID: "u1", Role: user.RoleEmployee, EmployeeID: strPtr(empID)},
		other:      user.Scope{UserID: "u2", Role: user.RoleEmployee, EmployeeID: strPtr(otherID)},
		manager:    user.Scope{UserID: "u3", Role: user.RoleManager, EmployeeID: strPtr(managerID)},
	}
}

// workDay records a session from 09:00 to 17:30 on the given March 2024 day.
func (f *fixture) workDay(t *testing.T, day int) {
	t.Helper()
	ctx := context.Background()

	f.clock.Set(time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC))
	_, err := f.attendance.ClockIn(ctx, f.emp, attendance.ClockInRequest{EmployeeID: empID, Location: strPtr("HQ")})
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 3, day, 17, 30, 0, 0, time.UTC))
	_, err = f.attendance.ClockOut(ctx, f.emp, attendance.ClockOutRequest{EmployeeID: empID})
	require.NoError(t, err)
}

func (f *fixture) approvedLeave(t *testing.T, leaveType leave.LeaveType, start, end string) {
	t.Helper()
	ctx := context.Background()

	created, err := f.leave.CreateRequest(ctx, f.emp, leave.CreateLeaveRequestRequest{
		EmployeeID: empID,
		LeaveType:  string(leaveType),
		StartDate:  start,
		EndDate:    end,
		Reason:     "planned",
	})
	require.NoError(t, err)
	_, err = f.leave.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{RequestID: created.ID, Status: "approved"})
	require.NoError(t, err)
}

func TestEmployeeSummary(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, 1)
	f.workDay(t, 4)
	f.approvedLeave(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12")

	summary, err := f.reports.EmployeeSummary(context.Background(), f.emp, empID, 3, 2024)
	require.NoError(t, err)

	assert.Equal(t, "Ayu Lestari", summary.EmployeeName)
	assert.Equal(t, "E-001", summary.EmployeeCode)
	assert.Equal(t, 2, summary.Attendance.TotalDays)
	assert.Equal(t, 2, summary.Attendance.CompletedDays)
	assert.InDelta(t, 8.5, summary.Attendance.AverageHoursWorked, 0.001)
	assert.Equal(t, 9, summary.LeaveBalance.Balance[leave.LeaveTypeAnnual])
}

func TestEmployeeSummary_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reports.EmployeeSummary(ctx, f.other, empID, 3, 2024)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.reports.EmployeeSummary(ctx, f.manager, empID, 3, 2024)
	assert.NoError(t, err)

	_, err = f.reports.EmployeeSummary(ctx, f.manager, empID, 13, 2024)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestExportAttendanceXLSX(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, 4)
	f.workDay(t, 1)

	// Open session on the 5th
	f.clock.Set(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	_, err := f.attendance.ClockIn(context.Background(), f.emp, attendance.ClockInRequest{EmployeeID: empID})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.reports.ExportAttendanceXLSX(context.Background(), f.manager, empID, 3, 2024, &buf))

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, recordHeaders, rows[0])

	assert.Equal(t, "2024-03-01", rows[1][0])
	assert.Equal(t, "present", rows[1][1])
	assert.Equal(t, "09:00", rows[1][2])
	assert.Equal(t, "17:30", rows[1][3])
	assert.Equal(t, "8.5", rows[1][4])
	assert.Equal(t, "HQ", rows[1][5])
	assert.Equal(t, "2024-03-04", rows[2][0])

	assert.Equal(t, "2024-03-05", rows[3][0])
	assert.Equal(t, "09:00", rows[3][2])
	openClockOut, err := wb.GetCellValue("Records", "D4")
	require.NoError(t, err)
	assert.Empty(t, openClockOut)

	employeeName, err := wb.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Ayu Lestari", employeeName)

	totalDays, err := wb.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "3", totalDays)

	completed, err := wb.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "2", completed)
}

func TestExportAttendanceXLSX_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var buf bytes.Buffer

	err := f.reports.ExportAttendanceXLSX(ctx, f.other, empID, 3, 2024, &buf)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	assert.Zero(t, buf.Len())

	err = f.reports.ExportAttendanceXLSX(ctx, f.manager, "not-a-uuid", 0, 2024, &buf)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "employee_id")
	assert.Contains(t, verrs.ToMap(), "month")
}

func TestExportLeaveBalancePDF(t *testing.T) {
	f := newFixture(t)
	f.approvedLeave(t, leave.LeaveTypeSick, "2024-02-01", "2024-02-02")

	var buf bytes.Buffer
	require.NoError(t, f.reports.ExportLeaveBalancePDF(context.Background(), f.emp, empID, 2024, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)

	buf.Reset()
	err := f.reports.ExportLeaveBalancePDF(context.Background(), f.other, empID, 2024, &buf)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	assert.Zero(t, buf.Len())
}
