package report

import (
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
)

// EmployeeSummaryResponse joins a month of attendance with the leave
// position of the same year.
type EmployeeSummaryResponse struct {
	EmployeeID   string                     `json:"employee_id"`
	EmployeeName string                     `json:"employee_name"`
	EmployeeCode string                     `json:"employee_code"`
	Month        int                        `json:"month"`
	Year         int                        `json:"year"`
	Attendance   attendance.StatsResponse   `json:"attendance"`
	LeaveBalance leave.LeaveBalanceResponse `json:"leave_balance"`
}
