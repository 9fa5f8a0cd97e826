// Package memory is an in-process implementation of the attendance, leave
// and employee stores. A single mutex stands in for the database's row
// locking, so every conditional write is atomic exactly like its SQL
// counterpart.
package memory

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
)

type attendanceKey struct {
	employeeID string
	date       string
}

type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	employees      map[string]employee.Employee
	employeeByUser map[string]string
	attendance     map[attendanceKey]attendance.Attendance
	leaveRequests  map[string]leave.LeaveRequest
}

// NewStore returns an empty store. clk stamps created_at/updated_at; nil
// means the wall clock.
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{
		clock:          clk,
		employees:      make(map[string]employee.Employee),
		employeeByUser: make(map[string]string),
		attendance:     make(map[attendanceKey]attendance.Attendance),
		leaveRequests:  make(map[string]leave.LeaveRequest),
	}
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (s *Store) Attendance() attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

// employeeName must be called with s.mu held.
func (s *Store) employeeName(id string) *string {
	e, ok := s.employees[id]
	if !ok {
		return nil
	}
	name := e.FullName
	return &name
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
