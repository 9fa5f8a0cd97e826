package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// Attendance is one employee's record for one calendar day. Date is carried
// as midnight UTC of that day.
type Attendance struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	ClockIn          *time.Time
	ClockOut         *time.Time
	ClockInLocation  *string
	ClockOutLocation *string
	ClockInPhoto     *string
	ClockOutPhoto    *string
	Status           Status
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
}

// HoursWorked is clock-out minus clock-in in hours. ok is false while the
// session is still open.
func (a Attendance) HoursWorked() (hours float64, ok bool) {
	if a.ClockIn == nil || a.ClockOut == nil {
		return 0, false
	}
	return a.ClockOut.Sub(*a.ClockIn).Hours(), true
}

// Stats are the per-period aggregates computed by the store.
type Stats struct {
	TotalDays     int
	PresentDays   int
	LateDays      int
	AbsentDays    int
	HalfDays      int
	CompletedDays int
	// Mean of HoursWorked over completed records; 0 when there are none.
	AverageHoursWorked float64
}

// ListFilter is the normalized form of AttendanceFilter handed to the store.
type ListFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// Policy holds the organization settings the engine applies on clock-in.
type Policy struct {
	// Location defines the calendar day used for "today".
	Location *time.Location
	// LateAfter, when set, is the offset from local midnight after which a
	// clock-in is recorded as late instead of present.
	LateAfter *time.Duration
}

// StatusAt derives the clock-in status for an instant.
func (p Policy) StatusAt(clockIn time.Time) Status {
	if p.LateAfter == nil {
		return StatusPresent
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := clockIn.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if local.Sub(midnight) > *p.LateAfter {
		return StatusLate
	}
	return StatusPresent
}
