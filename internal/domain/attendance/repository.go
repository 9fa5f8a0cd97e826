package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the clock store. The store owns the uniqueness of
// (employee_id, date); both mutating methods are single atomic statements.
type AttendanceRepository interface {
	// UpsertClockIn inserts the day's record, or fills the clock-in fields and
	// status of an existing record that has no clock-in yet. Other columns of
	// an existing record are left untouched. Returns ErrAlreadyCheckedIn when
	// the day already carries a clock-in.
	UpsertClockIn(ctx context.Context, record Attendance) (Attendance, error)

	// CloseSession sets the clock-out fields of the (employeeID, date) record
	// only if it has a clock-in and no clock-out. Returns ErrSessionNotOpen
	// when nothing matched.
	CloseSession(ctx context.Context, employeeID string, date time.Time, clockOut time.Time, location, photo *string) (Attendance, error)

	// GetByEmployeeAndDate returns nil, nil when the day has no record.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// List returns records ordered by date descending.
	List(ctx context.Context, filter ListFilter) ([]Attendance, error)

	// MarkAbsent inserts an absent placeholder for every employee without a
	// record on date and returns how many were created. Existing records are
	// never touched, so a later clock-in still fills the placeholder.
	MarkAbsent(ctx context.Context, date time.Time) (int, error)

	// GetStats aggregates the employee's records with from <= date <= to.
	GetStats(ctx context.Context, employeeID string, from, to time.Time) (Stats, error)
}
