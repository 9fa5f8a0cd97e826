package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	empID      = "0190a6a0-0000-7000-8000-000000000001"
	approverID = "0190a6a0-0000-7000-8000-000000000002"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil)
	for _, e := range []employee.Employee{
		{ID: empID, EmployeeCode: "EMP-001", FullName: "Ayu Lestari"},
		{ID: approverID, EmployeeCode: "EMP-002", FullName: "Budi Santoso"},
	} {
		_, err := s.Employees().Create(context.Background(), e)
		require.NoError(t, err)
	}
	return s
}

func clockInRecord(id string, date, at time.Time) attendance.Attendance {
	return attendance.Attendance{ID: id, EmployeeID: empID, Date: date, ClockIn: &at, Status: attendance.StatusPresent}
}

func TestAttendance_PlaceholderIsFilledNotReplaced(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	notes := "pre-created"
	s.attendance[attendanceKey{employeeID: empID, date: "2024-03-01"}] = attendance.Attendance{
		ID: "placeholder", EmployeeID: empID, Date: date, Status: attendance.StatusAbsent, Notes: &notes,
	}

	got, err := s.Attendance().UpsertClockIn(context.Background(), clockInRecord("new-id", date, date.Add(9*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "placeholder", got.ID)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "pre-created", *got.Notes)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Ayu Lestari", *got.EmployeeName)
}

func TestAttendance_ConcurrentClockInHasOneWinner(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attendance()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertClockIn(context.Background(), clockInRecord("id", date, date.Add(9*time.Hour)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, attendance.ErrAlreadyCheckedIn):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, s.attendance, 1)
}

func TestAttendance_CloseSessionOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attendance()
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.CloseSession(ctx, empID, date, date.Add(17*time.Hour), nil, nil)
	assert.ErrorIs(t, err, attendance.ErrSessionNotOpen)

	_, err = repo.UpsertClockIn(ctx, clockInRecord("a1", date, date.Add(9*time.Hour)))
	require.NoError(t, err)

	closed, err := repo.CloseSession(ctx, empID, date, date.Add(17*time.Hour+30*time.Minute), nil, nil)
	require.NoError(t, err)
	hours, ok := closed.HoursWorked()
	require.True(t, ok)
	assert.Equal(t, 8.5, hours)

	_, err = repo.CloseSession(ctx, empID, date, date.Add(18*time.Hour), nil, nil)
	assert.ErrorIs(t, err, attendance.ErrSessionNotOpen)

	_, err = repo.UpsertClockIn(ctx, clockInRecord("a2", date, date.Add(19*time.Hour)))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendance_UnknownEmployee(t *testing.T) {
	s := newTestStore(t)
	rec := clockInRecord("x", time.Now().UTC(), time.Now().UTC())
	rec.EmployeeID = "0190a6a0-0000-7000-8000-0000000000ff"

	_, err := s.Attendance().UpsertClockIn(context.Background(), rec)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeave_ConcurrentDecideHasOneWinner(t *testing.T) {
	s := newTestStore(t)
	repo := s.LeaveRequests()
	ctx := context.Background()
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, leave.LeaveRequest{
		ID: "lr-1", EmployeeID: empID, LeaveType: leave.LeaveTypeAnnual,
		StartDate: start, EndDate: start.AddDate(0, 0, 2), DaysRequested: 3,
		Reason: "holiday", Status: leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := leave.LeaveRequestStatusApproved
			if i%2 == 1 {
				status = leave.LeaveRequestStatusRejected
			}
			_, err := repo.Decide(ctx, "lr-1", status, approverID, time.Now().UTC(), nil)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)

	_, err = repo.Decide(ctx, "missing", leave.LeaveRequestStatusApproved, approverID, time.Now().UTC(), nil)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeave_SumApprovedDaysByStartYear(t *testing.T) {
	s := newTestStore(t)
	repo := s.LeaveRequests()
	ctx := context.Background()

	add := func(id string, lt leave.LeaveType, start time.Time, days int, approve bool) {
		_, err := repo.Create(ctx, leave.LeaveRequest{
			ID: id, EmployeeID: empID, LeaveType: lt, StartDate: start,
			EndDate: start.AddDate(0, 0, days-1), DaysRequested: days,
			Reason: "r", Status: leave.LeaveRequestStatusPending,
		})
		require.NoError(t, err)
		if approve {
			_, err = repo.Decide(ctx, id, leave.LeaveRequestStatusApproved, approverID, time.Now().UTC(), nil)
			require.NoError(t, err)
		}
	}

	add("a", leave.LeaveTypeSick, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 2, true)
	add("b", leave.LeaveTypeSick, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), 5, true)
	add("c", leave.LeaveTypeSick, time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), 4, true)
	add("d", leave.LeaveTypeAnnual, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1, false)

	used, err := repo.SumApprovedDays(ctx, empID, 2024)
	require.NoError(t, err)
	assert.Equal(t, map[leave.LeaveType]int{leave.LeaveTypeSick: 7}, used)
}

func TestAttendance_MarkAbsentSkipsExistingRecords(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attendance()
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.UpsertClockIn(ctx, clockInRecord("in-1", date, date.Add(9*time.Hour)))
	require.NoError(t, err)

	created, err := repo.MarkAbsent(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	worked, err := repo.GetByEmployeeAndDate(ctx, empID, date)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, worked.Status)

	missed, err := repo.GetByEmployeeAndDate(ctx, approverID, date)
	require.NoError(t, err)
	require.NotNil(t, missed)
	assert.Equal(t, attendance.StatusAbsent, missed.Status)
	assert.Nil(t, missed.ClockIn)

	again, err := repo.MarkAbsent(ctx, date)
	require.NoError(t, err)
	assert.Zero(t, again)
}
