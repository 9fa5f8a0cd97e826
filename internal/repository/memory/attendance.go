package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	s *Store
}

// UpsertClockIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertClockIn(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.employees[record.EmployeeID]; !ok {
		return attendance.Attendance{}, employee.ErrEmployeeNotFound
	}

	key := attendanceKey{employeeID: record.EmployeeID, date: dateKey(record.Date)}
	now := r.s.now()

	existing, ok := r.s.attendance[key]
	switch {
	case !ok:
		record.ClockOut = nil
		record.ClockOutLocation = nil
		record.ClockOutPhoto = nil
		record.Notes = nil
		record.CreatedAt = now
		record.UpdatedAt = now
		existing = record
	case existing.ClockIn == nil:
		existing.ClockIn = record.ClockIn
		existing.ClockInLocation = record.ClockInLocation
		existing.ClockInPhoto = record.ClockInPhoto
		existing.Status = record.Status
		existing.UpdatedAt = now
	default:
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}

	r.s.attendance[key] = existing
	existing.EmployeeName = r.s.employeeName(existing.EmployeeID)
	return existing, nil
}

// CloseSession implements attendance.AttendanceRepository.
func (r *attendanceRepository) CloseSession(ctx context.Context, employeeID string, date time.Time, clockOut time.Time, location, photo *string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := attendanceKey{employeeID: employeeID, date: dateKey(date)}
	existing, ok := r.s.attendance[key]
	if !ok || existing.ClockIn == nil || existing.ClockOut != nil {
		return attendance.Attendance{}, attendance.ErrSessionNotOpen
	}

	existing.ClockOut = &clockOut
	existing.ClockOutLocation = location
	existing.ClockOutPhoto = photo
	existing.UpdatedAt = r.s.now()
	r.s.attendance[key] = existing

	existing.EmployeeName = r.s.employeeName(employeeID)
	return existing, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	existing, ok := r.s.attendance[attendanceKey{employeeID: employeeID, date: dateKey(date)}]
	if !ok {
		return nil, nil
	}
	existing.EmployeeName = r.s.employeeName(employeeID)
	return &existing, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var records []attendance.Attendance
	for _, a := range r.s.attendance {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && a.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.Date.After(*filter.To) {
			continue
		}
		a.EmployeeName = r.s.employeeName(a.EmployeeID)
		records = append(records, a)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return nameOf(records[i].EmployeeName) < nameOf(records[j].EmployeeName)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = attendance.DefaultListLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (r *attendanceRepository) MarkAbsent(ctx context.Context, date time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	created := 0
	for empID := range r.s.employees {
		key := attendanceKey{employeeID: empID, date: dateKey(date)}
		if _, ok := r.s.attendance[key]; ok {
			continue
		}
		id, err := uuid.NewV7()
		if err != nil {
			return created, err
		}
		r.s.attendance[key] = attendance.Attendance{
			ID:         id.String(),
			EmployeeID: empID,
			Date:       date,
			Status:     attendance.StatusAbsent,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created++
	}
	return created, nil
}

// GetStats implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetStats(ctx context.Context, employeeID string, from, to time.Time) (attendance.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats attendance.Stats
	var totalHours float64
	for _, a := range r.s.attendance {
		if a.EmployeeID != employeeID || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		stats.TotalDays++
		switch a.Status {
		case attendance.StatusPresent:
			stats.PresentDays++
		case attendance.StatusLate:
			stats.LateDays++
		case attendance.StatusAbsent:
			stats.AbsentDays++
		case attendance.StatusHalfDay:
			stats.HalfDays++
		}
		if hours, ok := a.HoursWorked(); ok {
			stats.CompletedDays++
			totalHours += hours
		}
	}
	if stats.CompletedDays > 0 {
		stats.AverageHoursWorked = totalHours / float64(stats.CompletedDays)
	}
	return stats, nil
}

func nameOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
