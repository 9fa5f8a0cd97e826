package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
)

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
	location       *time.Location
}

func NewAttendanceJobs(attendanceRepo attendance.AttendanceRepository, clk clock.Clock, loc *time.Location) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		clock:          clk,
		location:       loc,
	}
}

// MarkAbsentEmployees records yesterday as absent for every employee who
// never clocked in. Re-running is harmless: employees who already have a
// record for the day are skipped by the store.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	yesterday := clock.Today(j.clock, j.location).AddDate(0, 0, -1)

	created, err := j.attendanceRepo.MarkAbsent(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to mark absences for %s: %w", yesterday.Format("2006-01-02"), err)
	}

	if created > 0 {
		slog.Info("Cron: Marked employees absent", "date", yesterday.Format("2006-01-02"), "count", created)
	}
	return nil
}

// Register adds the attendance jobs to s.
func (j *AttendanceJobs) Register(s *Scheduler, interval time.Duration) {
	s.AddJob("mark_absent_employees", interval, j.MarkAbsentEmployees)
}
