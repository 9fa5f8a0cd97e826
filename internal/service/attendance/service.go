package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance/internal/service/file"
	"github.com/google/uuid"
)

const (
	transitionClockIn  = "clock_in"
	transitionClockOut = "clock_out"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	fileService file.FileService
	clock       clock.Clock
	policy      attendance.Policy
}

// NewAttendanceService wires the engine. fileService may be nil, in which
// case photo uploads are rejected and only photo URLs are accepted.
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	fileService file.FileService,
	clk clock.Clock,
	policy attendance.Policy,
) attendance.AttendanceService {
	if clk == nil {
		clk = clock.System()
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		fileService:          fileService,
		clock:                clk,
		policy:               policy,
	}
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, scope user.Scope, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := scope.Authorize(req.EmployeeID, user.PermissionAttendanceCreate, user.PermissionAttendanceOnBehalf); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now().UTC()
	date := clock.DateOf(now, s.policy.Location)

	photoURL, uploaded, err := s.storeProof(ctx, req.EmployeeID, date, transitionClockIn, req.PhotoURL, req.Photo)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	record, err := s.AttendanceRepository.UpsertClockIn(ctx, attendance.Attendance{
		ID:              id.String(),
		EmployeeID:      req.EmployeeID,
		Date:            date,
		ClockIn:         &now,
		ClockInLocation: trimmed(req.Location),
		ClockInPhoto:    photoURL,
		Status:          s.policy.StatusAt(now),
	})
	if err != nil {
		s.discardProof(ctx, uploaded)
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) || errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to clock in: %w", err)
	}

	slog.Info("Clocked in", "employee_id", record.EmployeeID, "date", record.Date.Format(validator.DateLayout), "status", record.Status)
	return toResponse(record), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, scope user.Scope, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := scope.Authorize(req.EmployeeID, user.PermissionAttendanceCreate, user.PermissionAttendanceOnBehalf); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now().UTC()
	date := clock.DateOf(now, s.policy.Location)

	photoURL, uploaded, err := s.storeProof(ctx, req.EmployeeID, date, transitionClockOut, req.PhotoURL, req.Photo)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.CloseSession(ctx, req.EmployeeID, date, now, trimmed(req.Location), photoURL)
	if err != nil {
		s.discardProof(ctx, uploaded)
		if errors.Is(err, attendance.ErrSessionNotOpen) {
			return attendance.AttendanceResponse{}, s.classifyClosed(ctx, req.EmployeeID, date)
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to clock out: %w", err)
	}

	hours, _ := record.HoursWorked()
	slog.Info("Clocked out", "employee_id", record.EmployeeID, "date", record.Date.Format(validator.DateLayout), "hours_worked", hours)
	return toResponse(record), nil
}

// classifyClosed explains why a clock-out update matched nothing.
func (s *AttendanceServiceImpl) classifyClosed(ctx context.Context, employeeID string, date time.Time) error {
	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to get attendance record: %w", err)
	}
	if existing != nil && existing.ClockIn != nil && existing.ClockOut != nil {
		return attendance.ErrAlreadyCheckedOut
	}
	return attendance.ErrNotCheckedIn
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, scope user.Scope, employeeID string) (*attendance.AttendanceResponse, error) {
	if !validator.IsValidUUID(employeeID) {
		return nil, invalidEmployeeID()
	}
	if err := scope.Authorize(employeeID, user.PermissionAttendanceViewOwn, user.PermissionAttendanceViewAll); err != nil {
		return nil, err
	}

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, clock.Today(s.clock, s.policy.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	resp := toResponse(*record)
	return &resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, scope user.Scope, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	listFilter, err := filter.Validate()
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	listFilter.EmployeeID, err = scope.Narrow(listFilter.EmployeeID, user.PermissionAttendanceViewOwn, user.PermissionAttendanceViewAll)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.AttendanceRepository.List(ctx, listFilter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toResponse(r))
	}

	return attendance.ListAttendanceResponse{
		Attendances: responses,
		Count:       len(responses),
	}, nil
}

// ComputeStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ComputeStats(ctx context.Context, scope user.Scope, employeeID string, month, year int) (attendance.StatsResponse, error) {
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
	if err := errs.Err(); err != nil {
		return attendance.StatsResponse{}, err
	}

	if err := scope.Authorize(employeeID, user.PermissionAttendanceViewOwn, user.PermissionAttendanceViewAll); err != nil {
		return attendance.StatsResponse{}, err
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		return attendance.StatsResponse{}, err
	}

	start, end := clock.MonthBounds(month, year)
	stats, err := s.AttendanceRepository.GetStats(ctx, employeeID, start, end)
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to compute attendance stats: %w", err)
	}

	return attendance.StatsResponse{
		EmployeeID:         employeeID,
		Month:              month,
		Year:               year,
		PeriodStart:        start.Format(validator.DateLayout),
		PeriodEnd:          end.Format(validator.DateLayout),
		TotalDays:          stats.TotalDays,
		PresentDays:        stats.PresentDays,
		LateDays:           stats.LateDays,
		AbsentDays:         stats.AbsentDays,
		HalfDays:           stats.HalfDays,
		CompletedDays:      stats.CompletedDays,
		AverageHoursWorked: math.Round(stats.AverageHoursWorked*100) / 100,
	}, nil
}

// storeProof resolves the photo URL of a transition, uploading the file
// when one was sent. The returned key is non-empty only for uploads.
func (s *AttendanceServiceImpl) storeProof(ctx context.Context, employeeID string, date time.Time, transition string, photoURL *string, photo *attendance.ProofPhoto) (*string, string, error) {
	if photo == nil {
		return photoURL, "", nil
	}
	if s.fileService == nil {
		var errs validator.ValidationErrors
		errs.Add("photo", "photo uploads are not enabled")
		return nil, "", errs
	}

	stored, err := s.fileService.UploadAttendanceProof(ctx, employeeID, date, transition, photo.File, photo.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upload attendance proof: %w", err)
	}
	return &stored.URL, stored.Key, nil
}

// discardProof removes a photo uploaded for a transition that was refused.
func (s *AttendanceServiceImpl) discardProof(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.fileService.DeleteFile(ctx, key); err != nil {
		slog.Warn("Failed to delete orphaned attendance proof", "key", key, "error", err)
	}
}

func invalidEmployeeID() error {
	var errs validator.ValidationErrors
	errs.Add("employee_id", "employee_id must be a valid UUID")
	return errs
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// timePtrToString formats an optional instant as RFC 3339 UTC.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func toResponse(a attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		EmployeeName:     a.EmployeeName,
		Date:             a.Date.Format(validator.DateLayout),
		ClockIn:          timePtrToString(a.ClockIn),
		ClockOut:         timePtrToString(a.ClockOut),
		ClockInLocation:  a.ClockInLocation,
		ClockOutLocation: a.ClockOutLocation,
		ClockInPhoto:     a.ClockInPhoto,
		ClockOutPhoto:    a.ClockOutPhoto,
		Status:           string(a.Status),
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if hours, ok := a.HoursWorked(); ok {
		rounded := math.Round(hours*100) / 100
		resp.HoursWorked = &rounded
	}
	return resp
}
