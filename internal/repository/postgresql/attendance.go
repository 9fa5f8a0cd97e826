package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Columns of a row aliased "a" joined with employees aliased "e".
const attendanceSelect = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out,
	a.clock_in_location, a.clock_out_location, a.clock_in_photo, a.clock_out_photo,
	a.status, a.notes, a.created_at, a.updated_at, e.full_name`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.ClockIn, &att.ClockOut,
		&att.ClockInLocation, &att.ClockOutLocation, &att.ClockInPhoto, &att.ClockOutPhoto,
		&att.Status, &att.Notes, &att.CreatedAt, &att.UpdatedAt, &att.EmployeeName,
	)
	return att, err
}

// UpsertClockIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertClockIn(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	// The conflict branch only fires for a row without clock-in, so a
	// second clock-in returns no row instead of overwriting the session.
	query := `
		WITH upserted AS (
			INSERT INTO attendance_records AS ar (
				id, employee_id, date, clock_in, clock_in_location, clock_in_photo, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (employee_id, date) DO UPDATE SET
				clock_in = EXCLUDED.clock_in,
				clock_in_location = EXCLUDED.clock_in_location,
				clock_in_photo = EXCLUDED.clock_in_photo,
				status = EXCLUDED.status,
				updated_at = NOW()
			WHERE ar.clock_in IS NULL
			RETURNING *
		)
		SELECT ` + attendanceSelect + `
		FROM upserted a
		JOIN employees e ON e.id = a.employee_id
	`

	att, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.Date,
		record.ClockIn,
		record.ClockInLocation,
		record.ClockInPhoto,
		record.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		if pgErrorCode(err) == foreignKeyViolation {
			return attendance.Attendance{}, employee.ErrEmployeeNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to upsert clock-in: %w", err)
	}

	return att, nil
}

// CloseSession implements attendance.AttendanceRepository.
func (r *attendanceRepository) CloseSession(ctx context.Context, employeeID string, date time.Time, clockOut time.Time, location, photo *string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH closed AS (
			UPDATE attendance_records
			SET clock_out = $3,
				clock_out_location = $4,
				clock_out_photo = $5,
				updated_at = NOW()
			WHERE employee_id = $1 AND date = $2
			  AND clock_in IS NOT NULL
			  AND clock_out IS NULL
			RETURNING *
		)
		SELECT ` + attendanceSelect + `
		FROM closed a
		JOIN employees e ON e.id = a.employee_id
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, clockOut, location, photo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrSessionNotOpen
		}
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance session: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceSelect + `
		FROM attendance_records a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.date = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &att, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = attendance.DefaultListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		JOIN employees e ON e.id = a.employee_id
		%s
		ORDER BY a.date DESC, e.full_name ASC
		LIMIT $%d
	`, attendanceSelect, whereClause, argIdx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return records, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (r *attendanceRepository) MarkAbsent(ctx context.Context, date time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT e.id
		FROM employees e
		WHERE NOT EXISTS (
			SELECT 1 FROM attendance_records a
			WHERE a.employee_id = e.id AND a.date = $1
		)
	`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to find employees without attendance: %w", err)
	}
	employeeIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("failed to scan employee ids: %w", err)
	}
	if len(employeeIDs) == 0 {
		return 0, nil
	}

	// A clock-in racing this job wins through the unique key.
	batch := &pgx.Batch{}
	for _, employeeID := range employeeIDs {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, err
		}
		batch.Queue(`
			INSERT INTO attendance_records (id, employee_id, date, status)
			VALUES ($1, $2, $3, 'absent')
			ON CONFLICT (employee_id, date) DO NOTHING
		`, id.String(), employeeID, date)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	created := 0
	for range employeeIDs {
		tag, err := results.Exec()
		if err != nil {
			return created, fmt.Errorf("failed to insert absence: %w", err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

// GetStats implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetStats(ctx context.Context, employeeID string, from, to time.Time) (attendance.Stats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'half_day'),
			COUNT(*) FILTER (WHERE clock_in IS NOT NULL AND clock_out IS NOT NULL),
			COALESCE(
				AVG(EXTRACT(EPOCH FROM (clock_out - clock_in)) / 3600)
					FILTER (WHERE clock_in IS NOT NULL AND clock_out IS NOT NULL),
				0
			)::float8
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
	`

	var stats attendance.Stats
	err := q.QueryRow(ctx, query, employeeID, from, to).Scan(
		&stats.TotalDays,
		&stats.PresentDays,
		&stats.LateDays,
		&stats.AbsentDays,
		&stats.HalfDays,
		&stats.CompletedDays,
		&stats.AverageHoursWorked,
	)
	if err != nil {
		return attendance.Stats{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	return stats, nil
}
