package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// Columns of a request aliased "lr" joined with the requesting employee "e"
// and the approver "ap".
const leaveRequestSelect = `
	lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.days_requested,
	lr.reason, lr.status, lr.approver_id, lr.approved_at, lr.rejection_reason,
	lr.created_at, lr.updated_at, e.full_name, ap.full_name`

const leaveRequestJoins = `
	JOIN employees e ON e.id = lr.employee_id
	LEFT JOIN employees ap ON ap.id = lr.approver_id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.DaysRequested,
		&lr.Reason,
		&lr.Status,
		&lr.ApproverID,
		&lr.ApprovedAt,
		&lr.RejectionReason,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.EmployeeName,
		&lr.ApproverName,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH created AS (
			INSERT INTO leave_requests (
				id, employee_id, leave_type, start_date, end_date, days_requested, reason, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT ` + leaveRequestSelect + `
		FROM created lr` + leaveRequestJoins

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.DaysRequested,
		request.Reason,
		request.Status,
	))
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestSelect + ` FROM leave_requests lr` + leaveRequestJoins + ` WHERE lr.id = $1`

	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return request, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartFrom != nil {
		conditions = append(conditions, fmt.Sprintf("lr.start_date >= $%d", argIdx))
		args = append(args, *filter.StartFrom)
		argIdx++
	}
	if filter.EndTo != nil {
		conditions = append(conditions, fmt.Sprintf("lr.end_date <= $%d", argIdx))
		args = append(args, *filter.EndTo)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + leaveRequestSelect + ` FROM leave_requests lr` + leaveRequestJoins + whereClause +
		` ORDER BY lr.created_at DESC, lr.id DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}

// Decide implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, status leave.LeaveRequestStatus, approverID string, decidedAt time.Time, rejectionReason *string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// Only a pending row matches, so concurrent deciders get exactly one winner.
	query := `
		WITH decided AS (
			UPDATE leave_requests
			SET status = $2,
				approver_id = $3,
				approved_at = $4,
				rejection_reason = $5,
				updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		)
		SELECT ` + leaveRequestSelect + `
		FROM decided lr` + leaveRequestJoins

	decided, err := scanLeaveRequest(q.QueryRow(ctx, query, id, status, approverID, decidedAt, rejectionReason))
	if err == nil {
		return decided, nil
	}
	if pgErrorCode(err) == foreignKeyViolation {
		return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to check leave request: %w", err)
	}
	if !exists {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
}

// SumApprovedDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumApprovedDays(ctx context.Context, employeeID string, year int) (map[leave.LeaveType]int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, SUM(days_requested)
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND EXTRACT(YEAR FROM start_date) = $2
		GROUP BY leave_type
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	defer rows.Close()

	used := make(map[leave.LeaveType]int)
	for rows.Next() {
		var leaveType leave.LeaveType
		var days int64
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, fmt.Errorf("failed to scan leave usage: %w", err)
		}
		used[leaveType] = int(days)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave usage: %w", err)
	}

	return used, nil
}
