package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// GetByID returns ErrLeaveRequestNotFound when no row matches.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// List returns requests ordered by creation time, newest first.
	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)

	// Decide moves a pending request to status in one conditional update.
	// Returns ErrLeaveRequestNotFound for an unknown id and
	// ErrLeaveRequestAlreadyProcessed when the request is no longer pending.
	Decide(ctx context.Context, id string, status LeaveRequestStatus, approverID string, decidedAt time.Time, rejectionReason *string) (LeaveRequest, error)

	// SumApprovedDays totals DaysRequested of approved requests starting in
	// year, per leave type. Types without approved requests are absent.
	SumApprovedDays(ctx context.Context, employeeID string, year int) (map[LeaveType]int, error)
}
