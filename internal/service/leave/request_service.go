package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/google/uuid"
)

// RequestService runs the pending -> approved|rejected lifecycle. It trusts
// its caller to have authorized the operation.
type RequestService struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	clock clock.Clock
}

func NewRequestService(leaveRequestRepository leave.LeaveRequestRepository, employeeRepository employee.EmployeeRepository, clk clock.Clock) *RequestService {
	return &RequestService{
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		clock:                  clk,
	}
}

// CreateRequest stores a validated request as pending.
func (r *RequestService) CreateRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	if _, err := r.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequest{}, err
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
	}

	created, err := r.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		ID:            id.String(),
		EmployeeID:    req.EmployeeID,
		LeaveType:     leave.LeaveType(req.LeaveType),
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: leave.InclusiveDays(startDate, endDate),
		Reason:        strings.TrimSpace(req.Reason),
		Status:        leave.LeaveRequestStatusPending,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// Decide records the approver's decision on a pending request.
func (r *RequestService) Decide(ctx context.Context, req leave.DecideLeaveRequestRequest, approverID string) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	status := leave.LeaveRequestStatus(req.Status)

	// Rejection reason only means something on rejections
	var rejectionReason *string
	if status == leave.LeaveRequestStatusRejected && req.RejectionReason != nil {
		if reason := strings.TrimSpace(*req.RejectionReason); reason != "" {
			rejectionReason = &reason
		}
	}

	decided, err := r.LeaveRequestRepository.Decide(ctx, req.RequestID, status, approverID, r.clock.Now().UTC(), rejectionReason)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) || errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	return decided, nil
}

// timePtrToString formats an optional instant as RFC 3339 UTC.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
