package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	requestService *RequestService
	balanceService *BalanceService
}

func NewLeaveService(
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	entitlements leave.Entitlements,
	clk clock.Clock,
) leave.LeaveService {
	if clk == nil {
		clk = clock.System()
	}
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		requestService:         NewRequestService(leaveRequestRepository, employeeRepository, clk),
		balanceService:         NewBalanceService(leaveRequestRepository, entitlements),
	}
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, scope user.Scope, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if validator.IsValidUUID(req.EmployeeID) {
		// Filing for someone else takes the approver's reach
		if err := scope.Authorize(req.EmployeeID, user.PermissionLeaveCreate, user.PermissionLeaveApprove); err != nil {
			return leave.LeaveRequestResponse{}, err
		}
	}

	created, err := l.requestService.CreateRequest(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request submitted", "leave_request_id", created.ID, "employee_id", created.EmployeeID, "leave_type", created.LeaveType, "days_requested", created.DaysRequested)
	return toResponse(created), nil
}

// Decide implements leave.LeaveService.
func (l *LeaveServiceImpl) Decide(ctx context.Context, scope user.Scope, req leave.DecideLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if !scope.Can(user.PermissionLeaveApprove) {
		return leave.LeaveRequestResponse{}, user.ErrInsufficientPermissions
	}
	// The approver is recorded by employee id
	if scope.EmployeeID == nil {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeNotLinked
	}

	decided, err := l.requestService.Decide(ctx, req, *scope.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request decided", "leave_request_id", decided.ID, "status", decided.Status, "approver_id", *scope.EmployeeID)
	return toResponse(decided), nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, scope user.Scope, id string) (leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(id) {
		var errs validator.ValidationErrors
		errs.Add("id", "id must be a valid UUID")
		return leave.LeaveRequestResponse{}, errs
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := scope.Authorize(request.EmployeeID, user.PermissionLeaveViewOwn, user.PermissionLeaveViewAll); err != nil {
		// Hide other employees' requests entirely
		if errors.Is(err, user.ErrInsufficientPermissions) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequestResponse{}, err
	}

	return toResponse(request), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, scope user.Scope, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	listFilter, err := filter.Validate()
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	listFilter.EmployeeID, err = scope.Narrow(listFilter.EmployeeID, user.PermissionLeaveViewOwn, user.PermissionLeaveViewAll)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, err := l.LeaveRequestRepository.List(ctx, listFilter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		LeaveRequests: responses,
		Count:         len(responses),
	}, nil
}

// ComputeBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) ComputeBalance(ctx context.Context, scope user.Scope, employeeID string, year int) (leave.LeaveBalanceResponse, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if !validator.IsValidYear(year) {
		errs.Add("year", "year must be between 1970 and 9999")
	}
	if err := errs.Err(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	if err := scope.Authorize(employeeID, user.PermissionLeaveViewOwn, user.PermissionLeaveViewAll); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}
	if _, err := l.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	balance, err := l.balanceService.Compute(ctx, employeeID, year)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	return leave.LeaveBalanceResponse{
		EmployeeID:   employeeID,
		Year:         balance.Year,
		Entitlements: balance.Entitlements,
		Used:         balance.Used,
		Balance:      balance.Balance,
	}, nil
}

func toResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	return leave.LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		LeaveType:       string(r.LeaveType),
		StartDate:       r.StartDate.Format(validator.DateLayout),
		EndDate:         r.EndDate.Format(validator.DateLayout),
		DaysRequested:   r.DaysRequested,
		Reason:          r.Reason,
		Status:          string(r.Status),
		ApproverID:      r.ApproverID,
		ApproverName:    r.ApproverName,
		ApprovedAt:      timePtrToString(r.ApprovedAt),
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
