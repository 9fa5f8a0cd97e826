package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

// withNames must be called with s.mu held.
func (r *leaveRequestRepository) withNames(lr leave.LeaveRequest) leave.LeaveRequest {
	lr.EmployeeName = r.s.employeeName(lr.EmployeeID)
	if lr.ApproverID != nil {
		lr.ApproverName = r.s.employeeName(*lr.ApproverID)
	}
	return lr
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.employees[request.EmployeeID]; !ok {
		return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
	}

	now := r.s.now()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.s.leaveRequests[request.ID] = request
	return r.withNames(request), nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	request, ok := r.s.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withNames(request), nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var requests []leave.LeaveRequest
	for _, lr := range r.s.leaveRequests {
		if filter.EmployeeID != nil && lr.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && lr.Status != *filter.Status {
			continue
		}
		if filter.StartFrom != nil && lr.StartDate.Before(*filter.StartFrom) {
			continue
		}
		if filter.EndTo != nil && lr.EndDate.After(*filter.EndTo) {
			continue
		}
		requests = append(requests, r.withNames(lr))
	}

	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID > requests[j].ID
	})
	return requests, nil
}

// Decide implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Decide(ctx context.Context, id string, status leave.LeaveRequestStatus, approverID string, decidedAt time.Time, rejectionReason *string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	if _, ok := r.s.employees[approverID]; !ok {
		return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
	}

	request.Status = status
	request.ApproverID = &approverID
	request.ApprovedAt = &decidedAt
	request.RejectionReason = rejectionReason
	request.UpdatedAt = r.s.now()
	r.s.leaveRequests[id] = request

	return r.withNames(request), nil
}

// SumApprovedDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) SumApprovedDays(ctx context.Context, employeeID string, year int) (map[leave.LeaveType]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	used := make(map[leave.LeaveType]int)
	for _, lr := range r.s.leaveRequests {
		if lr.EmployeeID == employeeID && lr.Status == leave.LeaveRequestStatusApproved && lr.StartDate.Year() == year {
			used[lr.LeaveType] += lr.DaysRequested
		}
	}
	return used, nil
}
