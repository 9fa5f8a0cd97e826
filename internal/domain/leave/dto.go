package leave

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

const maxReasonLength = 1000

type CreateLeaveRequestRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
	Reason     string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	if !LeaveType(r.LeaveType).IsValid() {
		errs.Add("leave_type", "leave_type must be one of annual, sick, emergency, maternity, paternity, other")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	} else if !validator.IsValidYear(start.Year()) {
		errs.Add("start_date", "start_date year must be between 1970 and 9999")
		startOK = false
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	} else if !validator.IsValidYear(end.Year()) {
		errs.Add("end_date", "end_date year must be between 1970 and 9999")
		endOK = false
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	reason := strings.TrimSpace(r.Reason)
	if reason == "" {
		errs.Add("reason", "reason is required")
	} else if len(reason) > maxReasonLength {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type DecideLeaveRequestRequest struct {
	RequestID       string  `json:"-"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func (r *DecideLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.RequestID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if !LeaveRequestStatus(r.Status).IsDecision() {
		errs.Add("status", "status must be approved or rejected")
	}
	if r.RejectionReason != nil && len(strings.TrimSpace(*r.RejectionReason)) > maxReasonLength {
		errs.Add("rejection_reason", "rejection_reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	DaysRequested   int     `json:"days_requested"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApproverID      *string `json:"approver_id,omitempty"`
	ApproverName    *string `json:"approver_name,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

// Validate checks the filter and converts it for the store.
func (f *LeaveRequestFilter) Validate() (ListFilter, error) {
	var errs validator.ValidationErrors
	var out ListFilter

	if f.EmployeeID != nil {
		if validator.IsValidUUID(*f.EmployeeID) {
			out.EmployeeID = f.EmployeeID
		} else {
			errs.Add("employee_id", "employee_id must be a valid UUID")
		}
	}
	if f.Status != nil {
		status := LeaveRequestStatus(*f.Status)
		if status.IsValid() {
			out.Status = &status
		} else {
			errs.Add("status", "status must be pending, approved or rejected")
		}
	}
	if f.StartDate != nil {
		if d, ok := validator.IsValidDate(*f.StartDate); ok {
			out.StartFrom = &d
		} else {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if d, ok := validator.IsValidDate(*f.EndDate); ok {
			out.EndTo = &d
		} else {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if err := errs.Err(); err != nil {
		return ListFilter{}, err
	}
	return out, nil
}

type ListLeaveRequestResponse struct {
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
	Count         int                    `json:"count"`
}

type LeaveBalanceResponse struct {
	EmployeeID   string            `json:"employee_id"`
	Year         int               `json:"year"`
	Entitlements map[LeaveType]int `json:"entitlements"`
	Used         map[LeaveType]int `json:"used"`
	Balance      map[LeaveType]int `json:"balance"`
}
