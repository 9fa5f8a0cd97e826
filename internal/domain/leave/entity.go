package leave

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeEmergency LeaveType = "emergency"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeOther     LeaveType = "other"
)

// LeaveTypes lists every leave type in display order.
var LeaveTypes = []LeaveType{
	LeaveTypeAnnual,
	LeaveTypeSick,
	LeaveTypeEmergency,
	LeaveTypeMaternity,
	LeaveTypePaternity,
	LeaveTypeOther,
}

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeEmergency, LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeOther:
		return true
	}
	return false
}

// LeaveRequestStatus maps to the status column of leave_requests
type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a terminal status an approver may set.
func (s LeaveRequestStatus) IsDecision() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType

	StartDate time.Time
	EndDate   time.Time
	// Inclusive day count, fixed at creation.
	DaysRequested int

	Reason string

	Status          LeaveRequestStatus
	ApproverID      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
	ApproverName *string
}

// InclusiveDays counts calendar days from start to end, both included.
// Both are calendar dates at midnight UTC. Unix seconds are used instead of
// end.Sub(start) because a time.Duration saturates after about 292 years.
func InclusiveDays(start, end time.Time) int {
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

// ListFilter is the normalized form of LeaveRequestFilter handed to the store.
type ListFilter struct {
	EmployeeID *string
	Status     *LeaveRequestStatus
	// StartFrom keeps requests with start_date >= StartFrom.
	StartFrom *time.Time
	// EndTo keeps requests with end_date <= EndTo.
	EndTo *time.Time
}

// Entitlements is the annual quota in days per leave type.
type Entitlements map[LeaveType]int

// DefaultEntitlements returns the stock per-year quotas.
func DefaultEntitlements() Entitlements {
	return Entitlements{
		LeaveTypeAnnual:    12,
		LeaveTypeSick:      12,
		LeaveTypeEmergency: 3,
		LeaveTypeMaternity: 90,
		LeaveTypePaternity: 7,
		LeaveTypeOther:     0,
	}
}

// ParseEntitlements reads "annual:14,sick:10" on top of the defaults. Types
// not listed keep their default quota.
func ParseEntitlements(s string) (Entitlements, error) {
	ent := DefaultEntitlements()
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid entitlement %q: want type:days", pair)
		}
		t := LeaveType(strings.ToLower(strings.TrimSpace(name)))
		if !t.IsValid() {
			return nil, fmt.Errorf("invalid entitlement %q: unknown leave type", pair)
		}
		days, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid entitlement %q: days must be a non-negative integer", pair)
		}
		ent[t] = days
	}
	return ent, nil
}

// Balance is the derived per-year leave position of one employee. It is
// never persisted.
type Balance struct {
	Year         int
	Entitlements map[LeaveType]int
	Used         map[LeaveType]int
	Balance      map[LeaveType]int
}

// NewBalance fills every leave type. Balance may go negative.
func NewBalance(year int, ent Entitlements, used map[LeaveType]int) Balance {
	b := Balance{
		Year:         year,
		Entitlements: make(map[LeaveType]int, len(LeaveTypes)),
		Used:         make(map[LeaveType]int, len(LeaveTypes)),
		Balance:      make(map[LeaveType]int, len(LeaveTypes)),
	}
	for _, t := range LeaveTypes {
		b.Entitlements[t] = ent[t]
		b.Used[t] = used[t]
		b.Balance[t] = ent[t] - used[t]
	}
	return b
}
