package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
)

// LeaveService governs the leave request lifecycle and the balances derived
// from it.
type LeaveService interface {
	// CreateRequest submits a pending request. Balance is not checked here;
	// approval is the gate.
	CreateRequest(ctx context.Context, scope user.Scope, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)

	// Decide approves or rejects a pending request on behalf of the caller.
	Decide(ctx context.Context, scope user.Scope, req DecideLeaveRequestRequest) (LeaveRequestResponse, error)

	GetRequest(ctx context.Context, scope user.Scope, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, scope user.Scope, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)

	ComputeBalance(ctx context.Context, scope user.Scope, employeeID string, year int) (LeaveBalanceResponse, error)
}
