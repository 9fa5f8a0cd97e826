package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
)

// BalanceService derives leave balances from approved requests. Nothing is
// cached; every call reads the ledger.
type BalanceService struct {
	leave.LeaveRequestRepository
	entitlements leave.Entitlements
}

func NewBalanceService(leaveRequestRepository leave.LeaveRequestRepository, entitlements leave.Entitlements) *BalanceService {
	if entitlements == nil {
		entitlements = leave.DefaultEntitlements()
	}
	return &BalanceService{
		LeaveRequestRepository: leaveRequestRepository,
		entitlements:           entitlements,
	}
}

// Compute returns entitlement, used and balance for every leave type.
func (b *BalanceService) Compute(ctx context.Context, employeeID string, year int) (leave.Balance, error) {
	used, err := b.LeaveRequestRepository.SumApprovedDays(ctx, employeeID, year)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to sum approved leave days: %w", err)
	}
	return leave.NewBalance(year, b.entitlements, used), nil
}
