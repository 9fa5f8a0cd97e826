package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(date(2024, 6, 10), date(2024, 6, 10)))
	assert.Equal(t, 3, InclusiveDays(date(2024, 6, 10), date(2024, 6, 12)))
	assert.Equal(t, 2, InclusiveDays(date(2024, 2, 28), date(2024, 2, 29)))
	assert.Equal(t, 366, InclusiveDays(date(2024, 1, 1), date(2024, 12, 31)))

	// Longer than a time.Duration can hold.
	assert.Equal(t, 191_753, InclusiveDays(date(1500, 1, 1), date(2024, 12, 31)))
	assert.Equal(t, 2_932_897, InclusiveDays(date(1970, 1, 1), date(9999, 12, 31)))
}

func TestParseEntitlements(t *testing.T) {
	ent, err := ParseEntitlements("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEntitlements(), ent)

	ent, err = ParseEntitlements(" Annual:14 , sick:10,")
	require.NoError(t, err)
	assert.Equal(t, 14, ent[LeaveTypeAnnual])
	assert.Equal(t, 10, ent[LeaveTypeSick])
	assert.Equal(t, 90, ent[LeaveTypeMaternity])

	for _, bad := range []string{"annual", "vacation:5", "annual:-1", "annual:x"} {
		_, err := ParseEntitlements(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewBalance(t *testing.T) {
	b := NewBalance(2024, DefaultEntitlements(), map[LeaveType]int{
		LeaveTypeSick:  7,
		LeaveTypeOther: 2,
	})

	assert.Equal(t, 2024, b.Year)
	assert.Len(t, b.Balance, len(LeaveTypes))
	assert.Equal(t, 5, b.Balance[LeaveTypeSick])
	assert.Equal(t, 12, b.Balance[LeaveTypeAnnual])
	assert.Equal(t, 0, b.Used[LeaveTypeAnnual])
	assert.Equal(t, -2, b.Balance[LeaveTypeOther])
}

func TestLeaveRequestStatus(t *testing.T) {
	assert.True(t, LeaveRequestStatusApproved.IsDecision())
	assert.True(t, LeaveRequestStatusRejected.IsDecision())
	assert.False(t, LeaveRequestStatusPending.IsDecision())
	assert.True(t, LeaveRequestStatusPending.IsValid())
	assert.False(t, LeaveRequestStatus("cancelled").IsValid())
}
