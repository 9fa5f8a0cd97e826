package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	empID     = "0190a6a0-0000-7000-8000-0000000000e1"
	otherID   = "0190a6a0-0000-7000-8000-0000000000e2"
	managerID = "0190a6a0-0000-7000-8000-0000000000a1"
)

type fixture struct {
	svc     leave.LeaveService
	clock   *clock.Fixed
	emp     user.Scope
	other   user.Scope
	manager user.Scope
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T, entitlements leave.Entitlements) *fixture {
	t.Helper()

	clk := &clock.Fixed{T: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)}
	store := memory.NewStore(clk)
	for _, e := range []employee.Employee{
		{ID: empID, EmployeeCode: "E1", FullName: "Ayu Lestari"},
		{ID: otherID, EmployeeCode: "E2", FullName: "Budi Santoso"},
		{ID: managerID, EmployeeCode: "M1", FullName: "Citra Dewi"},
	} {
		_, err := store.Employees().Create(context.Background(), e)
		require.NoError(t, err)
	}

	return &fixture{
		svc:     NewLeaveService(store.LeaveRequests(), store.Employees(), entitlements, clk),
		clock:   clk,
		emp:     user.Scope{UserID: "u1", Role: user.RoleEmployee, EmployeeID: strPtr(empID)},
		other:   user.Scope{UserID: "u2", Role: user.RoleEmployee, EmployeeID: strPtr(otherID)},
		manager: user.Scope{UserID: "u3", Role: user.RoleManager, EmployeeID: strPtr(managerID)},
	}
}

func (f *fixture) submit(t *testing.T, leaveType leave.LeaveType, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	created, err := f.svc.CreateRequest(context.Background(), f.emp, leave.CreateLeaveRequestRequest{
		EmployeeID: empID,
		LeaveType:  string(leaveType),
		StartDate:  start,
		EndDate:    end,
		Reason:     "family event",
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) approve(t *testing.T, id string) leave.LeaveRequestResponse {
	t.Helper()
	decided, err := f.svc.Decide(context.Background(), f.manager, leave.DecideLeaveRequestRequest{
		RequestID: id,
		Status:    string(leave.LeaveRequestStatusApproved),
	})
	require.NoError(t, err)
	return decided
}

func TestCreateRequest_InclusiveDays(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-06-10", "2024-06-12", 3},
		{"2024-06-10", "2024-06-10", 1},
		{"2024-02-28", "2024-03-01", 3},
		{"2024-12-30", "2025-01-02", 4},
	}
	for _, c := range cases {
		got := f.submit(t, leave.LeaveTypeAnnual, c.start, c.end)
		assert.Equal(t, c.want, got.DaysRequested, "%s..%s", c.start, c.end)
		assert.Equal(t, "pending", got.Status)
		assert.Nil(t, got.ApproverID)
		assert.Nil(t, got.ApprovedAt)
		assert.Nil(t, got.RejectionReason)
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateRequest(context.Background(), f.emp, leave.CreateLeaveRequestRequest{
		EmployeeID: empID,
		LeaveType:  "sabbatical",
		StartDate:  "2024-06-12",
		EndDate:    "2024-06-10",
		Reason:     "   ",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "leave_type")
	assert.Contains(t, fields, "end_date")
	assert.Contains(t, fields, "reason")

	_, err = f.svc.CreateRequest(context.Background(), f.emp, leave.CreateLeaveRequestRequest{
		EmployeeID: empID,
		LeaveType:  "annual",
		StartDate:  "2024-02-30",
		EndDate:    "2024-03-01",
		Reason:     "x",
	})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start_date")

	_, err = f.svc.CreateRequest(context.Background(), f.emp, leave.CreateLeaveRequestRequest{
		EmployeeID: empID,
		LeaveType:  "annual",
		StartDate:  "1500-01-01",
		EndDate:    "2024-12-31",
		Reason:     "x",
	})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start_date")
}

func TestCreateRequest_OnBehalf(t *testing.T) {
	f := newFixture(t, nil)
	req := leave.CreateLeaveRequestRequest{
		EmployeeID: otherID,
		LeaveType:  "sick",
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-10",
		Reason:     "flu",
	}

	_, err := f.svc.CreateRequest(context.Background(), f.emp, req)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	created, err := f.svc.CreateRequest(context.Background(), f.manager, req)
	require.NoError(t, err)
	assert.Equal(t, otherID, created.EmployeeID)
}

func TestCreateRequest_NoBalanceCheck(t *testing.T) {
	f := newFixture(t, nil)

	// 20 days of annual leave against an entitlement of 12 is accepted
	created := f.submit(t, leave.LeaveTypeAnnual, "2024-07-01", "2024-07-20")
	f.approve(t, created.ID)

	balance, err := f.svc.ComputeBalance(context.Background(), f.emp, empID, 2024)
	require.NoError(t, err)
	assert.Equal(t, -8, balance.Balance[leave.LeaveTypeAnnual])
}

func TestDecide_Scenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created := f.submit(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12")
	assert.Equal(t, 3, created.DaysRequested)

	decided := f.approve(t, created.ID)
	assert.Equal(t, "approved", decided.Status)
	require.NotNil(t, decided.ApproverID)
	assert.Equal(t, managerID, *decided.ApproverID)
	require.NotNil(t, decided.ApprovedAt)
	assert.Equal(t, "2024-05-20T10:00:00Z", *decided.ApprovedAt)
	assert.Equal(t, 3, decided.DaysRequested)

	balance, err := f.svc.ComputeBalance(ctx, f.emp, empID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 9, balance.Balance[leave.LeaveTypeAnnual])
	assert.Equal(t, 3, balance.Used[leave.LeaveTypeAnnual])
	assert.Equal(t, 12, balance.Entitlements[leave.LeaveTypeAnnual])
}

func TestDecide_SecondDecisionConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created := f.submit(t, leave.LeaveTypeSick, "2024-06-10", "2024-06-11")
	f.approve(t, created.ID)

	_, err := f.svc.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{
		RequestID:       created.ID,
		Status:          "rejected",
		RejectionReason: strPtr("changed my mind"),
	})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	got, err := f.svc.GetRequest(ctx, f.emp, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	assert.Nil(t, got.RejectionReason)
}

func TestDecide_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	f := newFixture(t, nil)
	created := f.submit(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12")

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Decide(context.Background(), f.manager, leave.DecideLeaveRequestRequest{RequestID: created.ID, Status: "approved"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed) {
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
}

func TestDecide_RejectionReasonOnlyOnReject(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := f.submit(t, leave.LeaveTypeOther, "2024-06-10", "2024-06-10")
	approved, err := f.svc.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{RequestID: a.ID, Status: "approved", RejectionReason: strPtr("ignored")})
	require.NoError(t, err)
	assert.Nil(t, approved.RejectionReason)

	r := f.submit(t, leave.LeaveTypeOther, "2024-06-11", "2024-06-11")
	rejected, err := f.svc.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{RequestID: r.ID, Status: "rejected", RejectionReason: strPtr(" busy season ")})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "busy season", *rejected.RejectionReason)
}

func TestDecide_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created := f.submit(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12")

	_, err := f.svc.Decide(ctx, f.emp, leave.DecideLeaveRequestRequest{RequestID: created.ID, Status: "approved"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	unlinkedAdmin := user.Scope{UserID: "u9", Role: user.RoleAdmin}
	_, err = f.svc.Decide(ctx, unlinkedAdmin, leave.DecideLeaveRequestRequest{RequestID: created.ID, Status: "approved"})
	assert.ErrorIs(t, err, user.ErrEmployeeNotLinked)

	_, err = f.svc.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{RequestID: "0190a6a0-0000-7000-8000-0000000000ff", Status: "approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	_, err = f.svc.Decide(ctx, f.manager, leave.DecideLeaveRequestRequest{RequestID: created.ID, Status: "pending"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "status")
}

func TestComputeBalance_SickScenario(t *testing.T) {
	f := newFixture(t, nil)

	f.approve(t, f.submit(t, leave.LeaveTypeSick, "2024-02-01", "2024-02-02").ID)
	f.approve(t, f.submit(t, leave.LeaveTypeSick, "2024-09-02", "2024-09-06").ID)
	// Pending and other-year requests are not counted
	f.submit(t, leave.LeaveTypeSick, "2024-10-01", "2024-10-01")
	f.approve(t, f.submit(t, leave.LeaveTypeSick, "2023-12-28", "2023-12-29").ID)

	balance, err := f.svc.ComputeBalance(context.Background(), f.emp, empID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 7, balance.Used[leave.LeaveTypeSick])
	assert.Equal(t, 5, balance.Balance[leave.LeaveTypeSick])

	defaults := leave.DefaultEntitlements()
	for _, lt := range leave.LeaveTypes {
		if lt == leave.LeaveTypeSick {
			continue
		}
		assert.Equal(t, 0, balance.Used[lt], lt)
		assert.Equal(t, defaults[lt], balance.Balance[lt], lt)
	}
}

func TestComputeBalance_InjectedEntitlements(t *testing.T) {
	ent := leave.DefaultEntitlements()
	ent[leave.LeaveTypeAnnual] = 20
	f := newFixture(t, ent)

	f.approve(t, f.submit(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12").ID)

	balance, err := f.svc.ComputeBalance(context.Background(), f.emp, empID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 17, balance.Balance[leave.LeaveTypeAnnual])
}

func TestComputeBalance_Access(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ComputeBalance(ctx, f.other, empID, 2024)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.svc.ComputeBalance(ctx, f.manager, empID, 2024)
	assert.NoError(t, err)

	_, err = f.svc.ComputeBalance(ctx, f.manager, "0190a6a0-0000-7000-8000-0000000000ff", 2024)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListAndGetRequests_Scope(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	mine := f.submit(t, leave.LeaveTypeAnnual, "2024-06-10", "2024-06-12")
	f.clock.Set(f.clock.T.Add(time.Minute))
	theirs, err := f.svc.CreateRequest(ctx, f.other, leave.CreateLeaveRequestRequest{
		EmployeeID: otherID, LeaveType: "sick", StartDate: "2024-06-01", EndDate: "2024-06-01", Reason: "flu",
	})
	require.NoError(t, err)

	own, err := f.svc.ListRequests(ctx, f.emp, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, own.Count)
	assert.Equal(t, mine.ID, own.LeaveRequests[0].ID)

	_, err = f.svc.ListRequests(ctx, f.emp, leave.LeaveRequestFilter{EmployeeID: strPtr(otherID)})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	all, err := f.svc.ListRequests(ctx, f.manager, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Count)
	assert.Equal(t, theirs.ID, all.LeaveRequests[0].ID, "newest first")

	pending, err := f.svc.ListRequests(ctx, f.manager, leave.LeaveRequestFilter{Status: strPtr("approved")})
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Count)

	ranged, err := f.svc.ListRequests(ctx, f.manager, leave.LeaveRequestFilter{StartDate: strPtr("2024-06-05")})
	require.NoError(t, err)
	require.Equal(t, 1, ranged.Count)
	assert.Equal(t, mine.ID, ranged.LeaveRequests[0].ID)

	_, err = f.svc.GetRequest(ctx, f.emp, theirs.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	got, err := f.svc.GetRequest(ctx, f.manager, theirs.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Budi Santoso", *got.EmployeeName)
}
