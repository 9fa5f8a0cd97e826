package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestScope_Authorize(t *testing.T) {
	employee := Scope{UserID: "u1", Role: RoleEmployee, EmployeeID: strPtr("e1")}
	manager := Scope{UserID: "u2", Role: RoleManager, EmployeeID: strPtr("e2")}
	unlinked := Scope{UserID: "u3", Role: RoleEmployee}

	assert.NoError(t, employee.Authorize("e1", PermissionAttendanceViewOwn, PermissionAttendanceViewAll))
	assert.ErrorIs(t, employee.Authorize("e9", PermissionAttendanceViewOwn, PermissionAttendanceViewAll), ErrInsufficientPermissions)
	assert.NoError(t, manager.Authorize("e9", PermissionAttendanceViewOwn, PermissionAttendanceViewAll))
	assert.ErrorIs(t, unlinked.Authorize("e1", PermissionAttendanceViewOwn, PermissionAttendanceViewAll), ErrEmployeeNotLinked)
}

func TestScope_Narrow(t *testing.T) {
	employee := Scope{Role: RoleEmployee, EmployeeID: strPtr("e1")}
	admin := Scope{Role: RoleAdmin}

	got, err := employee.Narrow(nil, PermissionLeaveViewOwn, PermissionLeaveViewAll)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "e1", *got)

	_, err = employee.Narrow(strPtr("e2"), PermissionLeaveViewOwn, PermissionLeaveViewAll)
	assert.ErrorIs(t, err, ErrInsufficientPermissions)

	got, err = admin.Narrow(nil, PermissionLeaveViewOwn, PermissionLeaveViewAll)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = admin.Narrow(strPtr("e5"), PermissionLeaveViewOwn, PermissionLeaveViewAll)
	require.NoError(t, err)
	assert.Equal(t, "e5", *got)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleManager, PermissionLeaveApprove))
	assert.True(t, HasPermission(RoleAdmin, PermissionLeaveApprove))
	assert.False(t, HasPermission(RoleEmployee, PermissionLeaveApprove))
	assert.False(t, HasPermission(Role("owner"), PermissionLeaveViewOwn))
}
