package user

// Scope is the capability of one authenticated caller. It is resolved once per
// request by the transport layer and handed to every engine call, so engines
// never read session state on their own.
type Scope struct {
	UserID string
	Role   Role
	// EmployeeID is nil when the account has no employee record.
	EmployeeID *string
}

// Can reports whether the scope's role grants p.
func (s Scope) Can(p Permission) bool {
	return HasPermission(s.Role, p)
}

// IsSelf reports whether employeeID is the caller's own employee record.
func (s Scope) IsSelf(employeeID string) bool {
	return s.EmployeeID != nil && *s.EmployeeID == employeeID
}

// Authorize allows access to employeeID's records when the caller owns them
// and holds own, or holds all.
func (s Scope) Authorize(employeeID string, own, all Permission) error {
	if s.Can(all) {
		return nil
	}
	if s.EmployeeID == nil {
		return ErrEmployeeNotLinked
	}
	if s.IsSelf(employeeID) && s.Can(own) {
		return nil
	}
	return ErrInsufficientPermissions
}

// Narrow returns the employee filter a listing must use. Callers holding all
// keep their requested filter (nil = everyone); everybody else is pinned to
// their own employee record.
func (s Scope) Narrow(requested *string, own, all Permission) (*string, error) {
	if s.Can(all) {
		return requested, nil
	}
	if !s.Can(own) {
		return nil, ErrInsufficientPermissions
	}
	if s.EmployeeID == nil {
		return nil, ErrEmployeeNotLinked
	}
	if requested != nil && *requested != *s.EmployeeID {
		return nil, ErrInsufficientPermissions
	}
	self := *s.EmployeeID
	return &self, nil
}
