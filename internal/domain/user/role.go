package user

type Role string

const (
	RoleAdmin    Role = "admin"    // HR administrator - full access
	RoleManager  Role = "manager"  // Can approve leave and view all records
	RoleEmployee Role = "employee" // Own records only
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// IsPrivileged is true for roles whose listings may span every employee.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}
