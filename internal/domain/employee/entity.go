package employee

import "time"

// Employee is the slice of the employee master record the attendance and
// leave core depends on. Employee management itself lives elsewhere.
type Employee struct {
	ID           string
	UserID       *string
	EmployeeCode string
	FullName     string
	Position     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
