package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when no row matches.
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByUserID resolves an authenticated account to its employee record.
	// Returns ErrEmployeeNotFound when the account has none.
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	Create(ctx context.Context, employee Employee) (Employee, error)
}
