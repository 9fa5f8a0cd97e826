// Package fixtures seeds a demo roster so the memory driver is usable
// without an external employee system.
package fixtures

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
)

func strPtr(s string) *string { return &s }

// DemoEmployees returns a fixed roster. IDs and user ids are stable so
// tokens issued with cmd/token keep working across restarts.
func DemoEmployees() []employee.Employee {
	return []employee.Employee{
		{
			ID:           "0190a6a0-0000-7000-8000-00000000a001",
			UserID:       strPtr("admin"),
			EmployeeCode: "HR-001",
			FullName:     "Dewi Anggraini",
			Position:     strPtr("HR Administrator"),
		},
		{
			ID:           "0190a6a0-0000-7000-8000-00000000b001",
			UserID:       strPtr("manager"),
			EmployeeCode: "ENG-001",
			FullName:     "Rizky Pratama",
			Position:     strPtr("Engineering Manager"),
		},
		{
			ID:           "0190a6a0-0000-7000-8000-00000000c001",
			UserID:       strPtr("employee"),
			EmployeeCode: "ENG-002",
			FullName:     "Siti Rahmawati",
			Position:     strPtr("Software Engineer"),
		},
		{
			ID:           "0190a6a0-0000-7000-8000-00000000c002",
			UserID:       strPtr("employee2"),
			EmployeeCode: "ENG-003",
			FullName:     "Agus Setiawan",
			Position:     strPtr("QA Engineer"),
		},
	}
}

// SeedDemoEmployees inserts the roster, skipping employees that exist.
func SeedDemoEmployees(ctx context.Context, repo employee.EmployeeRepository) (int, error) {
	created := 0
	for _, e := range DemoEmployees() {
		if _, err := repo.Create(ctx, e); err != nil {
			if errors.Is(err, employee.ErrEmployeeExists) {
				continue
			}
			return created, fmt.Errorf("failed to seed employee %s: %w", e.EmployeeCode, err)
		}
		created++
	}
	return created, nil
}
