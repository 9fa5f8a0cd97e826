package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.employeeByUser[userID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.s.employees[id], nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.employees[e.ID]; exists {
		return employee.Employee{}, employee.ErrEmployeeExists
	}
	for _, other := range r.s.employees {
		if other.EmployeeCode == e.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeExists
		}
	}
	if e.UserID != nil {
		if _, taken := r.s.employeeByUser[*e.UserID]; taken {
			return employee.Employee{}, employee.ErrEmployeeExists
		}
		r.s.employeeByUser[*e.UserID] = e.ID
	}

	now := r.s.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.s.employees[e.ID] = e
	return e, nil
}
