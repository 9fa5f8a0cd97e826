package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row written by the tests
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	return postgresql.WithTransaction(ctx, s.DB, func(ctx context.Context) error {
		for _, table := range []string{"leave_requests", "attendance_records", "employees"} {
			if _, err := postgresql.GetQuerier(ctx, s.DB).Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// CreateEmployee inserts an employee with a unique code
func (s *TestDatabaseSetup) CreateEmployee(t *testing.T, name string) employee.Employee {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	e, err := postgresql.NewEmployeeRepository(s.DB).Create(context.Background(), employee.Employee{
		ID:           id,
		EmployeeCode: "EMP-" + id[len(id)-8:],
		FullName:     name,
	})
	require.NoError(t, err)
	return e
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
