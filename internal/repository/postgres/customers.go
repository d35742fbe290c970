package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
)

// CustomerRepository implements port.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewCustomerRepository(exec pgExecutor) *CustomerRepository {
	return &CustomerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert stores a new customer record.
func (r *CustomerRepository) Insert(ctx context.Context, customer domain.Customer) error {
	stmt, args, err := r.builder.Insert("portal.customers").
		Columns("id", "name", "address", "phone", "created_at").
		Values(customer.ID, customer.Name, customer.Address, customer.Phone, customer.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert customer sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// List returns all customers, oldest first.
func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "address", "phone", "created_at").
		From("portal.customers").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list customers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Address, &customer.Phone, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

var _ port.CustomerRepository = (*CustomerRepository)(nil)
