package port

import (
	"context"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
)

// CustomerRepository exposes persistence behavior for customer records.
type CustomerRepository interface {
	Insert(ctx context.Context, customer domain.Customer) error
	List(ctx context.Context) ([]domain.Customer, error)
}
