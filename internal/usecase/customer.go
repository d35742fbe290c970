package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
)

// CustomerService manages the customer records behind the portal.
type CustomerService struct {
	customers port.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerService constructs a customer service.
func NewCustomerService(customers port.CustomerRepository, log *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: log}
}

// AddCustomer stores a new customer record.
func (s *CustomerService) AddCustomer(ctx context.Context, name, address, phone string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	phone = strings.TrimSpace(phone)
	if name == "" || address == "" || phone == "" {
		return nil, ErrMissingFields
	}

	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.customers.Insert(ctx, customer); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	s.logger.Info("customer added", zap.String("customer_id", customer.ID))

	return &customer, nil
}

// ListCustomers returns all customer records.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}
