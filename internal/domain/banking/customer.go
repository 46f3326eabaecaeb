package banking

import (
	"net/mail"
	"strings"

	"github.com/corebank/backend/internal/domain/shared"
)

// Customer owns accounts, deposits and loans and is the recipient of their alerts
type Customer struct {
	shared.BaseAggregateRoot
	CustomerNumber string
	FullName       string
	Email          string
	Phone          string
	IsActive       bool
}

// NewCustomer creates an active customer
func NewCustomer(number, fullName, email, phone string) (*Customer, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Customer number cannot be empty")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, shared.NewValidationError("INVALID_EMAIL", "Customer email is not a valid address")
		}
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerNumber:    number,
		FullName:          fullName,
		Email:             email,
		Phone:             phone,
		IsActive:          true,
	}, nil
}

// EnsureActive returns a not-found error for deactivated customers, which may
// not take new products
func (c *Customer) EnsureActive() error {
	if !c.IsActive {
		return shared.NewNotFoundError("Customer", c.CustomerNumber)
	}
	return nil
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.IncrementVersion()
}
