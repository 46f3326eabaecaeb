package ledger

import (
	"context"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService registers and looks up customers
type CustomerService struct {
	core
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(cfg Config) *CustomerService {
	return &CustomerService{core: newCore(cfg)}
}

// Register creates a customer with a generated customer number
func (s *CustomerService) Register(ctx context.Context, cmd RegisterCustomerCommand) (*CustomerDTO, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result CustomerDTO
	err := s.execute(ctx, "customer.register", func(ctx context.Context, uow *unitOfWork) error {
		number, err := s.nextNumber(ctx, uow, banking.NumberKindCustomer)
		if err != nil {
			return err
		}
		customer, err := banking.NewCustomer(number, cmd.FullName, cmd.Email, cmd.Phone)
		if err != nil {
			return err
		}
		if err := uow.repos.CustomerRepo().Create(ctx, customer); err != nil {
			return err
		}
		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionCustomerRegister,
			EntityKind:  banking.AggregateTypeCustomer,
			EntityID:    customer.ID,
			Description: "Registered customer " + customer.CustomerNumber,
		})
		result = ToCustomerDTO(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Customer registered", zap.String("customer_number", result.CustomerNumber))
	return &result, nil
}

// GetByID returns a customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	var result CustomerDTO
	err := s.read(ctx, "customer.get", func(repos TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = ToCustomerDTO(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
