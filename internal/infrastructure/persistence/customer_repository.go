package persistence

import (
	"context"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "customer", id)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a customer by customer number
func (r *GormCustomerRepository) FindByNumber(ctx context.Context, number string) (*banking.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "customer_number = ?", number).Error; err != nil {
		return nil, mapNotFound(err, "customer", number)
	}
	return model.ToDomain(), nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *banking.Customer) error {
	return r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error
}

// Update saves a customer with optimistic locking
func (r *GormCustomerRepository) Update(ctx context.Context, customer *banking.Customer) error {
	return updateVersioned(r.db.WithContext(ctx), models.CustomerModelFromDomain(customer), customer.ID, customer.Version)
}

var _ banking.CustomerRepository = (*GormCustomerRepository)(nil)
