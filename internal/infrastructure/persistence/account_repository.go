package persistence

import (
	"context"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an account by ID and locks its row
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*banking.Account, error) {
	var model models.AccountModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an account by account number
func (r *GormAccountRepository) FindByNumber(ctx context.Context, number string) (*banking.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "account_number = ?", number).Error; err != nil {
		return nil, mapNotFound(err, "account", number)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's accounts, oldest first
func (r *GormAccountRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]banking.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// FindInterestBearing pages through active accounts that earn interest,
// ordered by account number in the filter's direction
func (r *GormAccountRepository) FindInterestBearing(ctx context.Context, filter shared.Filter) ([]banking.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND interest_rate > 0 AND balance > 0", true).
		Order(orderBy("account_number", filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// Create inserts a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *banking.Account) error {
	return r.db.WithContext(ctx).Create(models.AccountModelFromDomain(account)).Error
}

// Update saves an account with optimistic locking
func (r *GormAccountRepository) Update(ctx context.Context, account *banking.Account) error {
	return updateVersioned(r.db.WithContext(ctx), models.AccountModelFromDomain(account), account.ID, account.Version)
}

func toAccounts(rows []models.AccountModel) []banking.Account {
	accounts := make([]banking.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts
}

var _ banking.AccountRepository = (*GormAccountRepository)(nil)
