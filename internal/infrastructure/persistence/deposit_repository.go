package persistence

import (
	"context"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFixedDepositRepository implements FixedDepositRepository using GORM
type GormFixedDepositRepository struct {
	db *gorm.DB
}

// NewGormFixedDepositRepository creates a new GormFixedDepositRepository
func NewGormFixedDepositRepository(db *gorm.DB) *GormFixedDepositRepository {
	return &GormFixedDepositRepository{db: db}
}

// FindByID finds a fixed deposit by ID
func (r *GormFixedDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.FixedDeposit, error) {
	var model models.FixedDepositModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "fixed deposit", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a fixed deposit by ID and locks its row
func (r *GormFixedDepositRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*banking.FixedDeposit, error) {
	var model models.FixedDepositModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "fixed deposit", id)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's fixed deposits, oldest first
func (r *GormFixedDepositRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]banking.FixedDeposit, error) {
	var rows []models.FixedDepositModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toFixedDeposits(rows), nil
}

// FindMaturingBetween returns active deposits maturing in [from, to), earliest first
func (r *GormFixedDepositRepository) FindMaturingBetween(ctx context.Context, from, to time.Time) ([]banking.FixedDeposit, error) {
	var rows []models.FixedDepositModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND maturity_date >= ? AND maturity_date < ?",
			string(banking.FixedDepositStatusActive), from.UTC(), to.UTC()).
		Order("maturity_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toFixedDeposits(rows), nil
}

// Create inserts a new fixed deposit
func (r *GormFixedDepositRepository) Create(ctx context.Context, fd *banking.FixedDeposit) error {
	return r.db.WithContext(ctx).Create(models.FixedDepositModelFromDomain(fd)).Error
}

// Update saves a fixed deposit with optimistic locking
func (r *GormFixedDepositRepository) Update(ctx context.Context, fd *banking.FixedDeposit) error {
	return updateVersioned(r.db.WithContext(ctx), models.FixedDepositModelFromDomain(fd), fd.ID, fd.Version)
}

func toFixedDeposits(rows []models.FixedDepositModel) []banking.FixedDeposit {
	deposits := make([]banking.FixedDeposit, len(rows))
	for i := range rows {
		deposits[i] = *rows[i].ToDomain()
	}
	return deposits
}

// GormRecurringDepositRepository implements RecurringDepositRepository using GORM
type GormRecurringDepositRepository struct {
	db *gorm.DB
}

// NewGormRecurringDepositRepository creates a new GormRecurringDepositRepository
func NewGormRecurringDepositRepository(db *gorm.DB) *GormRecurringDepositRepository {
	return &GormRecurringDepositRepository{db: db}
}

// FindByID finds a recurring deposit by ID
func (r *GormRecurringDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.RecurringDeposit, error) {
	var model models.RecurringDepositModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "recurring deposit", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a recurring deposit by ID and locks its row
func (r *GormRecurringDepositRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*banking.RecurringDeposit, error) {
	var model models.RecurringDepositModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "recurring deposit", id)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's recurring deposits, oldest first
func (r *GormRecurringDepositRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]banking.RecurringDeposit, error) {
	var rows []models.RecurringDepositModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecurringDeposits(rows), nil
}

// FindActive returns every recurring deposit still taking installments
func (r *GormRecurringDepositRepository) FindActive(ctx context.Context) ([]banking.RecurringDeposit, error) {
	var rows []models.RecurringDepositModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(banking.RecurringDepositStatusActive)).
		Order("rd_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecurringDeposits(rows), nil
}

// FindMaturingBetween returns open deposits maturing in [from, to), earliest first
func (r *GormRecurringDepositRepository) FindMaturingBetween(ctx context.Context, from, to time.Time) ([]banking.RecurringDeposit, error) {
	var rows []models.RecurringDepositModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND maturity_date >= ? AND maturity_date < ?",
			[]string{string(banking.RecurringDepositStatusActive), string(banking.RecurringDepositStatusCompleted)},
			from.UTC(), to.UTC()).
		Order("maturity_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecurringDeposits(rows), nil
}

// Create inserts a new recurring deposit
func (r *GormRecurringDepositRepository) Create(ctx context.Context, rd *banking.RecurringDeposit) error {
	return r.db.WithContext(ctx).Create(models.RecurringDepositModelFromDomain(rd)).Error
}

// Update saves a recurring deposit with optimistic locking
func (r *GormRecurringDepositRepository) Update(ctx context.Context, rd *banking.RecurringDeposit) error {
	return updateVersioned(r.db.WithContext(ctx), models.RecurringDepositModelFromDomain(rd), rd.ID, rd.Version)
}

func toRecurringDeposits(rows []models.RecurringDepositModel) []banking.RecurringDeposit {
	deposits := make([]banking.RecurringDeposit, len(rows))
	for i := range rows {
		deposits[i] = *rows[i].ToDomain()
	}
	return deposits
}

var (
	_ banking.FixedDepositRepository     = (*GormFixedDepositRepository)(nil)
	_ banking.RecurringDepositRepository = (*GormRecurringDepositRepository)(nil)
)
