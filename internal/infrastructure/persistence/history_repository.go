package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History tables are append-only: the repositories below insert and read,
// never update or delete.

// GormAccountTransactionRepository implements AccountTransactionRepository using GORM
type GormAccountTransactionRepository struct {
	db *gorm.DB
}

// NewGormAccountTransactionRepository creates a new GormAccountTransactionRepository
func NewGormAccountTransactionRepository(db *gorm.DB) *GormAccountTransactionRepository {
	return &GormAccountTransactionRepository{db: db}
}

// Append inserts an account history entry
func (r *GormAccountTransactionRepository) Append(ctx context.Context, tx *banking.AccountTransaction) error {
	return r.db.WithContext(ctx).Create(models.AccountTransactionModelFromDomain(tx)).Error
}

// FindByAccount returns the account's entries within window in sequence order
func (r *GormAccountTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, window shared.DateRange) ([]banking.AccountTransaction, error) {
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if !window.From.IsZero() {
		query = query.Where("created_at >= ?", window.From.UTC())
	}
	if !window.To.IsZero() {
		query = query.Where("created_at < ?", window.To.UTC())
	}

	var rows []models.AccountTransactionModel
	if err := query.Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]banking.AccountTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// FindLatestBefore returns the last entry created before t, or nil
func (r *GormAccountTransactionRepository) FindLatestBefore(ctx context.Context, accountID uuid.UUID, t time.Time) (*banking.AccountTransaction, error) {
	return r.latest(r.db.WithContext(ctx).Where("account_id = ? AND created_at < ?", accountID, t.UTC()))
}

// FindLatest returns the most recent entry of the account, or nil
func (r *GormAccountTransactionRepository) FindLatest(ctx context.Context, accountID uuid.UUID) (*banking.AccountTransaction, error) {
	return r.latest(r.db.WithContext(ctx).Where("account_id = ?", accountID))
}

func (r *GormAccountTransactionRepository) latest(query *gorm.DB) (*banking.AccountTransaction, error) {
	var model models.AccountTransactionModel
	if err := query.Order("sequence DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference returns every account entry sharing a reference, such as
// both legs of a transfer
func (r *GormAccountTransactionRepository) FindByReference(ctx context.Context, reference string) ([]banking.AccountTransaction, error) {
	var rows []models.AccountTransactionModel
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("created_at ASC, transaction_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]banking.AccountTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// GormFixedDepositTransactionRepository implements FixedDepositTransactionRepository using GORM
type GormFixedDepositTransactionRepository struct {
	db *gorm.DB
}

// NewGormFixedDepositTransactionRepository creates a new GormFixedDepositTransactionRepository
func NewGormFixedDepositTransactionRepository(db *gorm.DB) *GormFixedDepositTransactionRepository {
	return &GormFixedDepositTransactionRepository{db: db}
}

// Append inserts a fixed deposit history entry
func (r *GormFixedDepositTransactionRepository) Append(ctx context.Context, tx *banking.FixedDepositTransaction) error {
	return r.db.WithContext(ctx).Create(models.FixedDepositTransactionModelFromDomain(tx)).Error
}

// FindByFixedDeposit returns the deposit's entries in sequence order
func (r *GormFixedDepositTransactionRepository) FindByFixedDeposit(ctx context.Context, fdID uuid.UUID) ([]banking.FixedDepositTransaction, error) {
	var rows []models.FixedDepositTransactionModel
	if err := r.db.WithContext(ctx).
		Where("fixed_deposit_id = ?", fdID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]banking.FixedDepositTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// GormRecurringDepositTransactionRepository implements RecurringDepositTransactionRepository using GORM
type GormRecurringDepositTransactionRepository struct {
	db *gorm.DB
}

// NewGormRecurringDepositTransactionRepository creates a new GormRecurringDepositTransactionRepository
func NewGormRecurringDepositTransactionRepository(db *gorm.DB) *GormRecurringDepositTransactionRepository {
	return &GormRecurringDepositTransactionRepository{db: db}
}

// Append inserts a recurring deposit history entry
func (r *GormRecurringDepositTransactionRepository) Append(ctx context.Context, tx *banking.RecurringDepositTransaction) error {
	return r.db.WithContext(ctx).Create(models.RecurringDepositTransactionModelFromDomain(tx)).Error
}

// FindByRecurringDeposit returns the deposit's entries in sequence order
func (r *GormRecurringDepositTransactionRepository) FindByRecurringDeposit(ctx context.Context, rdID uuid.UUID) ([]banking.RecurringDepositTransaction, error) {
	var rows []models.RecurringDepositTransactionModel
	if err := r.db.WithContext(ctx).
		Where("recurring_deposit_id = ?", rdID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]banking.RecurringDepositTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// GormLoanTransactionRepository implements LoanTransactionRepository using GORM
type GormLoanTransactionRepository struct {
	db *gorm.DB
}

// NewGormLoanTransactionRepository creates a new GormLoanTransactionRepository
func NewGormLoanTransactionRepository(db *gorm.DB) *GormLoanTransactionRepository {
	return &GormLoanTransactionRepository{db: db}
}

// Append inserts a loan history entry
func (r *GormLoanTransactionRepository) Append(ctx context.Context, tx *banking.LoanTransaction) error {
	return r.db.WithContext(ctx).Create(models.LoanTransactionModelFromDomain(tx)).Error
}

// FindByLoan returns the loan's entries in sequence order
func (r *GormLoanTransactionRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]banking.LoanTransaction, error) {
	var rows []models.LoanTransactionModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]banking.LoanTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// GormInterestCalculationRepository implements InterestCalculationRepository using GORM
type GormInterestCalculationRepository struct {
	db *gorm.DB
}

// NewGormInterestCalculationRepository creates a new GormInterestCalculationRepository
func NewGormInterestCalculationRepository(db *gorm.DB) *GormInterestCalculationRepository {
	return &GormInterestCalculationRepository{db: db}
}

// Create inserts an interest calculation row
func (r *GormInterestCalculationRepository) Create(ctx context.Context, calc *banking.InterestCalculation) error {
	return r.db.WithContext(ctx).Create(models.InterestCalculationModelFromDomain(calc)).Error
}

// FindByAccount returns the account's interest calculations, oldest first
func (r *GormInterestCalculationRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]banking.InterestCalculation, error) {
	var rows []models.InterestCalculationModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("calculated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	calcs := make([]banking.InterestCalculation, len(rows))
	for i := range rows {
		calcs[i] = *rows[i].ToDomain()
	}
	return calcs, nil
}

var (
	_ banking.AccountTransactionRepository          = (*GormAccountTransactionRepository)(nil)
	_ banking.FixedDepositTransactionRepository     = (*GormFixedDepositTransactionRepository)(nil)
	_ banking.RecurringDepositTransactionRepository = (*GormRecurringDepositTransactionRepository)(nil)
	_ banking.LoanTransactionRepository             = (*GormLoanTransactionRepository)(nil)
	_ banking.InterestCalculationRepository         = (*GormInterestCalculationRepository)(nil)
)
