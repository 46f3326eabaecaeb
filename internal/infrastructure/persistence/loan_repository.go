package persistence

import (
	"context"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLoanRepository implements LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "loan", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a loan by ID and locks its row
func (r *GormLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*banking.Loan, error) {
	var model models.LoanModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "loan", id)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's loans, oldest first
func (r *GormLoanRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]banking.Loan, error) {
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLoans(rows), nil
}

// FindActive returns every loan still being repaid
func (r *GormLoanRepository) FindActive(ctx context.Context) ([]banking.Loan, error) {
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(banking.LoanStatusActive)).
		Order("loan_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLoans(rows), nil
}

// Create inserts a new loan
func (r *GormLoanRepository) Create(ctx context.Context, loan *banking.Loan) error {
	return r.db.WithContext(ctx).Create(models.LoanModelFromDomain(loan)).Error
}

// Update saves a loan with optimistic locking
func (r *GormLoanRepository) Update(ctx context.Context, loan *banking.Loan) error {
	return updateVersioned(r.db.WithContext(ctx), models.LoanModelFromDomain(loan), loan.ID, loan.Version)
}

func toLoans(rows []models.LoanModel) []banking.Loan {
	loans := make([]banking.Loan, len(rows))
	for i := range rows {
		loans[i] = *rows[i].ToDomain()
	}
	return loans
}

var _ banking.LoanRepository = (*GormLoanRepository)(nil)
