package persistence

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"gorm.io/gorm"
)

// numberColumns maps each number kind to the table and column it must be
// unique in
var numberColumns = map[banking.NumberKind]struct{ table, column string }{
	banking.NumberKindCustomer:                    {"customers", "customer_number"},
	banking.NumberKindAccount:                     {"accounts", "account_number"},
	banking.NumberKindFixedDeposit:                {"fixed_deposits", "fd_number"},
	banking.NumberKindRecurringDeposit:            {"recurring_deposits", "rd_number"},
	banking.NumberKindLoan:                        {"loans", "loan_number"},
	banking.NumberKindAccountTransaction:          {"account_transactions", "transaction_number"},
	banking.NumberKindFixedDepositTransaction:     {"fd_transactions", "transaction_number"},
	banking.NumberKindRecurringDepositTransaction: {"rd_transactions", "transaction_number"},
	banking.NumberKindLoanTransaction:             {"loan_transactions", "transaction_number"},
	banking.NumberKindTransferReference:           {"account_transactions", "reference"},
}

// GormNumberRegistry answers whether a generated number is already taken
type GormNumberRegistry struct {
	db *gorm.DB
}

// NewGormNumberRegistry creates a new GormNumberRegistry
func NewGormNumberRegistry(db *gorm.DB) *GormNumberRegistry {
	return &GormNumberRegistry{db: db}
}

// Exists reports whether number is already used for kind
func (r *GormNumberRegistry) Exists(ctx context.Context, kind banking.NumberKind, number string) (bool, error) {
	target, ok := numberColumns[kind]
	if !ok {
		return false, fmt.Errorf("unknown number kind %q", kind)
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Table(target.table).
		Where(target.column+" = ?", number).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ banking.NumberRegistry = (*GormNumberRegistry)(nil)
