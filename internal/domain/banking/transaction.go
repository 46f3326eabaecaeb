package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType tags a ledger entry
type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeTransferIn       TransactionType = "transfer_in"
	TransactionTypeTransferOut      TransactionType = "transfer_out"
	TransactionTypeInterestCredit   TransactionType = "interest_credit"
	TransactionTypeFDCreate         TransactionType = "fd_create"
	TransactionTypeFDTopUp          TransactionType = "fd_top_up"
	TransactionTypeFDReduce         TransactionType = "fd_reduce"
	TransactionTypeFDMature         TransactionType = "fd_mature"
	TransactionTypeFDPrematureClose TransactionType = "fd_premature_close"
	TransactionTypeRDInstallment    TransactionType = "rd_installment"
	TransactionTypeRDMature         TransactionType = "rd_mature"
	TransactionTypeRDPrematureClose TransactionType = "rd_premature_close"
	TransactionTypeLoanDisbursement TransactionType = "loan_disbursement"
	TransactionTypeLoanPayment      TransactionType = "loan_payment"
	TransactionTypeLoanForeclose    TransactionType = "loan_foreclose"
)

// IsCredit reports whether the entry increases the balance it snapshots
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferIn, TransactionTypeInterestCredit,
		TransactionTypeFDCreate, TransactionTypeFDTopUp, TransactionTypeRDInstallment, TransactionTypeLoanDisbursement:
		return true
	}
	return false
}

// LedgerEntry holds the fields shared by every product's transaction record.
// Entries are append-only.
type LedgerEntry struct {
	ID                uuid.UUID
	TransactionNumber string
	CustomerID        uuid.UUID
	Type              TransactionType
	Amount            decimal.Decimal
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	Description       string
	Reference         string
	OperatorID        uuid.UUID
	// Sequence is the owning entity's version after the mutation; it orders
	// entries of one entity
	Sequence  int
	CreatedAt time.Time
}

func newLedgerEntry(number string, customerID uuid.UUID, txType TransactionType, amount decimal.Decimal, m Movement, sequence int, at time.Time) LedgerEntry {
	return LedgerEntry{
		ID:                uuid.New(),
		TransactionNumber: number,
		CustomerID:        customerID,
		Type:              txType,
		Amount:            amount,
		BalanceBefore:     m.Before,
		BalanceAfter:      m.After,
		Sequence:          sequence,
		CreatedAt:         at,
	}
}

// Annotate sets the description, the reference linking related entries and
// the acting operator
func (e *LedgerEntry) Annotate(desc, reference string, operatorID uuid.UUID) {
	e.Description = desc
	e.Reference = reference
	e.OperatorID = operatorID
}

// Signed returns the amount with the entry's sign convention applied
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Type.IsCredit() {
		return e.Amount
	}
	return e.Amount.Neg()
}

// AccountTransaction is an entry in an account's history
type AccountTransaction struct {
	LedgerEntry
	AccountID uuid.UUID
}

// NewAccountTransaction records a movement on an account, stamped at at
func NewAccountTransaction(number string, acc *Account, txType TransactionType, amount decimal.Decimal, m Movement, at time.Time) *AccountTransaction {
	return &AccountTransaction{
		LedgerEntry: newLedgerEntry(number, acc.CustomerID, txType, amount, m, acc.Version, at),
		AccountID:   acc.ID,
	}
}

// FixedDepositTransaction is an entry in a fixed deposit's history. The balance
// snapshot is the principal held: it goes to the principal on creation, follows
// principal adjustments and returns to zero on payout, with Interest carrying
// the payout above principal.
type FixedDepositTransaction struct {
	LedgerEntry
	FixedDepositID uuid.UUID
	Interest       decimal.Decimal
}

// NewFixedDepositTransaction records a fixed deposit movement
func NewFixedDepositTransaction(number string, fd *FixedDeposit, txType TransactionType, amount decimal.Decimal, m Movement, at time.Time) *FixedDepositTransaction {
	return &FixedDepositTransaction{
		LedgerEntry:    newLedgerEntry(number, fd.CustomerID, txType, amount, m, fd.Version, at),
		FixedDepositID: fd.ID,
		Interest:       decimal.Zero,
	}
}

// BalanceDelta is the change the entry made to the held principal
func (t *FixedDepositTransaction) BalanceDelta() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Sub(t.Interest).Neg()
}

// RecurringDepositTransaction is an entry in a recurring deposit's history.
// The balance snapshot is the total paid in.
type RecurringDepositTransaction struct {
	LedgerEntry
	RecurringDepositID uuid.UUID
	InstallmentNumber  int
	Interest           decimal.Decimal
}

// NewRecurringDepositTransaction records a recurring deposit movement
func NewRecurringDepositTransaction(number string, rd *RecurringDeposit, txType TransactionType, amount decimal.Decimal, m Movement, at time.Time) *RecurringDepositTransaction {
	return &RecurringDepositTransaction{
		LedgerEntry:        newLedgerEntry(number, rd.CustomerID, txType, amount, m, rd.Version, at),
		RecurringDepositID: rd.ID,
		Interest:           decimal.Zero,
	}
}

// BalanceDelta is the change the entry made to the total paid
func (t *RecurringDepositTransaction) BalanceDelta() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Sub(t.Interest).Neg()
}

// LoanTransaction is an entry in a loan's history. The balance snapshot is the
// outstanding principal.
type LoanTransaction struct {
	LedgerEntry
	LoanID            uuid.UUID
	InstallmentNumber int
	Principal         decimal.Decimal
	Interest          decimal.Decimal
}

// NewLoanTransaction records a loan movement
func NewLoanTransaction(number string, loan *Loan, txType TransactionType, amount decimal.Decimal, m Movement, at time.Time) *LoanTransaction {
	return &LoanTransaction{
		LedgerEntry: newLedgerEntry(number, loan.CustomerID, txType, amount, m, loan.Version, at),
		LoanID:      loan.ID,
		Principal:   decimal.Zero,
		Interest:    decimal.Zero,
	}
}

// BalanceDelta is the change the entry made to the outstanding
func (t *LoanTransaction) BalanceDelta() decimal.Decimal {
	switch t.Type {
	case TransactionTypeLoanDisbursement:
		return t.Amount
	case TransactionTypeLoanPayment:
		return t.Principal.Neg()
	default:
		return t.Amount.Neg()
	}
}

// InterestCalculation documents one interest credit to an account
type InterestCalculation struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	TransactionID  uuid.UUID
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Rate           decimal.Decimal
	Days           int
	Amount         decimal.Decimal
	CalculatedAt   time.Time
}

// NewInterestCalculation builds the audit row for an interest credit
func NewInterestCalculation(tx *AccountTransaction, rate decimal.Decimal, days int) *InterestCalculation {
	return &InterestCalculation{
		ID:             uuid.New(),
		AccountID:      tx.AccountID,
		TransactionID:  tx.ID,
		OpeningBalance: tx.BalanceBefore,
		ClosingBalance: tx.BalanceAfter,
		Rate:           rate,
		Days:           days,
		Amount:         tx.Amount,
		CalculatedAt:   tx.CreatedAt,
	}
}
