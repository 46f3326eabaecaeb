package ledger

import (
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Commands
// =============================================================================

// RegisterCustomerCommand registers a new customer
type RegisterCustomerCommand struct {
	FullName   string    `validate:"required,max=200"`
	Email      string    `validate:"omitempty,email,max=200"`
	Phone      string    `validate:"max=50"`
	OperatorID uuid.UUID `validate:"-"`
}

// OpenAccountCommand opens an account, optionally seeded with an initial deposit
type OpenAccountCommand struct {
	CustomerID     uuid.UUID       `validate:"required"`
	Type           string          `validate:"required,oneof=savings current salary"`
	InterestRate   decimal.Decimal `validate:"gte=0"`
	InitialBalance decimal.Decimal `validate:"gte=0"`
	Description    string          `validate:"max=500"`
	OperatorID     uuid.UUID       `validate:"-"`
}

// AccountAmountCommand is a deposit or withdrawal against one account
type AccountAmountCommand struct {
	AccountID   uuid.UUID       `validate:"required"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Description string          `validate:"max=500"`
	OperatorID  uuid.UUID       `validate:"-"`
}

// TransferCommand moves money between two distinct accounts
type TransferCommand struct {
	FromAccountID uuid.UUID       `validate:"required"`
	ToAccountID   uuid.UUID       `validate:"required"`
	Amount        decimal.Decimal `validate:"gt=0"`
	Description   string          `validate:"max=500"`
	OperatorID    uuid.UUID       `validate:"-"`
}

// ApplyInterestCommand credits accrued interest. RateOverride replaces the
// account rate; Days defaults to one.
type ApplyInterestCommand struct {
	AccountID    uuid.UUID        `validate:"required"`
	RateOverride *decimal.Decimal `validate:"omitempty,gte=0"`
	Days         int              `validate:"gte=0,max=366"`
	Description  string           `validate:"max=500"`
	OperatorID   uuid.UUID        `validate:"-"`
}

// DeactivateAccountCommand deactivates an empty account
type DeactivateAccountCommand struct {
	AccountID   uuid.UUID `validate:"required"`
	Description string    `validate:"max=500"`
	OperatorID  uuid.UUID `validate:"-"`
}

// CreateFixedDepositCommand books a fixed deposit. When FundingAccountID is
// set the principal is debited from that account in the same unit of work.
type CreateFixedDepositCommand struct {
	CustomerID       uuid.UUID       `validate:"required"`
	Principal        decimal.Decimal `validate:"gt=0"`
	InterestRate     decimal.Decimal `validate:"gt=0"`
	TenureMonths     int             `validate:"gt=0,max=600"`
	StartDate        time.Time       `validate:"-"`
	FundingAccountID *uuid.UUID      `validate:"omitempty"`
	Description      string          `validate:"max=500"`
	OperatorID       uuid.UUID       `validate:"-"`
}

// UpdateFixedDepositCommand changes the terms of an active fixed deposit. A
// principal change is settled against the funding account, if the deposit has
// one.
type UpdateFixedDepositCommand struct {
	FixedDepositID uuid.UUID       `validate:"required"`
	Principal      decimal.Decimal `validate:"gt=0"`
	InterestRate   decimal.Decimal `validate:"gt=0"`
	TenureMonths   int             `validate:"gt=0,max=600"`
	Description    string          `validate:"max=500"`
	OperatorID     uuid.UUID       `validate:"-"`
}

// CloseFixedDepositCommand pays a fixed deposit out
type CloseFixedDepositCommand struct {
	FixedDepositID  uuid.UUID  `validate:"required"`
	Premature       bool       `validate:"-"`
	PayoutAccountID *uuid.UUID `validate:"omitempty"`
	Description     string     `validate:"max=500"`
	OperatorID      uuid.UUID  `validate:"-"`
}

// CreateRecurringDepositCommand books a recurring deposit
type CreateRecurringDepositCommand struct {
	CustomerID    uuid.UUID       `validate:"required"`
	MonthlyAmount decimal.Decimal `validate:"gt=0"`
	InterestRate  decimal.Decimal `validate:"gt=0"`
	TenureMonths  int             `validate:"gt=0,max=600"`
	StartDate     time.Time       `validate:"-"`
	Description   string          `validate:"max=500"`
	OperatorID    uuid.UUID       `validate:"-"`
}

// PayInstallmentCommand pays into a recurring deposit, optionally debiting an account
type PayInstallmentCommand struct {
	RecurringDepositID uuid.UUID       `validate:"required"`
	Amount             decimal.Decimal `validate:"gt=0"`
	DebitAccountID     *uuid.UUID      `validate:"omitempty"`
	Description        string          `validate:"max=500"`
	OperatorID         uuid.UUID       `validate:"-"`
}

// CloseRecurringDepositCommand pays a recurring deposit out
type CloseRecurringDepositCommand struct {
	RecurringDepositID uuid.UUID  `validate:"required"`
	PayoutAccountID    *uuid.UUID `validate:"omitempty"`
	Description        string     `validate:"max=500"`
	OperatorID         uuid.UUID  `validate:"-"`
}

// CreateLoanCommand books a loan. When DisbursementAccountID is set the
// principal is credited to that account in the same unit of work.
type CreateLoanCommand struct {
	CustomerID            uuid.UUID       `validate:"required"`
	Type                  string          `validate:"required,oneof=personal home vehicle education business gold"`
	Principal             decimal.Decimal `validate:"gt=0"`
	InterestRate          decimal.Decimal `validate:"gte=0"`
	TenureMonths          int             `validate:"gt=0,max=600"`
	StartDate             time.Time       `validate:"-"`
	DisbursementAccountID *uuid.UUID      `validate:"omitempty"`
	Description           string          `validate:"max=500"`
	OperatorID            uuid.UUID       `validate:"-"`
}

// LoanPaymentCommand pays an installment, optionally debiting an account
type LoanPaymentCommand struct {
	LoanID         uuid.UUID       `validate:"required"`
	Amount         decimal.Decimal `validate:"gt=0"`
	DebitAccountID *uuid.UUID      `validate:"omitempty"`
	Description    string          `validate:"max=500"`
	OperatorID     uuid.UUID       `validate:"-"`
}

// ForecloseLoanCommand settles a loan early. When DebitAccountID is set the
// outstanding is debited from that account.
type ForecloseLoanCommand struct {
	LoanID         uuid.UUID  `validate:"required"`
	DebitAccountID *uuid.UUID `validate:"omitempty"`
	Description    string     `validate:"max=500"`
	OperatorID     uuid.UUID  `validate:"-"`
}

// =============================================================================
// Entity DTOs
// =============================================================================

// CustomerDTO is the read model of a customer
type CustomerDTO struct {
	ID             uuid.UUID `json:"id"`
	CustomerNumber string    `json:"customer_number"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToCustomerDTO converts a domain customer
func ToCustomerDTO(c *banking.Customer) CustomerDTO {
	return CustomerDTO{
		ID:             c.ID,
		CustomerNumber: c.CustomerNumber,
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

// AccountDTO is the read model of an account
type AccountDTO struct {
	ID             uuid.UUID       `json:"id"`
	AccountNumber  string          `json:"account_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Type           string          `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	IsActive       bool            `json:"is_active"`
	LastInterestAt *time.Time      `json:"last_interest_at,omitempty"`
	Version        int             `json:"version"`
}

// ToAccountDTO converts a domain account
func ToAccountDTO(a *banking.Account) AccountDTO {
	return AccountDTO{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		CustomerID:     a.CustomerID,
		Type:           string(a.Type),
		Balance:        a.Balance,
		InterestRate:   a.InterestRate,
		IsActive:       a.IsActive,
		LastInterestAt: a.LastInterestAt,
		Version:        a.Version,
	}
}

// FixedDepositDTO is the read model of a fixed deposit
type FixedDepositDTO struct {
	ID               uuid.UUID       `json:"id"`
	FDNumber         string          `json:"fd_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TenureMonths     int             `json:"tenure_months"`
	MaturityAmount   decimal.Decimal `json:"maturity_amount"`
	FundingAccountID *uuid.UUID      `json:"funding_account_id,omitempty"`
	StartDate        time.Time       `json:"start_date"`
	MaturityDate     time.Time       `json:"maturity_date"`
	Status           string          `json:"status"`
	IsPremature      bool            `json:"is_premature"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	ClosureAmount    decimal.Decimal `json:"closure_amount"`
}

// ToFixedDepositDTO converts a domain fixed deposit
func ToFixedDepositDTO(fd *banking.FixedDeposit) FixedDepositDTO {
	return FixedDepositDTO{
		ID:               fd.ID,
		FDNumber:         fd.FDNumber,
		CustomerID:       fd.CustomerID,
		Principal:        fd.Principal,
		InterestRate:     fd.InterestRate,
		TenureMonths:     fd.TenureMonths,
		MaturityAmount:   fd.MaturityAmount,
		FundingAccountID: fd.FundingAccountID,
		StartDate:        fd.StartDate,
		MaturityDate:     fd.MaturityDate,
		Status:           string(fd.Status),
		IsPremature:      fd.IsPremature,
		ClosedAt:         fd.ClosedAt,
		ClosureAmount:    fd.ClosureAmount,
	}
}

// RecurringDepositDTO is the read model of a recurring deposit
type RecurringDepositDTO struct {
	ID               uuid.UUID       `json:"id"`
	RDNumber         string          `json:"rd_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	MonthlyAmount    decimal.Decimal `json:"monthly_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TenureMonths     int             `json:"tenure_months"`
	MaturityAmount   decimal.Decimal `json:"maturity_amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	InstallmentsPaid int             `json:"installments_paid"`
	StartDate        time.Time       `json:"start_date"`
	MaturityDate     time.Time       `json:"maturity_date"`
	Status           string          `json:"status"`
	IsPremature      bool            `json:"is_premature"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	ClosureAmount    decimal.Decimal `json:"closure_amount"`
}

// ToRecurringDepositDTO converts a domain recurring deposit
func ToRecurringDepositDTO(rd *banking.RecurringDeposit) RecurringDepositDTO {
	return RecurringDepositDTO{
		ID:               rd.ID,
		RDNumber:         rd.RDNumber,
		CustomerID:       rd.CustomerID,
		MonthlyAmount:    rd.MonthlyAmount,
		InterestRate:     rd.InterestRate,
		TenureMonths:     rd.TenureMonths,
		MaturityAmount:   rd.MaturityAmount,
		TotalPaid:        rd.TotalPaid,
		InstallmentsPaid: rd.InstallmentsPaid,
		StartDate:        rd.StartDate,
		MaturityDate:     rd.MaturityDate,
		Status:           string(rd.Status),
		IsPremature:      rd.IsPremature,
		ClosedAt:         rd.ClosedAt,
		ClosureAmount:    rd.ClosureAmount,
	}
}

// LoanDTO is the read model of a loan
type LoanDTO struct {
	ID           uuid.UUID       `json:"id"`
	LoanNumber   string          `json:"loan_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Type         string          `json:"type"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TenureMonths int             `json:"tenure_months"`
	EMI          decimal.Decimal `json:"emi"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	PaymentsMade int             `json:"payments_made"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	StartDate    time.Time       `json:"start_date"`
	Status       string          `json:"status"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
}

// ToLoanDTO converts a domain loan
func ToLoanDTO(l *banking.Loan) LoanDTO {
	return LoanDTO{
		ID:           l.ID,
		LoanNumber:   l.LoanNumber,
		CustomerID:   l.CustomerID,
		Type:         string(l.Type),
		Principal:    l.Principal,
		InterestRate: l.InterestRate,
		TenureMonths: l.TenureMonths,
		EMI:          l.EMI,
		TotalPayable: l.TotalPayable,
		Outstanding:  l.Outstanding,
		PaymentsMade: l.PaymentsMade,
		TotalPaid:    l.TotalPaid,
		StartDate:    l.StartDate,
		Status:       string(l.Status),
		ClosedAt:     l.ClosedAt,
	}
}

// TransactionDTO is the read model of a ledger entry of any product
type TransactionDTO struct {
	ID                uuid.UUID        `json:"id"`
	TransactionNumber string           `json:"transaction_number"`
	EntityID          uuid.UUID        `json:"entity_id"`
	CustomerID        uuid.UUID        `json:"customer_id"`
	Type              string           `json:"type"`
	Amount            decimal.Decimal  `json:"amount"`
	BalanceBefore     decimal.Decimal  `json:"balance_before"`
	BalanceAfter      decimal.Decimal  `json:"balance_after"`
	Principal         *decimal.Decimal `json:"principal,omitempty"`
	Interest          *decimal.Decimal `json:"interest,omitempty"`
	InstallmentNumber int              `json:"installment_number,omitempty"`
	Description       string           `json:"description,omitempty"`
	Reference         string           `json:"reference,omitempty"`
	OperatorID        uuid.UUID        `json:"operator_id"`
	CreatedAt         time.Time        `json:"created_at"`
}

func entryDTO(entityID uuid.UUID, e banking.LedgerEntry) TransactionDTO {
	return TransactionDTO{
		ID:                e.ID,
		TransactionNumber: e.TransactionNumber,
		EntityID:          entityID,
		CustomerID:        e.CustomerID,
		Type:              string(e.Type),
		Amount:            e.Amount,
		BalanceBefore:     e.BalanceBefore,
		BalanceAfter:      e.BalanceAfter,
		Description:       e.Description,
		Reference:         e.Reference,
		OperatorID:        e.OperatorID,
		CreatedAt:         e.CreatedAt,
	}
}

// ToAccountTransactionDTO converts an account ledger entry
func ToAccountTransactionDTO(tx *banking.AccountTransaction) TransactionDTO {
	return entryDTO(tx.AccountID, tx.LedgerEntry)
}

// ToFixedDepositTransactionDTO converts a fixed deposit ledger entry
func ToFixedDepositTransactionDTO(tx *banking.FixedDepositTransaction) TransactionDTO {
	dto := entryDTO(tx.FixedDepositID, tx.LedgerEntry)
	if !tx.Interest.IsZero() {
		dto.Interest = &tx.Interest
	}
	return dto
}

// ToRecurringDepositTransactionDTO converts a recurring deposit ledger entry
func ToRecurringDepositTransactionDTO(tx *banking.RecurringDepositTransaction) TransactionDTO {
	dto := entryDTO(tx.RecurringDepositID, tx.LedgerEntry)
	dto.InstallmentNumber = tx.InstallmentNumber
	if !tx.Interest.IsZero() {
		dto.Interest = &tx.Interest
	}
	return dto
}

// ToLoanTransactionDTO converts a loan ledger entry
func ToLoanTransactionDTO(tx *banking.LoanTransaction) TransactionDTO {
	dto := entryDTO(tx.LoanID, tx.LedgerEntry)
	dto.InstallmentNumber = tx.InstallmentNumber
	if tx.Type == banking.TransactionTypeLoanPayment {
		dto.Principal = &tx.Principal
		dto.Interest = &tx.Interest
	}
	return dto
}

// InterestCalculationDTO is the read model of an interest audit row
type InterestCalculationDTO struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	TransactionID  uuid.UUID       `json:"transaction_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Rate           decimal.Decimal `json:"rate"`
	Days           int             `json:"days"`
	Amount         decimal.Decimal `json:"amount"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}

// ToInterestCalculationDTO converts an interest calculation
func ToInterestCalculationDTO(c *banking.InterestCalculation) InterestCalculationDTO {
	return InterestCalculationDTO{
		ID:             c.ID,
		AccountID:      c.AccountID,
		TransactionID:  c.TransactionID,
		OpeningBalance: c.OpeningBalance,
		ClosingBalance: c.ClosingBalance,
		Rate:           c.Rate,
		Days:           c.Days,
		Amount:         c.Amount,
		CalculatedAt:   c.CalculatedAt,
	}
}

// =============================================================================
// Operation results
// =============================================================================

// AccountResult is returned by single-account operations
type AccountResult struct {
	Account     AccountDTO      `json:"account"`
	Transaction *TransactionDTO `json:"transaction,omitempty"`
}

// TransferResult holds both legs of a transfer
type TransferResult struct {
	Reference   string         `json:"reference"`
	From        AccountDTO     `json:"from"`
	To          AccountDTO     `json:"to"`
	TransferOut TransactionDTO `json:"transfer_out"`
	TransferIn  TransactionDTO `json:"transfer_in"`
}

// InterestResult reports an interest posting; Credited is false when the
// computed interest was not positive and nothing was written
type InterestResult struct {
	Account     AccountDTO              `json:"account"`
	Credited    bool                    `json:"credited"`
	Interest    decimal.Decimal         `json:"interest"`
	Transaction *TransactionDTO         `json:"transaction,omitempty"`
	Calculation *InterestCalculationDTO `json:"calculation,omitempty"`
}

// FixedDepositResult is returned by fixed deposit operations
type FixedDepositResult struct {
	FixedDeposit       FixedDepositDTO `json:"fixed_deposit"`
	Transaction        *TransactionDTO `json:"transaction,omitempty"`
	AccountTransaction *TransactionDTO `json:"account_transaction,omitempty"`
}

// RecurringDepositResult is returned by recurring deposit operations
type RecurringDepositResult struct {
	RecurringDeposit   RecurringDepositDTO `json:"recurring_deposit"`
	Transaction        *TransactionDTO     `json:"transaction,omitempty"`
	AccountTransaction *TransactionDTO     `json:"account_transaction,omitempty"`
}

// LoanResult is returned by loan operations
type LoanResult struct {
	Loan               LoanDTO         `json:"loan"`
	Transaction        *TransactionDTO `json:"transaction,omitempty"`
	AccountTransaction *TransactionDTO `json:"account_transaction,omitempty"`
}
