package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	AggregateModel
	CustomerNumber string `gorm:"type:varchar(32);not null;uniqueIndex"`
	FullName       string `gorm:"type:varchar(200);not null"`
	Email          string `gorm:"type:varchar(200);not null"`
	Phone          string `gorm:"type:varchar(32)"`
	IsActive       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *banking.Customer {
	return &banking.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerNumber:    m.CustomerNumber,
		FullName:          m.FullName,
		Email:             m.Email,
		Phone:             m.Phone,
		IsActive:          m.IsActive,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer.
func CustomerModelFromDomain(c *banking.Customer) *CustomerModel {
	m := &CustomerModel{
		CustomerNumber: c.CustomerNumber,
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		IsActive:       c.IsActive,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	AggregateModel
	AccountNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           string          `gorm:"type:varchar(16);not null"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	LastInterestAt *time.Time
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *banking.Account {
	return &banking.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AccountNumber:     m.AccountNumber,
		CustomerID:        m.CustomerID,
		Type:              banking.AccountType(m.Type),
		Balance:           m.Balance,
		InterestRate:      m.InterestRate,
		IsActive:          m.IsActive,
		LastInterestAt:    m.LastInterestAt,
	}
}

// AccountModelFromDomain creates a persistence model from a domain Account.
func AccountModelFromDomain(a *banking.Account) *AccountModel {
	m := &AccountModel{
		AccountNumber:  a.AccountNumber,
		CustomerID:     a.CustomerID,
		Type:           string(a.Type),
		Balance:        a.Balance,
		InterestRate:   a.InterestRate,
		IsActive:       a.IsActive,
		LastInterestAt: utcPtr(a.LastInterestAt),
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// FixedDepositModel is the persistence model for the FixedDeposit aggregate root.
type FixedDepositModel struct {
	AggregateModel
	FDNumber       string          `gorm:"column:fd_number;type:varchar(32);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Principal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TenureMonths   int             `gorm:"not null"`
	MaturityAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	// FundingAccountID is NULL for deposits booked without a funding account
	FundingAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	StartDate        time.Time       `gorm:"not null"`
	MaturityDate     time.Time       `gorm:"not null;index"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	IsPremature      bool            `gorm:"not null;default:false"`
	ClosedAt         *time.Time
	ClosureAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (FixedDepositModel) TableName() string {
	return "fixed_deposits"
}

// ToDomain converts the persistence model to a domain FixedDeposit entity.
func (m *FixedDepositModel) ToDomain() *banking.FixedDeposit {
	return &banking.FixedDeposit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FDNumber:          m.FDNumber,
		CustomerID:        m.CustomerID,
		Principal:         m.Principal,
		InterestRate:      m.InterestRate,
		TenureMonths:      m.TenureMonths,
		MaturityAmount:    m.MaturityAmount,
		FundingAccountID:  m.FundingAccountID,
		StartDate:         m.StartDate,
		MaturityDate:      m.MaturityDate,
		Status:            banking.FixedDepositStatus(m.Status),
		IsPremature:       m.IsPremature,
		ClosedAt:          m.ClosedAt,
		ClosureAmount:     m.ClosureAmount,
	}
}

// FixedDepositModelFromDomain creates a persistence model from a domain FixedDeposit.
func FixedDepositModelFromDomain(fd *banking.FixedDeposit) *FixedDepositModel {
	m := &FixedDepositModel{
		FDNumber:         fd.FDNumber,
		CustomerID:       fd.CustomerID,
		Principal:        fd.Principal,
		InterestRate:     fd.InterestRate,
		TenureMonths:     fd.TenureMonths,
		MaturityAmount:   fd.MaturityAmount,
		FundingAccountID: fd.FundingAccountID,
		StartDate:        fd.StartDate.UTC(),
		MaturityDate:     fd.MaturityDate.UTC(),
		Status:           string(fd.Status),
		IsPremature:      fd.IsPremature,
		ClosedAt:         utcPtr(fd.ClosedAt),
		ClosureAmount:    fd.ClosureAmount,
	}
	m.FromDomainAggregateRoot(fd.BaseAggregateRoot)
	return m
}

// RecurringDepositModel is the persistence model for the RecurringDeposit aggregate root.
type RecurringDepositModel struct {
	AggregateModel
	RDNumber         string          `gorm:"column:rd_number;type:varchar(32);not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MonthlyAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TenureMonths     int             `gorm:"not null"`
	MaturityAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPaid        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	InstallmentsPaid int             `gorm:"not null;default:0"`
	StartDate        time.Time       `gorm:"not null"`
	MaturityDate     time.Time       `gorm:"not null;index"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	IsPremature      bool            `gorm:"not null;default:false"`
	ClosedAt         *time.Time
	ClosureAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (RecurringDepositModel) TableName() string {
	return "recurring_deposits"
}

// ToDomain converts the persistence model to a domain RecurringDeposit entity.
func (m *RecurringDepositModel) ToDomain() *banking.RecurringDeposit {
	return &banking.RecurringDeposit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		RDNumber:          m.RDNumber,
		CustomerID:        m.CustomerID,
		MonthlyAmount:     m.MonthlyAmount,
		InterestRate:      m.InterestRate,
		TenureMonths:      m.TenureMonths,
		MaturityAmount:    m.MaturityAmount,
		TotalPaid:         m.TotalPaid,
		InstallmentsPaid:  m.InstallmentsPaid,
		StartDate:         m.StartDate,
		MaturityDate:      m.MaturityDate,
		Status:            banking.RecurringDepositStatus(m.Status),
		IsPremature:       m.IsPremature,
		ClosedAt:          m.ClosedAt,
		ClosureAmount:     m.ClosureAmount,
	}
}

// RecurringDepositModelFromDomain creates a persistence model from a domain RecurringDeposit.
func RecurringDepositModelFromDomain(rd *banking.RecurringDeposit) *RecurringDepositModel {
	m := &RecurringDepositModel{
		RDNumber:         rd.RDNumber,
		CustomerID:       rd.CustomerID,
		MonthlyAmount:    rd.MonthlyAmount,
		InterestRate:     rd.InterestRate,
		TenureMonths:     rd.TenureMonths,
		MaturityAmount:   rd.MaturityAmount,
		TotalPaid:        rd.TotalPaid,
		InstallmentsPaid: rd.InstallmentsPaid,
		StartDate:        rd.StartDate.UTC(),
		MaturityDate:     rd.MaturityDate.UTC(),
		Status:           string(rd.Status),
		IsPremature:      rd.IsPremature,
		ClosedAt:         utcPtr(rd.ClosedAt),
		ClosureAmount:    rd.ClosureAmount,
	}
	m.FromDomainAggregateRoot(rd.BaseAggregateRoot)
	return m
}

// LoanModel is the persistence model for the Loan aggregate root.
type LoanModel struct {
	AggregateModel
	LoanNumber   string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         string          `gorm:"type:varchar(16);not null"`
	Principal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TenureMonths int             `gorm:"not null"`
	EMI          decimal.Decimal `gorm:"column:emi;type:decimal(18,2);not null"`
	TotalPayable decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Outstanding  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentsMade int             `gorm:"not null;default:0"`
	TotalPaid    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StartDate    time.Time       `gorm:"not null"`
	Status       string          `gorm:"type:varchar(16);not null;index"`
	ClosedAt     *time.Time
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan entity.
func (m *LoanModel) ToDomain() *banking.Loan {
	return &banking.Loan{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		LoanNumber:        m.LoanNumber,
		CustomerID:        m.CustomerID,
		Type:              banking.LoanType(m.Type),
		Principal:         m.Principal,
		InterestRate:      m.InterestRate,
		TenureMonths:      m.TenureMonths,
		EMI:               m.EMI,
		TotalPayable:      m.TotalPayable,
		Outstanding:       m.Outstanding,
		PaymentsMade:      m.PaymentsMade,
		TotalPaid:         m.TotalPaid,
		StartDate:         m.StartDate,
		Status:            banking.LoanStatus(m.Status),
		ClosedAt:          m.ClosedAt,
	}
}

// LoanModelFromDomain creates a persistence model from a domain Loan.
func LoanModelFromDomain(l *banking.Loan) *LoanModel {
	m := &LoanModel{
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
		StartDate:    l.StartDate.UTC(),
		Status:       string(l.Status),
		ClosedAt:     utcPtr(l.ClosedAt),
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// LedgerEntryModel holds the columns shared by every history table.
type LedgerEntryModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionNumber string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type              string          `gorm:"type:varchar(24);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceBefore     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAfter      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description       string          `gorm:"type:varchar(500)"`
	Reference         string          `gorm:"type:varchar(64);index"`
	OperatorID        uuid.UUID       `gorm:"type:uuid"`
	Sequence          int             `gorm:"not null"`
	CreatedAt         time.Time       `gorm:"not null;index"`
}

func (m *LedgerEntryModel) toDomain() banking.LedgerEntry {
	return banking.LedgerEntry{
		ID:                m.ID,
		TransactionNumber: m.TransactionNumber,
		CustomerID:        m.CustomerID,
		Type:              banking.TransactionType(m.Type),
		Amount:            m.Amount,
		BalanceBefore:     m.BalanceBefore,
		BalanceAfter:      m.BalanceAfter,
		Description:       m.Description,
		Reference:         m.Reference,
		OperatorID:        m.OperatorID,
		Sequence:          m.Sequence,
		CreatedAt:         m.CreatedAt,
	}
}

func ledgerEntryModel(e banking.LedgerEntry) LedgerEntryModel {
	return LedgerEntryModel{
		ID:                e.ID,
		TransactionNumber: e.TransactionNumber,
		CustomerID:        e.CustomerID,
		Type:              string(e.Type),
		Amount:            e.Amount,
		BalanceBefore:     e.BalanceBefore,
		BalanceAfter:      e.BalanceAfter,
		Description:       e.Description,
		Reference:         e.Reference,
		OperatorID:        e.OperatorID,
		Sequence:          e.Sequence,
		CreatedAt:         e.CreatedAt.UTC(),
	}
}

// AccountTransactionModel is a row of the account history.
type AccountTransactionModel struct {
	LedgerEntryModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (AccountTransactionModel) TableName() string {
	return "account_transactions"
}

// ToDomain converts the row to a domain AccountTransaction.
func (m *AccountTransactionModel) ToDomain() *banking.AccountTransaction {
	return &banking.AccountTransaction{
		LedgerEntry: m.toDomain(),
		AccountID:   m.AccountID,
	}
}

// AccountTransactionModelFromDomain creates a row from a domain AccountTransaction.
func AccountTransactionModelFromDomain(t *banking.AccountTransaction) *AccountTransactionModel {
	return &AccountTransactionModel{
		LedgerEntryModel: ledgerEntryModel(t.LedgerEntry),
		AccountID:        t.AccountID,
	}
}

// FixedDepositTransactionModel is a row of the fixed deposit history.
type FixedDepositTransactionModel struct {
	LedgerEntryModel
	FixedDepositID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Interest       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (FixedDepositTransactionModel) TableName() string {
	return "fd_transactions"
}

// ToDomain converts the row to a domain FixedDepositTransaction.
func (m *FixedDepositTransactionModel) ToDomain() *banking.FixedDepositTransaction {
	return &banking.FixedDepositTransaction{
		LedgerEntry:    m.toDomain(),
		FixedDepositID: m.FixedDepositID,
		Interest:       m.Interest,
	}
}

// FixedDepositTransactionModelFromDomain creates a row from a domain FixedDepositTransaction.
func FixedDepositTransactionModelFromDomain(t *banking.FixedDepositTransaction) *FixedDepositTransactionModel {
	return &FixedDepositTransactionModel{
		LedgerEntryModel: ledgerEntryModel(t.LedgerEntry),
		FixedDepositID:   t.FixedDepositID,
		Interest:         t.Interest,
	}
}

// RecurringDepositTransactionModel is a row of the recurring deposit history.
type RecurringDepositTransactionModel struct {
	LedgerEntryModel
	RecurringDepositID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentNumber  int             `gorm:"not null;default:0"`
	Interest           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (RecurringDepositTransactionModel) TableName() string {
	return "rd_transactions"
}

// ToDomain converts the row to a domain RecurringDepositTransaction.
func (m *RecurringDepositTransactionModel) ToDomain() *banking.RecurringDepositTransaction {
	return &banking.RecurringDepositTransaction{
		LedgerEntry:        m.toDomain(),
		RecurringDepositID: m.RecurringDepositID,
		InstallmentNumber:  m.InstallmentNumber,
		Interest:           m.Interest,
	}
}

// RecurringDepositTransactionModelFromDomain creates a row from a domain RecurringDepositTransaction.
func RecurringDepositTransactionModelFromDomain(t *banking.RecurringDepositTransaction) *RecurringDepositTransactionModel {
	return &RecurringDepositTransactionModel{
		LedgerEntryModel:   ledgerEntryModel(t.LedgerEntry),
		RecurringDepositID: t.RecurringDepositID,
		InstallmentNumber:  t.InstallmentNumber,
		Interest:           t.Interest,
	}
}

// LoanTransactionModel is a row of the loan history.
type LoanTransactionModel struct {
	LedgerEntryModel
	LoanID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentNumber int             `gorm:"not null;default:0"`
	Principal         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Interest          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (LoanTransactionModel) TableName() string {
	return "loan_transactions"
}

// ToDomain converts the row to a domain LoanTransaction.
func (m *LoanTransactionModel) ToDomain() *banking.LoanTransaction {
	return &banking.LoanTransaction{
		LedgerEntry:       m.toDomain(),
		LoanID:            m.LoanID,
		InstallmentNumber: m.InstallmentNumber,
		Principal:         m.Principal,
		Interest:          m.Interest,
	}
}

// LoanTransactionModelFromDomain creates a row from a domain LoanTransaction.
func LoanTransactionModelFromDomain(t *banking.LoanTransaction) *LoanTransactionModel {
	return &LoanTransactionModel{
		LedgerEntryModel:  ledgerEntryModel(t.LedgerEntry),
		LoanID:            t.LoanID,
		InstallmentNumber: t.InstallmentNumber,
		Principal:         t.Principal,
		Interest:          t.Interest,
	}
}

// InterestCalculationModel records how an interest credit was computed.
type InterestCalculationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Rate           decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	Days           int             `gorm:"not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CalculatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InterestCalculationModel) TableName() string {
	return "interest_calculations"
}

// ToDomain converts the row to a domain InterestCalculation.
func (m *InterestCalculationModel) ToDomain() *banking.InterestCalculation {
	return &banking.InterestCalculation{
		ID:             m.ID,
		AccountID:      m.AccountID,
		TransactionID:  m.TransactionID,
		OpeningBalance: m.OpeningBalance,
		ClosingBalance: m.ClosingBalance,
		Rate:           m.Rate,
		Days:           m.Days,
		Amount:         m.Amount,
		CalculatedAt:   m.CalculatedAt,
	}
}

// InterestCalculationModelFromDomain creates a row from a domain InterestCalculation.
func InterestCalculationModelFromDomain(c *banking.InterestCalculation) *InterestCalculationModel {
	return &InterestCalculationModel{
		ID:             c.ID,
		AccountID:      c.AccountID,
		TransactionID:  c.TransactionID,
		OpeningBalance: c.OpeningBalance,
		ClosingBalance: c.ClosingBalance,
		Rate:           c.Rate,
		Days:           c.Days,
		Amount:         c.Amount,
		CalculatedAt:   c.CalculatedAt.UTC(),
	}
}

// All returns every model of the ledger schema, in creation order
func All() []any {
	return []any{
		&CustomerModel{},
		&AccountModel{},
		&FixedDepositModel{},
		&RecurringDepositModel{},
		&LoanModel{},
		&AccountTransactionModel{},
		&FixedDepositTransactionModel{},
		&RecurringDepositTransactionModel{},
		&LoanTransactionModel{},
		&InterestCalculationModel{},
	}
}
