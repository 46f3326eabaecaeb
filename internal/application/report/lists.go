package report

import (
	"context"
	"sort"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductKind names the product a list row belongs to
type ProductKind string

const (
	ProductFixedDeposit     ProductKind = "fixed_deposit"
	ProductRecurringDeposit ProductKind = "recurring_deposit"
	ProductLoan             ProductKind = "loan"
)

func horizon(days int) int {
	if days <= 0 {
		return DefaultHorizonDays
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b, negative when b is earlier
func daysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

// ===================== Maturing Deposits =====================

// MaturingDeposit is a deposit maturing inside the horizon
type MaturingDeposit struct {
	Kind           ProductKind     `json:"kind"`
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	MaturityDate   time.Time       `json:"maturity_date"`
	MaturityAmount decimal.Decimal `json:"maturity_amount"`
	Status         string          `json:"status"`
	DaysRemaining  int             `json:"days_remaining"`
}

// MaturingDepositsResponse lists deposits maturing within a horizon
type MaturingDepositsResponse struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Deposits    []MaturingDeposit `json:"deposits"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// GetMaturingDeposits lists fixed and recurring deposits whose maturity date
// falls between the start of today and horizonDays later, soonest first
func (s *ReportService) GetMaturingDeposits(ctx context.Context, horizonDays int) (*MaturingDepositsResponse, error) {
	from := startOfDay(s.now())
	to := from.AddDate(0, 0, horizon(horizonDays)+1)
	result := MaturingDepositsResponse{
		From:        from,
		To:          to,
		Deposits:    []MaturingDeposit{},
		TotalAmount: decimal.Zero,
	}

	err := s.read(ctx, "maturing_deposits", func(repos ledger.TransactionalRepositories) error {
		fds, err := repos.FixedDepositRepo().FindMaturingBetween(ctx, from, to)
		if err != nil {
			return err
		}
		rds, err := repos.RecurringDepositRepo().FindMaturingBetween(ctx, from, to)
		if err != nil {
			return err
		}

		for i := range fds {
			fd := &fds[i]
			result.Deposits = append(result.Deposits, MaturingDeposit{
				Kind:           ProductFixedDeposit,
				ID:             fd.ID,
				Number:         fd.FDNumber,
				CustomerID:     fd.CustomerID,
				MaturityDate:   fd.MaturityDate,
				MaturityAmount: fd.MaturityAmount,
				Status:         string(fd.Status),
				DaysRemaining:  daysBetween(from, fd.MaturityDate),
			})
		}
		for i := range rds {
			rd := &rds[i]
			result.Deposits = append(result.Deposits, MaturingDeposit{
				Kind:           ProductRecurringDeposit,
				ID:             rd.ID,
				Number:         rd.RDNumber,
				CustomerID:     rd.CustomerID,
				MaturityDate:   rd.MaturityDate,
				MaturityAmount: rd.MaturityAmount,
				Status:         string(rd.Status),
				DaysRemaining:  daysBetween(from, rd.MaturityDate),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result.Deposits, func(i, j int) bool {
		return result.Deposits[i].MaturityDate.Before(result.Deposits[j].MaturityDate)
	})
	for _, d := range result.Deposits {
		result.TotalAmount = result.TotalAmount.Add(d.MaturityAmount)
	}
	return &result, nil
}

// ===================== Due Installments =====================

// DueInstallment is the next unpaid installment of an active recurring
// deposit or loan
type DueInstallment struct {
	Kind        ProductKind     `json:"kind"`
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Installment int             `json:"installment"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Overdue     bool            `json:"overdue"`
	DaysUntil   int             `json:"days_until"`
}

// DueInstallmentsResponse lists installments due within a horizon
type DueInstallmentsResponse struct {
	AsOf         time.Time        `json:"as_of"`
	Until        time.Time        `json:"until"`
	Installments []DueInstallment `json:"installments"`
	OverdueCount int              `json:"overdue_count"`
}

// GetDueInstallments lists the next installment of every active recurring
// deposit and loan due on or before horizonDays from today. Installments whose
// due date has passed are included and flagged overdue.
func (s *ReportService) GetDueInstallments(ctx context.Context, horizonDays int) (*DueInstallmentsResponse, error) {
	asOf := startOfDay(s.now())
	until := asOf.AddDate(0, 0, horizon(horizonDays)+1)
	result := DueInstallmentsResponse{
		AsOf:         asOf,
		Until:        until,
		Installments: []DueInstallment{},
	}

	err := s.read(ctx, "due_installments", func(repos ledger.TransactionalRepositories) error {
		rds, err := repos.RecurringDepositRepo().FindActive(ctx)
		if err != nil {
			return err
		}
		loans, err := repos.LoanRepo().FindActive(ctx)
		if err != nil {
			return err
		}

		for i := range rds {
			rd := &rds[i]
			if rd.InstallmentsPaid >= rd.TenureMonths {
				continue
			}
			due := rd.NextDueDate()
			if !due.Before(until) {
				continue
			}
			result.Installments = append(result.Installments, DueInstallment{
				Kind:        ProductRecurringDeposit,
				ID:          rd.ID,
				Number:      rd.RDNumber,
				CustomerID:  rd.CustomerID,
				Installment: rd.InstallmentsPaid + 1,
				DueDate:     due,
				Amount:      rd.MonthlyAmount,
				Overdue:     due.Before(asOf),
				DaysUntil:   daysBetween(asOf, due),
			})
		}
		for i := range loans {
			loan := &loans[i]
			due := loan.NextDueDate()
			if !due.Before(until) {
				continue
			}
			amount := loan.EMI
			if payoff := loan.Payoff(); payoff.LessThan(amount) {
				amount = payoff
			}
			result.Installments = append(result.Installments, DueInstallment{
				Kind:        ProductLoan,
				ID:          loan.ID,
				Number:      loan.LoanNumber,
				CustomerID:  loan.CustomerID,
				Installment: loan.PaymentsMade + 1,
				DueDate:     due,
				Amount:      amount,
				Overdue:     due.Before(asOf),
				DaysUntil:   daysBetween(asOf, due),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result.Installments, func(i, j int) bool {
		return result.Installments[i].DueDate.Before(result.Installments[j].DueDate)
	})
	for _, inst := range result.Installments {
		if inst.Overdue {
			result.OverdueCount++
		}
	}
	return &result, nil
}

// ===================== Customer Portfolio =====================

// PortfolioTotals sums a customer's holdings. Deposits count only what is
// still held by the bank.
type PortfolioTotals struct {
	AccountBalance    decimal.Decimal `json:"account_balance"`
	FixedDeposits     decimal.Decimal `json:"fixed_deposits"`
	RecurringDeposits decimal.Decimal `json:"recurring_deposits"`
	LoanOutstanding   decimal.Decimal `json:"loan_outstanding"`
	NetPosition       decimal.Decimal `json:"net_position"`
}

// CustomerPortfolioResponse is every product a customer holds
type CustomerPortfolioResponse struct {
	Customer          ledger.CustomerDTO           `json:"customer"`
	Accounts          []ledger.AccountDTO          `json:"accounts"`
	FixedDeposits     []ledger.FixedDepositDTO     `json:"fixed_deposits"`
	RecurringDeposits []ledger.RecurringDepositDTO `json:"recurring_deposits"`
	Loans             []ledger.LoanDTO             `json:"loans"`
	Totals            PortfolioTotals              `json:"totals"`
}

// GetCustomerPortfolio lists a customer's accounts, deposits and loans with
// their combined position
func (s *ReportService) GetCustomerPortfolio(ctx context.Context, customerID uuid.UUID) (*CustomerPortfolioResponse, error) {
	var result CustomerPortfolioResponse
	err := s.read(ctx, "customer_portfolio", func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		accounts, err := repos.AccountRepo().FindByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		fds, err := repos.FixedDepositRepo().FindByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		rds, err := repos.RecurringDepositRepo().FindByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		loans, err := repos.LoanRepo().FindByCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		totals := PortfolioTotals{
			AccountBalance:    decimal.Zero,
			FixedDeposits:     decimal.Zero,
			RecurringDeposits: decimal.Zero,
			LoanOutstanding:   decimal.Zero,
		}
		result = CustomerPortfolioResponse{
			Customer:          ledger.ToCustomerDTO(customer),
			Accounts:          make([]ledger.AccountDTO, len(accounts)),
			FixedDeposits:     make([]ledger.FixedDepositDTO, len(fds)),
			RecurringDeposits: make([]ledger.RecurringDepositDTO, len(rds)),
			Loans:             make([]ledger.LoanDTO, len(loans)),
		}
		for i := range accounts {
			result.Accounts[i] = ledger.ToAccountDTO(&accounts[i])
			if accounts[i].IsActive {
				totals.AccountBalance = totals.AccountBalance.Add(accounts[i].Balance)
			}
		}
		for i := range fds {
			result.FixedDeposits[i] = ledger.ToFixedDepositDTO(&fds[i])
			if fds[i].Status == banking.FixedDepositStatusActive {
				totals.FixedDeposits = totals.FixedDeposits.Add(fds[i].Principal)
			}
		}
		for i := range rds {
			result.RecurringDeposits[i] = ledger.ToRecurringDepositDTO(&rds[i])
			if rds[i].Status != banking.RecurringDepositStatusClosed {
				totals.RecurringDeposits = totals.RecurringDeposits.Add(rds[i].TotalPaid)
			}
		}
		for i := range loans {
			result.Loans[i] = ledger.ToLoanDTO(&loans[i])
			totals.LoanOutstanding = totals.LoanOutstanding.Add(loans[i].Outstanding)
		}
		totals.NetPosition = totals.AccountBalance.
			Add(totals.FixedDeposits).
			Add(totals.RecurringDeposits).
			Sub(totals.LoanOutstanding)
		result.Totals = totals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
