package report

import (
	"context"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/interest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Fixed Deposit =====================

// AccrualRow is the deposit's value at the end of one month
type AccrualRow struct {
	Month    int             `json:"month"`
	Date     time.Time       `json:"date"`
	Interest decimal.Decimal `json:"interest"`
	Value    decimal.Decimal `json:"value"`
	Elapsed  bool            `json:"elapsed"`
}

// FixedDepositScheduleResponse is the accrual schedule of a fixed deposit
type FixedDepositScheduleResponse struct {
	FixedDeposit ledger.FixedDepositDTO  `json:"fixed_deposit"`
	Rows         []AccrualRow            `json:"rows"`
	Transactions []ledger.TransactionDTO `json:"transactions"`
}

// GetFixedDepositSchedule replays monthly compounding from the start date.
// Rows up to today are marked elapsed; the last row equals the maturity amount.
func (s *ReportService) GetFixedDepositSchedule(ctx context.Context, id uuid.UUID) (*FixedDepositScheduleResponse, error) {
	var result FixedDepositScheduleResponse
	err := s.read(ctx, "fd_schedule", func(repos ledger.TransactionalRepositories) error {
		fd, err := repos.FixedDepositRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		history, err := repos.FixedDepositTransactionRepo().FindByFixedDeposit(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		accruals := interest.AccrualSchedule(fd.Principal, fd.InterestRate, fd.TenureMonths, fd.StartDate)
		result.FixedDeposit = ledger.ToFixedDepositDTO(fd)
		result.Rows = make([]AccrualRow, len(accruals))
		for i, a := range accruals {
			result.Rows[i] = AccrualRow{
				Month:    a.Month,
				Date:     a.Date,
				Interest: a.Interest,
				Value:    a.Value,
				Elapsed:  !a.Date.After(now),
			}
		}
		result.Transactions = make([]ledger.TransactionDTO, len(history))
		for i := range history {
			result.Transactions[i] = ledger.ToFixedDepositTransactionDTO(&history[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ===================== Recurring Deposit =====================

// InstallmentRow is one expected recurring deposit installment with what was
// actually paid against it
type InstallmentRow struct {
	Number     int             `json:"number"`
	DueDate    time.Time       `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Paid       bool            `json:"paid"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Overdue    bool            `json:"overdue"`
}

// RecurringDepositScheduleResponse is the installment schedule of a recurring deposit
type RecurringDepositScheduleResponse struct {
	RecurringDeposit ledger.RecurringDepositDTO `json:"recurring_deposit"`
	Rows             []InstallmentRow           `json:"rows"`
	PaidCount        int                        `json:"paid_count"`
	Remaining        decimal.Decimal            `json:"remaining"`
}

// GetRecurringDepositSchedule lists every contracted installment and overlays
// the recorded installments by their sequence number
func (s *ReportService) GetRecurringDepositSchedule(ctx context.Context, id uuid.UUID) (*RecurringDepositScheduleResponse, error) {
	var result RecurringDepositScheduleResponse
	err := s.read(ctx, "rd_schedule", func(repos ledger.TransactionalRepositories) error {
		rd, err := repos.RecurringDepositRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		history, err := repos.RecurringDepositTransactionRepo().FindByRecurringDeposit(ctx, id)
		if err != nil {
			return err
		}

		paid := make(map[int]*banking.RecurringDepositTransaction)
		for i := range history {
			if history[i].Type == banking.TransactionTypeRDInstallment {
				paid[history[i].InstallmentNumber] = &history[i]
			}
		}

		now := s.now()
		result.RecurringDeposit = ledger.ToRecurringDepositDTO(rd)
		result.Remaining = rd.Remaining()
		expected := interest.RecurringSchedule(rd.MonthlyAmount, rd.TenureMonths, rd.StartDate)
		result.Rows = make([]InstallmentRow, len(expected))
		for i, inst := range expected {
			row := InstallmentRow{
				Number:     inst.Number,
				DueDate:    inst.DueDate,
				Amount:     inst.Amount,
				PaidAmount: decimal.Zero,
			}
			if tx, ok := paid[inst.Number]; ok {
				at := tx.CreatedAt
				row.Paid = true
				row.PaidAmount = tx.Amount
				row.PaidAt = &at
				result.PaidCount++
			} else {
				row.Overdue = rd.Status == banking.RecurringDepositStatusActive && inst.DueDate.Before(now)
			}
			result.Rows[i] = row
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ===================== Loan =====================

// AmortizationRow is one scheduled loan installment with the payment recorded
// against it, if any
type AmortizationRow struct {
	Number        int              `json:"number"`
	DueDate       time.Time        `json:"due_date"`
	Payment       decimal.Decimal  `json:"payment"`
	Interest      decimal.Decimal  `json:"interest"`
	Principal     decimal.Decimal  `json:"principal"`
	Outstanding   decimal.Decimal  `json:"outstanding"`
	Paid          bool             `json:"paid"`
	PaidAmount    *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidInterest  *decimal.Decimal `json:"paid_interest,omitempty"`
	PaidPrincipal *decimal.Decimal `json:"paid_principal,omitempty"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}

// LoanScheduleResponse is the amortization schedule of a loan
type LoanScheduleResponse struct {
	Loan          ledger.LoanDTO    `json:"loan"`
	Rows          []AmortizationRow `json:"rows"`
	TotalInterest decimal.Decimal   `json:"total_interest"`
	PaidCount     int               `json:"paid_count"`
}

// GetLoanSchedule replays the EMI schedule from the start date and overlays
// the recorded payments by installment number
func (s *ReportService) GetLoanSchedule(ctx context.Context, id uuid.UUID) (*LoanScheduleResponse, error) {
	var result LoanScheduleResponse
	err := s.read(ctx, "loan_schedule", func(repos ledger.TransactionalRepositories) error {
		loan, err := repos.LoanRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		history, err := repos.LoanTransactionRepo().FindByLoan(ctx, id)
		if err != nil {
			return err
		}

		payments := make(map[int]*banking.LoanTransaction)
		for i := range history {
			if history[i].Type == banking.TransactionTypeLoanPayment {
				payments[history[i].InstallmentNumber] = &history[i]
			}
		}

		result.Loan = ledger.ToLoanDTO(loan)
		result.TotalInterest = decimal.Zero
		schedule := interest.AmortizationSchedule(loan.Principal, loan.InterestRate, loan.TenureMonths, loan.StartDate)
		result.Rows = make([]AmortizationRow, len(schedule))
		for i, inst := range schedule {
			row := AmortizationRow{
				Number:      inst.Number,
				DueDate:     inst.DueDate,
				Payment:     inst.Payment,
				Interest:    inst.Interest,
				Principal:   inst.Principal,
				Outstanding: inst.Outstanding,
			}
			if tx, ok := payments[inst.Number]; ok {
				at := tx.CreatedAt
				row.Paid = true
				row.PaidAmount = &tx.Amount
				row.PaidInterest = &tx.Interest
				row.PaidPrincipal = &tx.Principal
				row.PaidAt = &at
				result.PaidCount++
			}
			result.TotalInterest = result.TotalInterest.Add(inst.Interest)
			result.Rows[i] = row
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
