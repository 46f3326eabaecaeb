package ledger

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoanService runs loan operations
type LoanService struct {
	core
}

// NewLoanService creates a new LoanService
func NewLoanService(cfg Config) *LoanService {
	return &LoanService{core: newCore(cfg)}
}

func (s *LoanService) appendEntry(ctx context.Context, uow *unitOfWork, loan *banking.Loan, tx *banking.LoanTransaction) error {
	if err := uow.repos.LoanTransactionRepo().Append(ctx, tx); err != nil {
		return err
	}
	loan.AddDomainEvent(banking.NewTransactionPostedEvent(banking.AggregateTypeLoan, loan.ID, loan.LoanNumber, tx.LedgerEntry))
	uow.track(loan)
	return nil
}

func (s *LoanService) newEntry(ctx context.Context, uow *unitOfWork, loan *banking.Loan, txType banking.TransactionType, amount decimal.Decimal, m banking.Movement, desc string, operatorID uuid.UUID) (*banking.LoanTransaction, error) {
	number, err := s.nextNumber(ctx, uow, banking.NumberKindLoanTransaction)
	if err != nil {
		return nil, err
	}
	tx := banking.NewLoanTransaction(number, loan, txType, amount, m, s.now())
	tx.Annotate(desc, loan.LoanNumber, operatorID)
	return tx, nil
}

// Create books a loan, computes its EMI and records the disbursement. When a
// disbursement account is given the principal is credited to it.
func (s *LoanService) Create(ctx context.Context, cmd CreateLoanCommand) (*LoanResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result LoanResult
	err := s.execute(ctx, "loan.create", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := s.requireCustomer(ctx, uow, cmd.CustomerID); err != nil {
			return err
		}
		number, err := s.nextNumber(ctx, uow, banking.NumberKindLoan)
		if err != nil {
			return err
		}
		start := cmd.StartDate
		if start.IsZero() {
			start = s.now()
		}
		loan, err := banking.NewLoan(number, cmd.CustomerID, banking.LoanType(cmd.Type), cmd.Principal, cmd.InterestRate, cmd.TenureMonths, start)
		if err != nil {
			return err
		}
		if err := uow.repos.LoanRepo().Create(ctx, loan); err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Disbursement of %s loan %s", loan.Type, loan.LoanNumber)
		}
		if cmd.DisbursementAccountID != nil {
			accTx, err := s.moveLinked(ctx, uow, *cmd.DisbursementAccountID, loan.CustomerID, banking.TransactionTypeDeposit, loan.Principal, desc, loan.LoanNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.newEntry(ctx, uow, loan, banking.TransactionTypeLoanDisbursement, loan.Principal,
			banking.Movement{Before: decimal.Zero, After: loan.Outstanding}, desc, cmd.OperatorID)
		if err != nil {
			return err
		}
		if err := s.appendEntry(ctx, uow, loan, tx); err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionLoanCreate,
			EntityKind:  banking.AggregateTypeLoan,
			EntityID:    loan.ID,
			Description: fmt.Sprintf("Created %s: %s at %s%% for %d months, EMI %s", loan.LoanNumber, loan.Principal.StringFixed(2), loan.InterestRate.String(), loan.TenureMonths, loan.EMI.StringFixed(2)),
		})
		result.Loan = ToLoanDTO(loan)
		result.Transaction = dtoPtr(ToLoanTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loan created",
		zap.String("loan_number", result.Loan.LoanNumber),
		zap.String("emi", result.Loan.EMI.StringFixed(2)),
	)
	return &result, nil
}

// MakePayment applies a payment to an active loan: interest on the
// outstanding first, the rest against principal. A final installment above
// the payoff is recorded and debited at the payoff. The loan closes once the
// outstanding falls within the closure tolerance.
func (s *LoanService) MakePayment(ctx context.Context, cmd LoanPaymentCommand) (*LoanResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result LoanResult
	err := s.execute(ctx, "loan.payment", func(ctx context.Context, uow *unitOfWork) error {
		loan, err := uow.repos.LoanRepo().FindByIDForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		payment, err := loan.MakePayment(cmd.Amount, s.policy.LoanClosureTolerance, s.now())
		if err != nil {
			return err
		}
		if err := uow.repos.LoanRepo().Update(ctx, loan); err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Installment %d of %s", payment.Number, loan.LoanNumber)
		}
		if cmd.DebitAccountID != nil {
			accTx, err := s.moveLinked(ctx, uow, *cmd.DebitAccountID, loan.CustomerID, banking.TransactionTypeWithdrawal, payment.Amount, desc, loan.LoanNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.newEntry(ctx, uow, loan, banking.TransactionTypeLoanPayment, payment.Amount, payment.Movement, desc, cmd.OperatorID)
		if err != nil {
			return err
		}
		tx.InstallmentNumber = payment.Number
		tx.Principal = payment.Principal
		tx.Interest = payment.Interest
		if err := s.appendEntry(ctx, uow, loan, tx); err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionLoanPayment,
			EntityKind:  banking.AggregateTypeLoan,
			EntityID:    loan.ID,
			Description: fmt.Sprintf("Payment %d on %s: %s (principal %s, interest %s)", payment.Number, loan.LoanNumber, payment.Amount.StringFixed(2), payment.Principal.StringFixed(2), payment.Interest.StringFixed(2)),
		})
		result.Loan = ToLoanDTO(loan)
		result.Transaction = dtoPtr(ToLoanTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Loan.Status == string(banking.LoanStatusClosed) {
		s.logger.Info("Loan repaid", zap.String("loan_number", result.Loan.LoanNumber))
	}
	return &result, nil
}

// Foreclose settles an active loan early, forcing the outstanding to zero.
// When a debit account is given the outstanding is debited from it.
func (s *LoanService) Foreclose(ctx context.Context, cmd ForecloseLoanCommand) (*LoanResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result LoanResult
	err := s.execute(ctx, "loan.foreclose", func(ctx context.Context, uow *unitOfWork) error {
		loan, err := uow.repos.LoanRepo().FindByIDForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		m, err := loan.Foreclose(s.now())
		if err != nil {
			return err
		}
		if err := uow.repos.LoanRepo().Update(ctx, loan); err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Foreclosure of %s", loan.LoanNumber)
		}
		if cmd.DebitAccountID != nil && m.Before.IsPositive() {
			accTx, err := s.moveLinked(ctx, uow, *cmd.DebitAccountID, loan.CustomerID, banking.TransactionTypeWithdrawal, m.Before, desc, loan.LoanNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.newEntry(ctx, uow, loan, banking.TransactionTypeLoanForeclose, m.Before, m, desc, cmd.OperatorID)
		if err != nil {
			return err
		}
		if err := s.appendEntry(ctx, uow, loan, tx); err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionLoanForeclose,
			EntityKind:  banking.AggregateTypeLoan,
			EntityID:    loan.ID,
			Description: fmt.Sprintf("Foreclosed %s with %s outstanding", loan.LoanNumber, m.Before.StringFixed(2)),
		})
		result.Loan = ToLoanDTO(loan)
		result.Transaction = dtoPtr(ToLoanTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByID returns a loan
func (s *LoanService) GetByID(ctx context.Context, id uuid.UUID) (*LoanDTO, error) {
	var result LoanDTO
	err := s.read(ctx, "loan.get", func(repos TransactionalRepositories) error {
		loan, err := repos.LoanRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = ToLoanDTO(loan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
