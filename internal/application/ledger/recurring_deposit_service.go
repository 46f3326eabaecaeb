package ledger

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecurringDepositService runs recurring deposit operations
type RecurringDepositService struct {
	core
}

// NewRecurringDepositService creates a new RecurringDepositService
func NewRecurringDepositService(cfg Config) *RecurringDepositService {
	return &RecurringDepositService{core: newCore(cfg)}
}

func (s *RecurringDepositService) appendEntry(ctx context.Context, uow *unitOfWork, rd *banking.RecurringDeposit, txType banking.TransactionType, amount decimal.Decimal, m banking.Movement, installment int, interestPart decimal.Decimal, desc string, operatorID uuid.UUID) (*banking.RecurringDepositTransaction, error) {
	number, err := s.nextNumber(ctx, uow, banking.NumberKindRecurringDepositTransaction)
	if err != nil {
		return nil, err
	}
	tx := banking.NewRecurringDepositTransaction(number, rd, txType, amount, m, s.now())
	tx.InstallmentNumber = installment
	tx.Interest = interestPart
	tx.Annotate(desc, rd.RDNumber, operatorID)
	if err := uow.repos.RecurringDepositTransactionRepo().Append(ctx, tx); err != nil {
		return nil, err
	}
	rd.AddDomainEvent(banking.NewTransactionPostedEvent(banking.AggregateTypeRecurringDeposit, rd.ID, rd.RDNumber, tx.LedgerEntry))
	uow.track(rd)
	return tx, nil
}

// Create books a recurring deposit with nothing paid in yet
func (s *RecurringDepositService) Create(ctx context.Context, cmd CreateRecurringDepositCommand) (*RecurringDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result RecurringDepositResult
	err := s.execute(ctx, "rd.create", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := s.requireCustomer(ctx, uow, cmd.CustomerID); err != nil {
			return err
		}
		number, err := s.nextNumber(ctx, uow, banking.NumberKindRecurringDeposit)
		if err != nil {
			return err
		}
		start := cmd.StartDate
		if start.IsZero() {
			start = s.now()
		}
		rd, err := banking.NewRecurringDeposit(number, cmd.CustomerID, cmd.MonthlyAmount, cmd.InterestRate, cmd.TenureMonths, start)
		if err != nil {
			return err
		}
		if err := uow.repos.RecurringDepositRepo().Create(ctx, rd); err != nil {
			return err
		}
		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionRecurringCreate,
			EntityKind:  banking.AggregateTypeRecurringDeposit,
			EntityID:    rd.ID,
			Description: fmt.Sprintf("Created %s: %s monthly for %d months", rd.RDNumber, rd.MonthlyAmount.StringFixed(2), rd.TenureMonths),
		})
		result.RecurringDeposit = ToRecurringDepositDTO(rd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Recurring deposit created", zap.String("rd_number", result.RecurringDeposit.RDNumber))
	return &result, nil
}

// PayInstallment pays into an active deposit. The deposit completes on its own
// once the contracted total is reached; further payments are rejected.
func (s *RecurringDepositService) PayInstallment(ctx context.Context, cmd PayInstallmentCommand) (*RecurringDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result RecurringDepositResult
	err := s.execute(ctx, "rd.installment", func(ctx context.Context, uow *unitOfWork) error {
		rd, err := uow.repos.RecurringDepositRepo().FindByIDForUpdate(ctx, cmd.RecurringDepositID)
		if err != nil {
			return err
		}
		receipt, err := rd.PayInstallment(cmd.Amount)
		if err != nil {
			return err
		}
		if err := uow.repos.RecurringDepositRepo().Update(ctx, rd); err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Installment %d of %s", receipt.Number, rd.RDNumber)
		}
		if cmd.DebitAccountID != nil {
			accTx, err := s.moveLinked(ctx, uow, *cmd.DebitAccountID, rd.CustomerID, banking.TransactionTypeWithdrawal, cmd.Amount, desc, rd.RDNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.appendEntry(ctx, uow, rd, banking.TransactionTypeRDInstallment, cmd.Amount, receipt.Movement, receipt.Number, decimal.Zero, desc, cmd.OperatorID)
		if err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionRecurringInstallment,
			EntityKind:  banking.AggregateTypeRecurringDeposit,
			EntityID:    rd.ID,
			Description: fmt.Sprintf("Installment %d of %s: %s", receipt.Number, rd.RDNumber, cmd.Amount.StringFixed(2)),
		})
		result.RecurringDeposit = ToRecurringDepositDTO(rd)
		result.Transaction = dtoPtr(ToRecurringDepositTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Close pays the deposit out: a completed deposit at its maturity amount, an
// active one at the penalised premature amount
func (s *RecurringDepositService) Close(ctx context.Context, cmd CloseRecurringDepositCommand) (*RecurringDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result RecurringDepositResult
	err := s.execute(ctx, "rd.close", func(ctx context.Context, uow *unitOfWork) error {
		rd, err := uow.repos.RecurringDepositRepo().FindByIDForUpdate(ctx, cmd.RecurringDepositID)
		if err != nil {
			return err
		}
		payout, err := rd.Close(s.now(), s.policy.PenaltyPoints)
		if err != nil {
			return err
		}
		if err := uow.repos.RecurringDepositRepo().Update(ctx, rd); err != nil {
			return err
		}

		txType := banking.TransactionTypeRDMature
		if payout.Premature {
			txType = banking.TransactionTypeRDPrematureClose
		}
		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Recurring deposit %s closed", rd.RDNumber)
		}
		if cmd.PayoutAccountID != nil && payout.Amount.IsPositive() {
			accTx, err := s.moveLinked(ctx, uow, *cmd.PayoutAccountID, rd.CustomerID, banking.TransactionTypeDeposit, payout.Amount, desc, rd.RDNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.appendEntry(ctx, uow, rd, txType, payout.Amount, banking.Movement{Before: payout.Held, After: decimal.Zero}, 0, payout.Interest, desc, cmd.OperatorID)
		if err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionRecurringClose,
			EntityKind:  banking.AggregateTypeRecurringDeposit,
			EntityID:    rd.ID,
			Description: fmt.Sprintf("Closed %s (premature=%t), paid %s", rd.RDNumber, payout.Premature, payout.Amount.StringFixed(2)),
		})
		result.RecurringDeposit = ToRecurringDepositDTO(rd)
		result.Transaction = dtoPtr(ToRecurringDepositTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByID returns a recurring deposit
func (s *RecurringDepositService) GetByID(ctx context.Context, id uuid.UUID) (*RecurringDepositDTO, error) {
	var result RecurringDepositDTO
	err := s.read(ctx, "rd.get", func(repos TransactionalRepositories) error {
		rd, err := repos.RecurringDepositRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = ToRecurringDepositDTO(rd)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
