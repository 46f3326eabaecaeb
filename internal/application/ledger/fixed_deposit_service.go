package ledger

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FixedDepositService runs fixed deposit operations
type FixedDepositService struct {
	core
}

// NewFixedDepositService creates a new FixedDepositService
func NewFixedDepositService(cfg Config) *FixedDepositService {
	return &FixedDepositService{core: newCore(cfg)}
}

func (s *FixedDepositService) appendEntry(ctx context.Context, uow *unitOfWork, fd *banking.FixedDeposit, txType banking.TransactionType, amount, interestPart decimal.Decimal, m banking.Movement, desc, reference string, operatorID uuid.UUID) (*banking.FixedDepositTransaction, error) {
	number, err := s.nextNumber(ctx, uow, banking.NumberKindFixedDepositTransaction)
	if err != nil {
		return nil, err
	}
	tx := banking.NewFixedDepositTransaction(number, fd, txType, amount, m, s.now())
	tx.Interest = interestPart
	tx.Annotate(desc, reference, operatorID)
	if err := uow.repos.FixedDepositTransactionRepo().Append(ctx, tx); err != nil {
		return nil, err
	}
	fd.AddDomainEvent(banking.NewTransactionPostedEvent(banking.AggregateTypeFixedDeposit, fd.ID, fd.FDNumber, tx.LedgerEntry))
	uow.track(fd)
	return tx, nil
}

// Create books a fixed deposit and, when a funding account is given, debits
// the principal from it in the same unit of work
func (s *FixedDepositService) Create(ctx context.Context, cmd CreateFixedDepositCommand) (*FixedDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result FixedDepositResult
	err := s.execute(ctx, "fd.create", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := s.requireCustomer(ctx, uow, cmd.CustomerID); err != nil {
			return err
		}
		number, err := s.nextNumber(ctx, uow, banking.NumberKindFixedDeposit)
		if err != nil {
			return err
		}
		start := cmd.StartDate
		if start.IsZero() {
			start = s.now()
		}
		fd, err := banking.NewFixedDeposit(number, cmd.CustomerID, cmd.Principal, cmd.InterestRate, cmd.TenureMonths, start)
		if err != nil {
			return err
		}
		if cmd.FundingAccountID != nil {
			fd.FundFrom(*cmd.FundingAccountID)
		}
		if err := uow.repos.FixedDepositRepo().Create(ctx, fd); err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Fixed deposit %s for %d months", fd.FDNumber, fd.TenureMonths)
		}
		if cmd.FundingAccountID != nil {
			accTx, err := s.moveLinked(ctx, uow, *cmd.FundingAccountID, fd.CustomerID, banking.TransactionTypeWithdrawal, fd.Principal, desc, fd.FDNumber, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
		}
		tx, err := s.appendEntry(ctx, uow, fd, banking.TransactionTypeFDCreate, fd.Principal, decimal.Zero,
			banking.Movement{Before: decimal.Zero, After: fd.Principal}, desc, fd.FDNumber, cmd.OperatorID)
		if err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionFixedDepositCreate,
			EntityKind:  banking.AggregateTypeFixedDeposit,
			EntityID:    fd.ID,
			Description: fmt.Sprintf("Created %s: %s at %s%% for %d months", fd.FDNumber, fd.Principal.StringFixed(2), fd.InterestRate.String(), fd.TenureMonths),
		})
		result.FixedDeposit = ToFixedDepositDTO(fd)
		result.Transaction = dtoPtr(ToFixedDepositTransactionDTO(tx))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Fixed deposit created", zap.String("fd_number", result.FixedDeposit.FDNumber))
	return &result, nil
}

// Update changes principal, rate or tenure of an active deposit and
// recomputes its maturity. A principal change is recorded on the deposit's
// history and the difference is debited from or credited back to the funding
// account in the same unit of work.
func (s *FixedDepositService) Update(ctx context.Context, cmd UpdateFixedDepositCommand) (*FixedDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result FixedDepositResult
	err := s.execute(ctx, "fd.update", func(ctx context.Context, uow *unitOfWork) error {
		fd, err := uow.repos.FixedDepositRepo().FindByIDForUpdate(ctx, cmd.FixedDepositID)
		if err != nil {
			return err
		}
		m, err := fd.Update(cmd.Principal, cmd.InterestRate, cmd.TenureMonths)
		if err != nil {
			return err
		}
		if err := uow.repos.FixedDepositRepo().Update(ctx, fd); err != nil {
			return err
		}
		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Updated %s: maturity %s on %s", fd.FDNumber, fd.MaturityAmount.StringFixed(2), fd.MaturityDate.Format("2006-01-02"))
		}
		if !m.Before.Equal(m.After) {
			accTx, tx, err := s.adjustPrincipal(ctx, uow, fd, m, desc, cmd.OperatorID)
			if err != nil {
				return err
			}
			result.AccountTransaction = linkedDTO(accTx)
			result.Transaction = dtoPtr(ToFixedDepositTransactionDTO(tx))
		}
		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionFixedDepositUpdate,
			EntityKind:  banking.AggregateTypeFixedDeposit,
			EntityID:    fd.ID,
			Description: desc,
		})
		result.FixedDeposit = ToFixedDepositDTO(fd)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// adjustPrincipal records the move of the held principal from m.Before to
// m.After and settles the difference with the funding account
func (s *FixedDepositService) adjustPrincipal(ctx context.Context, uow *unitOfWork, fd *banking.FixedDeposit, m banking.Movement, desc string, operatorID uuid.UUID) (*banking.AccountTransaction, *banking.FixedDepositTransaction, error) {
	delta := m.After.Sub(m.Before)
	fdType, accType := banking.TransactionTypeFDTopUp, banking.TransactionTypeWithdrawal
	if delta.IsNegative() {
		fdType, accType = banking.TransactionTypeFDReduce, banking.TransactionTypeDeposit
	}
	amount := delta.Abs()

	var accTx *banking.AccountTransaction
	if fd.FundingAccountID != nil {
		var err error
		accTx, err = s.moveLinked(ctx, uow, *fd.FundingAccountID, fd.CustomerID, accType, amount, desc, fd.FDNumber, operatorID)
		if err != nil {
			return nil, nil, err
		}
	}
	tx, err := s.appendEntry(ctx, uow, fd, fdType, amount, decimal.Zero, m, desc, fd.FDNumber, operatorID)
	if err != nil {
		return nil, nil, err
	}
	return accTx, tx, nil
}

// Close pays the deposit out: matured at the contracted amount when due, or
// closed at the penalised amount when broken early. When a payout account is
// given the payout is credited to it in the same unit of work.
func (s *FixedDepositService) Close(ctx context.Context, cmd CloseFixedDepositCommand) (*FixedDepositResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result FixedDepositResult
	err := s.execute(ctx, "fd.close", func(ctx context.Context, uow *unitOfWork) error {
		fd, err := uow.repos.FixedDepositRepo().FindByIDForUpdate(ctx, cmd.FixedDepositID)
		if err != nil {
			return err
		}
		res, err := s.close(ctx, uow, fd, cmd.Premature, cmd.PayoutAccountID, cmd.Description, cmd.OperatorID)
		if err != nil {
			return err
		}
		result = *res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *FixedDepositService) close(ctx context.Context, uow *unitOfWork, fd *banking.FixedDeposit, premature bool, payoutAccountID *uuid.UUID, desc string, operatorID uuid.UUID) (*FixedDepositResult, error) {
	payout, err := fd.Close(s.now(), premature, s.policy.PenaltyPoints)
	if err != nil {
		return nil, err
	}
	if err := uow.repos.FixedDepositRepo().Update(ctx, fd); err != nil {
		return nil, err
	}

	txType := banking.TransactionTypeFDMature
	if payout.Premature {
		txType = banking.TransactionTypeFDPrematureClose
	}
	if desc == "" {
		desc = fmt.Sprintf("Fixed deposit %s %s", fd.FDNumber, fd.Status)
	}

	var result FixedDepositResult
	if payoutAccountID != nil && payout.Amount.IsPositive() {
		accTx, err := s.moveLinked(ctx, uow, *payoutAccountID, fd.CustomerID, banking.TransactionTypeDeposit, payout.Amount, desc, fd.FDNumber, operatorID)
		if err != nil {
			return nil, err
		}
		result.AccountTransaction = linkedDTO(accTx)
	}
	tx, err := s.appendEntry(ctx, uow, fd, txType, payout.Amount, payout.Interest,
		banking.Movement{Before: payout.Held, After: decimal.Zero}, desc, fd.FDNumber, operatorID)
	if err != nil {
		return nil, err
	}

	uow.record(AuditEntry{
		OperatorID:  operatorID,
		Action:      ActionFixedDepositClose,
		EntityKind:  banking.AggregateTypeFixedDeposit,
		EntityID:    fd.ID,
		Description: fmt.Sprintf("Closed %s as %s, paid %s", fd.FDNumber, fd.Status, payout.Amount.StringFixed(2)),
	})
	result.FixedDeposit = ToFixedDepositDTO(fd)
	result.Transaction = dtoPtr(ToFixedDepositTransactionDTO(tx))
	return &result, nil
}

// MatureDue closes every active deposit whose maturity date has passed, each
// in its own unit of work. It returns how many deposits matured.
func (s *FixedDepositService) MatureDue(ctx context.Context) (int, error) {
	var due []banking.FixedDeposit
	err := s.read(ctx, "fd.find_due", func(repos TransactionalRepositories) error {
		var err error
		due, err = repos.FixedDepositRepo().FindMaturingBetween(ctx, minTime, s.now())
		return err
	})
	if err != nil {
		return 0, err
	}

	matured := 0
	for i := range due {
		id := due[i].ID
		closed := false
		err := s.execute(ctx, "fd.mature", func(ctx context.Context, uow *unitOfWork) error {
			fd, err := uow.repos.FixedDepositRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if fd.Status != banking.FixedDepositStatusActive || !fd.IsDue(s.now()) {
				return nil
			}
			if _, err := s.close(ctx, uow, fd, false, nil, "", uuid.Nil); err != nil {
				return err
			}
			closed = true
			return nil
		})
		if err != nil {
			if shared.IsKind(err, shared.KindIntegrity) {
				return matured, err
			}
			s.logger.Warn("Skipping fixed deposit maturity",
				zap.String("fd_number", due[i].FDNumber),
				zap.Error(err),
			)
			continue
		}
		if closed {
			matured++
		}
	}
	return matured, nil
}

// GetByID returns a fixed deposit
func (s *FixedDepositService) GetByID(ctx context.Context, id uuid.UUID) (*FixedDepositDTO, error) {
	var result FixedDepositDTO
	err := s.read(ctx, "fd.get", func(repos TransactionalRepositories) error {
		fd, err := repos.FixedDepositRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = ToFixedDepositDTO(fd)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
