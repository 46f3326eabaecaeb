package ledger

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService runs deposit account operations
type AccountService struct {
	core
}

// NewAccountService creates a new AccountService
func NewAccountService(cfg Config) *AccountService {
	return &AccountService{core: newCore(cfg)}
}

// Open creates an account for an active customer. A positive initial balance
// is recorded as the account's first deposit.
func (s *AccountService) Open(ctx context.Context, cmd OpenAccountCommand) (*AccountResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result AccountResult
	err := s.execute(ctx, "account.open", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := s.requireCustomer(ctx, uow, cmd.CustomerID); err != nil {
			return err
		}
		number, err := s.nextNumber(ctx, uow, banking.NumberKindAccount)
		if err != nil {
			return err
		}
		acc, err := banking.NewAccount(number, cmd.CustomerID, banking.AccountType(cmd.Type), cmd.InterestRate)
		if err != nil {
			return err
		}

		var seed banking.Movement
		if cmd.InitialBalance.IsPositive() {
			if seed, err = acc.Credit(cmd.InitialBalance); err != nil {
				return err
			}
			acc.RestartAccrual(seed, s.now())
		}
		if err := uow.repos.AccountRepo().Create(ctx, acc); err != nil {
			return err
		}
		if cmd.InitialBalance.IsPositive() {
			desc := cmd.Description
			if desc == "" {
				desc = "Initial deposit"
			}
			tx, err := s.appendAccountEntry(ctx, uow, acc, banking.TransactionTypeDeposit, cmd.InitialBalance, seed, desc, "", cmd.OperatorID)
			if err != nil {
				return err
			}
			result.Transaction = linkedDTO(tx)
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionAccountOpen,
			EntityKind:  banking.AggregateTypeAccount,
			EntityID:    acc.ID,
			Description: fmt.Sprintf("Opened %s account %s", acc.Type, acc.AccountNumber),
		})
		result.Account = ToAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Account opened", zap.String("account_number", result.Account.AccountNumber))
	return &result, nil
}

// Deposit credits an account
func (s *AccountService) Deposit(ctx context.Context, cmd AccountAmountCommand) (*AccountResult, error) {
	return s.move(ctx, "account.deposit", ActionAccountDeposit, banking.TransactionTypeDeposit, cmd)
}

// Withdraw debits an account; the balance may not go below zero
func (s *AccountService) Withdraw(ctx context.Context, cmd AccountAmountCommand) (*AccountResult, error) {
	return s.move(ctx, "account.withdraw", ActionAccountWithdraw, banking.TransactionTypeWithdrawal, cmd)
}

func (s *AccountService) move(ctx context.Context, op, action string, txType banking.TransactionType, cmd AccountAmountCommand) (*AccountResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result AccountResult
	err := s.execute(ctx, op, func(ctx context.Context, uow *unitOfWork) error {
		acc, err := s.lockAccount(ctx, uow, cmd.AccountID)
		if err != nil {
			return err
		}

		var m banking.Movement
		if txType.IsCredit() {
			m, err = acc.Credit(cmd.Amount)
		} else {
			m, err = acc.Debit(cmd.Amount)
		}
		if err != nil {
			return err
		}

		tx, err := s.postAccount(ctx, uow, acc, txType, cmd.Amount, m, cmd.Description, "", cmd.OperatorID)
		if err != nil {
			return err
		}
		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      action,
			EntityKind:  banking.AggregateTypeAccount,
			EntityID:    acc.ID,
			Description: fmt.Sprintf("%s of %s on %s", txType, cmd.Amount.StringFixed(2), acc.AccountNumber),
		})
		result.Account = ToAccountDTO(acc)
		result.Transaction = linkedDTO(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Transfer moves money between two distinct accounts. Both rows are locked in
// id order, both legs are checked before either is applied, and the two
// entries share one transfer reference.
func (s *AccountService) Transfer(ctx context.Context, cmd TransferCommand) (*TransferResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}
	if cmd.FromAccountID == cmd.ToAccountID {
		return nil, shared.NewValidationError("SAME_ACCOUNT", "Cannot transfer to the same account")
	}

	var result TransferResult
	err := s.execute(ctx, "account.transfer", func(ctx context.Context, uow *unitOfWork) error {
		first, second := cmd.FromAccountID, cmd.ToAccountID
		if second.String() < first.String() {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*banking.Account, 2)
		for _, id := range []uuid.UUID{first, second} {
			acc, err := s.lockAccount(ctx, uow, id)
			if err != nil {
				return err
			}
			locked[id] = acc
		}
		from, to := locked[cmd.FromAccountID], locked[cmd.ToAccountID]

		if err := from.CanDebit(cmd.Amount); err != nil {
			return err
		}
		if err := to.EnsureActive(); err != nil {
			return err
		}

		reference, err := s.nextNumber(ctx, uow, banking.NumberKindTransferReference)
		if err != nil {
			return err
		}
		outMove, err := from.Debit(cmd.Amount)
		if err != nil {
			return err
		}
		inMove, err := to.Credit(cmd.Amount)
		if err != nil {
			return err
		}

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Transfer %s to %s", from.AccountNumber, to.AccountNumber)
		}
		outTx, err := s.postAccount(ctx, uow, from, banking.TransactionTypeTransferOut, cmd.Amount, outMove, desc, reference, cmd.OperatorID)
		if err != nil {
			return err
		}
		inTx, err := s.postAccount(ctx, uow, to, banking.TransactionTypeTransferIn, cmd.Amount, inMove, desc, reference, cmd.OperatorID)
		if err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionAccountTransfer,
			EntityKind:  banking.AggregateTypeAccount,
			EntityID:    from.ID,
			Description: fmt.Sprintf("Transferred %s from %s to %s (%s)", cmd.Amount.StringFixed(2), from.AccountNumber, to.AccountNumber, reference),
		})
		result = TransferResult{
			Reference:   reference,
			From:        ToAccountDTO(from),
			To:          ToAccountDTO(to),
			TransferOut: ToAccountTransactionDTO(outTx),
			TransferIn:  ToAccountTransactionDTO(inTx),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Transfer posted",
		zap.String("reference", result.Reference),
		zap.String("from_account", result.From.AccountNumber),
		zap.String("to_account", result.To.AccountNumber),
	)
	return &result, nil
}

// ApplyInterest credits balance × rate/365/100 × days. When the computed
// interest is not positive nothing is written and Credited is false.
func (s *AccountService) ApplyInterest(ctx context.Context, cmd ApplyInterestCommand) (*InterestResult, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}
	days := cmd.Days
	if days == 0 {
		days = 1
	}

	var result InterestResult
	err := s.execute(ctx, "account.interest", func(ctx context.Context, uow *unitOfWork) error {
		acc, err := s.lockAccount(ctx, uow, cmd.AccountID)
		if err != nil {
			return err
		}
		rate := acc.InterestRate
		if cmd.RateOverride != nil {
			rate = *cmd.RateOverride
		}

		amount := acc.AccrueInterest(rate, days)
		result.Interest = amount
		if !amount.IsPositive() {
			result.Account = ToAccountDTO(acc)
			return nil
		}

		m, err := acc.Credit(amount)
		if err != nil {
			return err
		}
		acc.MarkInterestPosted(s.now())
		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("Interest at %s%% for %d day(s)", rate.String(), days)
		}
		tx, err := s.postAccount(ctx, uow, acc, banking.TransactionTypeInterestCredit, amount, m, desc, "", cmd.OperatorID)
		if err != nil {
			return err
		}
		calc := banking.NewInterestCalculation(tx, rate, days)
		if err := uow.repos.InterestCalculationRepo().Create(ctx, calc); err != nil {
			return err
		}

		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionAccountInterest,
			EntityKind:  banking.AggregateTypeAccount,
			EntityID:    acc.ID,
			Description: fmt.Sprintf("Credited interest %s to %s", amount.StringFixed(2), acc.AccountNumber),
		})
		calcDTO := ToInterestCalculationDTO(calc)
		result.Account = ToAccountDTO(acc)
		result.Credited = true
		result.Transaction = linkedDTO(tx)
		result.Calculation = &calcDTO
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Deactivate soft-deletes an account whose balance is exactly zero
func (s *AccountService) Deactivate(ctx context.Context, cmd DeactivateAccountCommand) (*AccountDTO, error) {
	if err := s.validate.Validate(cmd); err != nil {
		return nil, err
	}

	var result AccountDTO
	err := s.execute(ctx, "account.deactivate", func(ctx context.Context, uow *unitOfWork) error {
		acc, err := s.lockAccount(ctx, uow, cmd.AccountID)
		if err != nil {
			return err
		}
		if err := acc.Deactivate(); err != nil {
			return err
		}
		if err := uow.repos.AccountRepo().Update(ctx, acc); err != nil {
			return err
		}
		desc := cmd.Description
		if desc == "" {
			desc = "Deactivated account " + acc.AccountNumber
		}
		uow.record(AuditEntry{
			OperatorID:  cmd.OperatorID,
			Action:      ActionAccountDeactivate,
			EntityKind:  banking.AggregateTypeAccount,
			EntityID:    acc.ID,
			Description: desc,
		})
		result = ToAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByID returns an account
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	var result AccountDTO
	err := s.read(ctx, "account.get", func(repos TransactionalRepositories) error {
		acc, err := repos.AccountRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = ToAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LatestTransaction returns the newest entry of an account, or nil
func (s *AccountService) LatestTransaction(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	var result *TransactionDTO
	err := s.read(ctx, "account.latest_transaction", func(repos TransactionalRepositories) error {
		tx, err := repos.AccountTransactionRepo().FindLatest(ctx, id)
		if err != nil {
			return err
		}
		result = linkedDTO(tx)
		return nil
	})
	return result, err
}

// InterestBearingAccounts lists accounts that would earn interest today, one
// page at a time
func (s *AccountService) InterestBearingAccounts(ctx context.Context, filter shared.Filter) ([]AccountDTO, error) {
	var result []AccountDTO
	err := s.read(ctx, "account.interest_bearing", func(repos TransactionalRepositories) error {
		accounts, err := repos.AccountRepo().FindInterestBearing(ctx, filter)
		if err != nil {
			return err
		}
		result = make([]AccountDTO, 0, len(accounts))
		for i := range accounts {
			result = append(result, ToAccountDTO(&accounts[i]))
		}
		return nil
	})
	return result, err
}
