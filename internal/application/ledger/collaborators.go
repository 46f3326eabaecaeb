package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Audit action tags
const (
	ActionCustomerRegister     = "customer.register"
	ActionAccountOpen          = "account.open"
	ActionAccountDeposit       = "account.deposit"
	ActionAccountWithdraw      = "account.withdraw"
	ActionAccountTransfer      = "account.transfer"
	ActionAccountInterest      = "account.interest"
	ActionAccountDeactivate    = "account.deactivate"
	ActionFixedDepositCreate   = "fd.create"
	ActionFixedDepositUpdate   = "fd.update"
	ActionFixedDepositClose    = "fd.close"
	ActionRecurringCreate      = "rd.create"
	ActionRecurringInstallment = "rd.installment"
	ActionRecurringClose       = "rd.close"
	ActionLoanCreate           = "loan.create"
	ActionLoanPayment          = "loan.payment"
	ActionLoanForeclose        = "loan.foreclose"
)

// AuditEntry is what the audit collaborator receives for one successful mutation
type AuditEntry struct {
	OperatorID  uuid.UUID
	Action      string
	EntityKind  string
	EntityID    uuid.UUID
	Description string
}

// AuditLogger records successful mutations. It is called after commit, once
// per operation; a failure to record does not undo the operation.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// NopAuditLogger discards audit entries
type NopAuditLogger struct{}

// Record implements AuditLogger
func (NopAuditLogger) Record(context.Context, AuditEntry) error { return nil }
