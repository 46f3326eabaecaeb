package banking

import "github.com/shopspring/decimal"

// Policy carries the tunable business constants of the ledger
type Policy struct {
	// PenaltyPoints is subtracted from the annual rate on premature closure
	PenaltyPoints decimal.Decimal
	// LoanClosureTolerance is the outstanding at or below which a loan closes
	LoanClosureTolerance decimal.Decimal
}

// DefaultPolicy is a one point penalty and a one cent closure tolerance
func DefaultPolicy() Policy {
	return Policy{
		PenaltyPoints:        decimal.NewFromInt(1),
		LoanClosureTolerance: decimal.NewFromFloat(0.01),
	}
}
