package banking

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
)

// NumberKind identifies which table an identifier must be unique in
type NumberKind string

const (
	NumberKindCustomer                    NumberKind = "customer"
	NumberKindAccount                     NumberKind = "account"
	NumberKindFixedDeposit                NumberKind = "fixed_deposit"
	NumberKindRecurringDeposit            NumberKind = "recurring_deposit"
	NumberKindLoan                        NumberKind = "loan"
	NumberKindAccountTransaction          NumberKind = "account_transaction"
	NumberKindFixedDepositTransaction     NumberKind = "fd_transaction"
	NumberKindRecurringDepositTransaction NumberKind = "rd_transaction"
	NumberKindLoanTransaction             NumberKind = "loan_transaction"
	NumberKindTransferReference           NumberKind = "transfer_reference"
)

var numberPrefixes = map[NumberKind]string{
	NumberKindCustomer:                    "CUS",
	NumberKindAccount:                     "ACC",
	NumberKindFixedDeposit:                "FD",
	NumberKindRecurringDeposit:            "RD",
	NumberKindLoan:                        "LN",
	NumberKindAccountTransaction:          "TXN",
	NumberKindFixedDepositTransaction:     "FDT",
	NumberKindRecurringDepositTransaction: "RDT",
	NumberKindLoanTransaction:             "LNT",
	NumberKindTransferReference:           "TRF",
}

// Prefix returns the identifier prefix for the kind
func (k NumberKind) Prefix() string {
	return numberPrefixes[k]
}

// NumberRegistry answers whether an identifier is already taken
type NumberRegistry interface {
	Exists(ctx context.Context, kind NumberKind, number string) (bool, error)
}

// DefaultNumberAttempts is used when no attempt limit is configured
const DefaultNumberAttempts = 10

const suffixSpace = 1_000_000

// NumberGenerator produces PREFIX + YYYYMMDD + six random digits, regenerating
// on collision up to a fixed number of attempts
type NumberGenerator struct {
	maxAttempts int
	now         func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NumberGeneratorOption configures a NumberGenerator
type NumberGeneratorOption func(*NumberGenerator)

// WithRandomSource replaces the random source used for suffixes
func WithRandomSource(src rand.Source) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		g.rnd = rand.New(src)
	}
}

// WithClock replaces the clock used for the date component
func WithClock(now func() time.Time) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		g.now = now
	}
}

// NewNumberGenerator creates a generator trying at most maxAttempts candidates
func NewNumberGenerator(maxAttempts int, opts ...NumberGeneratorOption) *NumberGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultNumberAttempts
	}
	g := &NumberGenerator{
		maxAttempts: maxAttempts,
		now:         time.Now,
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *NumberGenerator) candidate(kind NumberKind) string {
	g.mu.Lock()
	suffix := g.rnd.IntN(suffixSpace)
	g.mu.Unlock()
	return fmt.Sprintf("%s%s%06d", kind.Prefix(), g.now().Format("20060102"), suffix)
}

// Next returns an identifier of the given kind not yet present in registry.
// Running out of attempts points at a broken random source and is reported as
// ErrNumberingExhausted.
func (g *NumberGenerator) Next(ctx context.Context, registry NumberRegistry, kind NumberKind) (string, error) {
	if kind.Prefix() == "" {
		return "", fmt.Errorf("unknown number kind %q", kind)
	}
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		number := g.candidate(kind)
		taken, err := registry.Exists(ctx, kind, number)
		if err != nil {
			return "", fmt.Errorf("check %s number: %w", kind, err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", shared.ErrNumberingExhausted
}
