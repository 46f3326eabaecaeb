package banking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	taken map[string]bool
	calls int
	err   error
}

func (r *fakeRegistry) Exists(_ context.Context, _ NumberKind, number string) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	return r.taken[number], nil
}

// constantSource always yields the same value, so every candidate collides
type constantSource uint64

func (s constantSource) Uint64() uint64 { return uint64(s) }

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
}

func TestNumberGenerator_Format(t *testing.T) {
	gen := NewNumberGenerator(10, WithClock(fixedClock))
	pattern := regexp.MustCompile(`^ACC20240309\d{6}$`)

	number, err := gen.Next(context.Background(), &fakeRegistry{}, NumberKindAccount)
	require.NoError(t, err)
	assert.Regexp(t, pattern, number)

	for kind, prefix := range map[NumberKind]string{
		NumberKindFixedDeposit:      "FD",
		NumberKindLoanTransaction:   "LNT",
		NumberKindTransferReference: "TRF",
	} {
		number, err := gen.Next(context.Background(), &fakeRegistry{}, kind)
		require.NoError(t, err)
		assert.Regexp(t, "^"+prefix+`20240309\d{6}$`, number)
	}
}

func TestNumberGenerator_RetriesOnCollision(t *testing.T) {
	first := NewNumberGenerator(10, WithClock(fixedClock), WithRandomSource(constantSource(42)))
	collided, err := first.Next(context.Background(), &fakeRegistry{}, NumberKindLoan)
	require.NoError(t, err)

	registry := &fakeRegistry{taken: map[string]bool{collided: true}}
	gen := NewNumberGenerator(3, WithClock(fixedClock), WithRandomSource(constantSource(42)))
	_, err = gen.Next(context.Background(), registry, NumberKindLoan)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNumberingExhausted)
	assert.True(t, shared.IsKind(err, shared.KindIntegrity))
	assert.Equal(t, 3, registry.calls)
}

func TestNumberGenerator_RegistryError(t *testing.T) {
	gen := NewNumberGenerator(0)
	_, err := gen.Next(context.Background(), &fakeRegistry{err: errors.New("connection reset")}, NumberKindAccount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNumberGenerator_UnknownKind(t *testing.T) {
	gen := NewNumberGenerator(1)
	_, err := gen.Next(context.Background(), &fakeRegistry{}, NumberKind("voucher"))
	require.Error(t, err)
}
