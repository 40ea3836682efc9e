package custody

import (
	"math"

	"github.com/iov-one/custody/errors"
)

// GasMeter accounts for the gas consumed by a single transaction.
type GasMeter interface {
	// Consume adds amount to the consumed gas. It fails with
	// ErrInsufficientGas when the limit is exceeded.
	Consume(amount uint64, descriptor string) error
	// Consumed returns the amount of gas consumed so far.
	Consumed() uint64
	// Limit returns the maximum amount of gas that can be consumed.
	Limit() uint64
}

type basicGasMeter struct {
	limit    uint64
	consumed uint64
}

// NewGasMeter returns a meter that allows up to limit gas to be consumed.
func NewGasMeter(limit uint64) GasMeter {
	return &basicGasMeter{limit: limit}
}

// NewInfiniteGasMeter returns a meter without a limit.
func NewInfiniteGasMeter() GasMeter {
	return &basicGasMeter{limit: math.MaxUint64}
}

func (g *basicGasMeter) Consume(amount uint64, descriptor string) error {
	if g.consumed > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "gas consumed by %s", descriptor)
	}
	g.consumed += amount
	if g.consumed > g.limit {
		return errors.Wrapf(errors.ErrInsufficientGas, "out of gas in %s: limit %d, consumed %d", descriptor, g.limit, g.consumed)
	}
	return nil
}

func (g *basicGasMeter) Consumed() uint64 {
	return g.consumed
}

func (g *basicGasMeter) Limit() uint64 {
	return g.limit
}
