package custody

import (
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody/errors"
)

// Amount is an unsigned 256 bit integer kept in its big endian 32 byte
// representation, so it can be persisted and hashed without conversion.
type Amount [32]byte

// NewAmount returns the amount representing given value. A nil value is
// zero.
func NewAmount(v *uint256.Int) Amount {
	if v == nil {
		return Amount{}
	}
	return v.Bytes32()
}

// AmountOf returns an amount holding a small value.
func AmountOf(v uint64) Amount {
	return NewAmount(uint256.NewInt(v))
}

// ParseAmount decodes a decimal or 0x prefixed hexadecimal number.
func ParseAmount(s string) (Amount, error) {
	var v *uint256.Int
	var err error
	if len(s) > 2 && s[:2] == "0x" {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "%q: %s", s, err)
	}
	return NewAmount(v), nil
}

// Int returns the numeric value of the amount.
func (a Amount) Int() *uint256.Int {
	return new(uint256.Int).SetBytes32(a[:])
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a == Amount{}
}

// Cmp compares two amounts and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return a.Int().Cmp(b.Int())
}

// Add returns the sum of both amounts or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a.Int(), b.Int())
	if overflow {
		return Amount{}, errors.Wrap(errors.ErrOverflow, "amount addition")
	}
	return NewAmount(sum), nil
}

// Sub returns a - b or ErrInsufficientAmount if b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s < %s", a, b)
	}
	return NewAmount(new(uint256.Int).Sub(a.Int(), b.Int())), nil
}

// MulUint64 returns a * n or ErrOverflow.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	res, overflow := new(uint256.Int).MulOverflow(a.Int(), uint256.NewInt(n))
	if overflow {
		return Amount{}, errors.Wrap(errors.ErrOverflow, "amount multiplication")
	}
	return NewAmount(res), nil
}

func (a Amount) String() string {
	return a.Int().Dec()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal or hex string, or a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "amount must be a string or a number")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
