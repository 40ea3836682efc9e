package custody

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody/errors"
)

func TestAmountArithmetic(t *testing.T) {
	a := AmountOf(7)
	b := AmountOf(5)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("cannot add: %s", err)
	}
	if sum != AmountOf(12) {
		t.Fatalf("unexpected sum: %s", sum)
	}

	if _, err := b.Sub(a); !errors.ErrInsufficientAmount.Is(err) {
		t.Fatalf("want insufficient amount, got %v", err)
	}
	diff, err := a.Sub(b)
	if err != nil || diff != AmountOf(2) {
		t.Fatalf("unexpected difference: %s, %v", diff, err)
	}

	prod, err := a.MulUint64(3)
	if err != nil || prod != AmountOf(21) {
		t.Fatalf("unexpected product: %s, %v", prod, err)
	}

	max := NewAmount(new(uint256.Int).SetAllOne())
	if _, err := max.Add(AmountOf(1)); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %v", err)
	}
	if _, err := max.MulUint64(2); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %v", err)
	}
}

func TestAmountParse(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    Amount
		wantErr *errors.Error
	}{
		"decimal": {raw: `"1000"`, want: AmountOf(1000)},
		"hex":     {raw: `"0x10"`, want: AmountOf(16)},
		"number":  {raw: `42`, want: AmountOf(42)},
		"garbage": {raw: `"ten"`, wantErr: errors.ErrAmount},
		"object":  {raw: `{}`, wantErr: errors.ErrAmount},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got Amount
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil && got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}
