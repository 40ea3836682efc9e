package verify

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestOperationValidate(t *testing.T) {
	cases := map[string]struct {
		op      Operation
		wantErr *errors.Error
	}{
		"valid call": {
			op: Operation{To: custodytest.NewAddress(1), Value: custody.AmountOf(1)},
		},
		"call without destination": {
			op:      Operation{Kind: Call},
			wantErr: errors.ErrInput,
		},
		"unknown kind": {
			op:      Operation{To: custodytest.NewAddress(1), Kind: 7},
			wantErr: errors.ErrInput,
		},
		"valid delegate call": {
			op: Operation{Kind: DelegateCall, Data: []byte("x")},
		},
		"delegate call with value": {
			op:      Operation{Kind: DelegateCall, Data: []byte("x"), Value: custody.AmountOf(1)},
			wantErr: errors.ErrInput,
		},
		"delegate call without data": {
			op:      Operation{Kind: DelegateCall},
			wantErr: errors.ErrEmpty,
		},
		"valid create": {
			op: Operation{Kind: Create, Data: []byte("x")},
		},
		"create with destination": {
			op:      Operation{Kind: Create, Data: []byte("x"), To: custodytest.NewAddress(1)},
			wantErr: errors.ErrInput,
		},
		"bad token": {
			op:      Operation{To: custodytest.NewAddress(1), Token: custody.Address{1, 2}},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			op := tc.op
			assert.IsErr(t, tc.wantErr, op.Validate())
		})
	}
}

func TestOpKindNames(t *testing.T) {
	for _, k := range []OpKind{Call, DelegateCall, Create} {
		got, err := ParseOpKind(k.String())
		assert.Nil(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseOpKind("jump")
	assert.IsErr(t, errors.ErrInput, err)
}
