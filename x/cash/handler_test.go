package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestSend(t *testing.T) {
	var (
		alice = custodytest.NewAddress(1)
		bob   = custodytest.NewAddress(2)
	)

	cases := map[string]struct {
		caller  custody.Address
		msg     *SendMsg
		wantErr *errors.Error
		wantBob custody.Amount
	}{
		"success": {
			caller:  alice,
			msg:     &SendMsg{Destination: bob, Amount: custody.AmountOf(10)},
			wantBob: custody.AmountOf(10),
		},
		"no caller": {
			msg:     &SendMsg{Destination: bob, Amount: custody.AmountOf(10)},
			wantErr: errors.ErrUnauthorized,
		},
		"too poor": {
			caller:  alice,
			msg:     &SendMsg{Destination: bob, Amount: custody.AmountOf(1000)},
			wantErr: errors.ErrInsufficientAmount,
		},
		"zero amount": {
			caller:  alice,
			msg:     &SendMsg{Destination: bob},
			wantErr: errors.ErrAmount,
		},
		"bad destination": {
			caller:  alice,
			msg:     &SendMsg{Destination: custody.Address{1}, Amount: custody.AmountOf(1)},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			control := NewController(NewBucket())
			assert.Nil(t, control.Issue(kv, alice, NativeAsset, custody.AmountOf(100)))

			h := NewSendHandler(control)
			tx := &custodytest.Tx{Msg: tc.msg}
			ctx := custodytest.Ctx(tc.caller, 1000)

			_, err := h.Deliver(ctx, kv, tx)
			assert.IsErr(t, tc.wantErr, err)

			bal, err := control.Balance(kv, bob, NativeAsset)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBob, bal)
		})
	}
}

func TestGenesis(t *testing.T) {
	alice := custodytest.NewAddress(1)
	token := custodytest.NewAddress(9)

	accts := []GenesisAccount{{
		Address: alice,
		Holdings: []Holding{
			{Asset: NativeAsset, Amount: custody.AmountOf(5)},
			{Asset: token, Amount: custody.AmountOf(3)},
		},
	}}
	raw, err := json.Marshal(accts)
	assert.Nil(t, err)

	kv := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(custody.Options{optKey: raw}, kv))

	control := NewController(NewBucket())
	holdings, err := control.Balances(kv, alice)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(holdings))

	bad := custody.Options{optKey: json.RawMessage(`[{"address": "1234", "holdings": []}]`)}
	err = Initializer{}.FromGenesis(bad, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)
}
