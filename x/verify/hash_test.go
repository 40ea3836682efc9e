package verify

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"golang.org/x/crypto/sha3"
)

func sampleOperation() Operation {
	return Operation{
		To:        custodytest.NewAddress(1),
		Value:     custody.AmountOf(5),
		Data:      []byte("payload"),
		Kind:      Call,
		Nonce:     1,
		Timestamp: 1546300800,
		Token:     custodytest.NewAddress(2),
		Gas:       100000,
		GasPrice:  custody.AmountOf(1),
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a, b := sampleOperation(), sampleOperation()
	assert.Equal(t, Hash(&a), Hash(&b))
	assert.Equal(t, Hash(&a), CanonicalHasher{}.TxHash(&b))
}

func TestHashPackedLayout(t *testing.T) {
	op := sampleOperation()
	op.Timestamp = -1

	var packed bytes.Buffer
	packed.Write(op.To)
	packed.Write(op.Value[:])
	packed.Write(op.Data)
	packed.WriteByte(0)
	packed.Write(append(make([]byte, 31), 1))
	packed.Write(bytes.Repeat([]byte{0xff}, 32))
	packed.Write(op.Token)
	gas, _ := hex.DecodeString("0186a0")
	packed.Write(append(make([]byte, 29), gas...))
	packed.Write(op.GasPrice[:])

	h := sha3.NewLegacyKeccak256()
	h.Write(packed.Bytes())
	var want [32]byte
	h.Sum(want[:0])

	assert.Equal(t, want, Hash(&op))
}

func TestHashChangesWithEveryField(t *testing.T) {
	base := sampleOperation()
	baseHash := Hash(&base)

	cases := map[string]func(*Operation){
		"to":        func(op *Operation) { op.To = custodytest.NewAddress(3) },
		"value":     func(op *Operation) { op.Value = custody.AmountOf(6) },
		"data":      func(op *Operation) { op.Data = []byte("payloae") },
		"no data":   func(op *Operation) { op.Data = nil },
		"kind":      func(op *Operation) { op.Kind = DelegateCall },
		"nonce":     func(op *Operation) { op.Nonce = 2 },
		"timestamp": func(op *Operation) { op.Timestamp++ },
		"token":     func(op *Operation) { op.Token = nil },
		"gas":       func(op *Operation) { op.Gas-- },
		"gas price": func(op *Operation) { op.GasPrice = custody.AmountOf(2) },
	}
	for testName, mutate := range cases {
		t.Run(testName, func(t *testing.T) {
			op := sampleOperation()
			mutate(&op)
			if Hash(&op) == baseHash {
				t.Fatal("hash did not change")
			}
		})
	}
}

func TestHashNativeToken(t *testing.T) {
	a, b := sampleOperation(), sampleOperation()
	a.Token = nil
	b.Token = make(custody.Address, custody.AddressLength)
	assert.Equal(t, Hash(&a), Hash(&b))
	assert.Equal(t, true, a.IsNativeToken())
	assert.Equal(t, true, b.IsNativeToken())
}
