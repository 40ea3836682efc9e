package custodytest

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a private key derived from given seed, so that tests are
// reproducible.
func NewKey(t testing.TB, seed string) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.PrivKeyFromSeed([]byte(seed))
	if err != nil {
		t.Fatalf("cannot create key: %s", err)
	}
	return key
}

// NewAddress returns a unique address for given number.
func NewAddress(n uint64) custody.Address {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, n)
	return custody.NewCondition("test", "addr", id).Address()
}

// Ctx returns a context as created by the application for a transaction
// submitted by caller with given gas limit.
func Ctx(caller custody.Address, gasLimit uint64) custody.Context {
	ctx := context.Background()
	if caller != nil {
		ctx = custody.WithCaller(ctx, caller)
	}
	return custody.WithGasMeter(ctx, custody.NewGasMeter(gasLimit))
}

// Sign signs digest with all keys and returns the concatenated signatures.
func Sign(t testing.TB, digest []byte, keys ...*crypto.PrivateKey) []byte {
	t.Helper()
	var blob []byte
	for _, k := range keys {
		sig, err := k.Sign(digest)
		if err != nil {
			t.Fatalf("cannot sign: %s", err)
		}
		blob = append(blob, sig...)
	}
	return blob
}
