package verify

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"golang.org/x/crypto/sha3"
)

const wordLength = 32

// Hash returns the Keccak-256 digest of the packed operation:
//
//   to(20) | value(32) | data | kind(1) | nonce(32) | timestamp(32) |
//   token(20) | gas(32) | gasPrice(32)
//
// Integers are big endian, left padded to 32 bytes. An empty address is
// encoded as 20 zero bytes.
func Hash(op *Operation) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(address(op.To))
	h.Write(op.Value[:])
	h.Write(op.Data)
	h.Write([]byte{byte(op.Kind)})
	h.Write(uint256(op.Nonce))
	h.Write(int256(op.Timestamp))
	h.Write(address(op.Token))
	h.Write(uint256(op.Gas))
	h.Write(op.GasPrice[:])

	var digest [32]byte
	h.Sum(digest[:0])
	return digest
}

func address(a custody.Address) []byte {
	if len(a) == 0 {
		return make([]byte, custody.AddressLength)
	}
	return a
}

func uint256(n uint64) []byte {
	w := make([]byte, wordLength)
	binary.BigEndian.PutUint64(w[wordLength-8:], n)
	return w
}

// int256 encodes n in two's complement.
func int256(n int64) []byte {
	w := uint256(uint64(n))
	if n < 0 {
		for i := 0; i < wordLength-8; i++ {
			w[i] = 0xff
		}
	}
	return w
}

// CanonicalHasher implements TxHash. Embed it in a module so that all
// modules hash operations the same way.
type CanonicalHasher struct{}

// TxHash returns the digest signers must sign to authorize op.
func (CanonicalHasher) TxHash(op *Operation) [32]byte {
	return Hash(op)
}
