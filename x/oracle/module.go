package oracle

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/x/verify"
)

// ModuleName is the name under which oracles are registered as
// verification modules.
const ModuleName = "oracle"

// Module is the verification module view of an oracle.
type Module struct {
	verify.CanonicalHasher
	oracle *Oracle
}

var _ verify.Module = Module{}

// NewModule returns the verification module of given oracle.
func NewModule(o *Oracle) Module {
	return Module{oracle: o}
}

// Verify returns true if signature is the owner's signature of op.
func (m Module) Verify(op *verify.Operation, signature []byte) bool {
	if !m.oracle.Initialized {
		return false
	}
	digest := m.TxHash(op)
	signer, err := crypto.Recover(digest[:], signature)
	if err != nil {
		return false
	}
	return signer.Equals(m.oracle.Owner)
}

// SignaturesRequired is always one.
func (Module) SignaturesRequired() int {
	return 1
}

// Loader returns oracles stored in given bucket as verification modules.
func Loader(b Bucket) verify.Loader {
	return func(db custody.ReadOnlyKVStore, addr custody.Address) (verify.Module, error) {
		o, err := b.lookup(db, addr)
		if err != nil || o == nil {
			return nil, err
		}
		return NewModule(o), nil
	}
}
