package signers

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/x/verify"
)

// ModuleName is the name under which groups are registered as
// verification modules.
const ModuleName = "signers"

// Module is the verification module view of a group.
type Module struct {
	verify.CanonicalHasher
	threshold int
	members   map[string]bool
}

var _ verify.Module = Module{}

// NewModule returns the verification module of a group with given
// members.
func NewModule(g *Group, members []custody.Address) Module {
	m := Module{
		threshold: int(g.Threshold),
		members:   make(map[string]bool, len(members)),
	}
	for _, a := range members {
		m.members[string(a)] = true
	}
	return m
}

// Verify splits the blob into signatures and returns true if at least
// threshold distinct members signed op. The order of signatures does not
// matter. A malformed blob authorizes nothing.
func (m Module) Verify(op *verify.Operation, blob []byte) bool {
	sigs, err := crypto.SplitSignatures(blob)
	if err != nil {
		return false
	}
	digest := m.TxHash(op)
	signed := make(map[string]bool, len(sigs))
	for _, sig := range sigs {
		signer, err := crypto.Recover(digest[:], sig)
		if err != nil {
			return false
		}
		if m.members[string(signer)] {
			signed[string(signer)] = true
		}
	}
	return m.threshold > 0 && len(signed) >= m.threshold
}

// SignaturesRequired returns the threshold.
func (m Module) SignaturesRequired() int {
	return m.threshold
}

// Loader returns groups stored in given bucket as verification modules.
func Loader(b Bucket) verify.Loader {
	return func(db custody.ReadOnlyKVStore, addr custody.Address) (verify.Module, error) {
		g, err := b.lookup(db, addr)
		if err != nil || g == nil {
			return nil, err
		}
		members, err := b.ListSigners(db, addr)
		if err != nil {
			return nil, err
		}
		return NewModule(g, members), nil
	}
}
