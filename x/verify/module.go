package verify

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Module decides whether a signature authorizes an operation.
type Module interface {
	// TxHash returns the digest that must be signed.
	TxHash(op *Operation) [32]byte
	// Verify returns true if signature authorizes op. A malformed
	// signature is not an error, it simply does not authorize anything.
	Verify(op *Operation, signature []byte) bool
	// SignaturesRequired returns how many signatures Verify checks. It is
	// used to compute the minimal gas of an operation.
	SignaturesRequired() int
}

// Loader returns the module stored under the given address. It returns a
// nil module and no error if there is no module of its kind under that
// address.
type Loader func(db custody.ReadOnlyKVStore, addr custody.Address) (Module, error)

// Registry knows all kinds of verification modules and can load any of
// them by address.
type Registry struct {
	names   []string
	loaders map[string]Loader
}

// NewRegistry returns a registry without any loader.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader for a kind of modules. It panics if the name is
// already taken.
func (r *Registry) Register(name string, l Loader) {
	if _, ok := r.loaders[name]; ok {
		panic(fmt.Sprintf("verification module %q registered twice", name))
	}
	r.names = append(r.names, name)
	r.loaders[name] = l
}

// Resolve returns the module stored under addr. It fails with ErrNotFound
// if addr is not a verification module.
func (r *Registry) Resolve(db custody.ReadOnlyKVStore, addr custody.Address) (Module, error) {
	for _, name := range r.names {
		m, err := r.loaders[name](db, addr)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s module", name)
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "no verification module at %s", addr)
}

// Constructor is implemented by messages that create a contract. Their
// handlers return the address of the created contract as the result data.
type Constructor interface {
	custody.Msg
	// Creates returns the kind of the created contract.
	Creates() string
}
