package verify

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

type staticModule struct {
	CanonicalHasher
	accept bool
}

func (m staticModule) Verify(*Operation, []byte) bool { return m.accept }
func (staticModule) SignaturesRequired() int         { return 1 }

func TestRegistryResolve(t *testing.T) {
	known := custodytest.NewAddress(1)
	broken := custodytest.NewAddress(2)

	r := NewRegistry()
	r.Register("static", func(db custody.ReadOnlyKVStore, addr custody.Address) (Module, error) {
		switch {
		case addr.Equals(known):
			return staticModule{accept: true}, nil
		case addr.Equals(broken):
			return nil, errors.ErrDatabase
		}
		return nil, nil
	})
	assert.Panics(t, func() { r.Register("static", nil) })

	db := store.MemStore()

	m, err := r.Resolve(db, known)
	assert.Nil(t, err)
	assert.Equal(t, true, m.Verify(nil, nil))

	_, err = r.Resolve(db, custodytest.NewAddress(3))
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = r.Resolve(db, broken)
	assert.IsErr(t, errors.ErrDatabase, err)
}
