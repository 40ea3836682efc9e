package safe

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// BucketName is where we store the safes
	BucketName = "safe"
	// SequenceName is an auto-increment ID counter for safes
	SequenceName = "id"
	// SetName is the linked set holding the modules of all safes.
	SetName = "safemod"
)

// Safe is the state of a custody account. Its modules are kept in a linked
// set under the safe address and its balances in the cash bucket.
type Safe struct {
	Nonce uint64
}

var _ orm.Model = (*Safe)(nil)

// Validate is a noop, any nonce is valid.
func (s *Safe) Validate() error {
	return nil
}

// Condition returns the condition of the safe with given sequence id.
func Condition(id []byte) custody.Condition {
	return custody.NewCondition("safe", "contract", id)
}

// Bucket is a type-safe wrapper around orm.Bucket. It keeps the safes
// together with their modules.
type Bucket struct {
	orm.Bucket
	idSeq   orm.Sequence
	modules orm.LinkedSet
}

// NewBucket initializes a safe bucket with default name
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Safe{}))
	return Bucket{
		Bucket:  b,
		idSeq:   b.Sequence(SequenceName),
		modules: orm.NewLinkedSet(SetName),
	}
}

// Create stores a new safe with given modules and returns its address.
func (b Bucket) Create(db custody.KVStore, modules []custody.Address) (custody.Address, error) {
	if len(modules) == 0 {
		return nil, errors.Wrap(ErrLastModule, "a safe needs at least one module")
	}
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, err
	}
	addr := Condition(id).Address()
	if err := b.Bucket.Save(db, orm.NewSimpleObj(addr, &Safe{})); err != nil {
		return nil, err
	}
	for i, m := range modules {
		if err := b.modules.Add(db, addr, m); err != nil {
			return nil, errors.Wrapf(err, "module %d", i)
		}
	}
	return addr, nil
}

// Load returns the safe stored under addr. It fails with ErrNotFound if
// there is none.
func (b Bucket) Load(db custody.ReadOnlyKVStore, addr custody.Address) (*Safe, error) {
	obj, err := b.Bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "safe %s", addr)
	}
	s, ok := obj.Value().(*Safe)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return s, nil
}

// Nonce returns the nonce of the last operation executed by the safe.
func (b Bucket) Nonce(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error) {
	s, err := b.Load(db, addr)
	if err != nil {
		return 0, err
	}
	return s.Nonce, nil
}

// IncrementNonce advances the nonce of the safe and returns the new value.
func (b Bucket) IncrementNonce(db custody.KVStore, addr custody.Address) (uint64, error) {
	s, err := b.Load(db, addr)
	if err != nil {
		return 0, err
	}
	s.Nonce++
	if err := b.Bucket.Save(db, orm.NewSimpleObj(addr, s)); err != nil {
		return 0, err
	}
	return s.Nonce, nil
}

// Modules returns the modules of the safe, most recently added first.
func (b Bucket) Modules(db custody.ReadOnlyKVStore, addr custody.Address) ([]custody.Address, error) {
	return b.modules.List(db, addr)
}

// IsModule returns true if module is registered in the safe.
func (b Bucket) IsModule(db custody.ReadOnlyKVStore, addr, module custody.Address) (bool, error) {
	return b.modules.Has(db, addr, module)
}

// PrevModule returns the module preceding given one, as required by
// RemoveModule.
func (b Bucket) PrevModule(db custody.ReadOnlyKVStore, addr, module custody.Address) (custody.Address, error) {
	return b.modules.Prev(db, addr, module)
}

// AddModule registers a module in the safe.
func (b Bucket) AddModule(db custody.KVStore, addr, module custody.Address) error {
	if _, err := b.Load(db, addr); err != nil {
		return err
	}
	return b.modules.Add(db, addr, module)
}

// RemoveModule unregisters a module. prev must be the module preceding it
// in the listing order, or orm.Sentinel for the first one. The last module
// cannot be removed.
func (b Bucket) RemoveModule(db custody.KVStore, addr, prev, module custody.Address) error {
	if _, err := b.Load(db, addr); err != nil {
		return err
	}
	n, err := b.modules.Len(db, addr)
	if err != nil {
		return err
	}
	if n <= 1 {
		return errors.Wrapf(ErrLastModule, "safe %s", addr)
	}
	return b.modules.Remove(db, addr, prev, module)
}
