package oracle

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// BucketName is where we store the oracles
	BucketName = "oracle"
	// SequenceName is an auto-increment ID counter for oracles
	SequenceName = "id"
)

// Oracle authorizes operations signed by its owner.
type Oracle struct {
	Owner       custody.Address
	Initialized bool
}

var _ orm.Model = (*Oracle)(nil)

func (o *Oracle) Validate() error {
	if !o.Initialized {
		if len(o.Owner) != 0 {
			return errors.Wrap(errors.ErrModel, "uninitialized oracle with an owner")
		}
		return nil
	}
	if err := o.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

// Condition returns the condition of the oracle with given sequence id.
func Condition(id []byte) custody.Condition {
	return custody.NewCondition("oracle", "contract", id)
}

// Bucket is a type-safe wrapper around orm.Bucket. Oracles are stored
// under their address.
type Bucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewBucket initializes an oracle bucket with default name
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Oracle{}))
	return Bucket{
		Bucket: b,
		idSeq:  b.Sequence(SequenceName),
	}
}

// Create stores a new uninitialized oracle and returns its address.
func (b Bucket) Create(db custody.KVStore) (custody.Address, error) {
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, err
	}
	addr := Condition(id).Address()
	if err := b.Bucket.Save(db, orm.NewSimpleObj(addr, &Oracle{})); err != nil {
		return nil, err
	}
	return addr, nil
}

// Load returns the oracle stored under addr. It fails with ErrNotFound if
// there is none.
func (b Bucket) Load(db custody.ReadOnlyKVStore, addr custody.Address) (*Oracle, error) {
	o, err := b.lookup(db, addr)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "oracle %s", addr)
	}
	return o, nil
}

func (b Bucket) lookup(db custody.ReadOnlyKVStore, addr custody.Address) (*Oracle, error) {
	obj, err := b.Bucket.Get(db, addr)
	if err != nil || obj == nil {
		return nil, err
	}
	o, ok := obj.Value().(*Oracle)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return o, nil
}

// Initialize sets the owner of an uninitialized oracle. It fails with
// ErrAlreadyInitialized if the oracle has an owner already.
func (b Bucket) Initialize(db custody.KVStore, addr, owner custody.Address) error {
	o, err := b.Load(db, addr)
	if err != nil {
		return err
	}
	if o.Initialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "oracle %s", addr)
	}
	o.Owner = owner
	o.Initialized = true
	return b.Bucket.Save(db, orm.NewSimpleObj(addr, o))
}
