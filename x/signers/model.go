package signers

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// BucketName is where we store the groups
	BucketName = "signers"
	// SequenceName is an auto-increment ID counter for groups
	SequenceName = "id"
	// SetName is the linked set holding the members of all groups.
	SetName = "signer"

	maxSigners = 64
)

// Group is the configuration of a threshold signer group. Members are kept
// in a linked set under the group address.
type Group struct {
	Safe      custody.Address
	Threshold uint32
}

var _ orm.Model = (*Group)(nil)

func (g *Group) Validate() error {
	if err := g.Safe.Validate(); err != nil {
		return errors.Wrap(err, "safe")
	}
	if g.Threshold == 0 {
		return errors.Wrap(ErrThreshold, "threshold must be greater than zero")
	}
	return nil
}

// Condition returns the condition of the group with given sequence id.
func Condition(id []byte) custody.Condition {
	return custody.NewCondition("signers", "group", id)
}

// Bucket is a type-safe wrapper around orm.Bucket. It keeps the groups
// together with their members.
type Bucket struct {
	orm.Bucket
	idSeq   orm.Sequence
	members orm.LinkedSet
}

// NewBucket initializes a group bucket with default name
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Group{}))
	return Bucket{
		Bucket:  b,
		idSeq:   b.Sequence(SequenceName),
		members: orm.NewLinkedSet(SetName),
	}
}

// Create stores a new group owned by safe and returns its address.
// The threshold must be between one and the number of signers, and signers
// must be unique.
func (b Bucket) Create(db custody.KVStore, safe custody.Address, signers []custody.Address, threshold uint32) (custody.Address, error) {
	if len(signers) > maxSigners {
		return nil, errors.Wrapf(errors.ErrInput, "at most %d signers allowed", maxSigners)
	}
	if threshold == 0 || int(threshold) > len(signers) {
		return nil, errors.Wrapf(ErrThreshold, "threshold %d for %d signers", threshold, len(signers))
	}
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, err
	}
	addr := Condition(id).Address()
	if err := b.Bucket.Save(db, orm.NewSimpleObj(addr, &Group{Safe: safe, Threshold: threshold})); err != nil {
		return nil, err
	}
	for i, s := range signers {
		if err := b.members.Add(db, addr, s); err != nil {
			return nil, errors.Wrapf(err, "signer %d", i)
		}
	}
	return addr, nil
}

// Load returns the group stored under addr. It fails with ErrNotFound if
// there is none.
func (b Bucket) Load(db custody.ReadOnlyKVStore, addr custody.Address) (*Group, error) {
	g, err := b.lookup(db, addr)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "group %s", addr)
	}
	return g, nil
}

func (b Bucket) lookup(db custody.ReadOnlyKVStore, addr custody.Address) (*Group, error) {
	obj, err := b.Bucket.Get(db, addr)
	if err != nil || obj == nil {
		return nil, err
	}
	g, ok := obj.Value().(*Group)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return g, nil
}

// IsSigner returns true if addr is a member of the group.
func (b Bucket) IsSigner(db custody.ReadOnlyKVStore, group, addr custody.Address) (bool, error) {
	return b.members.Has(db, group, addr)
}

// ListSigners returns all members of the group, most recently added first.
func (b Bucket) ListSigners(db custody.ReadOnlyKVStore, group custody.Address) ([]custody.Address, error) {
	return b.members.List(db, group)
}

// PrevSigner returns the member preceding signer, as required by
// RemoveSigner.
func (b Bucket) PrevSigner(db custody.ReadOnlyKVStore, group, signer custody.Address) (custody.Address, error) {
	return b.members.Prev(db, group, signer)
}

// AddSigner adds a member to the group.
func (b Bucket) AddSigner(db custody.KVStore, group, signer custody.Address) error {
	if _, err := b.Load(db, group); err != nil {
		return err
	}
	n, err := b.members.Len(db, group)
	if err != nil {
		return err
	}
	if n >= maxSigners {
		return errors.Wrapf(errors.ErrInput, "at most %d signers allowed", maxSigners)
	}
	return b.members.Add(db, group, signer)
}

// RemoveSigner removes a member from the group. prev must be the member
// preceding signer in the listing order, or orm.Sentinel for the first one.
func (b Bucket) RemoveSigner(db custody.KVStore, group, prev, signer custody.Address) error {
	g, err := b.Load(db, group)
	if err != nil {
		return err
	}
	n, err := b.members.Len(db, group)
	if err != nil {
		return err
	}
	if n-1 < int(g.Threshold) {
		return errors.Wrapf(ErrThreshold, "%d signers left for threshold %d", n-1, g.Threshold)
	}
	return b.members.Remove(db, group, prev, signer)
}

// ChangeThreshold updates the number of signatures required.
func (b Bucket) ChangeThreshold(db custody.KVStore, group custody.Address, threshold uint32) error {
	g, err := b.Load(db, group)
	if err != nil {
		return err
	}
	n, err := b.members.Len(db, group)
	if err != nil {
		return err
	}
	if threshold == 0 || int(threshold) > n {
		return errors.Wrapf(ErrThreshold, "threshold %d for %d signers", threshold, n)
	}
	g.Threshold = threshold
	return b.Bucket.Save(db, orm.NewSimpleObj(group, g))
}
