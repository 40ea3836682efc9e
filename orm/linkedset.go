package orm

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Sentinel is the head and the tail marker of every LinkedSet. It can never
// be a member.
var Sentinel = custody.Address{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}

// LinkedSet stores, for each owner, a set of addresses chained from the
// Sentinel. New members are inserted at the head. Removal requires the
// member that precedes the removed one, so that no traversal is needed to
// unlink it.
//
// Keys are built as
//    _l.<name>:<owner><member> -> <next member>
//    _l.<name>:<owner>         -> <member count>
type LinkedSet struct {
	prefix []byte
}

// NewLinkedSet returns a linked set stored under given name.
func NewLinkedSet(name string) LinkedSet {
	if !isBucketName(name) {
		panic("Illegal linked set: " + name)
	}
	return LinkedSet{prefix: []byte("_l." + name + ":")}
}

func (l LinkedSet) countKey(owner custody.Address) []byte {
	out := make([]byte, 0, len(l.prefix)+len(owner))
	return append(append(out, l.prefix...), owner...)
}

func (l LinkedSet) nodeKey(owner, member custody.Address) []byte {
	out := make([]byte, 0, len(l.prefix)+len(owner)+len(member))
	return append(append(append(out, l.prefix...), owner...), member...)
}

// next returns the address following given node. A missing head link means
// an empty set and resolves to the Sentinel.
func (l LinkedSet) next(db custody.ReadOnlyKVStore, owner, node custody.Address) (custody.Address, error) {
	raw, err := db.Get(l.nodeKey(owner, node))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	if raw == nil && node.Equals(Sentinel) {
		return Sentinel, nil
	}
	return custody.Address(raw), nil
}

func (l LinkedSet) link(db custody.KVStore, owner, node, next custody.Address) error {
	var err error
	if node.Equals(Sentinel) && next.Equals(Sentinel) {
		err = db.Delete(l.nodeKey(owner, node))
	} else {
		err = db.Set(l.nodeKey(owner, node), next)
	}
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	return nil
}

func validMember(member custody.Address) error {
	if err := member.Validate(); err != nil {
		return errors.Wrap(err, "member")
	}
	if member.IsZero() || member.Equals(Sentinel) {
		return errors.Wrapf(errors.ErrInput, "%s cannot be a member", member)
	}
	return nil
}

// Has returns true if member belongs to the owner's set.
func (l LinkedSet) Has(db custody.ReadOnlyKVStore, owner, member custody.Address) (bool, error) {
	if member.Equals(Sentinel) {
		return false, nil
	}
	ok, err := db.Has(l.nodeKey(owner, member))
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	return ok, nil
}

// Len returns the number of members of the owner's set.
func (l LinkedSet) Len(db custody.ReadOnlyKVStore, owner custody.Address) (int, error) {
	raw, err := db.Get(l.countKey(owner))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	n, err := DecodeSequence(raw)
	return int(n), err
}

func (l LinkedSet) setLen(db custody.KVStore, owner custody.Address, n int) error {
	if err := db.Set(l.countKey(owner), EncodeSequence(uint64(n))); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	return nil
}

// Add inserts member at the head of the owner's set. It fails with
// ErrDuplicate if the member is already present.
func (l LinkedSet) Add(db custody.KVStore, owner, member custody.Address) error {
	if err := validMember(member); err != nil {
		return err
	}
	if ok, err := l.Has(db, owner, member); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(errors.ErrDuplicate, "%s", member)
	}

	head, err := l.next(db, owner, Sentinel)
	if err != nil {
		return err
	}
	if err := l.link(db, owner, member, head); err != nil {
		return err
	}
	if err := l.link(db, owner, Sentinel, member); err != nil {
		return err
	}
	n, err := l.Len(db, owner)
	if err != nil {
		return err
	}
	return l.setLen(db, owner, n+1)
}

// Remove unlinks member from the owner's set. prev must be the member
// directly preceding it (or the Sentinel if member is the head), otherwise
// ErrNotFound is returned and the set is left unchanged.
func (l LinkedSet) Remove(db custody.KVStore, owner, prev, member custody.Address) error {
	if err := validMember(member); err != nil {
		return err
	}
	after, err := l.next(db, owner, prev)
	if err != nil {
		return err
	}
	if !after.Equals(member) {
		return errors.Wrapf(errors.ErrNotFound, "%s does not precede %s", prev, member)
	}
	next, err := l.next(db, owner, member)
	if err != nil {
		return err
	}
	if err := l.link(db, owner, prev, next); err != nil {
		return err
	}
	if err := db.Delete(l.nodeKey(owner, member)); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "linked set: %s", err)
	}
	n, err := l.Len(db, owner)
	if err != nil {
		return err
	}
	return l.setLen(db, owner, n-1)
}

// List returns all members of the owner's set, most recently added first.
func (l LinkedSet) List(db custody.ReadOnlyKVStore, owner custody.Address) ([]custody.Address, error) {
	n, err := l.Len(db, owner)
	if err != nil {
		return nil, err
	}
	res := make([]custody.Address, 0, n)
	node, err := l.next(db, owner, Sentinel)
	if err != nil {
		return nil, err
	}
	for !node.Equals(Sentinel) {
		if len(res) > n || len(node) == 0 {
			return nil, errors.Wrapf(errors.ErrState, "broken linked set of %s", owner)
		}
		res = append(res, node)
		if node, err = l.next(db, owner, node); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Prev returns the member preceding given member, or the Sentinel when
// member is the head. Useful to build a removal request. ErrNotFound is
// returned if member does not belong to the set.
func (l LinkedSet) Prev(db custody.ReadOnlyKVStore, owner, member custody.Address) (custody.Address, error) {
	prev := Sentinel
	node, err := l.next(db, owner, Sentinel)
	if err != nil {
		return nil, err
	}
	for !node.Equals(Sentinel) && len(node) != 0 {
		if node.Equals(member) {
			return prev, nil
		}
		prev = node
		if node, err = l.next(db, owner, node); err != nil {
			return nil, err
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "%s", member)
}
