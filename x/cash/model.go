package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// NativeAsset identifies the native asset.
var NativeAsset = custody.Address(nil)

// Balance is the amount of a single asset held by an owner.
type Balance struct {
	Amount custody.Amount
}

var _ orm.Model = (*Balance)(nil)

// Validate is a noop, any amount is valid.
func (b *Balance) Validate() error {
	return nil
}

// Holding is a single non-zero balance of an owner.
type Holding struct {
	Asset  custody.Address `json:"asset"`
	Amount custody.Amount  `json:"amount"`
}

// BalanceKey returns the bucket key of the balance of owner in asset.
func BalanceKey(owner, asset custody.Address) []byte {
	key := make([]byte, 2*custody.AddressLength)
	copy(key, owner)
	if !asset.IsZero() {
		copy(key[custody.AddressLength:], asset)
	}
	return key
}

func parseKey(key []byte) (owner, asset custody.Address, err error) {
	if len(key) != 2*custody.AddressLength {
		return nil, nil, errors.Wrapf(errors.ErrModel, "balance key of %d bytes", len(key))
	}
	owner = custody.Address(key[:custody.AddressLength])
	asset = custody.Address(key[custody.AddressLength:])
	if asset.IsZero() {
		asset = NativeAsset
	}
	return owner, asset, nil
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Balance{})),
	}
}

// Get returns the balance of owner in asset, zero if none is stored.
func (b Bucket) Get(db custody.ReadOnlyKVStore, owner, asset custody.Address) (custody.Amount, error) {
	obj, err := b.Bucket.Get(db, BalanceKey(owner, asset))
	if err != nil || obj == nil {
		return custody.Amount{}, err
	}
	bal, ok := obj.Value().(*Balance)
	if !ok {
		return custody.Amount{}, errors.WithType(errors.ErrModel, obj.Value())
	}
	return bal.Amount, nil
}

// Set stores the balance of owner in asset. A zero amount removes the
// entry.
func (b Bucket) Set(db custody.KVStore, owner, asset custody.Address, amount custody.Amount) error {
	key := BalanceKey(owner, asset)
	if amount.IsZero() {
		return b.Bucket.Delete(db, key)
	}
	return b.Bucket.Save(db, orm.NewSimpleObj(key, &Balance{Amount: amount}))
}
