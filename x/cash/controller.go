package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Controller is the functionality needed by cash.Handler and other
// extensions that move value between accounts.
type Controller interface {
	Balance(db custody.ReadOnlyKVStore, owner, asset custody.Address) (custody.Amount, error)
	Balances(db custody.ReadOnlyKVStore, owner custody.Address) ([]Holding, error)
	Issue(db custody.KVStore, dest, asset custody.Address, amount custody.Amount) error
	Move(db custody.KVStore, src, dest, asset custody.Address, amount custody.Amount) error
}

// BaseController is the default implementation of Controller.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller that operates on given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of asset owned by owner.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, owner, asset custody.Address) (custody.Amount, error) {
	return c.bucket.Get(db, owner, asset)
}

// Balances returns all non-zero balances of owner, ordered by asset.
func (c BaseController) Balances(db custody.ReadOnlyKVStore, owner custody.Address) ([]Holding, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	var res []Holding
	err := c.bucket.Visit(db, owner, func(obj orm.Object) error {
		_, asset, err := parseKey(obj.Key())
		if err != nil {
			return err
		}
		res = append(res, Holding{Asset: asset, Amount: obj.Value().(*Balance).Amount})
		return nil
	})
	return res, err
}

// Issue adds amount of asset to dest. Fails if the balance overflows.
func (c BaseController) Issue(db custody.KVStore, dest, asset custody.Address, amount custody.Amount) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	bal, err := c.bucket.Get(db, dest, asset)
	if err != nil {
		return err
	}
	if bal, err = bal.Add(amount); err != nil {
		return errors.Wrapf(err, "issue to %s", dest)
	}
	return c.bucket.Set(db, dest, asset, bal)
}

// Move transfers amount of asset from src to dest. It fails with
// ErrInsufficientAmount if src does not hold enough.
func (c BaseController) Move(db custody.KVStore, src, dest, asset custody.Address, amount custody.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "cannot move zero")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	have, err := c.bucket.Get(db, src, asset)
	if err != nil {
		return err
	}
	left, err := have.Sub(amount)
	if err != nil {
		return errors.Wrapf(err, "%s holds %s, needs %s", src, have, amount)
	}
	if err := c.bucket.Set(db, src, asset, left); err != nil {
		return err
	}
	return c.Issue(db, dest, asset, amount)
}
