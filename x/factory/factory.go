/*
Package factory creates ready to use safes. A safe created by the factory
is verified by a new oracle owned by the given owner.
*/
package factory

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/oracle"
	"github.com/iov-one/custody/x/safe"
	"github.com/iov-one/custody/x/verify"
)

const (
	pathCreateSafeMsg = "factory/create_safe"
	createCost        = 200
)

// Factory creates safes together with their oracle.
type Factory struct {
	oracles oracle.Bucket
	safes   safe.Bucket
}

// NewFactory returns a factory storing in given buckets.
func NewFactory(oracles oracle.Bucket, safes safe.Bucket) Factory {
	return Factory{oracles: oracles, safes: safes}
}

// CreateSafe creates an oracle owned by owner and a safe verified by that
// oracle. It returns the addresses of both.
func (f Factory) CreateSafe(db custody.KVStore, owner custody.Address) (safeAddr, oracleAddr custody.Address, err error) {
	if err := owner.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "owner")
	}
	oracleAddr, err = f.oracles.Create(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create oracle")
	}
	if err := f.oracles.Initialize(db, oracleAddr, owner); err != nil {
		return nil, nil, errors.Wrap(err, "initialize oracle")
	}
	safeAddr, err = f.safes.Create(db, []custody.Address{oracleAddr})
	if err != nil {
		return nil, nil, errors.Wrap(err, "create safe")
	}
	return safeAddr, oracleAddr, nil
}

// CreateSafeMsg creates a safe owned by Owner.
type CreateSafeMsg struct {
	Owner custody.Address `json:"owner"`
}

var _ verify.Constructor = (*CreateSafeMsg)(nil)

func (CreateSafeMsg) Path() string {
	return pathCreateSafeMsg
}

// Creates returns the kind of contract this message constructs.
func (CreateSafeMsg) Creates() string {
	return "safe"
}

func (m *CreateSafeMsg) Validate() error {
	return errors.Wrap(m.Owner.Validate(), "owner")
}

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, f Factory) {
	r.Handle(pathCreateSafeMsg, CreateSafeHandler{factory: f})
}

// CreateSafeHandler creates safes. The address of the new safe is returned
// as the result data.
type CreateSafeHandler struct {
	factory Factory
}

var _ custody.Handler = CreateSafeHandler{}

func (h CreateSafeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg CreateSafeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &custody.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateSafeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg CreateSafeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := custody.GetGasMeter(ctx).Consume(createCost, "factory create safe"); err != nil {
		return nil, err
	}
	safeAddr, oracleAddr, err := h.factory.CreateSafe(db, msg.Owner)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("Safe created", "safe", safeAddr, "owner", msg.Owner)
	return &custody.DeliverResult{
		Data: safeAddr,
		Tags: []custody.KVPair{
			custody.Tag("safe", safeAddr),
			custody.Tag("oracle", oracleAddr),
		},
	}, nil
}
