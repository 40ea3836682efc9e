package oracle

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	createCost     = 50
	initializeCost = 20
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, b Bucket) {
	r.Handle(pathCreateOracleMsg, CreateHandler{bucket: b})
	r.Handle(pathInitializeMsg, InitializeHandler{bucket: b})
}

// CreateHandler creates oracles. The address of the new oracle is returned
// as the result data.
type CreateHandler struct {
	bucket Bucket
}

var _ custody.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg CreateOracleMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &custody.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg CreateOracleMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := custody.GetGasMeter(ctx).Consume(createCost, "oracle create"); err != nil {
		return nil, err
	}
	addr, err := h.bucket.Create(db)
	if err != nil {
		return nil, err
	}
	if len(msg.Owner) != 0 {
		if err := h.bucket.Initialize(db, addr, msg.Owner); err != nil {
			return nil, err
		}
	}
	return &custody.DeliverResult{
		Data: addr,
		Tags: []custody.KVPair{custody.Tag("oracle", addr)},
	}, nil
}

// InitializeHandler sets the owner of an oracle. Only the first call
// succeeds.
type InitializeHandler struct {
	bucket Bucket
}

var _ custody.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg InitializeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	o, err := h.bucket.Load(db, msg.Oracle)
	if err != nil {
		return nil, err
	}
	if o.Initialized {
		return nil, errors.Wrapf(errors.ErrAlreadyInitialized, "oracle %s", msg.Oracle)
	}
	return &custody.CheckResult{GasAllocated: initializeCost}, nil
}

func (h InitializeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg InitializeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := custody.GetGasMeter(ctx).Consume(initializeCost, "oracle initialize"); err != nil {
		return nil, err
	}
	if err := h.bucket.Initialize(db, msg.Oracle, msg.Owner); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}
