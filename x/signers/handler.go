package signers

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	createCost = 100
	updateCost = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, b Bucket) {
	r.Handle(pathCreateGroupMsg, CreateHandler{bucket: b})
	update := UpdateHandler{bucket: b}
	r.Handle(pathAddSignerMsg, update)
	r.Handle(pathRemoveSignerMsg, update)
	r.Handle(pathChangeThresholdMsg, update)
}

// CreateHandler creates groups. The address of the new group is returned
// as the result data.
type CreateHandler struct {
	bucket Bucket
}

var _ custody.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := custody.GetGasMeter(ctx).Consume(createCost, "signers create"); err != nil {
		return nil, err
	}
	addr, err := h.bucket.Create(db, owner, msg.Signers, msg.Threshold)
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{
		Data: addr,
		Tags: []custody.KVPair{custody.Tag("signers", addr)},
	}, nil
}

func (h CreateHandler) validate(ctx custody.Context, tx custody.Tx) (*CreateGroupMsg, custody.Address, error) {
	var msg CreateGroupMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if len(msg.Safe) != 0 {
		return &msg, msg.Safe, nil
	}
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrEmpty, "no safe and no caller")
	}
	return &msg, caller, nil
}

// UpdateHandler changes the members and the threshold of a group. Only the
// safe owning the group is allowed to call it.
type UpdateHandler struct {
	bucket Bucket
}

var _ custody.Handler = UpdateHandler{}

func (h UpdateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: updateCost}, nil
}

func (h UpdateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := custody.GetGasMeter(ctx).Consume(updateCost, msg.Path()); err != nil {
		return nil, err
	}

	switch msg := msg.(type) {
	case *AddSignerMsg:
		err = h.bucket.AddSigner(db, msg.Group, msg.Signer)
	case *RemoveSignerMsg:
		err = h.bucket.RemoveSigner(db, msg.Group, msg.Prev, msg.Signer)
	case *ChangeThresholdMsg:
		err = h.bucket.ChangeThreshold(db, msg.Group, msg.Threshold)
	default:
		err = errors.WithType(errors.ErrMsg, msg)
	}
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h UpdateHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (custody.Msg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid msg")
	}

	var group custody.Address
	switch msg := msg.(type) {
	case *AddSignerMsg:
		group = msg.Group
	case *RemoveSignerMsg:
		group = msg.Group
	case *ChangeThresholdMsg:
		group = msg.Group
	default:
		return nil, errors.WithType(errors.ErrMsg, msg)
	}

	g, err := h.bucket.Load(db, group)
	if err != nil {
		return nil, err
	}
	caller, ok := custody.GetCaller(ctx)
	if !ok || !caller.Equals(g.Safe) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "only %s can change group %s", g.Safe, group)
	}
	return msg, nil
}
