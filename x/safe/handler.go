package safe

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	createCost = 100
	moduleCost = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, a *Authority) {
	r.Handle(pathCreateSafeMsg, CreateHandler{bucket: a.bucket})
	r.Handle(pathExecMsg, ExecHandler{auth: a})
	r.Handle(pathExecFromModuleMsg, ExecFromModuleHandler{auth: a})
	modules := ModulesHandler{bucket: a.bucket}
	r.Handle(pathAddModuleMsg, modules)
	r.Handle(pathRemoveModuleMsg, modules)
}

// CreateHandler creates safes. The address of the new safe is returned as
// the result data.
type CreateHandler struct {
	bucket Bucket
}

var _ custody.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg CreateSafeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &custody.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg CreateSafeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := custody.GetGasMeter(ctx).Consume(createCost, "safe create"); err != nil {
		return nil, err
	}
	addr, err := h.bucket.Create(db, msg.Modules)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("Safe created", "safe", addr, "modules", len(msg.Modules))
	return &custody.DeliverResult{
		Data: addr,
		Tags: []custody.KVPair{custody.Tag("safe", addr)},
	}, nil
}

// ExecHandler executes signed operations.
type ExecHandler struct {
	auth *Authority
}

var _ custody.Handler = ExecHandler{}

// Check validates the operation without executing it.
func (h ExecHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg ExecMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if left := gasLeft(custody.GetGasMeter(ctx)); left < msg.Operation.Gas {
		return nil, errors.Wrapf(errors.ErrInsufficientGas, "gas left %d below declared %d", left, msg.Operation.Gas)
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if _, err := h.auth.authorize(db, conf, msg.Safe, &msg.Operation, msg.Signature); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: int64(msg.Operation.Gas)}, nil
}

func (h ExecHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg ExecMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.auth.Exec(ctx, db, msg.Safe, &msg.Operation, msg.Signature)
}

// ExecFromModuleHandler executes operations requested by modules.
type ExecFromModuleHandler struct {
	auth *Authority
}

var _ custody.Handler = ExecFromModuleHandler{}

func (h ExecFromModuleHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg ExecFromModuleMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(ErrNotAModule, "no caller")
	}
	isModule, err := h.auth.bucket.IsModule(db, msg.Safe, caller)
	if err != nil {
		return nil, err
	}
	if !isModule {
		return nil, errors.Wrapf(ErrNotAModule, "%s is not a module of %s", caller, msg.Safe)
	}
	return &custody.CheckResult{}, nil
}

func (h ExecFromModuleHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg ExecFromModuleMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.auth.ExecFromModule(ctx, db, msg.Safe, msg.Kind, msg.To, msg.Value, msg.Data)
}

// ModulesHandler adds and removes modules of a safe. It accepts only
// messages delivered by a delegate call of the safe.
type ModulesHandler struct {
	bucket Bucket
}

var _ custody.Handler = ModulesHandler{}

func (h ModulesHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: moduleCost}, nil
}

func (h ModulesHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	safe, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := custody.GetGasMeter(ctx).Consume(moduleCost, msg.Path()); err != nil {
		return nil, err
	}

	var module custody.Address
	switch msg := msg.(type) {
	case *AddModuleMsg:
		module = msg.Module
		err = h.bucket.AddModule(db, safe, msg.Module)
	case *RemoveModuleMsg:
		module = msg.Module
		err = h.bucket.RemoveModule(db, safe, msg.Prev, msg.Module)
	}
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("Safe modules changed", "safe", safe, "path", msg.Path(), "module", module)
	return &custody.DeliverResult{
		Tags: []custody.KVPair{
			custody.Tag("safe", safe),
			custody.Tag("safe.module", module),
		},
	}, nil
}

func (h ModulesHandler) validate(ctx custody.Context, tx custody.Tx) (custody.Address, custody.Msg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	switch msg.(type) {
	case *AddModuleMsg, *RemoveModuleMsg:
	default:
		return nil, nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid msg")
	}
	safe, ok := custody.GetDelegate(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "modules can be changed only by a delegate call of the safe")
	}
	return safe, msg, nil
}
