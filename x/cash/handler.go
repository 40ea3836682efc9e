package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const sendTxCost = 100

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, control Controller) {
	r.Handle(pathSendMsg, NewSendHandler(control))
}

// SendHandler will handle sending value
type SendHandler struct {
	control Controller
}

var _ custody.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(control Controller) SendHandler {
	return SendHandler{control: control}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the value from the caller to the destination.
func (h SendHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, src, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := custody.GetGasMeter(ctx).Consume(sendTxCost, "cash send"); err != nil {
		return nil, err
	}
	if err := h.control.Move(db, src, msg.Destination, msg.Asset, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{
		Tags: []custody.KVPair{
			custody.Tag("cash.src", src),
			custody.Tag("cash.dst", msg.Destination),
		},
	}, nil
}

func (h SendHandler) validate(ctx custody.Context, tx custody.Tx) (*SendMsg, custody.Address, error) {
	var msg SendMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	src, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	return &msg, src, nil
}
