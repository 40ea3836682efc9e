package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery is a decorator that converts a panic of any handler down the
// stack into an ErrPanic error. The state changes of the failed
// transaction are discarded by the application.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (_ *custody.CheckResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (_ *custody.DeliverResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}

// logPanic reports a recovered panic. It must be deferred before
// errors.Recover so that it runs after it.
func logPanic(ctx custody.Context, tx custody.Tx, err *error) {
	if errors.ErrPanic.Is(*err) {
		custody.GetLogger(ctx).Error("Handler panic", "path", custody.GetPath(tx), "err", *err)
	}
}
