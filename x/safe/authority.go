package safe

import (
	"strconv"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/utils"
	"github.com/iov-one/custody/x/verify"
)

// Authority validates and executes operations of safes.
type Authority struct {
	bucket   Bucket
	registry *verify.Registry
	cash     cash.Controller
	executor custody.Deliverer
	decoder  custody.TxDecoder
}

// NewAuthority returns an authority operating on safes stored in bucket.
//
// Operation data is decoded with decoder and delivered to executor, which
// usually is the application router.
func NewAuthority(
	bucket Bucket,
	registry *verify.Registry,
	control cash.Controller,
	executor custody.Deliverer,
	decoder custody.TxDecoder,
) *Authority {
	return &Authority{
		bucket:   bucket,
		registry: registry,
		cash:     control,
		executor: executor,
		decoder:  decoder,
	}
}

// Bucket returns the bucket the safes are stored in.
func (a *Authority) Bucket() Bucket {
	return a.bucket
}

// Modules returns the modules of the safe, most recently added first.
func (a *Authority) Modules(db custody.ReadOnlyKVStore, safe custody.Address) ([]custody.Address, error) {
	if _, err := a.bucket.Load(db, safe); err != nil {
		return nil, err
	}
	return a.bucket.Modules(db, safe)
}

// Nonce returns the nonce of the last operation executed by the safe.
func (a *Authority) Nonce(db custody.ReadOnlyKVStore, safe custody.Address) (uint64, error) {
	return a.bucket.Nonce(db, safe)
}

// IsNonceValid returns true if an operation with given nonce would be the
// next operation executed by the safe.
func (a *Authority) IsNonceValid(db custody.ReadOnlyKVStore, safe custody.Address, nonce uint64) (bool, error) {
	current, err := a.bucket.Nonce(db, safe)
	if err != nil {
		return false, err
	}
	return nonce == current+1, nil
}

// IsTxValid returns true if op signed with sig would be accepted for
// execution by the safe. It does not modify the state.
func (a *Authority) IsTxValid(db custody.ReadOnlyKVStore, safe custody.Address, op *verify.Operation, sig []byte) (bool, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return false, err
	}
	switch _, err := a.authorize(db, conf, safe, op, sig); {
	case err == nil:
		return true, nil
	case ErrSequence.Is(err), errors.ErrUnauthorized.Is(err), errors.ErrInsufficientGas.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// authorize returns the module accepting sig for op. It fails with
// ErrSequence if the nonce is not the next one, ErrUnauthorized if no module
// accepts the signature, and ErrInsufficientGas if op declares less gas
// than required by the accepting module.
func (a *Authority) authorize(db custody.ReadOnlyKVStore, conf *Configuration, safe custody.Address, op *verify.Operation, sig []byte) (verify.Module, error) {
	if err := op.Validate(); err != nil {
		return nil, errors.Wrap(err, "operation")
	}
	current, err := a.bucket.Nonce(db, safe)
	if err != nil {
		return nil, err
	}
	if op.Nonce != current+1 {
		return nil, errors.Wrapf(ErrSequence, "nonce %d, expected %d", op.Nonce, current+1)
	}

	modules, err := a.bucket.Modules(db, safe)
	if err != nil {
		return nil, err
	}
	for _, addr := range modules {
		m, err := a.registry.Resolve(db, addr)
		if errors.ErrNotFound.Is(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !m.Verify(op, sig) {
			continue
		}
		if required := conf.MinGas(m.SignaturesRequired()); op.Gas < required {
			return nil, errors.Wrapf(errors.ErrInsufficientGas, "operation declares %d gas, module %s requires %d", op.Gas, addr, required)
		}
		return m, nil
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "no module accepts the signature")
}

// Exec validates and executes a signed operation. The caller found in the
// context is reimbursed the gas used, paid by the safe in op.Token.
func (a *Authority) Exec(ctx custody.Context, db custody.KVStore, safe custody.Address, op *verify.Operation, sig []byte) (*custody.DeliverResult, error) {
	meter := custody.GetGasMeter(ctx)
	if left := gasLeft(meter); left < op.Gas {
		return nil, errors.Wrapf(errors.ErrInsufficientGas, "gas left %d below declared %d", left, op.Gas)
	}
	start := meter.Consumed()

	var res *custody.DeliverResult
	err := utils.Atomic(db, func(db custody.KVStore) error {
		conf, err := LoadConfiguration(db)
		if err != nil {
			return err
		}
		m, err := a.authorize(db, conf, safe, op, sig)
		if err != nil {
			return err
		}
		if err := meter.Consume(conf.Cost(m.SignaturesRequired(), len(op.Data)), "safe exec"); err != nil {
			return err
		}

		// The nonce must be advanced before the operation is performed.
		nonce, err := a.bucket.IncrementNonce(db, safe)
		if err != nil {
			return err
		}
		if res, err = a.perform(ctx, db, safe, op.Kind, op.To, op.Value, op.Data); err != nil {
			return err
		}

		gasUsed := meter.Consumed() - start
		refund, err := a.reimburse(ctx, db, safe, op, gasUsed)
		if err != nil {
			return err
		}

		res.Tags = append(res.Tags,
			custody.Tag("safe", safe),
			custody.Tag("safe.nonce", []byte(strconv.FormatUint(nonce, 10))),
			custody.Tag("safe.kind", []byte(op.Kind.String())),
			custody.Tag("safe.to", op.To),
			custody.Tag("safe.gas_used", []byte(strconv.FormatUint(gasUsed, 10))),
			custody.Tag("safe.reimbursement", []byte(refund.String())),
		)
		custody.GetLogger(ctx).Info("Operation executed",
			"safe", safe, "nonce", nonce, "kind", op.Kind, "gas", gasUsed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reimburse pays gasUsed times the gas price to the submitter.
func (a *Authority) reimburse(ctx custody.Context, db custody.KVStore, safe custody.Address, op *verify.Operation, gasUsed uint64) (custody.Amount, error) {
	refund, err := op.GasPrice.MulUint64(gasUsed)
	if err != nil {
		return refund, errors.Wrap(err, "reimbursement")
	}
	if refund.IsZero() {
		return refund, nil
	}
	submitter, ok := custody.GetCaller(ctx)
	if !ok {
		return refund, errors.Wrap(errors.ErrUnauthorized, "no submitter to reimburse")
	}
	if err := a.cash.Move(db, safe, submitter, op.Token, refund); err != nil {
		return refund, errors.Wrap(err, "reimbursement")
	}
	return refund, nil
}

// ExecFromModule performs an operation requested by one of the modules of
// the safe. The nonce of the safe is neither checked nor advanced.
func (a *Authority) ExecFromModule(ctx custody.Context, db custody.KVStore, safe custody.Address, kind verify.OpKind, to custody.Address, value custody.Amount, data []byte) (*custody.DeliverResult, error) {
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(ErrNotAModule, "no caller")
	}
	isModule, err := a.bucket.IsModule(db, safe, caller)
	if err != nil {
		return nil, err
	}
	if !isModule {
		return nil, errors.Wrapf(ErrNotAModule, "%s is not a module of %s", caller, safe)
	}

	var res *custody.DeliverResult
	err = utils.Atomic(db, func(db custody.KVStore) (err error) {
		res, err = a.perform(ctx, db, safe, kind, to, value, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags,
		custody.Tag("safe", safe),
		custody.Tag("safe.module", caller),
		custody.Tag("safe.kind", []byte(kind.String())),
	)
	return res, nil
}

// perform executes an operation on behalf of the safe.
func (a *Authority) perform(ctx custody.Context, db custody.KVStore, safe custody.Address, kind verify.OpKind, to custody.Address, value custody.Amount, data []byte) (*custody.DeliverResult, error) {
	ctx = custody.WithCaller(ctx, safe)

	switch kind {
	case verify.Call:
		if !value.IsZero() {
			if err := a.cash.Move(db, safe, to, cash.NativeAsset, value); err != nil {
				return nil, errors.Wrap(err, "call value")
			}
		}
		if len(data) == 0 {
			return &custody.DeliverResult{}, nil
		}
		return a.deliver(custody.WithDelegate(ctx, nil), db, data)

	case verify.DelegateCall:
		if !value.IsZero() {
			return nil, errors.Wrap(errors.ErrInput, "delegate call cannot transfer value")
		}
		return a.deliver(custody.WithDelegate(ctx, safe), db, data)

	case verify.Create:
		tx, err := a.decoder(data)
		if err != nil {
			return nil, errors.Wrap(err, "constructor")
		}
		msg, err := tx.GetMsg()
		if err != nil {
			return nil, errors.Wrap(err, "constructor")
		}
		if _, ok := msg.(verify.Constructor); !ok {
			return nil, errors.Wrapf(errors.ErrMsg, "%s is not a constructor", msg.Path())
		}
		res, err := a.executor.Deliver(custody.WithDelegate(ctx, nil), db, tx)
		if err != nil {
			return nil, err
		}
		created := custody.Address(res.Data)
		if err := created.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrState, "constructor did not return an address")
		}
		if !value.IsZero() {
			if err := a.cash.Move(db, safe, created, cash.NativeAsset, value); err != nil {
				return nil, errors.Wrap(err, "create value")
			}
		}
		res.Tags = append(res.Tags, custody.Tag("safe.created", created))
		return res, nil
	}
	return nil, errors.Wrapf(errors.ErrInput, "unknown operation kind %d", uint32(kind))
}

func (a *Authority) deliver(ctx custody.Context, db custody.KVStore, data []byte) (*custody.DeliverResult, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "operation data")
	}
	tx, err := a.decoder(data)
	if err != nil {
		return nil, errors.Wrap(err, "operation data")
	}
	return a.executor.Deliver(ctx, db, tx)
}

// gasLeft returns how much gas can still be consumed from meter.
func gasLeft(meter custody.GasMeter) uint64 {
	if meter.Consumed() >= meter.Limit() {
		return 0
	}
	return meter.Limit() - meter.Consumed()
}
