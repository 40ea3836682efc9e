package app

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"sync"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Application ties together a persistent store, a transaction decoder and
// the handler stack. Every delivered transaction goes into the pending
// block which is persisted by Commit.
type Application struct {
	mu sync.Mutex

	name        string
	store       custody.CommitKVStore
	pending     custody.KVCacheWrap
	handler     custody.Handler
	decoder     custody.TxDecoder
	initializer custody.Initializer
	logger      log.Logger
	debug       bool
}

// NewApplication loads the latest version of the store and returns an
// application ready to process transactions.
func NewApplication(
	name string,
	store custody.CommitKVStore,
	handler custody.Handler,
	decoder custody.TxDecoder,
	initializer custody.Initializer,
	logger log.Logger,
) (*Application, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load store")
	}
	if logger == nil {
		logger = custody.DefaultLogger
	}
	return &Application{
		name:        name,
		store:       store,
		pending:     store.CacheWrap(),
		handler:     handler,
		decoder:     decoder,
		initializer: initializer,
		logger:      logger.With("module", name),
	}, nil
}

// WithDebug sets the debug flag. When set, error responses carry the full
// stack trace instead of a redacted message.
func (a *Application) WithDebug(debug bool) *Application {
	a.debug = debug
	return a
}

// Logger returns the application logger.
func (a *Application) Logger() log.Logger {
	return a.logger
}

// Height returns the height of the block that is being built.
func (a *Application) Height() (int64, error) {
	id, err := a.store.LatestVersion()
	if err != nil {
		return 0, errors.Wrap(err, "latest version")
	}
	return id.Version + 1, nil
}

// InitChain loads the genesis state into the pending block. It is allowed
// only before the first block was committed.
func (a *Application) InitChain(opts custody.Options) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := a.store.LatestVersion()
	if err != nil {
		return errors.Wrap(err, "latest version")
	}
	if id.Version != 0 {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "chain at version %d", id.Version)
	}
	if a.initializer == nil {
		return nil
	}
	if err := a.initializer.FromGenesis(opts, a.pending); err != nil {
		return errors.Wrap(err, "genesis")
	}
	a.logger.Info("Genesis loaded", "keys", len(opts))
	return nil
}

// context builds the context a single transaction is processed with.
func (a *Application) context(caller custody.Address, gasLimit uint64) (custody.Context, error) {
	height, err := a.Height()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	ctx = custody.WithHeight(ctx, height)
	ctx = custody.WithLogger(ctx, a.logger)
	if caller != nil {
		ctx = custody.WithCaller(ctx, caller)
	}
	meter := custody.NewInfiniteGasMeter()
	if gasLimit > 0 {
		meter = custody.NewGasMeter(gasLimit)
	}
	return custody.WithGasMeter(ctx, meter), nil
}

// Deliver decodes and executes the transaction submitted by caller. Its
// changes become part of the pending block only if it succeeds. A zero gas
// limit means no limit.
func (a *Application) Deliver(caller custody.Address, gasLimit uint64, txBytes []byte) (*custody.DeliverResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.decoder(txBytes)
	if err != nil {
		return nil, err
	}
	ctx, err := a.context(caller, gasLimit)
	if err != nil {
		return nil, err
	}

	cache := a.pending.CacheWrap()
	start := time.Now()
	res, err := a.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		a.logger.Debug("Deliver failed", "path", custody.GetPath(tx), "err", err)
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write transaction changes")
	}
	res.GasUsed = int64(custody.GetGasMeter(ctx).Consumed())
	a.logger.Debug("Deliver", "path", custody.GetPath(tx), "duration", time.Since(start).Seconds()*1000)
	return res, nil
}

// DeliverTx is Deliver with the result converted to the ABCI format.
func (a *Application) DeliverTx(caller custody.Address, gasLimit uint64, txBytes []byte) abci.ResponseDeliverTx {
	res, err := a.Deliver(caller, gasLimit, txBytes)
	return custody.DeliverOrError(res, err, a.debug)
}

// Check validates the transaction against the pending state. Changes made
// by the handler are always discarded.
func (a *Application) Check(caller custody.Address, gasLimit uint64, txBytes []byte) (*custody.CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.decoder(txBytes)
	if err != nil {
		return nil, err
	}
	ctx, err := a.context(caller, gasLimit)
	if err != nil {
		return nil, err
	}
	cache := a.pending.CacheWrap()
	defer cache.Discard()
	return a.handler.Check(ctx, cache, tx)
}

// CheckTx is Check with the result converted to the ABCI format.
func (a *Application) CheckTx(caller custody.Address, gasLimit uint64, txBytes []byte) abci.ResponseCheckTx {
	res, err := a.Check(caller, gasLimit, txBytes)
	return custody.CheckOrError(res, err, a.debug)
}

// Commit persists the pending block and starts a new one.
func (a *Application) Commit() (custody.CommitID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.pending.Write(); err != nil {
		return custody.CommitID{}, errors.Wrap(err, "write pending block")
	}
	id, err := a.store.Commit()
	if err != nil {
		return custody.CommitID{}, errors.Wrap(err, "commit")
	}
	a.pending = a.store.CacheWrap()
	a.logger.Info("Commit synced", "height", id.Version, "hash", id.Hash)
	return id, nil
}

// View runs fn against the pending state. Any modification fn makes is
// discarded.
func (a *Application) View(fn func(custody.Context, custody.KVStore) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.context(nil, 0)
	if err != nil {
		return err
	}
	cache := a.pending.CacheWrap()
	defer cache.Discard()
	return fn(ctx, cache)
}

// LoadGenesis reads the application options from a genesis file. The file
// is a JSON object with the options stored under the "app_state" key.
func LoadGenesis(path string) (custody.Options, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var gen struct {
		AppState custody.Options `json:"app_state"`
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis %s: %s", path, err)
	}
	return gen.AppState, nil
}
