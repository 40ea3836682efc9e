package custody

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just an alias for the standard implementation.
// We use functions to extract/set values in the context.
type Context = context.Context

type contextKey int // local to the custody module

const (
	contextKeyHeight contextKey = iota
	contextKeyLogger
	contextKeyCaller
	contextKeyDelegate
	contextKeyGasMeter
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

// WithHeight sets the block height for the context.
// It panics if height is already set.
func WithHeight(ctx Context, height int64) Context {
	if _, ok := ctx.Value(contextKeyHeight).(int64); ok {
		panic("Height already set")
	}
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height.
// If none was set, returns 0, false.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithLogger sets the logger for this context
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// WithCaller sets the address of the account invoking the handler. For an
// outer transaction this is the submitter, for an operation performed by a
// safe this is the safe itself.
func WithCaller(ctx Context, caller Address) Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// GetCaller returns the address of the account invoking the handler.
func GetCaller(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyCaller).(Address)
	return val, ok && len(val) != 0
}

// WithDelegate marks the context as running code on behalf of the given
// account with that account's authority over its own storage. Only
// delegated calls may change the configuration of a safe.
func WithDelegate(ctx Context, owner Address) Context {
	return context.WithValue(ctx, contextKeyDelegate, owner)
}

// GetDelegate returns the account whose storage context is in use.
func GetDelegate(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyDelegate).(Address)
	return val, ok && len(val) != 0
}

// WithGasMeter sets the meter used to account for the gas consumed while
// processing a transaction.
func WithGasMeter(ctx Context, m GasMeter) Context {
	return context.WithValue(ctx, contextKeyGasMeter, m)
}

// GetGasMeter returns the gas meter of this context. When none was set an
// unlimited meter is returned.
func GetGasMeter(ctx Context) GasMeter {
	val, ok := ctx.Value(contextKeyGasMeter).(GasMeter)
	if !ok {
		return NewInfiniteGasMeter()
	}
	return val
}
