package safe

import "github.com/iov-one/custody/errors"

var (
	// ErrSequence is returned when the operation nonce is not the next
	// nonce of the safe.
	ErrSequence = errors.Register(1040, "invalid sequence")
	// ErrNotAModule is returned when the caller is not a module of the
	// safe.
	ErrNotAModule = errors.Register(1041, "not a module")
	// ErrLastModule is returned when removing the only module of a safe.
	ErrLastModule = errors.Register(1042, "last module")
)
