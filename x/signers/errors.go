package signers

import "github.com/iov-one/custody/errors"

// ErrThreshold is returned when a change would leave the group with fewer
// signers than required by its threshold.
var ErrThreshold = errors.Register(1031, "threshold violation")
