package verify

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// OpKind tells how an operation is performed.
type OpKind uint32

const (
	// Call moves value to the destination and delivers the data, if any,
	// as a message sent by the safe.
	Call OpKind = iota
	// DelegateCall delivers the data on behalf of the safe, with the
	// authority of the safe over its own configuration.
	DelegateCall
	// Create delivers the data as a contract constructor and moves value
	// to the created contract.
	Create
)

var opKindNames = map[OpKind]string{
	Call:         "call",
	DelegateCall: "delegatecall",
	Create:       "create",
}

func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OpKind(%d)", uint32(k))
}

// Validate returns an error if the kind is unknown.
func (k OpKind) Validate() error {
	if _, ok := opKindNames[k]; !ok {
		return errors.Wrapf(errors.ErrInput, "unknown operation kind %d", uint32(k))
	}
	return nil
}

// ParseOpKind returns the kind with the given name.
func ParseOpKind(name string) (OpKind, error) {
	for k, n := range opKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrInput, "unknown operation kind %q", name)
}

// Operation is a request to be executed by a safe. It is never persisted.
type Operation struct {
	To    custody.Address `json:"to"`
	Value custody.Amount  `json:"value"`
	Data  []byte          `json:"data"`
	Kind  OpKind          `json:"kind"`
	Nonce uint64          `json:"nonce"`
	// Timestamp is part of the signed digest but is not checked.
	Timestamp int64 `json:"timestamp"`
	// Token is the asset the submitter is reimbursed in. Empty means the
	// native asset.
	Token    custody.Address `json:"token"`
	Gas      uint64          `json:"gas"`
	GasPrice custody.Amount  `json:"gas_price"`
}

// Validate checks the operation is well formed.
func (op *Operation) Validate() error {
	if op == nil {
		return errors.Wrap(errors.ErrEmpty, "operation")
	}
	if err := op.Kind.Validate(); err != nil {
		return err
	}
	switch op.Kind {
	case Create:
		if !op.To.IsZero() {
			return errors.Wrap(errors.ErrInput, "create operation must not have a destination")
		}
		if len(op.Data) == 0 {
			return errors.Wrap(errors.ErrEmpty, "create operation requires constructor data")
		}
	case DelegateCall:
		if !op.Value.IsZero() {
			return errors.Wrap(errors.ErrInput, "delegate call cannot transfer value")
		}
		if len(op.Data) == 0 {
			return errors.Wrap(errors.ErrEmpty, "delegate call requires data")
		}
	case Call:
		if err := op.To.Validate(); err != nil {
			return errors.Wrap(err, "destination")
		}
	}
	if len(op.Token) != 0 {
		if err := op.Token.Validate(); err != nil {
			return errors.Wrap(err, "token")
		}
	}
	return nil
}

// IsNativeToken returns true if the submitter is reimbursed in the native
// asset.
func (op *Operation) IsNativeToken() bool {
	return op.Token.IsZero()
}
