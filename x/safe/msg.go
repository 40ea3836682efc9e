package safe

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/verify"
)

const (
	pathCreateSafeMsg     = "safe/create"
	pathExecMsg           = "safe/exec"
	pathExecFromModuleMsg = "safe/exec_module"
	pathAddModuleMsg      = "safe/add_module"
	pathRemoveModuleMsg   = "safe/remove_module"
)

var (
	_ custody.Msg        = (*CreateSafeMsg)(nil)
	_ verify.Constructor = (*CreateSafeMsg)(nil)
	_ custody.Msg        = (*ExecMsg)(nil)
	_ custody.Msg        = (*ExecFromModuleMsg)(nil)
	_ custody.Msg        = (*AddModuleMsg)(nil)
	_ custody.Msg        = (*RemoveModuleMsg)(nil)
)

// CreateSafeMsg creates a safe with given modules.
type CreateSafeMsg struct {
	Modules []custody.Address `json:"modules"`
}

func (CreateSafeMsg) Path() string {
	return pathCreateSafeMsg
}

// Creates returns the kind of contract this message constructs.
func (CreateSafeMsg) Creates() string {
	return "safe"
}

func (m *CreateSafeMsg) Validate() error {
	if len(m.Modules) == 0 {
		return errors.Wrap(errors.ErrEmpty, "modules")
	}
	seen := make(map[string]bool, len(m.Modules))
	for i, mod := range m.Modules {
		if err := mod.Validate(); err != nil {
			return errors.Wrapf(err, "module %d", i)
		}
		if seen[string(mod)] {
			return errors.Wrapf(errors.ErrDuplicate, "module %d", i)
		}
		seen[string(mod)] = true
	}
	return nil
}

// ExecMsg requests execution of a signed operation.
type ExecMsg struct {
	Safe      custody.Address  `json:"safe"`
	Operation verify.Operation `json:"operation"`
	Signature []byte           `json:"signature"`
}

func (ExecMsg) Path() string {
	return pathExecMsg
}

func (m *ExecMsg) Validate() error {
	if err := m.Safe.Validate(); err != nil {
		return errors.Wrap(err, "safe")
	}
	if err := m.Operation.Validate(); err != nil {
		return errors.Wrap(err, "operation")
	}
	if len(m.Signature) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil
}

// ExecFromModuleMsg requests execution of an operation by a module of the
// safe. No signature is required, the caller must be the module.
type ExecFromModuleMsg struct {
	Safe  custody.Address `json:"safe"`
	To    custody.Address `json:"to"`
	Value custody.Amount  `json:"value"`
	Data  []byte          `json:"data"`
	Kind  verify.OpKind   `json:"kind"`
}

func (ExecFromModuleMsg) Path() string {
	return pathExecFromModuleMsg
}

func (m *ExecFromModuleMsg) Validate() error {
	if err := m.Safe.Validate(); err != nil {
		return errors.Wrap(err, "safe")
	}
	op := m.operation()
	return errors.Wrap(op.Validate(), "operation")
}

func (m *ExecFromModuleMsg) operation() *verify.Operation {
	return &verify.Operation{To: m.To, Value: m.Value, Data: m.Data, Kind: m.Kind}
}

// AddModuleMsg registers a module. It is accepted only as part of a
// delegate call operation of the safe.
type AddModuleMsg struct {
	Module custody.Address `json:"module"`
}

func (AddModuleMsg) Path() string {
	return pathAddModuleMsg
}

func (m *AddModuleMsg) Validate() error {
	return errors.Wrap(m.Module.Validate(), "module")
}

// RemoveModuleMsg unregisters a module. Prev is the module listed right
// before Module. It is accepted only as part of a delegate call operation
// of the safe.
type RemoveModuleMsg struct {
	Prev   custody.Address `json:"prev"`
	Module custody.Address `json:"module"`
}

func (RemoveModuleMsg) Path() string {
	return pathRemoveModuleMsg
}

func (m *RemoveModuleMsg) Validate() error {
	if err := m.Prev.Validate(); err != nil {
		return errors.Wrap(err, "prev")
	}
	return errors.Wrap(m.Module.Validate(), "module")
}
