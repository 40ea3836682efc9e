package oracle

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	pathCreateOracleMsg = "oracle/create"
	pathInitializeMsg   = "oracle/initialize"
)

var _ custody.Msg = (*CreateOracleMsg)(nil)
var _ custody.Msg = (*InitializeMsg)(nil)

// CreateOracleMsg creates an oracle owned by Owner. When Owner is empty the
// oracle is left uninitialized.
type CreateOracleMsg struct {
	Owner custody.Address `json:"owner"`
}

func (CreateOracleMsg) Path() string {
	return pathCreateOracleMsg
}

func (m *CreateOracleMsg) Validate() error {
	if len(m.Owner) == 0 {
		return nil
	}
	return errors.Wrap(m.Owner.Validate(), "owner")
}

// Creates returns the kind of contract this message constructs.
func (CreateOracleMsg) Creates() string {
	return "oracle"
}

// InitializeMsg sets the owner of an uninitialized oracle.
type InitializeMsg struct {
	Oracle custody.Address `json:"oracle"`
	Owner  custody.Address `json:"owner"`
}

func (InitializeMsg) Path() string {
	return pathInitializeMsg
}

func (m *InitializeMsg) Validate() error {
	if err := m.Oracle.Validate(); err != nil {
		return errors.Wrap(err, "oracle")
	}
	return errors.Wrap(m.Owner.Validate(), "owner")
}
