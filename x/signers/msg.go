package signers

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	pathCreateGroupMsg     = "signers/create"
	pathAddSignerMsg       = "signers/add"
	pathRemoveSignerMsg    = "signers/remove"
	pathChangeThresholdMsg = "signers/threshold"
)

var (
	_ custody.Msg = (*CreateGroupMsg)(nil)
	_ custody.Msg = (*AddSignerMsg)(nil)
	_ custody.Msg = (*RemoveSignerMsg)(nil)
	_ custody.Msg = (*ChangeThresholdMsg)(nil)
)

// CreateGroupMsg creates a group owned by Safe. When Safe is empty, the
// caller owns the group.
type CreateGroupMsg struct {
	Safe      custody.Address   `json:"safe"`
	Signers   []custody.Address `json:"signers"`
	Threshold uint32            `json:"threshold"`
}

func (CreateGroupMsg) Path() string {
	return pathCreateGroupMsg
}

// Creates returns the kind of contract this message constructs.
func (CreateGroupMsg) Creates() string {
	return "signers"
}

func (m *CreateGroupMsg) Validate() error {
	if len(m.Safe) != 0 {
		if err := m.Safe.Validate(); err != nil {
			return errors.Wrap(err, "safe")
		}
	}
	if len(m.Signers) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signers")
	}
	if m.Threshold == 0 || int(m.Threshold) > len(m.Signers) {
		return errors.Wrapf(ErrThreshold, "threshold %d for %d signers", m.Threshold, len(m.Signers))
	}
	seen := make(map[string]bool, len(m.Signers))
	for i, s := range m.Signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		if seen[string(s)] {
			return errors.Wrapf(errors.ErrDuplicate, "signer %d", i)
		}
		seen[string(s)] = true
	}
	return nil
}

// AddSignerMsg adds a member to the group.
type AddSignerMsg struct {
	Group  custody.Address `json:"group"`
	Signer custody.Address `json:"signer"`
}

func (AddSignerMsg) Path() string {
	return pathAddSignerMsg
}

func (m *AddSignerMsg) Validate() error {
	if err := m.Group.Validate(); err != nil {
		return errors.Wrap(err, "group")
	}
	return errors.Wrap(m.Signer.Validate(), "signer")
}

// RemoveSignerMsg removes a member from the group. Prev is the member
// listed right before Signer.
type RemoveSignerMsg struct {
	Group  custody.Address `json:"group"`
	Prev   custody.Address `json:"prev"`
	Signer custody.Address `json:"signer"`
}

func (RemoveSignerMsg) Path() string {
	return pathRemoveSignerMsg
}

func (m *RemoveSignerMsg) Validate() error {
	if err := m.Group.Validate(); err != nil {
		return errors.Wrap(err, "group")
	}
	if err := m.Prev.Validate(); err != nil {
		return errors.Wrap(err, "prev")
	}
	return errors.Wrap(m.Signer.Validate(), "signer")
}

// ChangeThresholdMsg sets the number of signatures required.
type ChangeThresholdMsg struct {
	Group     custody.Address `json:"group"`
	Threshold uint32          `json:"threshold"`
}

func (ChangeThresholdMsg) Path() string {
	return pathChangeThresholdMsg
}

func (m *ChangeThresholdMsg) Validate() error {
	if err := m.Group.Validate(); err != nil {
		return errors.Wrap(err, "group")
	}
	if m.Threshold == 0 {
		return errors.Wrap(ErrThreshold, "threshold must be greater than zero")
	}
	return nil
}
