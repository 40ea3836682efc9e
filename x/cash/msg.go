package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const pathSendMsg = "cash/send"

var _ custody.Msg = (*SendMsg)(nil)

// SendMsg moves value from the caller to the destination.
type SendMsg struct {
	Asset       custody.Address `json:"asset"`
	Destination custody.Address `json:"destination"`
	Amount      custody.Amount  `json:"amount"`
	Memo        string          `json:"memo"`
}

const maxMemoSize = 128

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	if m.Amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(m.Asset) != 0 {
		if err := m.Asset.Validate(); err != nil {
			return errors.Wrap(err, "asset")
		}
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrInput, "memo longer than %d", maxMemoSize)
	}
	return nil
}
