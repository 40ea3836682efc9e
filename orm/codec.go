package orm

import (
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Marshal serializes a model into its binary representation. A zero value
// model is encoded as an empty, non nil slice so that stores keep it.
func Marshal(m interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	if bz == nil {
		bz = []byte{}
	}
	return bz, nil
}

// Unmarshal deserializes raw data into the model pointed by dest.
func Unmarshal(raw []byte, dest interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}
