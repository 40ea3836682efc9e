package safe

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const confPkg = "safe"

// Configuration is the gas schedule of safe operations.
type Configuration struct {
	// BaseCost is charged for every executed operation.
	BaseCost uint64 `json:"base_cost"`
	// SigVerifyCost is charged for every signature the accepting module
	// requires.
	SigVerifyCost uint64 `json:"sig_verify_cost"`
	// DataByteCost is charged for every byte of operation data.
	DataByteCost uint64 `json:"data_byte_cost"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when none is stored.
var DefaultConfiguration = Configuration{
	BaseCost:      21000,
	SigVerifyCost: 3000,
	DataByteCost:  16,
}

func (c *Configuration) Validate() error {
	if c.BaseCost == 0 {
		return errors.Wrap(errors.ErrModel, "base cost must not be zero")
	}
	return nil
}

// MinGas returns the least amount of gas an operation authorized by a
// module requiring given number of signatures must declare.
func (c *Configuration) MinGas(signatures int) uint64 {
	return c.BaseCost + uint64(signatures)*c.SigVerifyCost
}

// Cost returns the gas charged for executing an operation.
func (c *Configuration) Cost(signatures int, dataLen int) uint64 {
	return c.MinGas(signatures) + uint64(dataLen)*c.DataByteCost
}

// LoadConfiguration returns the stored configuration, or the default one.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		conf = DefaultConfiguration
		return &conf, nil
	default:
		return nil, err
	}
}

// Initializer stores the configuration found in the genesis file.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores opts["conf"]["safe"] if present.
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, confPkg, &conf)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return err
	}
	return nil
}
