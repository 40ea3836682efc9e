package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody/app"
)

func cmdGenesis(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize the application state from a genesis file.

The genesis file is a JSON document with the application options stored under
the "app_state" key, for example:

  {"app_state": {
    "cash": [{"address": "...", "holdings": [{"amount": "1000"}]}],
    "conf": {"safe": {"base_cost": 21000, "sig_verify_cost": 3000, "data_byte_cost": 16}}
  }}

The state can be initialized only once.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl    = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		genesisFl = fl.String("genesis", env("SAFECLI_GENESIS", "genesis.json"), "Path to the genesis file.")
	)
	fl.Parse(args)

	opts, err := app.LoadGenesis(*genesisFl)
	if err != nil {
		return fmt.Errorf("cannot load genesis: %s", err)
	}

	a, _, closeApp, err := openApp(*homeFl)
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.InitChain(opts); err != nil {
		return fmt.Errorf("cannot initialize state: %s", err)
	}
	id, err := a.Commit()
	if err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	_, err = fmt.Fprintf(output, "version: %d\nhash: %X\n", id.Version, id.Hash)
	return err
}
