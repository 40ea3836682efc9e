package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/cash"
)

// view runs fn against the application state stored in home.
func view(home string, fn func(*stack, custody.ReadOnlyKVStore) error) error {
	a, s, closeApp, err := openApp(home)
	if err != nil {
		return err
	}
	defer closeApp()
	return a.View(func(ctx custody.Context, db custody.KVStore) error {
		return fn(s, db)
	})
}

func cmdNonce(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the nonce of the last operation executed by a safe. The next operation
must use a nonce greater by one.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		safeFl = flAddress(fl, "safe", "", "Address of the safe.")
	)
	fl.Parse(args)

	var nonce uint64
	err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
		var err error
		nonce, err = s.auth.Nonce(db, *safeFl)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot get nonce: %s", err)
	}
	_, err = fmt.Fprintln(output, nonce)
	return err
}

func cmdModules(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the verification modules of a safe, most recently added first.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		safeFl = flAddress(fl, "safe", "", "Address of the safe.")
	)
	fl.Parse(args)

	var modules []custody.Address
	err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
		var err error
		modules, err = s.auth.Modules(db, *safeFl)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot list modules: %s", err)
	}
	return printAddresses(output, modules)
}

func cmdSigners(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the threshold and the signers of a group, most recently added first.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl  = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		groupFl = flAddress(fl, "group", "", "Address of the group.")
	)
	fl.Parse(args)

	var (
		threshold uint32
		members   []custody.Address
	)
	err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
		g, err := s.groups.Load(db, *groupFl)
		if err != nil {
			return err
		}
		threshold = g.Threshold
		members, err = s.groups.ListSigners(db, *groupFl)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot list signers: %s", err)
	}
	if _, err := fmt.Fprintf(output, "threshold: %d\n", threshold); err != nil {
		return err
	}
	return printAddresses(output, members)
}

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the balances of an account. When an asset is given, only the balance of
that asset is printed.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl  = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		ownerFl = flAddress(fl, "owner", "", "Address of the account.")
		assetFl = flAddress(fl, "asset", "", "Asset address.")
	)
	fl.Parse(args)

	if len(*assetFl) != 0 {
		var amount custody.Amount
		err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
			var err error
			amount, err = s.cash.Balance(db, *ownerFl, *assetFl)
			return err
		})
		if err != nil {
			return fmt.Errorf("cannot get balance: %s", err)
		}
		_, err = fmt.Fprintln(output, amount)
		return err
	}

	var holdings []cash.Holding
	err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
		var err error
		holdings, err = s.cash.Balances(db, *ownerFl)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot get balances: %s", err)
	}
	for _, h := range holdings {
		asset := "native"
		if !h.Asset.IsZero() {
			asset = h.Asset.String()
		}
		if _, err := fmt.Fprintf(output, "%s: %s\n", asset, h.Amount); err != nil {
			return err
		}
	}
	return nil
}

func printAddresses(output io.Writer, addrs []custody.Address) error {
	for _, a := range addrs {
		if _, err := fmt.Fprintln(output, a); err != nil {
			return err
		}
	}
	return nil
}
