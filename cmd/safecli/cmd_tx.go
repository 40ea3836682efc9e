package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/factory"
	"github.com/iov-one/custody/x/safe"
	"github.com/iov-one/custody/x/signers"
)

func cmdCreateSafe(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a new safe.

When an owner is given, the safe is created together with a single signer
oracle owned by that address. Otherwise the safe is created with the given
list of verification modules.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl   = flAddress(fl, "owner", "", "Owner of the oracle guarding the new safe.")
		modulesFl = flAddresses(fl, "modules", "Comma separated list of verification modules of the new safe.")
	)
	fl.Parse(args)

	var msg custody.Msg
	switch {
	case len(*ownerFl) != 0 && len(*modulesFl) != 0:
		return fmt.Errorf("owner and modules cannot be used together")
	case len(*ownerFl) != 0:
		msg = &factory.CreateSafeMsg{Owner: *ownerFl}
	case len(*modulesFl) != 0:
		msg = &safe.CreateSafeMsg{Modules: *modulesFl}
	default:
		return fmt.Errorf("owner or modules is required")
	}
	return writeTx(output, msg)
}

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring funds from the submitter to the
destination. Used as the data of a call operation, the safe is the source.
`)
		fl.PrintDefaults()
	}
	var (
		assetFl  = flAddress(fl, "asset", "", "Asset to transfer. Native asset if not provided.")
		dstFl    = flAddress(fl, "to", "", "Destination address.")
		amountFl = flAmount(fl, "amount", "", "Amount to transfer.")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer.")
	)
	fl.Parse(args)

	msg := cash.SendMsg{
		Asset:       *assetFl,
		Destination: *dstFl,
		Amount:      *amountFl,
		Memo:        *memoFl,
	}
	return writeTx(output, &msg)
}

func cmdCreateGroup(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a threshold signer group.

The group is owned by the given safe. Only that safe can modify the group
later. When no safe is provided, the submitter owns the group.
`)
		fl.PrintDefaults()
	}
	var (
		safeFl      = flAddress(fl, "safe", "", "Address of the safe owning the group.")
		signersFl   = flAddresses(fl, "signers", "Comma separated list of signer addresses.")
		thresholdFl = fl.Uint("threshold", 1, "Number of distinct signatures required.")
	)
	fl.Parse(args)

	msg := signers.CreateGroupMsg{
		Safe:      *safeFl,
		Signers:   *signersFl,
		Threshold: uint32(*thresholdFl),
	}
	return writeTx(output, &msg)
}

func cmdAddSigner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for adding a signer to a group.
`)
		fl.PrintDefaults()
	}
	var (
		groupFl  = flAddress(fl, "group", "", "Address of the group.")
		signerFl = flAddress(fl, "signer", "", "Address of the new signer.")
	)
	fl.Parse(args)

	return writeTx(output, &signers.AddSignerMsg{Group: *groupFl, Signer: *signerFl})
}

func cmdRemoveSigner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for removing a signer from a group.

The signer listed right before the removed one must be provided. If not
given, it is looked up in the application state.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl   = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		groupFl  = flAddress(fl, "group", "", "Address of the group.")
		signerFl = flAddress(fl, "signer", "", "Address of the removed signer.")
		prevFl   = flAddress(fl, "prev", "", "Address of the signer preceding the removed one.")
	)
	fl.Parse(args)

	prev := *prevFl
	if len(prev) == 0 {
		err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
			var err error
			prev, err = s.groups.PrevSigner(db, *groupFl, *signerFl)
			return err
		})
		if err != nil {
			return fmt.Errorf("cannot find preceding signer: %s", err)
		}
	}
	msg := signers.RemoveSignerMsg{
		Group:  *groupFl,
		Prev:   prev,
		Signer: *signerFl,
	}
	return writeTx(output, &msg)
}

func cmdChangeThreshold(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for changing the number of signatures a group requires.
`)
		fl.PrintDefaults()
	}
	var (
		groupFl     = flAddress(fl, "group", "", "Address of the group.")
		thresholdFl = fl.Uint("threshold", 1, "Number of distinct signatures required.")
	)
	fl.Parse(args)

	return writeTx(output, &signers.ChangeThresholdMsg{Group: *groupFl, Threshold: uint32(*thresholdFl)})
}

func cmdAddModule(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for registering a verification module. The transaction
is accepted only as the data of a delegate call operation of the safe.
`)
		fl.PrintDefaults()
	}
	var (
		moduleFl = flAddress(fl, "module", "", "Address of the module.")
	)
	fl.Parse(args)

	return writeTx(output, &safe.AddModuleMsg{Module: *moduleFl})
}

func cmdRemoveModule(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for unregistering a verification module. The transaction
is accepted only as the data of a delegate call operation of the safe.

The module listed right before the removed one must be provided. If not
given, it is looked up in the application state.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl   = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		safeFl   = flAddress(fl, "safe", "", "Address of the safe. Required to look up the preceding module.")
		moduleFl = flAddress(fl, "module", "", "Address of the removed module.")
		prevFl   = flAddress(fl, "prev", "", "Address of the module preceding the removed one.")
	)
	fl.Parse(args)

	prev := *prevFl
	if len(prev) == 0 {
		err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
			var err error
			prev, err = s.auth.Bucket().PrevModule(db, *safeFl, *moduleFl)
			return err
		})
		if err != nil {
			return fmt.Errorf("cannot find preceding module: %s", err)
		}
	}
	return writeTx(output, &safe.RemoveModuleMsg{Prev: prev, Module: *moduleFl})
}

// writeTx validates and writes the binary serialized transaction carrying
// msg.
func writeTx(output io.Writer, msg custody.Msg) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %s", err)
	}
	raw, err := newCodec().Encode(msg)
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	_, err = output.Write(raw)
	return err
}
