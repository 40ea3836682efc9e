package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iov-one/custody"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *custody.Address {
	var a custody.Address
	if defaultVal != "" {
		var err error
		a, err = custody.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q custody.Address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagaddr)(&a), name, usage)
	return &a
}

type flagaddr custody.Address

func (a flagaddr) String() string {
	if len(a) == 0 {
		return ""
	}
	return custody.Address(a).String()
}

func (a *flagaddr) Set(raw string) error {
	addr, err := custody.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagaddr(addr)
	return nil
}

// flAddresses returns a list of addresses declared as a comma separated
// flag value.
func flAddresses(fl *flag.FlagSet, name, usage string) *[]custody.Address {
	var list []custody.Address
	fl.Var((*flagaddrs)(&list), name, usage)
	return &list
}

type flagaddrs []custody.Address

func (l flagaddrs) String() string {
	enc := make([]string, len(l))
	for i, a := range l {
		enc[i] = a.String()
	}
	return strings.Join(enc, ",")
}

func (l *flagaddrs) Set(raw string) error {
	for _, enc := range strings.Split(raw, ",") {
		enc = strings.TrimSpace(enc)
		if enc == "" {
			continue
		}
		addr, err := custody.ParseAddress(enc)
		if err != nil {
			return fmt.Errorf("%q: %s", enc, err)
		}
		*l = append(*l, addr)
	}
	return nil
}

// flAmount returns an amount value declared as a decimal number.
// If given default value cannot be deserialized, process is terminated.
func flAmount(fl *flag.FlagSet, name, defaultVal, usage string) *custody.Amount {
	var a custody.Amount
	if defaultVal != "" {
		var err error
		a, err = custody.ParseAmount(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q custody.Amount flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagamount)(&a), name, usage)
	return &a
}

type flagamount custody.Amount

func (a flagamount) String() string {
	return custody.Amount(a).String()
}

func (a *flagamount) Set(raw string) error {
	val, err := custody.ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = flagamount(val)
	return nil
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *[]byte {
	var b []byte
	if defaultVal != "" {
		var err error
		b, err = hex.DecodeString(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagbyte)(&b), name, usage)
	return &b
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return err
	}
	*b = val
	return nil
}
