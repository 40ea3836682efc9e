package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/iov-one/custody"
)

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a binary serialized transaction from standard input and deliver it. The
owner of the private key is the submitter of the transaction. Changes are
committed only if the transaction succeeds.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl    = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(), "Path to the private key file of the submitter. You can use SAFECLI_PRIV_KEY environment variable to set it.")
		gasFl     = fl.Uint64("gas", 0, "Gas limit of the transaction. Zero means no limit.")
	)
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("no transaction on input")
	}
	return deliver(output, *homeFl, *keyPathFl, *gasFl, raw)
}

// deliver submits the transaction as the owner of the key and commits the
// result.
func deliver(output io.Writer, home, keyPath string, gasLimit uint64, raw []byte) error {
	key, err := readKey(keyPath)
	if err != nil {
		return err
	}

	a, _, closeApp, err := openApp(home)
	if err != nil {
		return err
	}
	defer closeApp()

	res, err := a.Deliver(key.Address(), gasLimit, raw)
	if err != nil {
		return fmt.Errorf("cannot deliver transaction: %s", err)
	}
	if _, err := a.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	return printResult(output, res)
}

func printResult(output io.Writer, res *custody.DeliverResult) error {
	if len(res.Data) != 0 {
		if _, err := fmt.Fprintf(output, "data: %X\n", res.Data); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(output, "gas_used: %d\n", res.GasUsed); err != nil {
		return err
	}
	tags := make([]custody.KVPair, len(res.Tags))
	copy(tags, res.Tags)
	sort.SliceStable(tags, func(i, j int) bool { return string(tags[i].Key) < string(tags[j].Key) })
	for _, t := range tags {
		if _, err := fmt.Fprintf(output, "%s: %s\n", t.Key, tagValue(t.Value)); err != nil {
			return err
		}
	}
	return nil
}

// tagValue returns a printable representation of a tag value. Addresses are
// stored raw and are printed hex encoded.
func tagValue(v []byte) string {
	if !utf8.Valid(v) {
		return fmt.Sprintf("%X", v)
	}
	for _, r := range string(v) {
		if !unicode.IsPrint(r) {
			return fmt.Sprintf("%X", v)
		}
	}
	return string(v)
}
