package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/safe"
	"github.com/iov-one/custody/x/verify"
)

func cmdOperation(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a JSON encoded request for a safe to execute an operation. The request
must be signed before it can be executed.

The data can be given hex encoded, or "-" can be used to read a binary
serialized transaction from standard input.

When no nonce is given, the next nonce of the safe is looked up in the
application state.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl      = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		safeFl      = flAddress(fl, "safe", "", "Address of the safe executing the operation.")
		toFl        = flAddress(fl, "to", "", "Destination of the operation. Must be empty for create.")
		valueFl     = flAmount(fl, "value", "0", "Amount of native asset moved to the destination.")
		kindFl      = fl.String("kind", "call", "Kind of the operation: call, delegatecall or create.")
		dataFl      = fl.String("data", "", `Hex encoded data of the operation or "-" to read it from standard input.`)
		nonceFl     = fl.Uint64("nonce", 0, "Nonce of the operation.")
		timestampFl = fl.Int64("timestamp", time.Now().Unix(), "Timestamp of the operation.")
		tokenFl     = flAddress(fl, "token", "", "Asset the submitter is reimbursed in. Native asset if not provided.")
		gasFl       = fl.Uint64("gas", 0, "Maximum gas the operation can consume.")
		gasPriceFl  = flAmount(fl, "gas-price", "0", "Price of a single unit of gas paid to the submitter.")
	)
	fl.Parse(args)

	kind, err := verify.ParseOpKind(*kindFl)
	if err != nil {
		return err
	}

	var data []byte
	switch *dataFl {
	case "":
	case "-":
		data, err = ioutil.ReadAll(input)
		if err != nil {
			return fmt.Errorf("cannot read data: %s", err)
		}
	default:
		data, err = hex.DecodeString(strings.TrimPrefix(*dataFl, "0x"))
		if err != nil {
			return fmt.Errorf("cannot decode data: %s", err)
		}
	}

	nonce := *nonceFl
	if nonce == 0 {
		err := view(*homeFl, func(s *stack, db custody.ReadOnlyKVStore) error {
			current, err := s.auth.Nonce(db, *safeFl)
			nonce = current + 1
			return err
		})
		if err != nil {
			return fmt.Errorf("cannot get nonce: %s", err)
		}
	}

	msg := safe.ExecMsg{
		Safe: *safeFl,
		Operation: verify.Operation{
			To:        *toFl,
			Value:     *valueFl,
			Data:      data,
			Kind:      kind,
			Nonce:     nonce,
			Timestamp: *timestampFl,
			Token:     *tokenFl,
			Gas:       *gasFl,
			GasPrice:  *gasPriceFl,
		},
	}
	if err := msg.Safe.Validate(); err != nil {
		return fmt.Errorf("invalid safe: %s", err)
	}
	if err := msg.Operation.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %s", err)
	}
	return writeRequest(output, &msg)
}

func cmdHash(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a JSON encoded operation request from standard input and print the hex
encoded digest that its signers sign.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	msg, err := readRequest(input)
	if err != nil {
		return err
	}
	digest := verify.Hash(&msg.Operation)
	_, err = fmt.Fprintf(output, "%X\n", digest[:])
	return err
}

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a JSON encoded operation request from standard input, sign its digest
and write the request with the signature appended to standard output.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(), "Path to the private key file that the operation should be signed with. You can use SAFECLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}
	msg, err := readRequest(input)
	if err != nil {
		return err
	}
	digest := verify.Hash(&msg.Operation)
	sig, err := key.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("cannot sign: %s", err)
	}
	msg.Signature = append(msg.Signature, sig...)
	return writeRequest(output, msg)
}

func cmdExec(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a signed JSON encoded operation request from standard input and submit
it for execution. The owner of the private key is the submitter and receives
the gas reimbursement.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl    = fl.String("home", defaultHome(), "Directory of the application state. You can use SAFECLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(), "Path to the private key file of the submitter. You can use SAFECLI_PRIV_KEY environment variable to set it.")
		gasFl     = fl.Uint64("gas", 0, "Gas limit of the transaction. Zero means no limit.")
	)
	fl.Parse(args)

	msg, err := readRequest(input)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid request: %s", err)
	}
	raw, err := newCodec().Encode(msg)
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	return deliver(output, *homeFl, *keyPathFl, *gasFl, raw)
}

func readRequest(input io.Reader) (*safe.ExecMsg, error) {
	var msg safe.ExecMsg
	if err := json.NewDecoder(input).Decode(&msg); err != nil {
		return nil, fmt.Errorf("cannot decode operation request: %s", err)
	}
	return &msg, nil
}

func writeRequest(output io.Writer, msg *safe.ExecMsg) error {
	raw, err := json.MarshalIndent(msg, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot encode operation request: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s\n", raw)
	return err
}
