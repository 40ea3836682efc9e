package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function reads from input and writes to output only. Given args
// are the command line arguments, without the program name and the command
// name, that should be parsed using the flag package.
//
// Commands that build an operation pass a JSON encoded execution request
// along, so that a pipeline can be used to construct, sign and execute it:
//
//   $ safecli send -to $DEST -amount 100 \
//       | safecli operation -safe $SAFE -data - -gas 60000 \
//       | safecli sign -key alice.key \
//       | safecli sign -key bob.key \
//       | safecli exec -key relayer.key
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"add-module":       cmdAddModule,
	"add-signer":       cmdAddSigner,
	"balance":          cmdBalance,
	"change-threshold": cmdChangeThreshold,
	"create-group":     cmdCreateGroup,
	"create-safe":      cmdCreateSafe,
	"exec":             cmdExec,
	"genesis":          cmdGenesis,
	"hash":             cmdHash,
	"keyaddr":          cmdKeyaddr,
	"keygen":           cmdKeygen,
	"modules":          cmdModules,
	"nonce":            cmdNonce,
	"operation":        cmdOperation,
	"remove-module":    cmdRemoveModule,
	"remove-signer":    cmdRemoveSigner,
	"send":             cmdSend,
	"sign":             cmdSign,
	"signers":          cmdSigners,
	"submit":           cmdSubmit,
	"version":          cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the custody safe application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash string = "dev"
