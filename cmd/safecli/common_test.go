package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
)

type command func(input io.Reader, output io.Writer, args []string) error

// run executes the command with given input and returns its output. The
// test fails if the command fails.
func run(t testing.TB, cmd command, input []byte, args ...string) []byte {
	t.Helper()
	out, err := tryRun(cmd, input, args...)
	if err != nil {
		t.Fatalf("command %v failed: %s", args, err)
	}
	return out
}

func tryRun(cmd command, input []byte, args ...string) ([]byte, error) {
	var output bytes.Buffer
	err := cmd(bytes.NewReader(input), &output, args)
	return output.Bytes(), err
}

// writeKey stores a deterministic private key in dir and returns the path
// to the file and the key.
func writeKey(t testing.TB, dir, seed string) (string, *crypto.PrivateKey) {
	t.Helper()
	key := custodytest.NewKey(t, seed)
	path := filepath.Join(dir, seed+".key")
	if err := ioutil.WriteFile(path, []byte(key.Hex()+"\n"), 0600); err != nil {
		t.Fatalf("cannot write key: %s", err)
	}
	return path, key
}

// resultValue returns the value of the result line with given name.
func resultValue(t testing.TB, output []byte, name string) string {
	t.Helper()
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, name+": ") {
			return strings.TrimPrefix(line, name+": ")
		}
	}
	t.Fatalf("no %q in output:\n%s", name, output)
	return ""
}

func resultAddress(t testing.TB, output []byte) custody.Address {
	t.Helper()
	addr, err := custody.ParseAddress(resultValue(t, output, "data"))
	if err != nil {
		t.Fatalf("cannot parse result address: %s", err)
	}
	return addr
}

func writeGenesis(t testing.TB, dir string, funded custody.Address, amount uint64) string {
	t.Helper()
	path := filepath.Join(dir, "genesis.json")
	content := fmt.Sprintf(`{"app_state": {
		"cash": [{"address": "%s", "holdings": [{"amount": "%d"}]}]
	}}`, funded, amount)
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("cannot write genesis: %s", err)
	}
	return path
}
