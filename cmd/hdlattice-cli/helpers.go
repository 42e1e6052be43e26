package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
	"golang.org/x/term"
)

// readPassword prompts on stderr and reads without echo. When stdin is not a
// terminal, one line is read instead so scripts can pipe passwords in.
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdinLine()
		fmt.Fprintln(os.Stderr)
		return []byte(line), err
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}

var stdin = bufio.NewReader(os.Stdin)

func stdinLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readNewPassword prompts twice and requires both entries to match.
func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	if len(password) == 0 {
		fatal("password is empty")
	}
	return password
}

// readPassphrase asks for the optional BIP-39 passphrase when requested.
func readPassphrase(ask bool) string {
	if !ask {
		return ""
	}
	p, err := readPassword("BIP-39 passphrase: ")
	if err != nil {
		fatal("read passphrase: %v", err)
	}
	return string(p)
}

// unlock prompts for the wallet password and opens its lattice.
func (a *app) unlock(name string) *hdwallet.HDLattice {
	if name == "" {
		fatal("--wallet is required")
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		fatal("read password: %v", err)
	}
	h, err := a.ks.Open(name, password)
	clear(password)
	if err != nil {
		fatal("%v", err)
	}
	return h
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("marshal output: %v", err)
	}
	fmt.Println(string(out))
}

// wipers zero live seed material. os.Exit skips deferred calls, so fatal
// runs them itself.
var wipers []func()

// keepSecret registers wipe for fatal and returns it for the caller to defer.
func keepSecret(wipe func()) func() {
	wipers = append(wipers, wipe)
	return wipe
}

func wipeSecrets() {
	for i := len(wipers) - 1; i >= 0; i-- {
		wipers[i]()
	}
	wipers = nil
}

func fatal(format string, args ...any) {
	wipeSecrets()
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
