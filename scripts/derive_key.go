// derive_key.go prints the signing and wormhole addresses at a path for a
// hex-encoded 64-byte seed file.
// Usage: go run scripts/derive_key.go <seedfile> [path] [plain|bip44]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <seedfile> [path] [plain|bip44]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail(err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		fail(err)
	}

	path := ""
	if len(os.Args) > 2 {
		path = os.Args[2]
	}
	dialect := hdwallet.DialectPlain
	if len(os.Args) > 3 {
		if dialect, err = hdwallet.ParseDialect(os.Args[3]); err != nil {
			fail(err)
		}
	}

	h, err := hdwallet.FromSeedBytes(seed, hdwallet.WithScheme(hdwallet.SchemeForDialect(dialect)))
	if err != nil {
		fail(err)
	}
	defer h.Zero()

	p, err := h.ParsePath(path)
	if err != nil {
		fail(err)
	}
	if p.Wormhole {
		pair, err := h.WormholePairForPath(p)
		if err != nil {
			fail(err)
		}
		fmt.Printf("wormhole=%s\n", pair.AddressString())
		return
	}
	kp, err := h.KeysForPath(p)
	if err != nil {
		fail(err)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(kp.PublicKeyBytes()))
	fmt.Printf("address=%s\n", kp.Address())
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
