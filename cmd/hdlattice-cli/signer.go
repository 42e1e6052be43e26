package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/rpc"
	"github.com/Klingon-tech/hdlattice/internal/rpcclient"
)

// cmdSigner talks to a running hdlatticed.
func (a *app) cmdSigner(args []string) {
	if len(args) == 0 {
		fatal("Usage: hdlattice-cli signer <status|unlock|lock|sign> [options]")
	}
	client := rpcclient.New(a.cfg.RPC.Endpoint())

	switch args[0] {
	case "status":
		st, err := client.Status()
		if err != nil {
			fatal("signer status: %v", err)
		}
		fmt.Printf("Signer:   %s (version %s, up since %s)\n", a.cfg.RPC.Endpoint(), st.Version, st.Started.Format(time.RFC3339))
		fmt.Printf("Wallets:  %d\n", st.Wallets)
		if len(st.Sessions) == 0 {
			fmt.Println("Sessions: none")
			return
		}
		fmt.Println("Sessions:")
		for _, s := range st.Sessions {
			fmt.Printf("  %-16s %-6s expires %s\n", s.Wallet, s.Dialect, s.ExpiresAt.Local().Format(time.Kitchen))
		}

	case "unlock":
		fs := flag.NewFlagSet("signer unlock", flag.ExitOnError)
		name := fs.String("wallet", "", "Wallet name")
		fs.Parse(args[1:])
		if *name == "" {
			fatal("Usage: hdlattice-cli signer unlock --wallet <name>")
		}
		pw, err := readPassword("Wallet password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		info, err := client.Unlock(*name, string(pw))
		clear(pw)
		if err != nil {
			fatal("unlock: %v", err)
		}
		fmt.Printf("Wallet %q unlocked, locks at %s if idle\n", info.Wallet, info.ExpiresAt.Local().Format(time.Kitchen))

	case "lock":
		fs := flag.NewFlagSet("signer lock", flag.ExitOnError)
		name := fs.String("wallet", "", "Wallet name")
		fs.Parse(args[1:])
		locked, err := client.Lock(*name)
		if err != nil {
			fatal("lock: %v", err)
		}
		if !locked {
			fmt.Printf("Wallet %q was not unlocked\n", *name)
			return
		}
		fmt.Printf("Wallet %q locked\n", *name)

	case "sign":
		fs := flag.NewFlagSet("signer sign", flag.ExitOnError)
		name := fs.String("wallet", "", "Wallet name")
		path := fs.String("path", "", "Derivation path of the signing key")
		msg := fs.String("message", "", "Message to sign")
		ctx := fs.String("context", "", "ML-DSA context string (max 255 bytes)")
		fs.Parse(args[1:])
		if *msg == "" {
			fatal("Usage: hdlattice-cli signer sign --wallet <name> --path <path> --message <text> [--context C]")
		}
		sr, err := client.Sign(rpc.SignParam{Wallet: *name, Path: *path, Message: *msg, Context: *ctx})
		if err != nil {
			fatal("sign: %v", err)
		}
		printJSON(signedMessage{
			Path:      sr.Path,
			Address:   sr.Address,
			Message:   *msg,
			Context:   *ctx,
			PublicKey: sr.PublicKey,
			Signature: sr.Signature,
			SignedAt:  time.Now().UTC(),
		})

	default:
		fmt.Fprintf(os.Stderr, "Unknown signer command: %s\n", args[0])
		a.close()
		os.Exit(1)
	}
}
