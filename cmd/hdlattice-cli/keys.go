package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/crypto"
)

func (a *app) cmdDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	path := fs.String("path", "", "Derivation path (empty for the root key)")
	label := fs.String("name", "", "Account label")
	showPub := fs.Bool("pubkey", false, "Print the full public key")
	fs.Parse(args)

	h := a.unlock(*name)
	defer keepSecret(h.Zero)()

	entry, _, err := wallet.DeriveAccount(h, *path, *label)
	if err != nil {
		fatal("%v", err)
	}
	if err := a.registry().Add(*name, entry); err != nil {
		fatal("record account: %v", err)
	}

	fmt.Printf("Path:    %q\n", entry.Path)
	fmt.Printf("Address: %s\n", entry.Address)
	if *showPub {
		fmt.Printf("PubKey:  %s\n", hex.EncodeToString(entry.PublicKey))
	}
}

func (a *app) cmdWormhole(args []string) {
	fs := flag.NewFlagSet("wormhole", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	path := fs.String("path", "", "Wormhole path (empty for the default pair)")
	label := fs.String("name", "", "Account label")
	showSecret := fs.Bool("show-secret", false, "Print the wormhole secret and first hash")
	fs.Parse(args)

	h := a.unlock(*name)
	defer keepSecret(h.Zero)()

	entry, pair, err := wallet.DeriveWormholeAccount(h, *path, *label)
	if err != nil {
		fatal("%v", err)
	}
	defer keepSecret(pair.Zero)()
	if err := a.registry().Add(*name, entry); err != nil {
		fatal("record account: %v", err)
	}

	fmt.Printf("Path:      %q\n", entry.Path)
	fmt.Printf("Address:   %s\n", entry.Address)
	if *showSecret {
		fmt.Printf("FirstHash: %s\n", pair.FirstHash)
		fmt.Printf("Secret:    %s\n", pair.Secret)
	}
}

func (a *app) cmdAccounts(args []string) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: hdlattice-cli accounts --wallet <name> [--json]")
	}
	if !a.ks.Exists(*name) {
		fatal("%v: %q", wallet.ErrWalletNotFound, *name)
	}
	entries, err := a.registry().List(*name)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	if *asJSON {
		printJSON(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No accounts recorded.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%-8s %-30q %-10s %s\n", e.Kind, e.Path, e.Name, e.Address)
	}
}

// signedMessage is the output of sign and the input of verify --in.
type signedMessage struct {
	Path      string    `json:"path"`
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	PublicKey string    `json:"public_key"`
	Signature string    `json:"signature"`
	SignedAt  time.Time `json:"signed_at"`
}

func (a *app) cmdSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	path := fs.String("path", "", "Derivation path of the signing key")
	msg := fs.String("message", "", "Message to sign")
	ctx := fs.String("context", "", "ML-DSA context string (max 255 bytes)")
	out := fs.String("out", "", "Write the signed message JSON to this file")
	fs.Parse(args)

	if *msg == "" {
		fatal("Usage: hdlattice-cli sign --wallet <name> --path <path> --message <text> [--context C] [--out FILE]")
	}

	h := a.unlock(*name)
	defer keepSecret(h.Zero)()

	entry, kp, err := wallet.DeriveAccount(h, *path, "")
	if err != nil {
		fatal("%v", err)
	}
	sig, err := kp.Sign([]byte(*msg), []byte(*ctx))
	if err != nil {
		fatal("sign: %v", err)
	}

	sm := signedMessage{
		Path:      entry.Path,
		Address:   entry.Address,
		Message:   *msg,
		Context:   *ctx,
		PublicKey: hex.EncodeToString(entry.PublicKey),
		Signature: hex.EncodeToString(sig),
		SignedAt:  time.Now().UTC(),
	}
	if *out == "" {
		printJSON(sm)
		return
	}
	data, err := json.MarshalIndent(sm, "", "  ")
	if err != nil {
		fatal("marshal: %v", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fatal("write %s: %v", *out, err)
	}
	fmt.Printf("Signed by %s, written to %s\n", entry.Address, *out)
}

func (a *app) cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "", "Signed message JSON produced by sign")
	pubHex := fs.String("pubkey", "", "Public key (hex)")
	sigHex := fs.String("signature", "", "Signature (hex)")
	msg := fs.String("message", "", "Message")
	ctx := fs.String("context", "", "ML-DSA context string")
	fs.Parse(args)

	sm := signedMessage{PublicKey: *pubHex, Signature: *sigHex, Message: *msg, Context: *ctx}
	if *in != "" {
		data, err := os.ReadFile(*in)
		if err != nil {
			fatal("read %s: %v", *in, err)
		}
		if err := json.Unmarshal(data, &sm); err != nil {
			fatal("parse %s: %v", *in, err)
		}
	}
	if sm.PublicKey == "" || sm.Signature == "" {
		fatal("Usage: hdlattice-cli verify (--in FILE | --pubkey HEX --signature HEX --message M) [--context C]")
	}

	pub, err := hex.DecodeString(sm.PublicKey)
	if err != nil {
		fatal("invalid public key hex: %v", err)
	}
	sig, err := hex.DecodeString(sm.Signature)
	if err != nil {
		fatal("invalid signature hex: %v", err)
	}

	var v crypto.Verifier = crypto.MLDSAVerifier{}
	if !v.Verify([]byte(sm.Message), []byte(sm.Context), sig, pub) {
		fmt.Println("invalid")
		a.close()
		os.Exit(1)
	}
	fmt.Printf("valid (signer %s)\n", crypto.AddressFromPubKey(pub))
}
