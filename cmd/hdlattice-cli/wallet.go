package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

func (a *app) cmdMnemonic(args []string) {
	fs := flag.NewFlagSet("mnemonic", flag.ExitOnError)
	words := fs.Int("words", a.cfg.Mnemonic.Words, "Mnemonic length (12, 15, 18, 21 or 24)")
	fs.Parse(args)

	m, err := hdwallet.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	fmt.Println(m)
}

func (a *app) cmdWallet(args []string) {
	const usage = "Usage: hdlattice-cli wallet <create|import|list|delete> [flags]"
	if len(args) < 1 {
		fatal("%s", usage)
	}
	switch args[0] {
	case "create":
		a.cmdWalletCreate(args[1:])
	case "import":
		a.cmdWalletImport(args[1:])
	case "list":
		a.cmdWalletList()
	case "delete":
		a.cmdWalletDelete(args[1:])
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], usage)
	}
}

func (a *app) cmdWalletCreate(args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	words := fs.Int("words", a.cfg.Mnemonic.Words, "Mnemonic length")
	askPassphrase := fs.Bool("passphrase", false, "Prompt for a BIP-39 passphrase")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: hdlattice-cli wallet create --name <name> [--words N] [--passphrase]")
	}
	if err := wallet.ValidateName(*name); err != nil {
		fatal("%v", err)
	}
	if a.ks.Exists(*name) {
		fatal("wallet %q already exists", *name)
	}

	mnemonic, err := hdwallet.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	a.storeWallet(*name, mnemonic, readPassphrase(*askPassphrase))
	fmt.Printf("\nWallet created: %s\n", *name)
}

func (a *app) cmdWalletImport(args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (prompted when omitted)")
	askPassphrase := fs.Bool("passphrase", false, "Prompt for a BIP-39 passphrase")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: hdlattice-cli wallet import --name <name> [--mnemonic \"word1 word2 ...\"] [--passphrase]")
	}
	if err := wallet.ValidateName(*name); err != nil {
		fatal("%v", err)
	}
	if a.ks.Exists(*name) {
		fatal("wallet %q already exists", *name)
	}

	phrase := *mnemonic
	if phrase == "" {
		p, err := readPassword("Mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		phrase = string(p)
	}
	if !hdwallet.ValidateMnemonic(phrase) {
		fatal("%v", hdwallet.ErrMnemonicInvalid)
	}

	a.storeWallet(*name, phrase, readPassphrase(*askPassphrase))
	fmt.Printf("\nWallet imported: %s\n", *name)
}

// storeWallet seals the seed of mnemonic and registers the first signing
// account and the default wormhole pair.
func (a *app) storeWallet(name, mnemonic, passphrase string) {
	scheme, err := a.cfg.HDScheme()
	if err != nil {
		fatal("%v", err)
	}
	seed, err := hdwallet.SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		fatal("derive seed: %v", err)
	}
	defer keepSecret(func() { clear(seed[:]) })()

	password := readNewPassword()
	defer keepSecret(func() { clear(password) })()

	h, err := hdwallet.FromSeed(seed, hdwallet.WithScheme(scheme))
	if err != nil {
		fatal("%v", err)
	}
	defer keepSecret(h.Zero)()

	first, err := scheme.AccountPath(0, 0, 0, false)
	if err != nil {
		fatal("%v", err)
	}
	signing, _, err := wallet.DeriveAccount(h, first.String(), "Default")
	if err != nil {
		fatal("%v", err)
	}
	worm, _, err := wallet.DeriveWormholeAccount(h, "", "Default")
	if err != nil {
		fatal("%v", err)
	}

	if err := a.ks.Create(name, seed, password, a.cfg.EncryptionParams(), scheme); err != nil {
		fatal("create wallet: %v", err)
	}
	reg := a.registry()
	for _, e := range []wallet.AccountEntry{signing, worm} {
		if err := reg.Add(name, e); err != nil {
			fatal("record account: %v", err)
		}
	}

	fmt.Printf("Dialect:  %s\n", scheme.Dialect)
	fmt.Printf("Address:  %s (%s)\n", signing.Address, signing.Path)
	fmt.Printf("Wormhole: %s\n", worm.Address)
}

func (a *app) cmdWalletList() {
	names, err := a.ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		info, err := a.ks.Info(name)
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-20s %-6s %s\n", name, info.Scheme.Dialect, info.CreatedAt.Format(time.RFC3339))
	}
}

func (a *app) cmdWalletDelete(args []string) {
	fs := flag.NewFlagSet("wallet delete", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	yes := fs.Bool("yes", false, "Confirm deletion")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: hdlattice-cli wallet delete --name <name> --yes")
	}
	if !*yes {
		fatal("refusing to delete %q without --yes (the mnemonic is the only backup)", *name)
	}
	if err := a.ks.Delete(*name); err != nil {
		fatal("%v", err)
	}
	n, err := a.registry().DeleteWallet(*name)
	if err != nil {
		fatal("forget accounts: %v", err)
	}
	fmt.Printf("Wallet deleted: %s (%d account records removed)\n", *name, n)
}
