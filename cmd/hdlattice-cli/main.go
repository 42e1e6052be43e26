// hdlattice-cli manages post-quantum HD wallets: mnemonics, encrypted
// seeds, derived ML-DSA-87 signing keys and wormhole addresses.
package main

import (
	"fmt"
	"os"

	"github.com/Klingon-tech/hdlattice/config"
	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/internal/storage"
	"github.com/Klingon-tech/hdlattice/internal/wallet"
)

const version = "0.1.0"

// app carries what every command needs.
type app struct {
	cfg *config.Config
	ks  *wallet.Keystore
	db  storage.DB
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("hdlattice-cli version %s\n", version)
		return
	}
	if flags.Help || len(flags.Args) == 0 {
		config.PrintUsage(os.Stderr)
		if !flags.Help {
			os.Exit(1)
		}
		return
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	a := &app{cfg: cfg, ks: ks}
	defer a.close()

	cmd, cmdArgs := flags.Args[0], flags.Args[1:]
	log.CLI.Debug().Str("command", cmd).Str("datadir", cfg.DataDir).Msg("Running command")

	switch cmd {
	case "mnemonic":
		a.cmdMnemonic(cmdArgs)
	case "wallet":
		a.cmdWallet(cmdArgs)
	case "derive":
		a.cmdDerive(cmdArgs)
	case "wormhole":
		a.cmdWormhole(cmdArgs)
	case "accounts":
		a.cmdAccounts(cmdArgs)
	case "sign":
		a.cmdSign(cmdArgs)
	case "verify":
		a.cmdVerify(cmdArgs)
	case "signer":
		a.cmdSigner(cmdArgs)
	case "help":
		config.PrintUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage(os.Stderr)
		a.close()
		os.Exit(1)
	}
}

// registry opens the account registry on first use.
func (a *app) registry() *wallet.Registry {
	if a.db == nil {
		db, err := storage.NewBadger(a.cfg.AccountsDir())
		if err != nil {
			fatal("open account registry: %v", err)
		}
		a.db = db
	}
	return wallet.NewRegistry(a.db)
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.CLI.Warn().Err(err).Msg("Closing account registry")
		}
		a.db = nil
	}
}
