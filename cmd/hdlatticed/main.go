// hdlatticed is a local signing service. It keeps unlocked wallets in
// memory and serves derivation and signing over JSON-RPC.
//
// Usage:
//
//	hdlatticed [--datadir D] [--rpc-addr A] [--rpc-port P]   Run the signer
//	hdlatticed --help                                         Show help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/hdlattice/config"
	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/internal/rpc"
	"github.com/Klingon-tech/hdlattice/internal/storage"
	"github.com/Klingon-tech/hdlattice/internal/wallet"
)

const version = "0.1.0"

const usage = `hdlatticed - post-quantum HD signer

Usage:
  hdlatticed [options]

Options:
  --datadir       Data directory (default: ~/.hdlattice)
  --config, -c    Config file path (default: <datadir>/hdlattice.conf)
  --rpc-addr      Listen address (default: 127.0.0.1)
  --rpc-port      Listen port (default: 18989)
  --log-level     Log level: debug, info, warn, error
  --log-file      Log file path
  --log-json      Output logs as JSON

Wallets are created with hdlattice-cli and unlocked through the
wallet_unlock method; idle sessions lock after rpc.session_ttl.
`

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flags.Version {
		fmt.Printf("hdlatticed version %s\n", version)
		return
	}
	if flags.Help {
		fmt.Print(usage)
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}
	db, err := storage.NewBadger(cfg.AccountsDir())
	if err != nil {
		return fmt.Errorf("open account registry: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := wallet.NewSessions(ks, cfg.RPC.SessionTTL)
	sweeperDone := make(chan struct{})
	go func() {
		sessions.Run(ctx)
		close(sweeperDone)
	}()

	srv := rpc.New(cfg.RPC.ListenAddr(), ks, sessions, cfg.RPC)
	srv.SetRegistry(wallet.NewRegistry(db))
	srv.SetVersion(version)
	if err := srv.Start(); err != nil {
		cancel()
		<-sweeperDone
		return err
	}
	log.Logger.Info().
		Str("addr", srv.Addr()).
		Str("datadir", cfg.DataDir).
		Dur("session_ttl", cfg.RPC.SessionTTL).
		Msg("hdlatticed started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Logger.Info().Msg("Shutting down")
	if err := srv.Stop(); err != nil {
		log.Logger.Warn().Err(err).Msg("RPC shutdown")
	}
	cancel()
	<-sweeperDone
	return nil
}
