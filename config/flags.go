package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags holds parsed global command-line flags.
type Flags struct {
	Help    bool
	Version bool

	DataDir string
	Config  string

	Dialect string
	Words   int

	RPCAddr string
	RPCPort int

	LogLevel string
	LogFile  string
	LogJSON  bool

	// Args holds the command and its arguments.
	Args []string

	SetLogJSON bool
}

// ParseFlags parses the global flags preceding the command.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("hdlattice-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.StringVar(&f.Dialect, "dialect", "", "Path dialect for new wallets (plain or bip44)")
	fs.IntVar(&f.Words, "words", 0, "Mnemonic length in words")

	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "Signer listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "Signer port")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Dialect != "" {
		cfg.Scheme.Dialect = f.Dialect
	}
	if f.Words != 0 {
		cfg.Mnemonic.Words = f.Words
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the CLI help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `hdlattice-cli - post-quantum hierarchical deterministic keys

Usage:
  hdlattice-cli [global options] <command> [command options]

Commands:
  mnemonic                      Generate a new mnemonic
  wallet create  --name N       Create a wallet from a new mnemonic
  wallet import  --name N       Import a wallet from an existing mnemonic
  wallet list                   List wallets
  wallet delete  --name N       Delete a wallet and its account records
  derive   --wallet N --path P  Derive a signing key pair and record it
  wormhole --wallet N [--path P] Derive a wormhole pair and record it
  accounts --wallet N           List recorded accounts
  sign     --wallet N --path P --message M
  verify   --pubkey HEX --message M --signature HEX
  signer status                 Show the hdlatticed signer and its sessions
  signer unlock --wallet N      Unlock a wallet inside hdlatticed
  signer lock   --wallet N      Lock a wallet inside hdlatticed
  signer sign   --wallet N --path P --message M

Global Options:
  --datadir       Data directory (default: ~/.hdlattice)
  --config, -c    Config file path (default: <datadir>/hdlattice.conf)
  --dialect       Path dialect for new wallets: plain (default) or bip44
  --words         Mnemonic length: 12, 15, 18, 21 or 24 (default: 24)
  --rpc-addr      Signer address (default: 127.0.0.1)
  --rpc-port      Signer port (default: 18989)
  --log-level     Log level: debug, info, warn, error (default: warn)
  --log-file      Log file path
  --log-json      Output logs as JSON
  --version       Show version information

Paths:
  plain   ""  "0/1/2"  "w/0/1/2"         every segment hardened implicitly
  bip44   "m/44'/189189'/0'/0'/0'"        every segment must end in '
          "m/44'/189189189'/0'/0'/0'"     wormhole branch
`)
}

// Load builds the configuration from defaults, the config file and args.
// Data directories and a default config file are created on first use.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	cfg.Scheme.Dialect = strings.ToLower(cfg.Scheme.Dialect)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory layout and a default config
// file if missing. Idempotent.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.KeystoreDir(), cfg.AccountsDir(), cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	path := cfg.ConfigFile()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaultConfig(path); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
