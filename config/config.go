// Package config handles hdlattice-cli configuration.
//
// Values are layered: built-in defaults, then <datadir>/hdlattice.conf,
// then command-line flags.
package config

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

// Config holds the CLI runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	Scheme   SchemeConfig
	Mnemonic MnemonicConfig
	KDF      KDFConfig
	RPC      RPCConfig
	Log      LogConfig
}

// SchemeConfig selects the path dialect for newly created wallets.
type SchemeConfig struct {
	Dialect         string `conf:"scheme.dialect"`
	WormholeChainID uint32 `conf:"scheme.wormhole_chain_id"`
}

// MnemonicConfig holds mnemonic generation settings.
type MnemonicConfig struct {
	Words int `conf:"mnemonic.words"`
}

// KDFConfig holds the Argon2id parameters used to seal new wallets.
type KDFConfig struct {
	Memory      uint32 `conf:"kdf.memory"` // KiB
	Iterations  uint32 `conf:"kdf.iterations"`
	Parallelism uint8  `conf:"kdf.parallelism"`
}

// RPCConfig holds settings of the hdlatticed signer service.
type RPCConfig struct {
	Addr       string        `conf:"rpc.addr"`
	Port       int           `conf:"rpc.port"`
	AllowedIPs []string      `conf:"rpc.allowed"`
	SessionTTL time.Duration `conf:"rpc.session_ttl"` // Idle time before an unlocked wallet is locked again.
}

// ListenAddr returns the host:port the signer listens on.
func (r RPCConfig) ListenAddr() string {
	return net.JoinHostPort(r.Addr, strconv.Itoa(r.Port))
}

// Endpoint returns the URL clients use to reach the signer.
func (r RPCConfig) Endpoint() string {
	host := r.Addr
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(r.Port))
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.hdlattice
//	macOS:   ~/Library/Application Support/HDLattice
//	Windows: %APPDATA%\HDLattice
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hdlattice"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "HDLattice")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "HDLattice")
		}
		return filepath.Join(home, "AppData", "Roaming", "HDLattice")
	default:
		return filepath.Join(home, ".hdlattice")
	}
}

// KeystoreDir returns the directory holding encrypted wallet files.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.DataDir, "keystore")
}

// AccountsDir returns the Badger directory of the account registry.
func (c *Config) AccountsDir() string {
	return filepath.Join(c.DataDir, "accounts")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "hdlattice.conf")
}

// HDScheme returns the path scheme new wallets are created with.
func (c *Config) HDScheme() (hdwallet.Scheme, error) {
	d, err := hdwallet.ParseDialect(c.Scheme.Dialect)
	if err != nil {
		return hdwallet.Scheme{}, err
	}
	s := hdwallet.SchemeForDialect(d)
	if d == hdwallet.DialectBIP44 && c.Scheme.WormholeChainID != 0 {
		s.WormholeChainID = c.Scheme.WormholeChainID
	}
	return s, nil
}

// EncryptionParams returns the configured Argon2id parameters.
func (c *Config) EncryptionParams() wallet.EncryptionParams {
	return wallet.EncryptionParams{
		Memory:      c.KDF.Memory,
		Iterations:  c.KDF.Iterations,
		Parallelism: c.KDF.Parallelism,
	}
}
