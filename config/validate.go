package config

import (
	"fmt"
	"net"

	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

// Validate checks the config for operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}
	if _, err := hdwallet.ParseDialect(cfg.Scheme.Dialect); err != nil {
		return fmt.Errorf("scheme.dialect: %w", err)
	}
	if cfg.Scheme.WormholeChainID >= hdwallet.HardenedOffset {
		return fmt.Errorf("scheme.wormhole_chain_id must be below %d", hdwallet.HardenedOffset)
	}
	if cfg.Scheme.WormholeChainID == hdwallet.CoinTypeSigning {
		return fmt.Errorf("scheme.wormhole_chain_id must differ from the signing coin type %d", hdwallet.CoinTypeSigning)
	}
	if _, err := hdwallet.EntropyBitsForWords(cfg.Mnemonic.Words); err != nil {
		return fmt.Errorf("mnemonic.words: %w", err)
	}
	if err := cfg.EncryptionParams().Validate(); err != nil {
		return fmt.Errorf("kdf: %w", err)
	}
	if cfg.RPC.Port < 1 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port %d out of range", cfg.RPC.Port)
	}
	for _, entry := range cfg.RPC.AllowedIPs {
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("rpc.allowed: %q is neither an IP nor a CIDR", entry)
		}
	}
	if cfg.RPC.SessionTTL <= 0 {
		return fmt.Errorf("rpc.session_ttl must be positive")
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	return nil
}
