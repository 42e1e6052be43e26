package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/log"
)

// LoadFile reads a .conf file of "key = value" lines ('#' starts a comment).
// A missing file yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return values, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value

	case "scheme.dialect":
		cfg.Scheme.Dialect = value
	case "scheme.wormhole_chain_id":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Scheme.WormholeChainID = uint32(n)

	case "mnemonic.words":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mnemonic.Words = n

	case "kdf.memory":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.KDF.Memory = uint32(n)
	case "kdf.iterations":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.KDF.Iterations = uint32(n)
	case "kdf.parallelism":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return err
		}
		cfg.KDF.Parallelism = uint8(n)

	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.session_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.RPC.SessionTTL = d

	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		log.Logger.Warn().Str("key", key).Msg("Ignoring unknown config key")
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a commented default config file.
func WriteDefaultConfig(path string) error {
	d := Default()
	content := `# hdlattice-cli configuration
#
# Values here override the built-in defaults; command-line flags override
# values here.

# Data directory (default: ~/.hdlattice)
# datadir = ~/.hdlattice

# ============================================================================
# Derivation paths for new wallets
# ============================================================================

# plain: "0/1/2", wormhole "w/0/1/2"
# bip44: "m/44'/189189'/0'/0'/0'", wormhole via the chain ID in coin-type position
scheme.dialect = ` + d.Scheme.Dialect + `
# scheme.wormhole_chain_id = ` + strconv.FormatUint(uint64(d.Scheme.WormholeChainID), 10) + `

# ============================================================================
# Mnemonics
# ============================================================================

# 12, 15, 18, 21 or 24
mnemonic.words = ` + strconv.Itoa(d.Mnemonic.Words) + `

# ============================================================================
# Keystore encryption (Argon2id)
# ============================================================================

kdf.memory = ` + strconv.FormatUint(uint64(d.KDF.Memory), 10) + `
kdf.iterations = ` + strconv.FormatUint(uint64(d.KDF.Iterations), 10) + `
kdf.parallelism = ` + strconv.FormatUint(uint64(d.KDF.Parallelism), 10) + `

# ============================================================================
# Signer service (hdlatticed)
# ============================================================================

rpc.addr = ` + d.RPC.Addr + `
rpc.port = ` + strconv.Itoa(d.RPC.Port) + `
# Comma-separated IPs or CIDRs; empty allows everyone
rpc.allowed = ` + strings.Join(d.RPC.AllowedIPs, ",") + `
rpc.session_ttl = ` + d.RPC.SessionTTL.String() + `

# ============================================================================
# Logging
# ============================================================================

log.level = ` + d.Log.Level + `
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
