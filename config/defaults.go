package config

import (
	"time"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

// DefaultRPCPort is the default port of the hdlatticed signer.
const DefaultRPCPort = 18989

// Default returns the built-in configuration.
func Default() *Config {
	kdf := wallet.DefaultParams()
	return &Config{
		DataDir: DefaultDataDir(),
		Scheme: SchemeConfig{
			Dialect:         hdwallet.DialectPlain.String(),
			WormholeChainID: hdwallet.CoinTypeWormhole,
		},
		Mnemonic: MnemonicConfig{
			Words: hdwallet.DefaultWordCount,
		},
		KDF: KDFConfig{
			Memory:      kdf.Memory,
			Iterations:  kdf.Iterations,
			Parallelism: kdf.Parallelism,
		},
		RPC: RPCConfig{
			Addr:       "127.0.0.1",
			Port:       DefaultRPCPort,
			AllowedIPs: []string{"127.0.0.1"},
			SessionTTL: 15 * time.Minute,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
