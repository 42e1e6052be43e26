package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

const (
	keystoreVersion = 1
	walletExt       = ".wallet"
)

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
)

// schemeRecord is the stored form of an hdwallet.Scheme.
type schemeRecord struct {
	Dialect          string `json:"dialect"`
	WormholeMarker   string `json:"wormhole_marker,omitempty"`
	WormholeChainID  uint32 `json:"wormhole_chain_id,omitempty"`
	WormholePosition int    `json:"wormhole_position,omitempty"`
}

func recordScheme(s hdwallet.Scheme) schemeRecord {
	return schemeRecord{
		Dialect:          s.Dialect.String(),
		WormholeMarker:   s.WormholeMarker,
		WormholeChainID:  s.WormholeChainID,
		WormholePosition: s.WormholePosition,
	}
}

func (r schemeRecord) scheme() (hdwallet.Scheme, error) {
	d, err := hdwallet.ParseDialect(r.Dialect)
	if err != nil {
		return hdwallet.Scheme{}, err
	}
	return hdwallet.Scheme{
		Dialect:          d,
		WormholeMarker:   r.WormholeMarker,
		WormholeChainID:  r.WormholeChainID,
		WormholePosition: r.WormholePosition,
	}, nil
}

// keystoreFile is the on-disk JSON format for an encrypted wallet.
type keystoreFile struct {
	Version       int          `json:"version"`
	CreatedAt     time.Time    `json:"created_at"`
	Scheme        schemeRecord `json:"scheme"`
	EncryptedSeed []byte       `json:"encrypted_seed"`
}

// WalletInfo is the public metadata of a stored wallet.
type WalletInfo struct {
	Name      string
	CreatedAt time.Time
	Scheme    hdwallet.Scheme
}

// Keystore keeps one encrypted seed per wallet file in a directory.
type Keystore struct {
	dir string
}

// NewKeystore opens the keystore at dir, creating it if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

// ValidateName checks that a wallet name is usable as a file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("wallet name is empty")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("wallet name %q must not start with '.'", name)
	}
	for _, r := range name {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("wallet name %q contains %q", name, r)
		}
	}
	return nil
}

func (ks *Keystore) walletPath(name string) string {
	return filepath.Join(ks.dir, name+walletExt)
}

// Create seals seed under password and records the path scheme the wallet
// derives with.
func (ks *Keystore) Create(name string, seed [hdwallet.SeedSize]byte, password []byte, params EncryptionParams, scheme hdwallet.Scheme) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := ks.walletPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	sealed, err := Encrypt(seed[:], password, params)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	kf := keystoreFile{
		Version:       keystoreVersion,
		CreatedAt:     time.Now().UTC(),
		Scheme:        recordScheme(scheme),
		EncryptedSeed: sealed,
	}
	if err := ks.writeFile(path, &kf); err != nil {
		return err
	}
	log.Keystore.Info().Str("wallet", name).Str("dialect", scheme.Dialect.String()).Msg("Wallet created")
	return nil
}

// Load decrypts the seed of a wallet.
func (ks *Keystore) Load(name string, password []byte) ([hdwallet.SeedSize]byte, error) {
	kf, err := ks.read(name)
	if err != nil {
		return [hdwallet.SeedSize]byte{}, err
	}
	return kf.decryptSeed(name, password)
}

// Open decrypts a wallet and returns a lattice using its recorded scheme.
func (ks *Keystore) Open(name string, password []byte) (*hdwallet.HDLattice, error) {
	kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	scheme, err := kf.Scheme.scheme()
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", name, err)
	}
	seed, err := kf.decryptSeed(name, password)
	if err != nil {
		return nil, err
	}
	defer clear(seed[:])
	log.Keystore.Debug().Str("wallet", name).Msg("Wallet unlocked")
	return hdwallet.FromSeed(seed, hdwallet.WithScheme(scheme))
}

func (kf *keystoreFile) decryptSeed(name string, password []byte) ([hdwallet.SeedSize]byte, error) {
	var seed [hdwallet.SeedSize]byte
	plain, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return seed, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	defer clear(plain)
	if len(plain) != hdwallet.SeedSize {
		return seed, fmt.Errorf("wallet %q holds a %d-byte seed, want %d", name, len(plain), hdwallet.SeedSize)
	}
	copy(seed[:], plain)
	return seed, nil
}

// Info returns a wallet's metadata without decrypting it.
func (ks *Keystore) Info(name string) (*WalletInfo, error) {
	kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	scheme, err := kf.Scheme.scheme()
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", name, err)
	}
	return &WalletInfo{Name: name, CreatedAt: kf.CreatedAt, Scheme: scheme}, nil
}

// List returns the sorted names of all wallets.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), walletExt); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a wallet file is present.
func (ks *Keystore) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(ks.walletPath(name))
	return err == nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := ks.walletPath(name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Keystore.Info().Str("wallet", name).Msg("Wallet deleted")
	return nil
}

// writeFile replaces path atomically via a temp file and rename.
func (ks *Keystore) writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) read(name string) (*keystoreFile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(ks.walletPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}
