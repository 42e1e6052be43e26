package hdwallet

import (
	"fmt"

	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/pkg/crypto"
)

// HDLattice holds a seed, its master key and the path scheme used to read
// path strings. After construction it is read-only, so derivations may run
// concurrently. Zero must not race with them.
type HDLattice struct {
	seed   [SeedSize]byte
	master MasterKey
	scheme Scheme
	wiped  bool
}

// Option configures an HDLattice.
type Option func(*HDLattice)

// WithScheme selects the path dialect and wormhole rule. The default is PlainScheme.
func WithScheme(s Scheme) Option {
	return func(h *HDLattice) {
		h.scheme = s
	}
}

// FromSeed builds a lattice from a 64-byte seed.
func FromSeed(seed [SeedSize]byte, opts ...Option) (*HDLattice, error) {
	master, err := MasterKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	h := &HDLattice{
		seed:   seed,
		master: master,
		scheme: PlainScheme(),
	}
	for _, opt := range opts {
		opt(h)
	}
	log.HDWallet.Debug().Str("dialect", h.scheme.Dialect.String()).Msg("Lattice created")
	return h, nil
}

// FromSeedBytes is FromSeed for a slice, which must be exactly SeedSize bytes.
func FromSeedBytes(seed []byte, opts ...Option) (*HDLattice, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrKeyDerivation, SeedSize, len(seed))
	}
	var s [SeedSize]byte
	copy(s[:], seed)
	defer clear(s[:])
	return FromSeed(s, opts...)
}

// FromMnemonic stretches mnemonic and passphrase into a seed and builds a
// lattice from it.
func FromMnemonic(mnemonic, passphrase string, opts ...Option) (*HDLattice, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed[:])
	return FromSeed(seed, opts...)
}

// Seed returns a copy of the seed.
func (h *HDLattice) Seed() [SeedSize]byte {
	return h.seed
}

// MasterKey returns a copy of the master key.
func (h *HDLattice) MasterKey() MasterKey {
	return h.master
}

// Scheme returns the path scheme the lattice parses with.
func (h *HDLattice) Scheme() Scheme {
	return h.scheme
}

// ParsePath parses path in the lattice's dialect.
func (h *HDLattice) ParsePath(path string) (DerivationPath, error) {
	return h.scheme.ParsePath(path)
}

// DeriveEntropy derives 64 bytes at path. The empty path returns the
// master key itself.
func (h *HDLattice) DeriveEntropy(path string) (Entropy, error) {
	p, err := h.scheme.ParsePath(path)
	if err != nil {
		return Entropy{}, err
	}
	return h.DerivePath(p)
}

// DerivePath derives 64 bytes at an already parsed path.
func (h *HDLattice) DerivePath(p DerivationPath) (Entropy, error) {
	if h.wiped {
		return Entropy{}, fmt.Errorf("%w: lattice has been wiped", ErrKeyDerivation)
	}
	e, err := Derive(h.master, p)
	if err != nil {
		return Entropy{}, err
	}
	log.HDWallet.Debug().
		Str("path", p.String()).
		Bool("wormhole", p.Wormhole).
		Int("depth", p.Depth()).
		Msg("Entropy derived")
	return e, nil
}

// GenerateKeys returns the signing key pair of the root (the master key).
func (h *HDLattice) GenerateKeys() (*crypto.Keypair, error) {
	return h.KeysForPath(DerivationPath{Dialect: h.scheme.Dialect})
}

// GenerateDerivedKeys returns the signing key pair at path.
func (h *HDLattice) GenerateDerivedKeys(path string) (*crypto.Keypair, error) {
	p, err := h.scheme.ParsePath(path)
	if err != nil {
		return nil, err
	}
	return h.KeysForPath(p)
}

// KeysForPath returns the signing key pair at an already parsed path.
func (h *HDLattice) KeysForPath(p DerivationPath) (*crypto.Keypair, error) {
	e, err := h.DerivePath(p)
	if err != nil {
		return nil, err
	}
	defer e.Zero()
	kp, err := crypto.GenerateKeypair(e[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return kp, nil
}

// GenerateWormholePair returns the pair at the wormhole branch root.
func (h *HDLattice) GenerateWormholePair() (*crypto.WormholePair, error) {
	return h.WormholePairForPath(wormholeRoot())
}

// GenerateWormholePairFromPath returns the wormhole pair at path, which
// must select the wormhole branch.
func (h *HDLattice) GenerateWormholePairFromPath(path string) (*crypto.WormholePair, error) {
	p, err := h.scheme.ParsePath(path)
	if err != nil {
		return nil, err
	}
	return h.WormholePairForPath(p)
}

// WormholePairForPath returns the wormhole pair at an already parsed path.
func (h *HDLattice) WormholePairForPath(p DerivationPath) (*crypto.WormholePair, error) {
	if !p.Wormhole {
		return nil, fmt.Errorf("%w: %q is not on the wormhole branch", ErrInvalidWormholePath, p)
	}
	e, err := h.DerivePath(p)
	if err != nil {
		return nil, err
	}
	defer e.Zero()
	return crypto.NewWormholePair(WormholeSecret(e)), nil
}

// Zero wipes the seed and master key. Every later derivation fails with
// ErrKeyDerivation.
func (h *HDLattice) Zero() {
	clear(h.seed[:])
	h.master.Zero()
	h.wiped = true
}
