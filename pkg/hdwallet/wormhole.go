package hdwallet

import (
	"fmt"

	"github.com/Klingon-tech/hdlattice/pkg/crypto"
	"github.com/Klingon-tech/hdlattice/pkg/types"
)

// DeriveWormhole derives entropy on the wormhole branch. The path must be
// marked as a wormhole path; the plain derivation of the same indices is a
// different, unrelated value.
func DeriveWormhole(master MasterKey, path DerivationPath) (Entropy, error) {
	if !path.Wormhole {
		return Entropy{}, fmt.Errorf("%w: %q is not on the wormhole branch", ErrInvalidWormholePath, path)
	}
	return Derive(master, path)
}

// WormholeSecret reduces derived entropy to the 32-byte wormhole secret,
// H(entropy[0:32]).
func WormholeSecret(e Entropy) types.Hash {
	return crypto.WormholeHash(e[:32])
}

// wormholeRoot is the branch root: the re-salted master with no steps.
func wormholeRoot() DerivationPath {
	return DerivationPath{Wormhole: true}
}
