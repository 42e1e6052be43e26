// Package crypto wraps the primitives hdlattice consumes as black boxes:
// BLAKE3 hashing, the ML-DSA-87 signature scheme and the wormhole pair
// constructor.
package crypto

import (
	"github.com/Klingon-tech/hdlattice/pkg/types"
	"github.com/zeebo/blake3"
)

// wormholeContext is the BLAKE3 derive-key context for wormhole hashing.
const wormholeContext = "hdlattice 2024-06-01 wormhole secret"

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// WormholeHash is the fixed function H applied to wormhole material.
// It runs BLAKE3 in derive-key mode so its outputs never collide with Hash.
func WormholeHash(data []byte) types.Hash {
	var out types.Hash
	blake3.DeriveKey(wormholeContext, data, out[:])
	return out
}

// AddressFromPubKey derives an address from a serialized public key.
// Address = BLAKE3(pubkey).
func AddressFromPubKey(pubKey []byte) types.Address {
	return types.Address(Hash(pubKey))
}
