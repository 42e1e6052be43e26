package crypto

import "github.com/Klingon-tech/hdlattice/pkg/types"

// WormholePair is a secret and the public address committed to it.
//
//	FirstHash = H(Secret)
//	Address   = H(FirstHash)
//
// Only the address is meant to be published; revealing FirstHash proves
// knowledge of the pair without revealing Secret.
type WormholePair struct {
	Secret    types.Hash
	FirstHash types.Hash
	Address   types.Address
}

// NewWormholePair builds the pair committed to secret.
func NewWormholePair(secret types.Hash) *WormholePair {
	first := WormholeHash(secret[:])
	return &WormholePair{
		Secret:    secret,
		FirstHash: first,
		Address:   types.Address(WormholeHash(first[:])),
	}
}

// AddressString returns the bech32 wormhole address ("hdw1...").
func (p *WormholePair) AddressString() string {
	return p.Address.Encode(types.WormholeHRP)
}

// Zero wipes the secret and its first hash.
func (p *WormholePair) Zero() {
	p.Secret.Zero()
	p.FirstHash.Zero()
}

// VerifyReveal reports whether firstHash opens the wormhole address addr.
func VerifyReveal(addr types.Address, firstHash types.Hash) bool {
	return WormholeHash(firstHash[:]).Equal(types.Hash(addr))
}
