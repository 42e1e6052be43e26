package hdwallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
)

// Sizes of the derivation chain values in bytes.
const (
	MasterKeySize = 64
	EntropySize   = 64
)

// MasterKey is the root of the derivation tree.
type MasterKey [MasterKeySize]byte

// Entropy is the 64-byte output of one derivation. Bytes [0:32] are the
// data half and [32:64] the keying half of the next step.
type Entropy [EntropySize]byte

// Zero overwrites e in place.
func (e *Entropy) Zero() {
	clear(e[:])
}

// Zero overwrites m in place.
func (m *MasterKey) Zero() {
	clear(m[:])
}

var (
	// masterSalt keys the seed-to-master hash.
	masterSalt = []byte("Dilithium seed")
	// wormholeSalt keys the branch re-salt applied before a wormhole walk.
	wormholeSalt = []byte("Wormhole seed")
)

// MasterKeyFromSeed computes HMAC-SHA512(key="Dilithium seed", data=seed).
func MasterKeyFromSeed(seed [SeedSize]byte) (MasterKey, error) {
	out, err := keyedHash(masterSalt, seed[:])
	if err != nil {
		return MasterKey{}, err
	}
	return MasterKey(out), nil
}

// Derive walks path from master. Each step computes
//
//	acc = HMAC-SHA512(key=acc[32:], data=0x00 || acc[:32] || BE32(index | 0x80000000))
//
// A wormhole path first re-salts the accumulator with
// HMAC-SHA512(key="Wormhole seed", data=acc). Indices are re-checked here,
// so a hand-built path cannot bypass the hardening rule.
func Derive(master MasterKey, path DerivationPath) (Entropy, error) {
	if err := path.Validate(); err != nil {
		return Entropy{}, err
	}

	acc := Entropy(master)
	if path.Wormhole {
		salted, err := resalt(acc)
		acc.Zero()
		if err != nil {
			return Entropy{}, err
		}
		acc = salted
	}

	for _, idx := range path.Indices {
		next, err := deriveChild(acc, idx|HardenedOffset)
		acc.Zero()
		if err != nil {
			return Entropy{}, err
		}
		acc = next
	}
	return acc, nil
}

// deriveChild performs one hardened step. index already carries the offset.
func deriveChild(parent Entropy, index uint32) (Entropy, error) {
	if index < HardenedOffset {
		return Entropy{}, fmt.Errorf("%w: index %d is not hardened", ErrKeyDerivation, index)
	}
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], index)
	out, err := keyedHash(parent[32:], []byte{0x00}, parent[:32], be[:])
	return Entropy(out), err
}

// resalt moves an accumulator onto the wormhole branch.
func resalt(acc Entropy) (Entropy, error) {
	out, err := keyedHash(wormholeSalt, acc[:])
	return Entropy(out), err
}

// keyedHash is HMAC-SHA512 over the concatenation of parts.
func keyedHash(key []byte, parts ...[]byte) ([64]byte, error) {
	var out [64]byte
	if len(key) == 0 {
		return out, fmt.Errorf("%w: empty hmac key", ErrKeyDerivation)
	}
	mac := hmac.New(sha512.New, key)
	for _, p := range parts {
		if _, err := mac.Write(p); err != nil {
			return out, fmt.Errorf("%w: hmac write: %v", ErrKeyDerivation, err)
		}
	}
	mac.Sum(out[:0])
	return out, nil
}
