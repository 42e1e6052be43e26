// Package hdwallet derives post-quantum key material from a BIP-39 seed.
//
// A 64-byte seed is hashed into a master key, and every child is produced
// by a hardened HMAC-SHA512 step keyed by the parent's upper half. Paths are
// written in one of two dialects:
//
//	plain:  "0/1/2", "w/0/1/2"        (every index implicitly hardened)
//	bip44:  "m/44'/189189'/0'/0'/0'"  (every index must carry "'")
//
// A wormhole path re-salts the master before the walk, so the wormhole
// branch never shares outputs with the signing branch. Derived entropy
// becomes either an ML-DSA-87 key pair or a wormhole secret/address pair.
package hdwallet
