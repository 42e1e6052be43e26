package hdwallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the length of a BIP-39 seed in bytes.
const SeedSize = 64

// SeedFromMnemonic validates a mnemonic and stretches it with the passphrase
// into a 64-byte seed (PBKDF2-HMAC-SHA512, 2048 rounds, salt
// "mnemonic"+passphrase). Both inputs are NFKD-normalized first.
func SeedFromMnemonic(mnemonic, passphrase string) (seed [SeedSize]byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			seed, err = [SeedSize]byte{}, fmt.Errorf("%w: %v", ErrMnemonicInvalid, r)
		}
	}()

	normalized := NormalizeMnemonic(mnemonic)
	ok, verr := validMnemonic(normalized)
	if verr != nil {
		return seed, verr
	}
	if !ok {
		return seed, fmt.Errorf("%w: word list, count or checksum mismatch", ErrMnemonicInvalid)
	}

	b, err := bip39.NewSeedWithErrorChecking(normalized, norm.NFKD.String(passphrase))
	if err != nil {
		return seed, fmt.Errorf("%w: %v", ErrMnemonicInvalid, err)
	}
	defer clear(b)
	if len(b) != SeedSize {
		return seed, fmt.Errorf("%w: seed is %d bytes", ErrMnemonicInvalid, len(b))
	}
	copy(seed[:], b)
	return seed, nil
}
