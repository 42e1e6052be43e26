package hdwallet

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/text/unicode/norm"
)

// DefaultWordCount is the mnemonic length used when none is configured.
const DefaultWordCount = 24

// entropyBits maps supported mnemonic lengths to entropy widths.
var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// EntropyBitsForWords returns the entropy width behind a mnemonic of
// wordCount words.
func EntropyBitsForWords(wordCount int) (int, error) {
	bits, ok := entropyBits[wordCount]
	if !ok {
		return 0, fmt.Errorf("%w: %d words (want 12, 15, 18, 21 or 24)", ErrEntropyWidthInvalid, wordCount)
	}
	return bits, nil
}

// GenerateMnemonic returns a fresh English mnemonic of wordCount words.
// Operating-system randomness seeds a ChaCha20 keystream whose prefix is the
// mnemonic entropy.
func GenerateMnemonic(wordCount int) (string, error) {
	return generateMnemonic(rand.Reader, wordCount)
}

func generateMnemonic(r io.Reader, wordCount int) (string, error) {
	bits, err := EntropyBitsForWords(wordCount)
	if err != nil {
		return "", err
	}

	var key [chacha20.KeySize]byte
	defer clear(key[:])
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return "", fmt.Errorf("read system entropy: %w", err)
	}

	entropy, err := keystream(key[:], bits/8)
	if err != nil {
		return "", err
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMnemonicDerivation, err)
	}
	return mnemonic, nil
}

// keystream returns the first n bytes of ChaCha20(key, zero nonce).
func keystream(key []byte, n int) ([]byte, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		return nil, fmt.Errorf("%w: chacha20: %v", ErrMnemonicDerivation, err)
	}
	out := make([]byte, n)
	c.XORKeyStream(out, out)
	return out, nil
}

// ValidateMnemonic checks word list membership, word count and checksum.
func ValidateMnemonic(mnemonic string) bool {
	ok, _ := validMnemonic(NormalizeMnemonic(mnemonic))
	return ok
}

// NormalizeMnemonic applies NFKD and collapses whitespace runs to single spaces.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(norm.NFKD.String(mnemonic)), " ")
}

// validMnemonic guards the codec, which may panic on malformed input.
func validMnemonic(normalized string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: %v", ErrMnemonicInvalid, r)
		}
	}()
	return bip39.IsMnemonicValid(normalized), nil
}
