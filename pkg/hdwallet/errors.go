package hdwallet

import "errors"

// Error kinds returned by this package. Every error is wrapped with context
// via fmt.Errorf("%w: ..."), so callers branch with errors.Is.
var (
	// ErrMnemonicInvalid reports a bad word list, checksum or word count.
	ErrMnemonicInvalid = errors.New("invalid mnemonic")

	// ErrEntropyWidthInvalid reports a word count outside {12,15,18,21,24}.
	ErrEntropyWidthInvalid = errors.New("bad entropy bit count")

	// ErrMnemonicDerivation reports the mnemonic codec rejecting generated entropy.
	ErrMnemonicDerivation = errors.New("mnemonic derivation failed")

	// ErrPathSyntax reports an unparsable path string.
	ErrPathSyntax = errors.New("invalid derivation path")

	// ErrPathNotHardened reports a segment that is not marked hardened.
	ErrPathNotHardened = errors.New("hardened paths only")

	// ErrPathIndexOutOfRange reports an index at or above the hardening offset.
	ErrPathIndexOutOfRange = errors.New("path index >= 0x80000000")

	// ErrInvalidWormholePath reports a missing or malformed wormhole marker.
	ErrInvalidWormholePath = errors.New("invalid wormhole path")

	// ErrKeyDerivation reports a failure inside the keyed-hash chain or
	// key-pair construction, including use of a wiped lattice.
	ErrKeyDerivation = errors.New("key derivation failed")
)
