package crypto

import (
	"fmt"

	"github.com/Klingon-tech/hdlattice/pkg/types"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"golang.org/x/crypto/sha3"
)

// ML-DSA-87 sizes in bytes.
const (
	SeedSize      = mldsa87.SeedSize
	PublicKeySize = mldsa87.PublicKeySize
	SecretKeySize = mldsa87.PrivateKeySize
	SignatureSize = mldsa87.SignatureSize
)

// Signer signs messages with an ML-DSA-87 secret key.
type Signer interface {
	// Sign produces a deterministic signature over msg bound to ctx.
	Sign(msg, ctx []byte) ([]byte, error)
	// PublicKeyBytes returns the packed public key.
	PublicKeyBytes() []byte
}

// Verifier verifies ML-DSA-87 signatures.
type Verifier interface {
	// Verify checks a signature against a message, context and packed public key.
	Verify(msg, ctx, signature, publicKey []byte) bool
}

// Keypair is an ML-DSA-87 key pair.
type Keypair struct {
	pub  *mldsa87.PublicKey
	priv *mldsa87.PrivateKey
}

// GenerateKeypair deterministically builds a key pair from derived entropy.
// The entropy is compressed to the 32-byte ML-DSA seed with SHAKE256, so the
// same entropy always yields the same key pair.
func GenerateKeypair(entropy []byte) (*Keypair, error) {
	if len(entropy) == 0 {
		return nil, fmt.Errorf("keypair entropy is empty")
	}
	var seed [SeedSize]byte
	sha3.ShakeSum256(seed[:], entropy)
	pub, priv := mldsa87.NewKeyFromSeed(&seed)
	for i := range seed {
		seed[i] = 0
	}
	return &Keypair{pub: pub, priv: priv}, nil
}

// KeypairFromBytes restores a key pair from a packed secret key.
func KeypairFromBytes(secret []byte) (*Keypair, error) {
	if len(secret) != SecretKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", SecretKeySize, len(secret))
	}
	var priv mldsa87.PrivateKey
	if err := priv.UnmarshalBinary(secret); err != nil {
		return nil, fmt.Errorf("unpack secret key: %w", err)
	}
	pub, ok := priv.Public().(*mldsa87.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type %T", priv.Public())
	}
	return &Keypair{pub: pub, priv: &priv}, nil
}

// Sign produces a deterministic (non-hedged) signature over msg.
// ctx is the optional ML-DSA context string, at most 255 bytes.
func (k *Keypair) Sign(msg, ctx []byte) ([]byte, error) {
	sig := make([]byte, SignatureSize)
	if err := mldsa87.SignTo(k.priv, msg, ctx, false, sig); err != nil {
		return nil, fmt.Errorf("mldsa sign: %w", err)
	}
	return sig, nil
}

// Verify checks sig over msg against this pair's public key.
func (k *Keypair) Verify(msg, ctx, sig []byte) bool {
	return mldsa87.Verify(k.pub, msg, ctx, sig)
}

// PublicKeyBytes returns the packed public key.
func (k *Keypair) PublicKeyBytes() []byte {
	return k.pub.Bytes()
}

// SecretKeyBytes returns the packed secret key.
func (k *Keypair) SecretKeyBytes() []byte {
	return k.priv.Bytes()
}

// Address returns BLAKE3 of the packed public key.
func (k *Keypair) Address() types.Address {
	return AddressFromPubKey(k.PublicKeyBytes())
}

// VerifySignature checks an ML-DSA-87 signature against a packed public key.
// Returns false on any error.
func VerifySignature(publicKey, msg, ctx, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	var pub mldsa87.PublicKey
	if err := pub.UnmarshalBinary(publicKey); err != nil {
		return false
	}
	return mldsa87.Verify(&pub, msg, ctx, signature)
}

// MLDSAVerifier implements the Verifier interface.
type MLDSAVerifier struct{}

// Verify checks an ML-DSA-87 signature against a message and packed public key.
func (v MLDSAVerifier) Verify(msg, ctx, signature, publicKey []byte) bool {
	return VerifySignature(publicKey, msg, ctx, signature)
}
