package wallet

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/hdlattice/pkg/crypto"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

// AccountKind distinguishes signing accounts from wormhole accounts.
type AccountKind string

const (
	KindSigning  AccountKind = "signing"
	KindWormhole AccountKind = "wormhole"
)

// AccountEntry is the public record of one derived account.
// Secrets are never stored; they are re-derived from the wallet seed.
type AccountEntry struct {
	Path      string      `json:"path"`
	Kind      AccountKind `json:"kind"`
	Name      string      `json:"name,omitempty"`
	Address   string      `json:"address"`
	PublicKey []byte      `json:"public_key,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// DeriveAccount derives the signing key pair at path and its registry entry.
func DeriveAccount(h *hdwallet.HDLattice, path, name string) (AccountEntry, *crypto.Keypair, error) {
	p, err := h.ParsePath(path)
	if err != nil {
		return AccountEntry{}, nil, err
	}
	kp, err := h.KeysForPath(p)
	if err != nil {
		return AccountEntry{}, nil, fmt.Errorf("derive %q: %w", path, err)
	}
	return AccountEntry{
		Path:      p.String(),
		Kind:      KindSigning,
		Name:      name,
		Address:   kp.Address().String(),
		PublicKey: kp.PublicKeyBytes(),
		CreatedAt: time.Now().UTC(),
	}, kp, nil
}

// DeriveWormholeAccount derives the wormhole pair at path, or the default
// branch-root pair when path is empty.
func DeriveWormholeAccount(h *hdwallet.HDLattice, path, name string) (AccountEntry, *crypto.WormholePair, error) {
	var (
		pair       *crypto.WormholePair
		normalized string
		err        error
	)
	if path == "" {
		pair, err = h.GenerateWormholePair()
	} else {
		var p hdwallet.DerivationPath
		if p, err = h.ParsePath(path); err != nil {
			return AccountEntry{}, nil, err
		}
		normalized = p.String()
		pair, err = h.WormholePairForPath(p)
	}
	if err != nil {
		return AccountEntry{}, nil, fmt.Errorf("derive wormhole %q: %w", path, err)
	}
	return AccountEntry{
		Path:      normalized,
		Kind:      KindWormhole,
		Name:      name,
		Address:   pair.AddressString(),
		CreatedAt: time.Now().UTC(),
	}, pair, nil
}
