package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/internal/storage"
)

// ErrAccountConflict is returned when a path is already registered with a
// different address.
var ErrAccountConflict = errors.New("account path already registered with a different address")

// Registry records derived accounts per wallet in a key-value store.
//
// Layout: "acct/<wallet>/<kind>:<path>" -> JSON AccountEntry.
type Registry struct {
	db storage.DB
}

// NewRegistry wraps db.
func NewRegistry(db storage.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) ns(walletName string) *storage.PrefixDB {
	return storage.NewPrefixDB(r.db, []byte("acct/"+walletName+"/"))
}

func entryKey(kind AccountKind, path string) []byte {
	return []byte(string(kind) + ":" + path)
}

// Add records an account. Re-adding the same path with the same address is
// a no-op; the same path with a different address is ErrAccountConflict.
func (r *Registry) Add(walletName string, e AccountEntry) error {
	if err := ValidateName(walletName); err != nil {
		return err
	}
	if e.Kind != KindSigning && e.Kind != KindWormhole {
		return fmt.Errorf("unknown account kind %q", e.Kind)
	}
	db := r.ns(walletName)
	key := entryKey(e.Kind, e.Path)

	existing, err := r.get(db, key)
	switch {
	case err == nil:
		if existing.Address == e.Address {
			return nil
		}
		return fmt.Errorf("%w: %s %q", ErrAccountConflict, e.Kind, e.Path)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	if err := db.Put(key, data); err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	log.Wallet.Debug().Str("wallet", walletName).Str("kind", string(e.Kind)).Str("path", e.Path).Msg("Account registered")
	return nil
}

// Get returns the entry for a path, or an error wrapping storage.ErrNotFound.
func (r *Registry) Get(walletName string, kind AccountKind, path string) (*AccountEntry, error) {
	if err := ValidateName(walletName); err != nil {
		return nil, err
	}
	return r.get(r.ns(walletName), entryKey(kind, path))
}

func (r *Registry) get(db storage.DB, key []byte) (*AccountEntry, error) {
	data, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	var e AccountEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse account %q: %w", key, err)
	}
	return &e, nil
}

// List returns a wallet's accounts, oldest first.
func (r *Registry) List(walletName string) ([]AccountEntry, error) {
	if err := ValidateName(walletName); err != nil {
		return nil, err
	}
	var out []AccountEntry
	err := r.ns(walletName).ForEach(nil, func(key, value []byte) error {
		var e AccountEntry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("parse account %q: %w", key, err)
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteWallet forgets every account of a wallet and returns how many were removed.
func (r *Registry) DeleteWallet(walletName string) (int, error) {
	if err := ValidateName(walletName); err != nil {
		return 0, err
	}
	return r.ns(walletName).DeleteAll()
}
