package rpc

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/crypto"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
	"github.com/Klingon-tech/hdlattice/pkg/types"
)

// toRPCError maps wallet and derivation errors onto JSON-RPC codes.
func toRPCError(err error) *Error {
	code := CodeInternalError
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound):
		code = CodeNotFound
	case errors.Is(err, wallet.ErrWalletLocked):
		code = CodeWalletLocked
	case errors.Is(err, wallet.ErrDecrypt):
		code = CodeUnauthorized
	case errors.Is(err, hdwallet.ErrPathSyntax),
		errors.Is(err, hdwallet.ErrPathNotHardened),
		errors.Is(err, hdwallet.ErrPathIndexOutOfRange),
		errors.Is(err, hdwallet.ErrInvalidWormholePath):
		code = CodeInvalidParams
	}
	return &Error{Code: code, Message: err.Error()}
}

func requireWallet(name string) *Error {
	if err := wallet.ValidateName(name); err != nil {
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// messageBytes returns the hex payload if set, otherwise the UTF-8 text.
func messageBytes(text, hexText string) ([]byte, *Error) {
	if hexText == "" {
		return []byte(text), nil
	}
	b, err := hex.DecodeString(hexText)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid message_hex"}
	}
	return b, nil
}

func (s *Server) record(walletName string, e wallet.AccountEntry) {
	if s.registry == nil {
		return
	}
	if err := s.registry.Add(walletName, e); err != nil {
		s.logger.Warn().Err(err).Str("wallet", walletName).Str("path", e.Path).Msg("Failed to record account")
	}
}

func (s *Server) handleSignerStatus(_ *Request) (interface{}, *Error) {
	names, err := s.keystore.List()
	if err != nil {
		return nil, toRPCError(err)
	}
	return &StatusResult{
		Version:  s.version,
		Wallets:  len(names),
		Sessions: s.sessions.List(),
		Started:  s.started,
	}, nil
}

func (s *Server) handleWalletList(_ *Request) (interface{}, *Error) {
	names, err := s.keystore.List()
	if err != nil {
		return nil, toRPCError(err)
	}
	out := make([]WalletResult, 0, len(names))
	for _, name := range names {
		info, err := s.keystore.Info(name)
		if err != nil {
			s.logger.Warn().Err(err).Str("wallet", name).Msg("Skipping unreadable wallet")
			continue
		}
		r := WalletResult{
			Name:      name,
			Dialect:   info.Scheme.Dialect.String(),
			CreatedAt: info.CreatedAt,
			Unlocked:  s.sessions.IsUnlocked(name),
		}
		if info.Scheme.Dialect == hdwallet.DialectBIP44 {
			r.WormholeChainID = info.Scheme.WormholeChainID
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Server) handleWalletUnlock(req *Request) (interface{}, *Error) {
	var p UnlockParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}
	if p.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password is required"}
	}

	info, err := s.sessions.Unlock(p.Wallet, []byte(p.Password))
	if err != nil {
		return nil, toRPCError(err)
	}
	return &info, nil
}

func (s *Server) handleWalletLock(req *Request) (interface{}, *Error) {
	var p WalletParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}
	return &LockResult{Locked: s.sessions.Lock(p.Wallet)}, nil
}

func (s *Server) handleKeyDerive(req *Request) (interface{}, *Error) {
	var p DeriveParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}

	var entry wallet.AccountEntry
	err := s.sessions.With(p.Wallet, func(h *hdwallet.HDLattice) error {
		var err error
		entry, _, err = wallet.DeriveAccount(h, p.Path, p.Name)
		return err
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	s.record(p.Wallet, entry)

	return &AccountResult{
		Path:      entry.Path,
		Kind:      string(entry.Kind),
		Address:   entry.Address,
		PublicKey: hex.EncodeToString(entry.PublicKey),
	}, nil
}

func (s *Server) handleWormholeDerive(req *Request) (interface{}, *Error) {
	var p DeriveParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}

	var entry wallet.AccountEntry
	err := s.sessions.With(p.Wallet, func(h *hdwallet.HDLattice) error {
		e, pair, err := wallet.DeriveWormholeAccount(h, p.Path, p.Name)
		if err != nil {
			return err
		}
		pair.Zero()
		entry = e
		return nil
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	s.record(p.Wallet, entry)

	return &AccountResult{
		Path:    entry.Path,
		Kind:    string(entry.Kind),
		Address: entry.Address,
	}, nil
}

func (s *Server) handleWormholeVerify(req *Request) (interface{}, *Error) {
	var p RevealParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	addr, err := types.ParseAddress(p.Address)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	first, err := types.ParseHash(p.FirstHash)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "first_hash: " + err.Error()}
	}
	return &VerifyResult{Valid: crypto.VerifyReveal(addr, first)}, nil
}

func (s *Server) handleKeySign(req *Request) (interface{}, *Error) {
	var p SignParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}
	msg, e := messageBytes(p.Message, p.MessageHex)
	if e != nil {
		return nil, e
	}
	if len(p.Context) > 255 {
		return nil, &Error{Code: CodeInvalidParams, Message: "context longer than 255 bytes"}
	}

	var (
		entry wallet.AccountEntry
		sig   []byte
	)
	err := s.sessions.With(p.Wallet, func(h *hdwallet.HDLattice) error {
		var (
			kp  *crypto.Keypair
			err error
		)
		entry, kp, err = wallet.DeriveAccount(h, p.Path, "")
		if err != nil {
			return err
		}
		sig, err = kp.Sign(msg, []byte(p.Context))
		if err != nil {
			return fmt.Errorf("sign: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, toRPCError(err)
	}

	s.logger.Info().Str("wallet", p.Wallet).Str("path", entry.Path).Int("msg_len", len(msg)).Msg("Signed message")
	return &SignResult{
		Path:      entry.Path,
		Address:   entry.Address,
		PublicKey: hex.EncodeToString(entry.PublicKey),
		Signature: hex.EncodeToString(sig),
	}, nil
}

func (s *Server) handleKeyVerify(req *Request) (interface{}, *Error) {
	var p VerifyParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	pub, err := hex.DecodeString(p.PublicKey)
	if err != nil || len(pub) != crypto.PublicKeySize {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid public_key"}
	}
	sig, err := hex.DecodeString(p.Signature)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid signature"}
	}
	msg, e := messageBytes(p.Message, p.MessageHex)
	if e != nil {
		return nil, e
	}

	var v crypto.Verifier = crypto.MLDSAVerifier{}
	if !v.Verify(msg, []byte(p.Context), sig, pub) {
		return &VerifyResult{Valid: false}, nil
	}
	return &VerifyResult{Valid: true, Address: crypto.AddressFromPubKey(pub).String()}, nil
}

func (s *Server) handleAccountsList(req *Request) (interface{}, *Error) {
	var p WalletParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	if e := requireWallet(p.Wallet); e != nil {
		return nil, e
	}
	if s.registry == nil {
		return nil, &Error{Code: CodeNotFound, Message: "account registry not enabled"}
	}
	if !s.keystore.Exists(p.Wallet) {
		return nil, toRPCError(fmt.Errorf("%w: %q", wallet.ErrWalletNotFound, p.Wallet))
	}

	entries, err := s.registry.List(p.Wallet)
	if err != nil {
		return nil, toRPCError(err)
	}
	if entries == nil {
		entries = []wallet.AccountEntry{}
	}
	return entries, nil
}

func (s *Server) handlePathParse(req *Request) (interface{}, *Error) {
	var p PathParam
	if e := parseParams(req, &p); e != nil {
		return nil, e
	}
	d, err := hdwallet.ParseDialect(p.Dialect)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	scheme := hdwallet.SchemeForDialect(d)
	if d == hdwallet.DialectBIP44 && p.WormholeChainID != 0 {
		scheme.WormholeChainID = p.WormholeChainID
	}

	path, err := scheme.ParsePath(p.Path)
	if err != nil {
		return nil, toRPCError(err)
	}
	indices := path.Indices
	if indices == nil {
		indices = []uint32{}
	}
	return &PathResult{
		Path:     path.String(),
		Dialect:  path.Dialect.String(),
		Wormhole: path.Wormhole,
		Depth:    path.Depth(),
		Indices:  indices,
	}, nil
}
