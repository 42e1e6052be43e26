package rpc

import (
	"time"

	"github.com/Klingon-tech/hdlattice/internal/wallet"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeWalletLocked   = -32001
	CodeUnauthorized   = -32002
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// WalletParam is used by endpoints that take only a wallet name.
type WalletParam struct {
	Wallet string `json:"wallet"`
}

// UnlockParam is used by wallet_unlock.
type UnlockParam struct {
	Wallet   string `json:"wallet"`
	Password string `json:"password"`
}

// DeriveParam is used by key_derive and wormhole_derive.
// An empty path selects the root key, or the default pair for wormholes.
type DeriveParam struct {
	Wallet string `json:"wallet"`
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
}

// SignParam is used by key_sign. MessageHex takes precedence over Message.
type SignParam struct {
	Wallet     string `json:"wallet"`
	Path       string `json:"path"`
	Message    string `json:"message,omitempty"`
	MessageHex string `json:"message_hex,omitempty"`
	Context    string `json:"context,omitempty"`
}

// VerifyParam is used by key_verify.
type VerifyParam struct {
	PublicKey  string `json:"public_key"`
	Signature  string `json:"signature"`
	Message    string `json:"message,omitempty"`
	MessageHex string `json:"message_hex,omitempty"`
	Context    string `json:"context,omitempty"`
}

// RevealParam is used by wormhole_verify.
type RevealParam struct {
	Address   string `json:"address"`
	FirstHash string `json:"first_hash"`
}

// PathParam is used by path_parse. An empty dialect means plain.
type PathParam struct {
	Path            string `json:"path"`
	Dialect         string `json:"dialect,omitempty"`
	WormholeChainID uint32 `json:"wormhole_chain_id,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// StatusResult is returned by signer_status.
type StatusResult struct {
	Version  string               `json:"version"`
	Wallets  int                  `json:"wallets"`
	Sessions []wallet.SessionInfo `json:"sessions"`
	Started  time.Time            `json:"started"`
}

// WalletResult describes one stored wallet.
type WalletResult struct {
	Name            string    `json:"name"`
	Dialect         string    `json:"dialect"`
	WormholeChainID uint32    `json:"wormhole_chain_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Unlocked        bool      `json:"unlocked"`
}

// LockResult is returned by wallet_lock.
type LockResult struct {
	Locked bool `json:"locked"`
}

// AccountResult is returned by key_derive and wormhole_derive.
type AccountResult struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key,omitempty"`
}

// SignResult is returned by key_sign.
type SignResult struct {
	Path      string `json:"path"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// VerifyResult is returned by key_verify.
type VerifyResult struct {
	Valid   bool   `json:"valid"`
	Address string `json:"address,omitempty"`
}

// PathResult is returned by path_parse.
type PathResult struct {
	Path     string   `json:"path"`
	Dialect  string   `json:"dialect"`
	Wormhole bool     `json:"wormhole"`
	Depth    int      `json:"depth"`
	Indices  []uint32 `json:"indices"`
}
