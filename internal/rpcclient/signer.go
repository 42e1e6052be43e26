package rpcclient

import (
	"github.com/Klingon-tech/hdlattice/internal/rpc"
	"github.com/Klingon-tech/hdlattice/internal/wallet"
)

// Status returns the signer's version, wallet count and open sessions.
func (c *Client) Status() (*rpc.StatusResult, error) {
	var r rpc.StatusResult
	if err := c.Call("signer_status", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Unlock opens a session for the named wallet.
func (c *Client) Unlock(name, password string) (*wallet.SessionInfo, error) {
	var r wallet.SessionInfo
	if err := c.Call("wallet_unlock", rpc.UnlockParam{Wallet: name, Password: password}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Lock closes the named wallet's session and reports whether one was open.
func (c *Client) Lock(name string) (bool, error) {
	var r rpc.LockResult
	if err := c.Call("wallet_lock", rpc.WalletParam{Wallet: name}, &r); err != nil {
		return false, err
	}
	return r.Locked, nil
}

// Sign signs message with the key at path of an unlocked wallet.
func (c *Client) Sign(p rpc.SignParam) (*rpc.SignResult, error) {
	var r rpc.SignResult
	if err := c.Call("key_sign", p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
