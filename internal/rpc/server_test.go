package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/hdlattice/config"
	klog "github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/internal/storage"
	"github.com/Klingon-tech/hdlattice/internal/wallet"
	"github.com/Klingon-tech/hdlattice/pkg/crypto"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

const testMnemonic = "rocket primary way job input cactus submit menu zoo burger rent impose"

type testEnv struct {
	server   *Server
	url      string
	keystore *wallet.Keystore
	sessions *wallet.Sessions
	lattice  *hdwallet.HDLattice
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	ks, err := wallet.NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	seed, err := hdwallet.SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	params := wallet.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
	if err := ks.Create("main", seed, []byte("pw"), params, hdwallet.PlainScheme()); err != nil {
		t.Fatalf("Create(main) error: %v", err)
	}
	if err := ks.Create("legacy", seed, []byte("pw"), params, hdwallet.BIP44Scheme()); err != nil {
		t.Fatalf("Create(legacy) error: %v", err)
	}

	h, err := hdwallet.FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed() error: %v", err)
	}

	sessions := wallet.NewSessions(ks, time.Minute)
	srv := New("127.0.0.1:0", ks, sessions)
	srv.SetRegistry(wallet.NewRegistry(storage.NewMemory()))
	srv.SetVersion("test")
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		sessions.LockAll()
	})

	return &testEnv{
		server:   srv,
		url:      "http://" + srv.Addr(),
		keystore: ks,
		sessions: sessions,
		lattice:  h,
	}
}

// rpcCall sends a JSON-RPC request and returns the parsed response.
func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// decodeResult re-marshals a generic result into target.
func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func expectCode(t *testing.T, resp Response, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
}

func (env *testEnv) unlock(t *testing.T, name string) {
	t.Helper()
	resp := rpcCall(t, env.url, "wallet_unlock", UnlockParam{Wallet: name, Password: "pw"})
	var info wallet.SessionInfo
	decodeResult(t, resp, &info)
	if info.Wallet != name {
		t.Fatalf("unlocked %q, want %q", info.Wallet, name)
	}
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_SignerStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	var st StatusResult
	decodeResult(t, rpcCall(t, env.url, "signer_status", nil), &st)
	if st.Version != "test" {
		t.Errorf("version = %q, want test", st.Version)
	}
	if st.Wallets != 2 {
		t.Errorf("wallets = %d, want 2", st.Wallets)
	}
	if len(st.Sessions) != 1 || st.Sessions[0].Wallet != "main" {
		t.Errorf("sessions = %+v", st.Sessions)
	}
}

func TestRPC_WalletList(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "legacy")

	var list []WalletResult
	decodeResult(t, rpcCall(t, env.url, "wallet_list", nil), &list)
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Name != "legacy" || list[0].Dialect != "bip44" || !list[0].Unlocked {
		t.Errorf("list[0] = %+v", list[0])
	}
	if list[0].WormholeChainID != hdwallet.CoinTypeWormhole {
		t.Errorf("wormhole chain id = %d, want %d", list[0].WormholeChainID, hdwallet.CoinTypeWormhole)
	}
	if list[1].Name != "main" || list[1].Dialect != "plain" || list[1].Unlocked {
		t.Errorf("list[1] = %+v", list[1])
	}
}

func TestRPC_WalletUnlock_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params interface{}
		code   int
	}{
		{"wrong password", UnlockParam{Wallet: "main", Password: "nope"}, CodeUnauthorized},
		{"unknown wallet", UnlockParam{Wallet: "ghost", Password: "pw"}, CodeNotFound},
		{"bad name", UnlockParam{Wallet: "../main", Password: "pw"}, CodeInvalidParams},
		{"empty password", UnlockParam{Wallet: "main"}, CodeInvalidParams},
		{"no params", nil, CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, rpcCall(t, env.url, "wallet_unlock", tt.params), tt.code)
		})
	}
}

func TestRPC_KeyDerive_Locked(t *testing.T) {
	env := setupTestEnv(t)
	resp := rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "main", Path: "0/1/2"})
	expectCode(t, resp, CodeWalletLocked)
}

func TestRPC_KeyDerive(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	kp, err := env.lattice.GenerateDerivedKeys("0/1/2")
	if err != nil {
		t.Fatalf("GenerateDerivedKeys() error: %v", err)
	}

	var got AccountResult
	decodeResult(t, rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "main", Path: "0/1/2", Name: "savings"}), &got)
	if got.Address != kp.Address().String() {
		t.Errorf("address = %s, want %s", got.Address, kp.Address())
	}
	if got.PublicKey != hex.EncodeToString(kp.PublicKeyBytes()) {
		t.Error("public key mismatch")
	}
	if got.Kind != string(wallet.KindSigning) {
		t.Errorf("kind = %q, want signing", got.Kind)
	}

	var entries []wallet.AccountEntry
	decodeResult(t, rpcCall(t, env.url, "accounts_list", WalletParam{Wallet: "main"}), &entries)
	if len(entries) != 1 || entries[0].Path != "0/1/2" || entries[0].Name != "savings" {
		t.Errorf("accounts = %+v", entries)
	}
}

func TestRPC_KeyDerive_BIP44(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "legacy")

	var plain, bip AccountResult
	env.unlock(t, "main")
	decodeResult(t, rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "main", Path: "0/1/2"}), &plain)
	decodeResult(t, rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "legacy", Path: "m/0'/1'/2'"}), &bip)
	if plain.Address != bip.Address {
		t.Errorf("plain %s and bip44 %s differ for the same indices", plain.Address, bip.Address)
	}

	resp := rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "legacy", Path: "m/44'/189189'/0"})
	expectCode(t, resp, CodeInvalidParams)
	if !strings.Contains(resp.Error.Message, "hardened") {
		t.Errorf("message = %q, want hardening complaint", resp.Error.Message)
	}
}

func TestRPC_KeyDerive_BadPaths(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	for _, path := range []string{"0/x", "w", "0//1", "2147483648"} {
		t.Run(path, func(t *testing.T) {
			resp := rpcCall(t, env.url, "key_derive", DeriveParam{Wallet: "main", Path: path})
			expectCode(t, resp, CodeInvalidParams)
		})
	}
}

func TestRPC_WormholeDerive(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	want, err := env.lattice.GenerateWormholePairFromPath("w/0/1/2")
	if err != nil {
		t.Fatalf("GenerateWormholePairFromPath() error: %v", err)
	}
	var got AccountResult
	decodeResult(t, rpcCall(t, env.url, "wormhole_derive", DeriveParam{Wallet: "main", Path: "w/0/1/2"}), &got)
	if got.Address != want.AddressString() {
		t.Errorf("address = %s, want %s", got.Address, want.AddressString())
	}

	def, err := env.lattice.GenerateWormholePair()
	if err != nil {
		t.Fatalf("GenerateWormholePair() error: %v", err)
	}
	var gotDef AccountResult
	decodeResult(t, rpcCall(t, env.url, "wormhole_derive", DeriveParam{Wallet: "main"}), &gotDef)
	if gotDef.Address != def.AddressString() {
		t.Errorf("default address = %s, want %s", gotDef.Address, def.AddressString())
	}

	resp := rpcCall(t, env.url, "wormhole_derive", DeriveParam{Wallet: "main", Path: "0/1/2"})
	expectCode(t, resp, CodeInvalidParams)
}

func TestRPC_WormholeVerify(t *testing.T) {
	env := setupTestEnv(t)

	pair, err := env.lattice.GenerateWormholePairFromPath("w/3")
	if err != nil {
		t.Fatalf("GenerateWormholePairFromPath() error: %v", err)
	}

	var vr VerifyResult
	decodeResult(t, rpcCall(t, env.url, "wormhole_verify", RevealParam{
		Address:   pair.AddressString(),
		FirstHash: pair.FirstHash.String(),
	}), &vr)
	if !vr.Valid {
		t.Error("wormhole_verify rejected a genuine reveal")
	}

	decodeResult(t, rpcCall(t, env.url, "wormhole_verify", RevealParam{
		Address:   pair.AddressString(),
		FirstHash: pair.Secret.String(),
	}), &vr)
	if vr.Valid {
		t.Error("wormhole_verify accepted the secret as a reveal")
	}

	expectCode(t, rpcCall(t, env.url, "wormhole_verify", RevealParam{Address: "hdw1nope", FirstHash: pair.FirstHash.String()}), CodeInvalidParams)
}

func TestRPC_SignVerify(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	var sr SignResult
	decodeResult(t, rpcCall(t, env.url, "key_sign", SignParam{
		Wallet:  "main",
		Path:    "0/1/2",
		Message: "hello lattice",
		Context: "test",
	}), &sr)

	pub, _ := hex.DecodeString(sr.PublicKey)
	sig, _ := hex.DecodeString(sr.Signature)
	if len(sig) != crypto.SignatureSize {
		t.Fatalf("signature len = %d, want %d", len(sig), crypto.SignatureSize)
	}
	if !crypto.VerifySignature(pub, []byte("hello lattice"), []byte("test"), sig) {
		t.Fatal("signature does not verify locally")
	}

	var vr VerifyResult
	decodeResult(t, rpcCall(t, env.url, "key_verify", VerifyParam{
		PublicKey: sr.PublicKey,
		Signature: sr.Signature,
		Message:   "hello lattice",
		Context:   "test",
	}), &vr)
	if !vr.Valid || vr.Address != sr.Address {
		t.Errorf("verify = %+v, want valid from %s", vr, sr.Address)
	}

	decodeResult(t, rpcCall(t, env.url, "key_verify", VerifyParam{
		PublicKey: sr.PublicKey,
		Signature: sr.Signature,
		Message:   "hello lattice",
		Context:   "other",
	}), &vr)
	if vr.Valid {
		t.Error("signature verified under a different context")
	}
}

func TestRPC_SignHexMessage(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	var sr SignResult
	decodeResult(t, rpcCall(t, env.url, "key_sign", SignParam{Wallet: "main", Path: "7", MessageHex: "00ff10"}), &sr)
	pub, _ := hex.DecodeString(sr.PublicKey)
	sig, _ := hex.DecodeString(sr.Signature)
	if !crypto.VerifySignature(pub, []byte{0x00, 0xff, 0x10}, nil, sig) {
		t.Error("hex message signature does not verify")
	}

	resp := rpcCall(t, env.url, "key_sign", SignParam{Wallet: "main", Path: "7", MessageHex: "zz"})
	expectCode(t, resp, CodeInvalidParams)
}

func TestRPC_WalletLock(t *testing.T) {
	env := setupTestEnv(t)
	env.unlock(t, "main")

	var lr LockResult
	decodeResult(t, rpcCall(t, env.url, "wallet_lock", WalletParam{Wallet: "main"}), &lr)
	if !lr.Locked {
		t.Error("first lock reported no session")
	}
	decodeResult(t, rpcCall(t, env.url, "wallet_lock", WalletParam{Wallet: "main"}), &lr)
	if lr.Locked {
		t.Error("second lock reported a session")
	}

	resp := rpcCall(t, env.url, "key_sign", SignParam{Wallet: "main", Path: "0", Message: "x"})
	expectCode(t, resp, CodeWalletLocked)
}

func TestRPC_AccountsList_UnknownWallet(t *testing.T) {
	env := setupTestEnv(t)
	expectCode(t, rpcCall(t, env.url, "accounts_list", WalletParam{Wallet: "ghost"}), CodeNotFound)
}

func TestRPC_PathParse(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		params   PathParam
		wantPath string
		wormhole bool
		depth    int
	}{
		{PathParam{Path: ""}, "", false, 0},
		{PathParam{Path: "0/1/2"}, "0/1/2", false, 3},
		{PathParam{Path: "w/0/1/2"}, "w/0/1/2", true, 3},
		{PathParam{Path: "m/44'/189189'/0'/0'/0'", Dialect: "bip44"}, "m/44'/189189'/0'/0'/0'", false, 5},
		{PathParam{Path: "m/44'/189189189'/0'/0'/0'", Dialect: "bip44"}, "m/44'/189189189'/0'/0'/0'", true, 5},
		{PathParam{Path: "m/44'/7'/0'", Dialect: "bip44", WormholeChainID: 7}, "m/44'/7'/0'", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.wantPath, func(t *testing.T) {
			var got PathResult
			decodeResult(t, rpcCall(t, env.url, "path_parse", tt.params), &got)
			if got.Path != tt.wantPath || got.Wormhole != tt.wormhole || got.Depth != tt.depth {
				t.Errorf("path_parse(%q) = %+v", tt.params.Path, got)
			}
		})
	}

	expectCode(t, rpcCall(t, env.url, "path_parse", PathParam{Path: "m/1", Dialect: "bip44"}), CodeInvalidParams)
	expectCode(t, rpcCall(t, env.url, "path_parse", PathParam{Path: "1", Dialect: "slip10"}), CodeInvalidParams)
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)
	expectCode(t, rpcCall(t, env.url, "chain_getInfo", nil), CodeMethodNotFound)
}

func TestRPC_InvalidRequests(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	var r Response
	json.NewDecoder(resp.Body).Decode(&r)
	resp.Body.Close()
	if r.Error == nil || r.Error.Code != CodeInvalidRequest {
		t.Errorf("GET error = %+v, want invalid request", r.Error)
	}

	resp, err = http.Post(env.url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	r = Response{}
	json.NewDecoder(resp.Body).Decode(&r)
	resp.Body.Close()
	if r.Error == nil || r.Error.Code != CodeParseError {
		t.Errorf("bad JSON error = %+v, want parse error", r.Error)
	}

	resp, err = http.Post(env.url, "application/json", strings.NewReader(`{"jsonrpc":"1.0","method":"wallet_list","id":1}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	r = Response{}
	json.NewDecoder(resp.Body).Decode(&r)
	resp.Body.Close()
	if r.Error == nil || r.Error.Code != CodeInvalidRequest {
		t.Errorf("jsonrpc 1.0 error = %+v, want invalid request", r.Error)
	}
}

func TestRPC_IPFilter(t *testing.T) {
	klog.Init("error", false, "")
	ks, err := wallet.NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	srv := New("127.0.0.1:0", ks, wallet.NewSessions(ks, time.Minute), config.RPCConfig{AllowedIPs: []string{"10.0.0.0/8"}})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Post("http://"+srv.Addr(), "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"wallet_list","id":1}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	nets := parseAllowedIPs([]string{"127.0.0.1", "10.0.0.0/8", "::1", "bogus"})
	if len(nets) != 3 {
		t.Fatalf("len = %d, want 3", len(nets))
	}
	if ones, bits := nets[0].Mask.Size(); ones != 32 || bits != 32 {
		t.Errorf("single IPv4 mask = /%d of %d", ones, bits)
	}
	if ones, bits := nets[2].Mask.Size(); ones != 128 || bits != 128 {
		t.Errorf("single IPv6 mask = /%d of %d", ones, bits)
	}
}
