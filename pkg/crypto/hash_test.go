package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/hdlattice/pkg/types"
)

func hexToHash(t *testing.T, s string) types.Hash {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	var h types.Hash
	copy(h[:], b)
	return h
}

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			name:  "hello",
			input: []byte("hello"),
			want:  "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			want := hexToHash(t, tt.want)
			if got != want {
				t.Errorf("Hash(%q) = %x, want %x", tt.input, got, want)
			}
		})
	}
}

func TestHash_DifferentInputs(t *testing.T) {
	h1 := Hash([]byte("input A"))
	h2 := Hash([]byte("input B"))
	if h1 == h2 {
		t.Error("different inputs produced the same hash")
	}
}

func TestWormholeHash_Deterministic(t *testing.T) {
	data := []byte("wormhole input")
	if WormholeHash(data) != WormholeHash(data) {
		t.Error("WormholeHash is not deterministic")
	}
}

func TestWormholeHash_SeparatedFromHash(t *testing.T) {
	data := []byte("same bytes")
	if WormholeHash(data) == Hash(data) {
		t.Error("WormholeHash should not equal Hash for the same input")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	pub := []byte("public key bytes")
	addr := AddressFromPubKey(pub)
	h := Hash(pub)
	if addr != types.Address(h) {
		t.Errorf("AddressFromPubKey = %x, want %x", addr, h)
	}
}
