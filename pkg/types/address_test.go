package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}

	nonZero := Address{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero Address should not be zero")
	}
}

func TestAddress_String(t *testing.T) {
	var a Address
	if s := a.String(); !strings.HasPrefix(s, KeyHRP+"1") {
		t.Errorf("String() should start with %q, got %s", KeyHRP+"1", s)
	}

	a[0] = 0xab
	a[31] = 0xcd
	if s := a.Encode(WormholeHRP); !strings.HasPrefix(s, WormholeHRP+"1") {
		t.Errorf("Encode(%q) should start with %q, got %s", WormholeHRP, WormholeHRP+"1", s)
	}
}

func TestAddress_Bech32_Roundtrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i * 7)
	}

	for _, hrp := range []string{KeyHRP, WormholeHRP} {
		s := a.Encode(hrp)
		parsed, err := ParseAddress(s)
		if err != nil {
			t.Fatalf("ParseAddress(%q): %v", s, err)
		}
		if parsed != a {
			t.Errorf("roundtrip mismatch for %s: got %x, want %x", hrp, parsed, a)
		}
	}
}

func TestAddress_Hex(t *testing.T) {
	a := Address{0xab, 0xcd}
	h := a.Hex()
	if len(h) != 64 {
		t.Errorf("Hex() length = %d, want 64", len(h))
	}
	if !strings.HasPrefix(h, "abcd") {
		t.Errorf("Hex() should start with 'abcd', got %s", h[:4])
	}
}

func TestAddress_Bytes(t *testing.T) {
	a := Address{0x01, 0x02, 0x03}
	b := a.Bytes()

	if len(b) != AddressSize {
		t.Errorf("Bytes() length = %d, want %d", len(b), AddressSize)
	}

	b[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("Bytes() should return a copy, not a reference")
	}
}

func TestParseAddress(t *testing.T) {
	var a Address
	a[0] = 0x42
	wrongHRP, err := bech32.EncodeFromBase256("xyz", a[:])
	if err != nil {
		t.Fatalf("EncodeFromBase256() error: %v", err)
	}
	short, err := bech32.EncodeFromBase256(KeyHRP, a[:20])
	if err != nil {
		t.Fatalf("EncodeFromBase256() error: %v", err)
	}
	valid := a.String()
	last := byte('q')
	if valid[len(valid)-1] == 'q' {
		last = 'p'
	}
	flipped := valid[:len(valid)-1] + string(last)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bech32 key", a.String(), false},
		{"bech32 wormhole", a.Encode(WormholeHRP), false},
		{"raw hex", a.Hex(), false},
		{"0x hex", "0x" + a.Hex(), true},
		{"empty", "", true},
		{"unknown prefix", wrongHRP, true},
		{"short payload", short, true},
		{"garbage", "not-an-address", true},
		{"bad checksum", flipped, true},
		{"upper case", strings.ToUpper(valid), false},
		{"mixed case", strings.ToUpper(valid[:5]) + valid[5:], true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAddress(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q) error: %v", tt.input, err)
			}
			if got != a {
				t.Errorf("ParseAddress(%q) = %x, want %x", tt.input, got, a)
			}
		})
	}
}

func TestHexToAddress(t *testing.T) {
	if _, err := HexToAddress(strings.Repeat("ab", AddressSize)); err != nil {
		t.Errorf("HexToAddress() error: %v", err)
	}
	if _, err := HexToAddress("0x" + strings.Repeat("ab", AddressSize)); err != nil {
		t.Errorf("HexToAddress() with 0x prefix error: %v", err)
	}
	if _, err := HexToAddress(strings.Repeat("ab", 20)); err == nil {
		t.Error("HexToAddress() should reject 20-byte input")
	}
	if _, err := HexToAddress(strings.Repeat("zz", AddressSize)); err == nil {
		t.Error("HexToAddress() should reject non-hex input")
	}
}

func TestAddress_JSON_RoundTrip(t *testing.T) {
	a := Address{0x11, 0x22, 0x33}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), KeyHRP+"1") {
		t.Errorf("JSON = %s, want bech32 string", data)
	}

	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != a {
		t.Errorf("JSON roundtrip = %x, want %x", got, a)
	}

	var empty Address
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil {
		t.Fatalf("Unmarshal(\"\") error: %v", err)
	}
	if !empty.IsZero() {
		t.Error("empty JSON string should decode to the zero address")
	}
}
