package hdwallet

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePath_Plain(t *testing.T) {
	s := PlainScheme()
	tests := []struct {
		path     string
		wormhole bool
		indices  []uint32
	}{
		{"", false, nil},
		{"0", false, []uint32{0}},
		{"0/1/2", false, []uint32{0, 1, 2}},
		{"w/0/1/2", true, []uint32{0, 1, 2}},
		{"2147483647", false, []uint32{2147483647}},
		{"w/7", true, []uint32{7}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := s.ParsePath(tt.path)
			if err != nil {
				t.Fatalf("ParsePath(%q) error: %v", tt.path, err)
			}
			if p.Wormhole != tt.wormhole {
				t.Errorf("Wormhole = %v, want %v", p.Wormhole, tt.wormhole)
			}
			if len(p.Indices) != len(tt.indices) || (len(tt.indices) > 0 && !reflect.DeepEqual(p.Indices, tt.indices)) {
				t.Errorf("Indices = %v, want %v", p.Indices, tt.indices)
			}
			if got := p.String(); got != tt.path {
				t.Errorf("String() = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestParsePath_PlainErrors(t *testing.T) {
	s := PlainScheme()
	tests := []struct {
		path string
		want error
	}{
		{"2147483648", ErrPathIndexOutOfRange},
		{"0/4294967295", ErrPathIndexOutOfRange},
		{"0/99999999999999999999", ErrPathIndexOutOfRange},
		{"w", ErrInvalidWormholePath},
		{"w/", ErrInvalidWormholePath},
		{"0/x/2", ErrPathSyntax},
		{"0//2", ErrPathSyntax},
		{"/0", ErrPathSyntax},
		{"0/", ErrPathSyntax},
		{"-1", ErrPathSyntax},
		{"0'", ErrPathSyntax},
		{"m/0", ErrPathSyntax},
		{"x/0", ErrPathSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := s.ParsePath(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParsePath(%q) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestParsePath_BIP44(t *testing.T) {
	s := BIP44Scheme()
	tests := []struct {
		path     string
		wormhole bool
		indices  []uint32
	}{
		{"m", false, nil},
		{"m/44'/189189'/0'/0'/0'", false, []uint32{44, 189189, 0, 0, 0}},
		{"m/44'/189189189'/0'/0'/0'", true, []uint32{44, 189189189, 0, 0, 0}},
		{"m/189189189'", false, []uint32{189189189}},
		{"m/0'/1'/2'", false, []uint32{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := s.ParsePath(tt.path)
			if err != nil {
				t.Fatalf("ParsePath(%q) error: %v", tt.path, err)
			}
			if p.Dialect != DialectBIP44 {
				t.Errorf("Dialect = %s, want bip44", p.Dialect)
			}
			if p.Wormhole != tt.wormhole {
				t.Errorf("Wormhole = %v, want %v", p.Wormhole, tt.wormhole)
			}
			if len(p.Indices) != len(tt.indices) || (len(tt.indices) > 0 && !reflect.DeepEqual(p.Indices, tt.indices)) {
				t.Errorf("Indices = %v, want %v", p.Indices, tt.indices)
			}
			if got := p.String(); got != tt.path {
				t.Errorf("String() = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestParsePath_BIP44Errors(t *testing.T) {
	s := BIP44Scheme()
	tests := []struct {
		path string
		want error
	}{
		{"m/44'/189189'/0", ErrPathNotHardened},
		{"m/44/189189'/0'", ErrPathNotHardened},
		{"m/2147483648'", ErrPathIndexOutOfRange},
		{"44'/0'", ErrPathSyntax},
		{"M/44'", ErrPathSyntax},
		{"m/", ErrPathSyntax},
		{"m/a'", ErrPathSyntax},
		{"m/44''", ErrPathSyntax},
		{"m/44h", ErrPathSyntax},
		{"0/1/2", ErrPathSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := s.ParsePath(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParsePath(%q) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestParsePath_EmptyIsRoot(t *testing.T) {
	for _, s := range []Scheme{PlainScheme(), BIP44Scheme()} {
		p, err := s.ParsePath("")
		if err != nil {
			t.Fatalf("%s ParsePath(\"\") error: %v", s.Dialect, err)
		}
		if !p.IsRoot() || p.Wormhole {
			t.Errorf("%s ParsePath(\"\") = %+v, want non-wormhole root", s.Dialect, p)
		}
	}
}

func TestScheme_CustomWormholeRule(t *testing.T) {
	plain := Scheme{Dialect: DialectPlain, WormholeMarker: "hole"}
	p, err := plain.ParsePath("hole/3")
	if err != nil {
		t.Fatalf("ParsePath() error: %v", err)
	}
	if !p.Wormhole || p.String() != "hole/3" {
		t.Errorf("got %+v (%s), want wormhole hole/3", p, p)
	}
	if _, err := plain.ParsePath("w/3"); !errors.Is(err, ErrPathSyntax) {
		t.Errorf("default marker under custom scheme: error = %v, want ErrPathSyntax", err)
	}

	bip := BIP44Scheme()
	bip.WormholeChainID = 7
	bip.WormholePosition = 2
	p, err = bip.ParsePath("m/44'/189189'/7'")
	if err != nil {
		t.Fatalf("ParsePath() error: %v", err)
	}
	if !p.Wormhole {
		t.Error("chain ID at configured position should select the wormhole branch")
	}
}

func TestDerivationPath_Child(t *testing.T) {
	p, err := NewPath(true, 0, 1)
	if err != nil {
		t.Fatalf("NewPath() error: %v", err)
	}
	c, err := p.Child(2)
	if err != nil {
		t.Fatalf("Child() error: %v", err)
	}
	if c.String() != "w/0/1/2" {
		t.Errorf("Child().String() = %q, want w/0/1/2", c.String())
	}
	if p.Depth() != 2 {
		t.Errorf("parent mutated: depth = %d, want 2", p.Depth())
	}
	if _, err := p.Child(HardenedOffset); !errors.Is(err, ErrPathIndexOutOfRange) {
		t.Errorf("Child(HardenedOffset) error = %v, want ErrPathIndexOutOfRange", err)
	}
}

func TestNewPath_OutOfRange(t *testing.T) {
	if _, err := NewPath(false, 0, HardenedOffset+5); !errors.Is(err, ErrPathIndexOutOfRange) {
		t.Errorf("NewPath() error = %v, want ErrPathIndexOutOfRange", err)
	}
}

func TestScheme_AccountPath(t *testing.T) {
	tests := []struct {
		scheme   Scheme
		wormhole bool
		want     string
	}{
		{PlainScheme(), false, "3/0/5"},
		{PlainScheme(), true, "w/3/0/5"},
		{BIP44Scheme(), false, "m/44'/189189'/3'/0'/5'"},
		{BIP44Scheme(), true, "m/44'/189189189'/3'/0'/5'"},
	}
	for _, tt := range tests {
		p, err := tt.scheme.AccountPath(3, 0, 5, tt.wormhole)
		if err != nil {
			t.Fatalf("AccountPath() error: %v", err)
		}
		if p.String() != tt.want {
			t.Errorf("AccountPath() = %q, want %q", p.String(), tt.want)
		}
		reparsed, err := tt.scheme.ParsePath(p.String())
		if err != nil {
			t.Fatalf("ParsePath(%q) error: %v", p.String(), err)
		}
		if reparsed.Wormhole != tt.wormhole {
			t.Errorf("%q reparsed Wormhole = %v, want %v", p.String(), reparsed.Wormhole, tt.wormhole)
		}
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"plain", DialectPlain, false},
		{"", DialectPlain, false},
		{"BIP44", DialectBIP44, false},
		{"bip32", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDialect(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
