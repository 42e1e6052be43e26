package hdwallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
)

// HardenedOffset is OR-ed into every index before it enters the keyed hash.
// Raw indices must stay below it.
const HardenedOffset uint32 = bip32.FirstHardenedChild

// BIP-44 layout constants, as raw (unhardened) indices.
// Signing path:  m/44'/189189'/account'/change'/index'
// Wormhole path: m/44'/189189189'/account'/change'/index'
const (
	PurposeBIP44     uint32 = 44
	CoinTypeSigning  uint32 = 189189
	CoinTypeWormhole uint32 = 189189189
)

// DefaultWormholeMarker is the leading plain-dialect segment selecting the wormhole branch.
const DefaultWormholeMarker = "w"

// Dialect selects the path string grammar.
type Dialect int

const (
	// DialectPlain is "0/1/2" with implicit hardening and an optional "w/" marker.
	DialectPlain Dialect = iota
	// DialectBIP44 is "m/44'/189189'/0'" with mandatory "'" on every segment.
	DialectBIP44
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectPlain:
		return "plain"
	case DialectBIP44:
		return "bip44"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect converts a configuration name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return DialectPlain, nil
	case "bip44":
		return DialectBIP44, nil
	default:
		return 0, fmt.Errorf("unknown path dialect %q (want plain or bip44)", s)
	}
}

// Scheme parameterises the path parser: which grammar is accepted and how
// a wormhole path is recognised in it.
type Scheme struct {
	Dialect Dialect

	// WormholeMarker is the leading segment that selects the wormhole
	// branch in the plain dialect.
	WormholeMarker string

	// WormholeChainID selects the wormhole branch in the BIP-44 dialect when
	// it appears (hardened) at WormholePosition, counted from the first
	// segment after "m".
	WormholeChainID  uint32
	WormholePosition int
}

// PlainScheme returns the slash-delimited scheme with a "w/" wormhole marker.
func PlainScheme() Scheme {
	return Scheme{
		Dialect:        DialectPlain,
		WormholeMarker: DefaultWormholeMarker,
	}
}

// BIP44Scheme returns the BIP-44 scheme with the wormhole chain ID in the
// coin-type position.
func BIP44Scheme() Scheme {
	return Scheme{
		Dialect:          DialectBIP44,
		WormholeChainID:  CoinTypeWormhole,
		WormholePosition: 1,
	}
}

// SchemeForDialect returns the default scheme for d.
func SchemeForDialect(d Dialect) Scheme {
	if d == DialectBIP44 {
		return BIP44Scheme()
	}
	return PlainScheme()
}

// DerivationPath is a validated sequence of hardened derivation steps.
// Indices are stored raw; the engine adds HardenedOffset.
type DerivationPath struct {
	Dialect  Dialect
	Wormhole bool
	Indices  []uint32

	marker string
}

// NewPath builds a plain-dialect path from raw indices.
func NewPath(wormhole bool, indices ...uint32) (DerivationPath, error) {
	p := DerivationPath{
		Dialect:  DialectPlain,
		Wormhole: wormhole,
		Indices:  append([]uint32(nil), indices...),
	}
	if err := p.Validate(); err != nil {
		return DerivationPath{}, err
	}
	return p, nil
}

// IsRoot reports whether the path has no segments.
func (p DerivationPath) IsRoot() bool {
	return len(p.Indices) == 0
}

// Depth returns the number of derivation steps.
func (p DerivationPath) Depth() int {
	return len(p.Indices)
}

// Validate checks every index against the hardening offset.
func (p DerivationPath) Validate() error {
	for i, idx := range p.Indices {
		if idx >= HardenedOffset {
			return fmt.Errorf("%w: segment %d is %d", ErrPathIndexOutOfRange, i, idx)
		}
	}
	return nil
}

// Child returns a copy of p extended by one index.
func (p DerivationPath) Child(index uint32) (DerivationPath, error) {
	if index >= HardenedOffset {
		return DerivationPath{}, fmt.Errorf("%w: child index %d", ErrPathIndexOutOfRange, index)
	}
	child := p
	child.Indices = make([]uint32, len(p.Indices), len(p.Indices)+1)
	copy(child.Indices, p.Indices)
	child.Indices = append(child.Indices, index)
	return child, nil
}

// String renders the path in its own dialect.
func (p DerivationPath) String() string {
	var sb strings.Builder
	if p.Dialect == DialectBIP44 {
		sb.WriteString("m")
		for _, idx := range p.Indices {
			sb.WriteByte('/')
			sb.WriteString(strconv.FormatUint(uint64(idx), 10))
			sb.WriteByte('\'')
		}
		return sb.String()
	}

	if p.Wormhole {
		marker := p.marker
		if marker == "" {
			marker = DefaultWormholeMarker
		}
		sb.WriteString(marker)
	}
	for i, idx := range p.Indices {
		if i > 0 || p.Wormhole {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return sb.String()
}

// ParsePath parses a path string in the scheme's dialect. The empty string
// is the root in every dialect. Hardening is enforced here, before any
// derivation work happens.
func (s Scheme) ParsePath(path string) (DerivationPath, error) {
	if path == "" {
		return DerivationPath{Dialect: s.Dialect}, nil
	}
	switch s.Dialect {
	case DialectPlain:
		return s.parsePlain(path)
	case DialectBIP44:
		return s.parseBIP44(path)
	default:
		return DerivationPath{}, fmt.Errorf("%w: unsupported dialect %s", ErrPathSyntax, s.Dialect)
	}
}

func (s Scheme) parsePlain(path string) (DerivationPath, error) {
	rest := path
	wormhole := false
	if m := s.WormholeMarker; m != "" {
		switch {
		case rest == m || rest == m+"/":
			return DerivationPath{}, fmt.Errorf("%w: %q has no segments after the marker", ErrInvalidWormholePath, path)
		case strings.HasPrefix(rest, m+"/"):
			wormhole = true
			rest = rest[len(m)+1:]
		}
	}

	segments := strings.Split(rest, "/")
	indices := make([]uint32, 0, len(segments))
	for i, seg := range segments {
		idx, err := parseIndex(seg)
		if err != nil {
			return DerivationPath{}, fmt.Errorf("segment %d of %q: %w", i, path, err)
		}
		indices = append(indices, idx)
	}

	return DerivationPath{
		Dialect:  DialectPlain,
		Wormhole: wormhole,
		Indices:  indices,
		marker:   s.WormholeMarker,
	}, nil
}

func (s Scheme) parseBIP44(path string) (DerivationPath, error) {
	segments := strings.Split(path, "/")
	if segments[0] != "m" {
		return DerivationPath{}, fmt.Errorf("%w: %q must start with \"m\"", ErrPathSyntax, path)
	}

	indices := make([]uint32, 0, len(segments)-1)
	for i, seg := range segments[1:] {
		raw, hardened := strings.CutSuffix(seg, "'")
		idx, err := parseIndex(raw)
		if err != nil {
			return DerivationPath{}, fmt.Errorf("segment %d of %q: %w", i, path, err)
		}
		if !hardened {
			return DerivationPath{}, fmt.Errorf("%w: segment %d of %q (%s) lacks \"'\"", ErrPathNotHardened, i, path, seg)
		}
		indices = append(indices, idx)
	}

	pos := s.WormholePosition
	wormhole := pos >= 0 && pos < len(indices) && indices[pos] == s.WormholeChainID

	return DerivationPath{
		Dialect:  DialectBIP44,
		Wormhole: wormhole,
		Indices:  indices,
	}, nil
}

// AccountPath builds the conventional account/change/index path. In the
// BIP-44 dialect the purpose and coin type are prepended, the coin type
// being the wormhole chain ID for wormhole paths.
func (s Scheme) AccountPath(account, change, index uint32, wormhole bool) (DerivationPath, error) {
	var p DerivationPath
	switch s.Dialect {
	case DialectBIP44:
		coin := CoinTypeSigning
		if wormhole {
			coin = s.WormholeChainID
		}
		p = DerivationPath{
			Dialect:  DialectBIP44,
			Wormhole: wormhole,
			Indices:  []uint32{PurposeBIP44, coin, account, change, index},
		}
	default:
		p = DerivationPath{
			Dialect:  DialectPlain,
			Wormhole: wormhole,
			Indices:  []uint32{account, change, index},
			marker:   s.WormholeMarker,
		}
	}
	if err := p.Validate(); err != nil {
		return DerivationPath{}, err
	}
	return p, nil
}

// parseIndex parses one unsigned decimal segment below the hardening offset.
func parseIndex(seg string) (uint32, error) {
	if seg == "" {
		return 0, fmt.Errorf("%w: empty segment", ErrPathSyntax)
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, fmt.Errorf("%w: non-integer segment %q", ErrPathSyntax, seg)
		}
	}
	v, err := strconv.ParseUint(seg, 10, 32)
	if err != nil || uint32(v) >= HardenedOffset {
		return 0, fmt.Errorf("%w: %s", ErrPathIndexOutOfRange, seg)
	}
	return uint32(v), nil
}
