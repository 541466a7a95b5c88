// Package mahjong is the deterministic rule engine: a purely functional
// state transformer over frozen Player/Round/Game records. No type in this
// package is ever mutated in place; every update returns a new value. That
// contract is load-bearing for replay determinism (see turn.go, state.go).
package mahjong

// TileID identifies one of the 136 physical tiles, 0..135.
type TileID int

// TileType is the 34-class equivalence of a tile (identity stripped).
type TileType int

const (
	Man1 TileType = iota
	Man2
	Man3
	Man4
	Man5
	Man6
	Man7
	Man8
	Man9
	Pin1
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
	Pin8
	Pin9
	Sou1
	Sou2
	Sou3
	Sou4
	Sou5
	Sou6
	Sou7
	Sou8
	Sou9
	East
	South
	West
	North
	White
	Green
	Red
)

const NumTileTypes = 34
const NumTiles = 136

// To34 converts a 136-id to its 34-class type. Integer division by 4, per
// spec.md §3/§4.2.
func (t TileID) To34() TileType { return TileType(int(t) / 4) }

// CopyIndex returns which of the four physical copies this id is (0..3).
// For five-tiles, copy index 0 is the red five (akadora) by convention of
// the deal (see wall.go's deck construction).
func (t TileID) CopyIndex() int { return int(t) % 4 }

// IsRedFive reports whether this tile id is the red-five copy of a 5 tile.
func (t TileID) IsRedFive() bool {
	tt := t.To34()
	return t.CopyIndex() == 0 && (tt == Man5 || tt == Pin5 || tt == Sou5)
}

func (t TileType) IsNumbered() bool { return t >= Man1 && t <= Sou9 }
func (t TileType) IsHonor() bool    { return t >= East && t <= Red }
func (t TileType) IsWind() bool     { return t >= East && t <= North }
func (t TileType) IsDragon() bool   { return t >= White && t <= Red }

// Suit returns 0=man, 1=pin, 2=sou, -1=honor.
func (t TileType) Suit() int {
	switch {
	case t >= Man1 && t <= Man9:
		return 0
	case t >= Pin1 && t <= Pin9:
		return 1
	case t >= Sou1 && t <= Sou9:
		return 2
	default:
		return -1
	}
}

// Number returns the 1..9 rank within its suit, or 0 for honors.
func (t TileType) Number() int {
	if !t.IsNumbered() {
		return 0
	}
	return int(t)%9 + 1
}

// IsTerminal reports a numbered 1 or 9.
func (t TileType) IsTerminal() bool {
	return t.IsNumbered() && (t.Number() == 1 || t.Number() == 9)
}

// IsTerminalOrHonor matches spec.md §4.2's predicate exactly:
// val < 34 ∧ (val % 9 ∈ {0,8}) ∨ val ≥ 27.
func (t TileType) IsTerminalOrHonor() bool {
	v := int(t)
	return (v < 27 && (v%9 == 0 || v%9 == 8)) || v >= 27
}

// Next returns the dora-successor type for a given indicator, wrapping
// within its suit (9 -> 1) or within winds/dragons separately.
func (t TileType) Next() TileType {
	switch {
	case t.IsNumbered():
		suitBase := TileType((int(t) / 9) * 9)
		return suitBase + TileType((int(t)+1)%9)
	case t.IsWind():
		return East + TileType((int(t-East)+1)%4)
	case t.IsDragon():
		return White + TileType((int(t-White)+1)%3)
	default:
		return t
	}
}

// CountArray34 folds a multiset of 136-ids down into a 34-length count
// array, the representation every scoring/shanten routine consumes.
func CountArray34(tiles []TileID) [NumTileTypes]uint8 {
	var out [NumTileTypes]uint8
	for _, t := range tiles {
		out[int(t.To34())]++
	}
	return out
}

// SameType reports whether two 136-ids share a 34-type — the notion of
// "matching tile" used throughout meld legality checks, which deliberately
// ignore copy identity (so a red five and a plain five match for pon/kan).
func SameType(a, b TileID) bool { return a.To34() == b.To34() }
