package mahjong

// Hand34 is a 34-slot tile-type count array, the representation every
// shanten/decomposition routine below works over. Grounded on the teacher's
// framework/game/engines/mahjong/searcher.go Hand34 + dfsNormalShanten, the
// only place in the retrieved corpus that actually implements hand-shape
// search (the runtime copy of the engine never got this far — see
// DESIGN.md). Extended here to also recover the winning decomposition
// itself, which searcher.go's boolean IsAgariAll never needed.
type Hand34 [NumTileTypes]uint8

func HandToCounts(tiles []TileID) Hand34 {
	var h Hand34
	for _, t := range tiles {
		h[int(t.To34())]++
	}
	return h
}

func isNumberType(i int) bool { return i >= int(Man1) && i <= int(Sou9) }

func suitOfIdx(i int) int {
	switch {
	case i >= int(Man1) && i <= int(Man9):
		return 0
	case i >= int(Pin1) && i <= int(Pin9):
		return 1
	case i >= int(Sou1) && i <= int(Sou9):
		return 2
	default:
		return -1
	}
}

var kokushiTypes = [13]int{
	int(Man1), int(Man9), int(Pin1), int(Pin9), int(Sou1), int(Sou9),
	int(East), int(South), int(West), int(North), int(White), int(Green), int(Red),
}

// Group is one structural component of a winning hand: a sequence (three
// consecutive number tiles starting at Type), a triplet/quad, or the pair.
type GroupKind int

const (
	GroupSequence GroupKind = iota
	GroupTriplet
	GroupPair
)

type Group struct {
	Kind GroupKind
	Type TileType // sequence: lowest tile type; triplet/pair: the tile type
}

// Decomposition is one way to split a 13/14-tile hand into 4 groups + pair
// (the "standard" shape), used by fu.go/yaku.go to evaluate pinfu, yakuhai
// pair fu, sequence-vs-triplet fu, and wait shape.
type Decomposition struct {
	Groups []Group // always length 3 here (the concealed groups only; open melds are separate)
	Pair   TileType
}

// IsAgariKokushi reports thirteen-orphans completion.
func IsAgariKokushi(h Hand34) bool {
	unique := 0
	pair := false
	for _, idx := range kokushiTypes {
		if h[idx] > 0 {
			unique++
			if h[idx] >= 2 {
				pair = true
			}
		}
	}
	return unique == 13 && pair
}

// IsAgariChiitoi reports seven-unique-pairs completion.
func IsAgariChiitoi(h Hand34) bool {
	pairs, unique := 0, 0
	for i := 0; i < NumTileTypes; i++ {
		if h[i] > 0 {
			unique++
		}
		pairs += int(h[i] / 2)
	}
	return pairs >= 7 && unique >= 7
}

// IsAgariStandard reports whether h (concealed tiles only) plus fixedMelds
// already-called melds completes the 4-melds+pair shape.
func IsAgariStandard(h Hand34, fixedMelds int) bool {
	need := 4 - fixedMelds
	if need < 0 {
		return false
	}
	for j := 0; j < NumTileTypes; j++ {
		if h[j] < 2 {
			continue
		}
		work := h
		work[j] -= 2
		if canFormGroups(&work, need, nil) {
			return true
		}
	}
	return false
}

// IsAgariAny reports completion under any of the three structural forms.
// fixedMelds > 0 (an open hand) excludes chiitoi/kokushi, which require a
// fully concealed hand by definition.
func IsAgariAny(h Hand34, fixedMelds int) bool {
	if fixedMelds > 0 {
		return IsAgariStandard(h, fixedMelds)
	}
	return IsAgariStandard(h, 0) || IsAgariChiitoi(h) || IsAgariKokushi(h)
}

func canFormGroups(h *Hand34, need int, out *[]Group) bool {
	if need == 0 {
		for i := 0; i < NumTileTypes; i++ {
			if h[i] != 0 {
				return false
			}
		}
		return true
	}
	i := -1
	for k := 0; k < NumTileTypes; k++ {
		if h[k] > 0 {
			i = k
			break
		}
	}
	if i == -1 {
		return false
	}
	if h[i] >= 3 {
		h[i] -= 3
		if out != nil {
			*out = append(*out, Group{Kind: GroupTriplet, Type: TileType(i)})
		}
		if canFormGroups(h, need-1, out) {
			h[i] += 3
			return true
		}
		if out != nil {
			*out = (*out)[:len(*out)-1]
		}
		h[i] += 3
	}
	if isNumberType(i) && i+2 < NumTileTypes && suitOfIdx(i) == suitOfIdx(i+1) && suitOfIdx(i) == suitOfIdx(i+2) {
		if h[i] > 0 && h[i+1] > 0 && h[i+2] > 0 {
			h[i]--
			h[i+1]--
			h[i+2]--
			if out != nil {
				*out = append(*out, Group{Kind: GroupSequence, Type: TileType(i)})
			}
			if canFormGroups(h, need-1, out) {
				h[i]++
				h[i+1]++
				h[i+2]++
				return true
			}
			if out != nil {
				*out = (*out)[:len(*out)-1]
			}
			h[i]++
			h[i+1]++
			h[i+2]++
		}
	}
	return false
}

// EnumerateStandardDecompositions returns every way to split a complete
// 13-or-14-tile concealed hand into (4-fixedMelds) groups plus a pair.
// Multiple decompositions commonly exist (e.g. an iipeiko-shaped hand can
// also be read as two separate runs); fu.go/yaku.go evaluate every one and
// keep the highest-scoring reading, the conventional approach this corpus's
// searcher.go stops short of (it only needed a boolean).
func EnumerateStandardDecompositions(h Hand34, fixedMelds int) []Decomposition {
	need := 4 - fixedMelds
	if need < 0 {
		return nil
	}
	var results []Decomposition
	seen := make(map[string]bool)
	for j := 0; j < NumTileTypes; j++ {
		if h[j] < 2 {
			continue
		}
		work := h
		work[j] -= 2
		var groups []Group
		if canFormGroups(&work, need, &groups) {
			d := Decomposition{Groups: append([]Group(nil), groups...), Pair: TileType(j)}
			key := decompKey(d)
			if !seen[key] {
				seen[key] = true
				results = append(results, d)
			}
		}
	}
	return results
}

func decompKey(d Decomposition) string {
	b := make([]byte, 0, 8+len(d.Groups)*2)
	b = append(b, byte(d.Pair))
	for _, g := range d.Groups {
		b = append(b, byte(g.Kind), byte(g.Type))
	}
	return string(b)
}

// WaitingTypes returns every 34-type that, if added to hand (13-tile
// concealed portion) given fixedMelds already called, would complete a
// winning hand. This is the "tenpai waits" set furiten.go and yaku.go both
// need.
func WaitingTypes(hand13 Hand34, fixedMelds int) []TileType {
	var waits []TileType
	for tt := 0; tt < NumTileTypes; tt++ {
		if hand13[tt] >= 4 {
			continue
		}
		work := hand13
		work[tt]++
		if IsAgariAny(work, fixedMelds) {
			waits = append(waits, TileType(tt))
		}
	}
	return waits
}
