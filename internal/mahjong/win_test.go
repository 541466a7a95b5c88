package mahjong

import "testing"

func tilesOfType(tt TileType, n int) []TileID {
	out := make([]TileID, n)
	for i := 0; i < n; i++ {
		out[i] = TileID(int(tt)*4 + i)
	}
	return out
}

func seqTiles(start TileType) []TileID {
	return []TileID{
		TileID(int(start) * 4),
		TileID(int(start+1) * 4),
		TileID(int(start+2) * 4),
	}
}

func TestIsAgariStandardSimpleHand(t *testing.T) {
	var tiles []TileID
	tiles = append(tiles, seqTiles(Man1)...)
	tiles = append(tiles, seqTiles(Man4)...)
	tiles = append(tiles, seqTiles(Pin1)...)
	tiles = append(tiles, seqTiles(Sou1)...)
	tiles = append(tiles, tilesOfType(East, 2)...)

	h := HandToCounts(tiles)
	if !IsAgariStandard(h, 0) {
		t.Fatalf("four sequences + pair should be a complete standard hand")
	}
}

func TestIsAgariChiitoi(t *testing.T) {
	var tiles []TileID
	types := []TileType{Man1, Man9, Pin1, Pin9, Sou1, Sou9, East}
	for _, tt := range types {
		tiles = append(tiles, tilesOfType(tt, 2)...)
	}
	h := HandToCounts(tiles)
	if !IsAgariChiitoi(h) {
		t.Fatalf("seven distinct pairs should be chiitoi-complete")
	}
	if IsAgariStandard(h, 0) {
		t.Fatalf("seven pairs is never a valid standard-shape hand")
	}
}

func TestIsAgariKokushi(t *testing.T) {
	var tiles []TileID
	for _, idx := range kokushiTypes {
		tiles = append(tiles, TileID(idx*4))
	}
	tiles = append(tiles, TileID(int(Man1)*4+1)) // second copy of one terminal for the pair
	h := HandToCounts(tiles)
	if !IsAgariKokushi(h) {
		t.Fatalf("thirteen orphans + a pair among them should be kokushi-complete")
	}
}

func TestWaitingTypesRyanmen(t *testing.T) {
	// 13 tiles: 123m 456m 789m 11p + 3s4s (ryanmen wait on 2s/5s)
	var tiles []TileID
	tiles = append(tiles, seqTiles(Man1)...)
	tiles = append(tiles, seqTiles(Man4)...)
	tiles = append(tiles, seqTiles(Man7)...)
	tiles = append(tiles, tilesOfType(Pin1, 2)...)
	tiles = append(tiles, TileID(int(Sou3)*4), TileID(int(Sou4)*4))

	waits := WaitingTypes(HandToCounts(tiles), 0)
	found := map[TileType]bool{}
	for _, w := range waits {
		found[w] = true
	}
	if !found[Sou2] || !found[Sou5] {
		t.Fatalf("expected a 2s/5s ryanmen wait, got %v", waits)
	}
}

func TestEnumerateStandardDecompositionsFindsIipeikoReading(t *testing.T) {
	// 112233m + 456p + 789s + EE pair: the man suit can only be read as
	// two identical 123m sequences (iipeiko shape).
	var tiles []TileID
	tiles = append(tiles, seqTiles(Man1)...)
	tiles = append(tiles, seqTiles(Man1)...)
	tiles = append(tiles, seqTiles(Pin4)...)
	tiles = append(tiles, seqTiles(Sou7)...)
	tiles = append(tiles, tilesOfType(East, 2)...)

	decomps := EnumerateStandardDecompositions(HandToCounts(tiles), 0)
	if len(decomps) == 0 {
		t.Fatalf("expected at least one valid decomposition")
	}
	foundIipeiko := false
	for _, d := range decomps {
		count := 0
		for _, g := range d.Groups {
			if g.Kind == GroupSequence && g.Type == Man1 {
				count++
			}
		}
		if count == 2 {
			foundIipeiko = true
		}
	}
	if !foundIipeiko {
		t.Fatalf("expected a decomposition with two 123m sequences")
	}
}
