package mahjong

import "testing"

func testSeed(b byte) Seed {
	var s Seed
	for i := range s {
		s[i] = b
	}
	return s
}

func TestCreateWallDeterministic(t *testing.T) {
	seed := testSeed(7)
	w1 := CreateWall(seed, 0, 0)
	w2 := CreateWall(seed, 0, 0)
	if w1.live[0] != w2.live[0] || w1.dead != w2.dead {
		t.Fatalf("same seed+round+dealer must produce identical walls")
	}

	w3 := CreateWall(seed, 1, 0)
	if w3.live[0] == w1.live[0] && w3.dead == w1.dead {
		t.Fatalf("different round index should (almost certainly) produce a different wall")
	}
}

func TestWallPartitionIsPermutation(t *testing.T) {
	w := CreateWall(testSeed(3), 0, 1)
	all := w.AllTiles()
	if len(all) != NumTiles {
		t.Fatalf("expected %d tiles, got %d", NumTiles, len(all))
	}
	seen := make(map[TileID]bool, NumTiles)
	for _, tile := range all {
		if seen[tile] {
			t.Fatalf("duplicate tile id %d in wall", tile)
		}
		seen[tile] = true
	}
	if len(w.live) != liveWallSize {
		t.Fatalf("expected live wall size %d, got %d", liveWallSize, len(w.live))
	}
}

func TestDrawTileIsImmutable(t *testing.T) {
	w := CreateWall(testSeed(9), 0, 0)
	before := w.LiveCount()
	nw, _, ok := w.DrawTile()
	if !ok {
		t.Fatalf("draw should succeed on a fresh wall")
	}
	if w.LiveCount() != before {
		t.Fatalf("original wall must be unchanged after DrawTile, got live count %d want %d", w.LiveCount(), before)
	}
	if nw.LiveCount() != before-1 {
		t.Fatalf("new wall should have one fewer live tile")
	}
}

func TestUraIndicatorsSurviveRinshanOverwrite(t *testing.T) {
	w := CreateWall(testSeed(5), 0, 0)
	originalUra := w.CollectUraIndicators(true)

	for i := 0; i < maxRinshanDraws; i++ {
		var ok bool
		w, _, ok = w.DrawFromDead()
		if !ok {
			t.Fatalf("rinshan draw %d should succeed", i)
		}
	}

	afterUra := w.CollectUraIndicators(true)
	if len(originalUra) != len(afterUra) {
		t.Fatalf("ura indicator count changed after rinshan draws")
	}
	for i := range originalUra {
		if originalUra[i] != afterUra[i] {
			t.Fatalf("ura indicator %d changed after rinshan overwrote dead-wall positions: %v -> %v", i, originalUra[i], afterUra[i])
		}
	}
}

func TestRinshanExhaustionFails(t *testing.T) {
	w := CreateWall(testSeed(1), 0, 0)
	for i := 0; i < maxRinshanDraws; i++ {
		var ok bool
		w, _, ok = w.DrawFromDead()
		if !ok {
			t.Fatalf("draw %d should succeed", i)
		}
	}
	if w.CanDrawFromDead() {
		t.Fatalf("should not be able to draw a 5th rinshan tile")
	}
	_, _, ok := w.DrawFromDead()
	if ok {
		t.Fatalf("5th rinshan draw should fail")
	}
}
