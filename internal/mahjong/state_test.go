package mahjong

import "testing"

func TestRoundStateUpdatesNeverMutateReceiver(t *testing.T) {
	r := RoundState{}
	for i := 0; i < 4; i++ {
		r.Players[i] = NewPlayer(i, "p", 25000)
	}
	original := r
	originalTiles := append([]TileID(nil), r.Players[0].Tiles...)

	r2 := r.AddTileToPlayer(0, TileID(5))
	if len(r.Players[0].Tiles) != len(originalTiles) {
		t.Fatalf("AddTileToPlayer must not mutate the receiver's player slice")
	}
	if len(r2.Players[0].Tiles) != len(originalTiles)+1 {
		t.Fatalf("expected the new state to have one more tile")
	}

	r3, ok := r2.RemoveTileFromPlayer(0, TileID(5))
	if !ok {
		t.Fatalf("expected removal to succeed")
	}
	if len(r2.Players[0].Tiles) != len(originalTiles)+1 {
		t.Fatalf("RemoveTileFromPlayer must not mutate r2")
	}
	if len(r3.Players[0].Tiles) != len(originalTiles) {
		t.Fatalf("expected tile count back to original after removal")
	}

	if original.Players[0].Tiles != nil && len(original.Players[0].Tiles) != 0 {
		t.Fatalf("original snapshot must remain untouched through the whole chain")
	}
}

func TestAdvanceTurnDoesNotMutateReceiver(t *testing.T) {
	r := RoundState{CurrentPlayerSeat: 0, TurnCount: 5}
	r2 := r.AdvanceTurn()
	if r.CurrentPlayerSeat != 0 || r.TurnCount != 5 {
		t.Fatalf("AdvanceTurn must not mutate the receiver")
	}
	if r2.CurrentPlayerSeat != 1 || r2.TurnCount != 6 {
		t.Fatalf("expected seat 1 / turn 6, got seat %d / turn %d", r2.CurrentPlayerSeat, r2.TurnCount)
	}
}

func TestDeclareRiichiDeductsStickAndSetsFlags(t *testing.T) {
	r := RoundState{}
	r.Players[0] = NewPlayer(0, "p", 25000)
	r2, ok := r.DeclareRiichi(0, false)
	if !ok {
		t.Fatalf("expected riichi to succeed with 25000 points")
	}
	if r.Players[0].Score != 25000 {
		t.Fatalf("original state's score must be untouched")
	}
	if r2.Players[0].Score != 24000 || !r2.Players[0].IsRiichi {
		t.Fatalf("expected score 24000 and IsRiichi=true, got score=%d riichi=%v", r2.Players[0].Score, r2.Players[0].IsRiichi)
	}
}
