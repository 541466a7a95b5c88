package mahjong

import "testing"

func TestClosestToDiscarderPicksNearestCounterClockwiseSeat(t *testing.T) {
	if got := closestToDiscarder([]int{2, 3}, 1); got != 2 {
		t.Fatalf("seat 2 is one step from seat 1, expected it to win the tiebreak, got %d", got)
	}
	if got := closestToDiscarder([]int{0, 3}, 1); got != 3 {
		t.Fatalf("seat 3 is two steps from seat 1 (wrapping), seat 0 is three; expected 3, got %d", got)
	}
}

func TestIsFirstUncalledTsumoOnRoundStart(t *testing.T) {
	r := RoundState{}
	if !isFirstUncalledTsumo(r, Player{}) {
		t.Fatalf("an untouched round with no discards or open melds should qualify for tenhou/chiihou")
	}
}

func TestIsFirstUncalledTsumoFailsAfterAnyDiscard(t *testing.T) {
	r := RoundState{AllDiscards: []Discard{{Tile: TileID(0)}}}
	if isFirstUncalledTsumo(r, Player{}) {
		t.Fatalf("a round with a discard already recorded must not qualify")
	}
}

func TestIsFirstUncalledTsumoFailsAfterOpenMeld(t *testing.T) {
	r := RoundState{OpenHandSeats: map[int]bool{2: true}}
	if isFirstUncalledTsumo(r, Player{}) {
		t.Fatalf("a round where any seat has an open meld must not qualify")
	}
}

func TestIsFirstUncalledTsumoFailsOnRinshanWin(t *testing.T) {
	r := RoundState{}
	if isFirstUncalledTsumo(r, Player{IsRinshan: true}) {
		t.Fatalf("a rinshan win is not an uninterrupted first draw")
	}
}
