package mahjong

// CanChi reports whether seat may chi the discard from fromSeat, and if so
// returns every completer pair (two 34-types... represented here as actual
// hand tile ids) that would complete a sequence with the discard. Only the
// immediately-following seat may chi (spec.md §4.4), and never during riichi.
func CanChi(hand []TileID, callerSeat, fromSeat int, discard TileID, isRiichi bool) [][]TileID {
	if isRiichi {
		return nil
	}
	if callerSeat != (fromSeat+1)%4 {
		return nil
	}
	tt := discard.To34()
	if !tt.IsNumbered() {
		return nil
	}
	suit := tt.Suit()
	num := tt.Number()

	byType := groupByType(hand)
	var options [][]TileID
	tryPair := func(n1, n2 int) {
		if n1 < 1 || n2 > 9 {
			return
		}
		t1 := TileType(suit*9 + (n1 - 1))
		t2 := TileType(suit*9 + (n2 - 1))
		if len(byType[t1]) > 0 && len(byType[t2]) > 0 {
			options = append(options, []TileID{byType[t1][0], byType[t2][0]})
		}
	}
	tryPair(num-2, num-1) // discard completes the top of a-b-[discard]
	tryPair(num-1, num+1) // discard is the middle tile
	tryPair(num+1, num+2) // discard completes the bottom of [discard]-b-c
	return options
}

// CanPon reports whether hand holds at least two copies of discard's type.
// Any non-self seat may pon; never during riichi; never on the wall's last
// discard (houtei — caller checks that separately since it is a wall-state
// fact, not a hand fact).
func CanPon(hand []TileID, discard TileID, isRiichi bool) [][]TileID {
	if isRiichi {
		return nil
	}
	matches := matchingTiles(hand, discard)
	if len(matches) < 2 {
		return nil
	}
	return [][]TileID{{matches[0], matches[1]}}
}

// CanOpenKan reports whether hand holds three copies of discard's type.
func CanOpenKan(hand []TileID, discard TileID, isRiichi bool) bool {
	if isRiichi {
		return false
	}
	return len(matchingTiles(hand, discard)) >= 3
}

// CanClosedKan reports whether hand holds all four copies of tt, honoring
// the riichi restriction: during riichi a closed kan is only legal on the
// tile just drawn, and only if it does not change the winning-tile set.
// winningTilesUnchanged is supplied by the win-detector (decompose.go) at
// the call site; this function only checks the tile-count precondition and
// riichi gating shared by every caller.
func CanClosedKan(hand []TileID, tt TileType, isRiichi bool, justDrawn TileID, winningTilesUnchanged bool) bool {
	count := 0
	for _, t := range hand {
		if t.To34() == tt {
			count++
		}
	}
	if count < 4 {
		return false
	}
	if !isRiichi {
		return true
	}
	return justDrawn.To34() == tt && winningTilesUnchanged
}

// CanAddedKan reports whether player has an existing open Pon of tt and
// currently holds the fourth tile (normally the one just drawn).
func CanAddedKan(melds []Meld, hand []TileID, tt TileType) (Meld, bool) {
	for _, m := range melds {
		if m.Kind == Pon && m.Type34() == tt {
			for _, t := range hand {
				if t.To34() == tt {
					return m, true
				}
			}
		}
	}
	return Meld{}, false
}

func groupByType(tiles []TileID) map[TileType][]TileID {
	out := make(map[TileType][]TileID, len(tiles))
	for _, t := range tiles {
		out[t.To34()] = append(out[t.To34()], t)
	}
	return out
}

func matchingTiles(hand []TileID, tile TileID) []TileID {
	var out []TileID
	for _, t := range hand {
		if t.To34() == tile.To34() {
			out = append(out, t)
		}
	}
	return out
}

// --- Kuikae (swap-call restriction), spec.md §4.4 ---

// KuikaeForbiddenTypes computes the 34-types a caller may NOT discard this
// turn after a chi or pon, given the called tile and (for chi) which two
// hand tiles completed the sequence.
func KuikaeForbiddenTypes(kind MeldKind, calledTile TileID, sequenceTiles []TileID, sujiEnabled bool) map[TileType]bool {
	forbidden := map[TileType]bool{calledTile.To34(): true}
	if kind != Chi || !sujiEnabled || len(sequenceTiles) != 2 {
		return forbidden
	}
	tt := calledTile.To34()
	suit := tt.Suit()
	if suit < 0 {
		return forbidden
	}
	nums := []int{sequenceTiles[0].To34().Number(), sequenceTiles[1].To34().Number(), tt.Number()}
	lo, hi := nums[0], nums[0]
	for _, n := range nums[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	calledNum := tt.Number()
	// Middle-tile chi (called tile is the middle of the run) has no suji
	// extension. Only an end-tile call extends to the alternative sequence.
	if calledNum == lo {
		// called the low end: a-b-[called]; the suji extension forbids the
		// tile that would complete [called+1]-[called+2]-[called+3] pulled
		// the other direction, i.e. the type three above the run's top.
		if hi+1 <= 9 {
			forbidden[TileType(suit*9+(hi+1-1))] = true
		}
	} else if calledNum == hi {
		if lo-1 >= 1 {
			forbidden[TileType(suit*9+(lo-1-1))] = true
		}
	}
	return forbidden
}

// --- Pao liability, spec.md §4.4 ---

// PaoSeatForMeldCompletion reports whether calling this meld completes a
// player's big-three-dragons or big-four-winds pattern, making fromSeat
// pao-liable. dragonMelds/windMelds counts include the meld just formed.
func PaoSeatForMeldCompletion(tt TileType, dragonMeldCount, windMeldCount int, fromSeat int, enabled bool) int {
	if !enabled {
		return -1
	}
	if tt.IsDragon() && dragonMeldCount == 3 {
		return fromSeat
	}
	if tt.IsWind() && windMeldCount == 4 {
		return fromSeat
	}
	return -1
}
