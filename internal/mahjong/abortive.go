package mahjong

// abortive.go implements the round-ending conditions that are neither a
// win nor ordinary exhaustion (spec.md §4.10), grounded on original_source's
// test_abortive.py (kyuushu_kyuuhai, four-riichi, triple-ron, four-kans,
// four-winds all round-end the same way: no winner, hand replayed or
// advanced without scoring).

// CanDeclareKyuushu reports whether p may call kyuushu kyuuhai: it is p's
// first discard opportunity of the round (no calls have happened yet) and p
// holds at least minTypes distinct terminal/honor tile types. minTypes is
// supplied by config (spec's rules.kyuushu_min_types, default 9) rather than
// hardcoded, since house rules vary on 9 vs "any" terminal/honor count.
func CanDeclareKyuushu(p Player, isFirstUncalledTurn bool, minTypes int) bool {
	if !isFirstUncalledTurn {
		return false
	}
	seen := map[TileType]bool{}
	for _, t := range p.Tiles {
		tt := t.To34()
		if tt.IsTerminalOrHonor() {
			seen[tt] = true
		}
	}
	return len(seen) >= minTypes
}

// IsFourRiichi reports whether all four seats are now in riichi (the
// fourth declaration aborts the round immediately once its caller is past,
// per spec.md §4.10 — callers check this right after recording riichi).
func IsFourRiichi(r RoundState) bool {
	n := 0
	for _, p := range r.Players {
		if p.IsRiichi {
			n++
		}
	}
	return n == 4
}

// IsFourKans reports the four-kan abort: four kans called across the round,
// UNLESS all four belong to a single seat (in which case that seat may
// still complete a suukantsu win, so the round does not abort).
func IsFourKans(r RoundState) bool {
	if r.KanCount < 4 {
		return false
	}
	return len(r.KanOwners) > 1
}

// IsFourWinds reports the four-winds abort: all four players' first
// discard was the same wind tile, and no call has interrupted the first
// go-around.
func IsFourWinds(r RoundState) bool {
	if len(r.FirstFourDiscardWinds) != 4 {
		return false
	}
	first := r.FirstFourDiscardWinds[0]
	for _, w := range r.FirstFourDiscardWinds[1:] {
		if w != first {
			return false
		}
	}
	return true
}

// NagashiManganCheck reports whether seat qualifies for nagashi mangan at
// exhaustive draw: every one of seat's discards is still in the discard
// row (never called away) and every discard was a terminal or honor.
func NagashiManganCheck(p Player, calledAway map[int]bool) bool {
	if len(p.Discards) == 0 {
		return false
	}
	for i, d := range p.Discards {
		if calledAway[i] {
			return false
		}
		if !d.Tile.To34().IsTerminalOrHonor() {
			return false
		}
	}
	return true
}
