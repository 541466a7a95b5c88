package mahjong

// fixedMeldCount returns how many of the player's melds occupy a "group"
// slot (closed kan counts as one concealed-equivalent group too, since it
// still consumes one of the four meld slots structurally even though it
// doesn't open the hand).
func fixedMeldCount(melds []Meld) int { return len(melds) }

// concealedHand34 returns the 34-count array of a player's concealed tiles
// only (melds excluded — EnumerateStandardDecompositions/WaitingTypes
// operate on the concealed portion plus a fixedMelds count).
func concealedHand34(p Player) Hand34 { return HandToCounts(p.Tiles) }

// WaitingOn computes the set of 34-types that complete p's hand, given p's
// concealed tiles (13, assuming no tile has just been drawn).
func WaitingOn(p Player) []TileType {
	return WaitingTypes(concealedHand34(p), fixedMeldCount(p.Melds))
}

// IsPermanentFuriten implements spec.md §4.8: waiting tiles ∩ own past
// discards ≠ ∅, compared by 34-type.
func IsPermanentFuriten(p Player) bool {
	waits := WaitingOn(p)
	if len(waits) == 0 {
		return false
	}
	discarded := p.discardedTypes()
	for _, w := range waits {
		if discarded[w] {
			return true
		}
	}
	return false
}

// IsFuriten reports whether p is currently disallowed from ron, folding in
// permanent, temporary, and riichi furiten (any one of the three blocks
// ron).
func IsFuriten(p Player) bool {
	return p.IsTemporaryFuriten || p.IsRiichiFuriten || IsPermanentFuriten(p)
}

// ApplyTemporaryFuriten sets temporary furiten on a seat that passed on a
// ron-eligible discard (spec.md §4.6 "Furiten on pass"). A seat in riichi
// instead becomes permanently riichi-furiten for the round.
func ApplyTemporaryFuriten(p Player) Player {
	if p.IsRiichi {
		p.IsRiichiFuriten = true
		return p
	}
	p.IsTemporaryFuriten = true
	return p
}

// ClearTemporaryFuriten runs on the player's own next draw (riichi-furiten
// is NOT cleared here — it persists until round end per spec.md §4.8).
func ClearTemporaryFuriten(p Player) Player {
	p.IsTemporaryFuriten = false
	return p
}
