package mahjong

import (
	"crypto/sha256"
	"math/rand/v2"
)

// Seed is the 192-bit game seed (spec.md §4.12: "hex string of 192 bits"),
// carried as raw bytes internally and hex-encoded only at the replay
// boundary (see internal/replay).
type Seed [24]byte

// deriveSource builds a deterministic, versioned PRNG source from the seed
// plus a domain tag (round index), so every round of a game draws from an
// independent but fully reproducible stream. math/rand/v2's ChaCha8 is the
// standard library's seedable deterministic source (Go 1.22+); no
// third-party PRNG in the retrieved corpus offers a seedable generator, so
// this one function is grounded on the standard library by necessity (see
// DESIGN.md).
func deriveSource(seed Seed, roundIndex int) *rand.ChaCha8 {
	h := sha256.New()
	h.Write(seed[:])
	h.Write([]byte{byte(roundIndex), byte(roundIndex >> 8)})
	sum := h.Sum(nil)
	var key [32]byte
	copy(key[:], sum)
	return rand.NewChaCha8(key)
}

const (
	liveWallSize = 122
	deadWallSize = 14

	doraSlotStart = 2
	doraSlotCount = 5
	uraSlotStart  = 7
	uraSlotCount  = 5

	maxRinshanDraws = 4
)

var kanDrawOrder = [maxRinshanDraws]int{13, 12, 11, 10}

// Wall is the immutable-by-convention deck state for one round. Every
// mutator (DrawTile, DrawFromDead, IncrementPendingDora, RevealPendingDora)
// returns a new Wall value; callers must use the returned copy.
type Wall struct {
	live []TileID // front = next draw

	dead           [deadWallSize]TileID
	uraSnapshot    [uraSlotCount]TileID
	revealedDora   int // count of dora indicators revealed (<=5)
	pendingDora    int // reveals deferred by an un-resolved kan
	rinshanDrawn   int // count of rinshan draws so far (<=4)
	dealerSeat     int
	diceA, diceB   int
	breakStack     int
}

func freshDeck(useRedFives bool) []TileID {
	deck := make([]TileID, 0, NumTiles)
	for tt := Man1; tt <= Red; tt++ {
		for copyIdx := 0; copyIdx < 4; copyIdx++ {
			deck = append(deck, TileID(int(tt)*4+copyIdx))
		}
	}
	_ = useRedFives // red-five designation is purely copyIndex==0 on 5s; see tiles.go
	return deck
}

// CreateWall implements spec.md §4.1's create(seed, round_index, dealer_seat).
func CreateWall(seed Seed, roundIndex, dealerSeat int) Wall {
	src := deriveSource(seed, roundIndex)
	r := rand.New(src)

	diceA := r.IntN(6) + 1
	diceB := r.IntN(6) + 1
	diceSum := diceA + diceB

	deck := freshDeck(true)
	r.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	targetPlayer := (dealerSeat + diceSum - 1) % 4
	breakStack := (targetPlayer*17 - diceSum) % 68
	if breakStack < 0 {
		breakStack += 68
	}
	rotateBy := (breakStack * 2) % NumTiles
	rotated := append(append([]TileID(nil), deck[rotateBy:]...), deck[:rotateBy]...)

	w := Wall{
		dealerSeat: dealerSeat,
		diceA:      diceA,
		diceB:      diceB,
		breakStack: breakStack,
	}
	w.live = append([]TileID(nil), rotated[:liveWallSize]...)
	copy(w.dead[:], rotated[liveWallSize:])
	copy(w.uraSnapshot[:], w.dead[uraSlotStart:uraSlotStart+uraSlotCount])

	// reveal the single initial dora indicator at dead wall position 2.
	w.revealedDora = 1
	return w
}

// Dice returns the two die values rolled at creation.
func (w Wall) Dice() (int, int) { return w.diceA, w.diceB }

// LiveCount reports remaining live-wall tiles.
func (w Wall) LiveCount() int { return len(w.live) }

// DrawTile pops the front of the live wall. ok is false if empty.
func (w Wall) DrawTile() (Wall, TileID, bool) {
	if len(w.live) == 0 {
		return w, 0, false
	}
	nw := w
	nw.live = append([]TileID(nil), w.live[1:]...)
	return nw, w.live[0], true
}

// CanDrawFromDead reports whether a rinshan draw is still available.
func (w Wall) CanDrawFromDead() bool {
	return w.rinshanDrawn < maxRinshanDraws && len(w.live) > 0
}

// DrawFromDead implements draw_from_dead: pops the rightmost unused
// dead-wall position (13,12,11,10 across successive kans) and replenishes
// it from the live wall's tail. Fails if rinshan count is already 4 or the
// live wall is empty.
func (w Wall) DrawFromDead() (Wall, TileID, bool) {
	if !w.CanDrawFromDead() {
		return w, 0, false
	}
	nw := w
	pos := kanDrawOrder[w.rinshanDrawn]
	drawn := w.dead[pos]

	nw.live = append([]TileID(nil), w.live...)
	tail := nw.live[len(nw.live)-1]
	nw.live = nw.live[:len(nw.live)-1]

	nw.dead[pos] = tail
	nw.rinshanDrawn = w.rinshanDrawn + 1
	return nw, drawn, true
}

// IncrementPendingDora records a deferred kan-dora reveal. Fails if it would
// push total (revealed + pending) beyond 5.
func (w Wall) IncrementPendingDora() (Wall, bool) {
	if w.revealedDora+w.pendingDora+1 > doraSlotCount {
		return w, false
	}
	nw := w
	nw.pendingDora = w.pendingDora + 1
	return nw, true
}

// RevealPendingDora emits all currently pending indicators (positions
// 2+existing_count onward) and clears the pending counter.
func (w Wall) RevealPendingDora() (Wall, []TileID) {
	if w.pendingDora == 0 {
		return w, nil
	}
	nw := w
	revealed := make([]TileID, 0, w.pendingDora)
	for i := 0; i < w.pendingDora; i++ {
		idx := doraSlotStart + w.revealedDora + i
		revealed = append(revealed, w.dead[idx])
	}
	nw.revealedDora = w.revealedDora + w.pendingDora
	nw.pendingDora = 0
	return nw, revealed
}

// DoraIndicators returns every currently revealed dora indicator tile.
func (w Wall) DoraIndicators() []TileID {
	out := make([]TileID, 0, w.revealedDora)
	for i := 0; i < w.revealedDora; i++ {
		out = append(out, w.dead[doraSlotStart+i])
	}
	return out
}

// CollectUraIndicators implements collect_ura_indicators: 1 indicator
// normally, or as many as revealed dora when includeKanUra is set — always
// sourced from the immutable creation-time snapshot, never the mutated dead
// wall array (so later rinshan draws overwriting positions 10/11 cannot
// change what ura indicators a riichi winner sees).
func (w Wall) CollectUraIndicators(includeKanUra bool) []TileID {
	n := 1
	if includeKanUra {
		n = w.revealedDora
	}
	if n > uraSlotCount {
		n = uraSlotCount
	}
	if n < 1 {
		n = 1
	}
	return append([]TileID(nil), w.uraSnapshot[:n]...)
}

// AllTiles returns live ++ dead, for the "live ∪ dead = permutation of
// [0,136)" invariant test.
func (w Wall) AllTiles() []TileID {
	out := make([]TileID, 0, NumTiles)
	out = append(out, w.live...)
	out = append(out, w.dead[:]...)
	return out
}

func (w Wall) RinshanDrawn() int { return w.rinshanDrawn }
func (w Wall) PendingDoraCount() int { return w.pendingDora }
func (w Wall) RevealedDoraCount() int { return w.revealedDora }
