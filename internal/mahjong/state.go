package mahjong

// Wind distinguishes round wind (East/South per spec.md §3 four-player
// scope) and is reused for seat wind computation.
type Wind int

const (
	WindEast Wind = iota
	WindSouth
	WindWest
	WindNorth
)

func (w Wind) String() string {
	switch w {
	case WindEast:
		return "East"
	case WindSouth:
		return "South"
	case WindWest:
		return "West"
	case WindNorth:
		return "North"
	default:
		return "Unknown"
	}
}

func (w Wind) TileType() TileType { return East + TileType(w) }

// Discard is one tile a player has thrown, with the flags fu/yaku/furiten
// checks need.
type Discard struct {
	Tile          TileID
	IsTsumogiri   bool // discarded tile was the just-drawn tile, untouched
	IsRiichiDiscard bool
}

// Player is an immutable snapshot of one seat. Every field is value data;
// no pointer-based sharing is relied on for correctness (slices are treated
// as owned-after-construction and never mutated after being placed on a
// Player — see state updates in this file, which always allocate fresh
// backing arrays).
type Player struct {
	Seat  int
	Name  string
	Tiles []TileID // unordered multiset, 13 normally, 14 after draw
	Melds []Meld

	Discards []Discard
	Score    int

	IsRiichi           bool
	IsIppatsu          bool
	IsDaburi           bool
	IsRinshan          bool
	IsTemporaryFuriten bool
	IsRiichiFuriten    bool

	KuikaeTiles map[TileType]bool // forbidden discards this turn after a call
	PaoSeat     int               // -1 if none
	IsAI        bool

	LastDrawn      TileID
	HasDrawnTile   bool // true between a draw and that seat's next discard
}

func NewPlayer(seat int, name string, initialScore int) Player {
	return Player{
		Seat:    seat,
		Name:    name,
		Tiles:   nil,
		Melds:   nil,
		Score:   initialScore,
		PaoSeat: -1,
	}
}

// discardedTypes computes the 34-type set of this player's own discards,
// for permanent-furiten checks (spec.md §4.8).
func (p Player) discardedTypes() map[TileType]bool {
	out := make(map[TileType]bool, len(p.Discards))
	for _, d := range p.Discards {
		out[d.Tile.To34()] = true
	}
	return out
}

// HasDiscardedType reports whether this player has ever discarded a tile of
// the given 34-type.
func (p Player) HasDiscardedType(tt TileType) bool {
	for _, d := range p.Discards {
		if d.Tile.To34() == tt {
			return true
		}
	}
	return false
}

// IsClosed reports whether the hand has no open melds (closed kans do not
// count as open).
func (p Player) IsClosed() bool {
	for _, m := range p.Melds {
		if m.Kind.IsOpen() {
			return false
		}
	}
	return true
}

// --- Caller descriptors (spec.md §3 PendingCallPrompt.callers, §9 "model as
// a sum type") ---

// Caller is the sealed interface over the two kinds of outstanding call
// opportunity on a discard: a bare ron-only seat, or a MeldCaller offering
// chi/pon/kan. Modeling this as an interface (rather than two parallel
// lists) makes the "a seat appears under exactly one head" invariant a
// natural type constraint, per spec.md §9.
type Caller interface {
	SeatOf() int
	isCaller()
}

type RonCaller struct{ Seat int }

func (r RonCaller) SeatOf() int { return r.Seat }
func (RonCaller) isCaller()     {}

// MeldCaller offers an opportunity to chi/pon/kan. Options enumerates, for
// chi, the allowed completer pairs (two tiles from hand); for pon/kan the
// slice holds the matching tiles to remove from hand.
type MeldCaller struct {
	Seat    int
	Kind    MeldKind
	Options [][]TileID
}

func (m MeldCaller) SeatOf() int { return m.Seat }
func (MeldCaller) isCaller()     {}

// CallResponse records one seat's reply to a pending prompt.
type CallResponse struct {
	Seat          int
	Action        GameAction
	SequenceTiles []TileID // for CallChi: the two hand tiles chosen
	KanTile       TileID   // for CallKan: disambiguates which group, if needed
}

type CallType int

const (
	CallTypeDiscard CallType = iota
	CallTypeChankan
)

// PendingCallPrompt is the single outstanding opportunity to call on the
// most recent discard or added kan (spec.md §3, §9 "unified discard-claim"
// per original_source/test_unified_discard_claim.py).
type PendingCallPrompt struct {
	CallType     CallType
	TileID       TileID
	FromSeat     int
	PendingSeats map[int]bool
	Callers      []Caller
	Responses    []CallResponse
}

func (p *PendingCallPrompt) callerFor(seat int) Caller {
	for _, c := range p.Callers {
		if c.SeatOf() == seat {
			return c
		}
	}
	return nil
}

// RoundState is the frozen per-round record. All mutators in this package
// (WithXxx functions) return a new RoundState; nothing here is ever edited
// through a pointer receiver.
type RoundState struct {
	Wall              Wall
	DoraIndicators    []TileID
	PendingDoraCount  int
	Players           [4]Player
	DealerSeat        int
	CurrentPlayerSeat int
	RoundWind         Wind
	TurnCount         int
	AllDiscards       []Discard
	OpenHandSeats     map[int]bool
	Phase             RoundPhase
	PendingCallPrompt *PendingCallPrompt
	KanCount          int
	KanOwners         map[int]bool // distinct seats that have called a kan this round
	FirstFourDiscardWinds []Wind  // tracks the first discard's wind per seat, for four-winds
}

type RoundPhase int

const (
	PhaseWaiting RoundPhase = iota
	PhasePlaying
	PhaseFinished
)

// GameState is the frozen per-game record wrapping the current round plus
// game-spanning counters.
type GameState struct {
	Round         RoundState
	RoundNumber   int // 0-based within wind
	UniqueDealers map[int]bool
	HonbaSticks   int
	RiichiSticks  int
	GamePhase     GamePhase
	Seed          Seed
	DealerDice    [][2]int
	GameID        string
	PlayerNames   [4]string
}

type GamePhase int

const (
	GameInProgress GamePhase = iota
	GameFinished
)

// --- §4.3 frozen state updates: every helper below returns a new value. ---

func cloneTiles(ts []TileID) []TileID { return append([]TileID(nil), ts...) }

// WithPlayer returns a RoundState with players[seat] replaced by updated.
func (r RoundState) WithPlayer(seat int, updated Player) RoundState {
	nr := r
	nr.Players[seat] = updated
	return nr
}

// AddTileToPlayer returns a RoundState with tile appended to seat's hand.
func (r RoundState) AddTileToPlayer(seat int, tile TileID) RoundState {
	p := r.Players[seat]
	p.Tiles = append(cloneTiles(p.Tiles), tile)
	return r.WithPlayer(seat, p)
}

// RemoveTileFromPlayer returns a RoundState with one copy of tile removed
// from seat's hand. ok is false if the tile was not present (engine
// invariant violation at the call site — callers must check ok).
func (r RoundState) RemoveTileFromPlayer(seat int, tile TileID) (RoundState, bool) {
	p := r.Players[seat]
	idx := -1
	for i, t := range p.Tiles {
		if t == tile {
			idx = i
			break
		}
	}
	if idx == -1 {
		return r, false
	}
	nt := cloneTiles(p.Tiles)
	nt = append(nt[:idx], nt[idx+1:]...)
	p.Tiles = nt
	return r.WithPlayer(seat, p), true
}

// AdvanceTurn moves current_player_seat to the next seat and increments
// turn_count.
func (r RoundState) AdvanceTurn() RoundState {
	nr := r
	nr.CurrentPlayerSeat = (r.CurrentPlayerSeat + 1) % 4
	nr.TurnCount = r.TurnCount + 1
	return nr
}

// ClearPendingPrompt drops any outstanding call prompt.
func (r RoundState) ClearPendingPrompt() RoundState {
	nr := r
	nr.PendingCallPrompt = nil
	return nr
}

// AddPromptResponse records seat's response on the current prompt and
// removes it from pending_seats.
func (r RoundState) AddPromptResponse(resp CallResponse) RoundState {
	if r.PendingCallPrompt == nil {
		return r
	}
	nr := r
	np := *r.PendingCallPrompt
	np.Responses = append(append([]CallResponse(nil), r.PendingCallPrompt.Responses...), resp)
	newPending := make(map[int]bool, len(r.PendingCallPrompt.PendingSeats))
	for s := range r.PendingCallPrompt.PendingSeats {
		if s != resp.Seat {
			newPending[s] = true
		}
	}
	np.PendingSeats = newPending
	nr.PendingCallPrompt = &np
	return nr
}

// UpdateAllDiscards appends d to the round's flat discard history.
func (r RoundState) UpdateAllDiscards(d Discard) RoundState {
	nr := r
	nr.AllDiscards = append(append([]Discard(nil), r.AllDiscards...), d)
	return nr
}

// ClearAllPlayersIppatsu clears every seat's ippatsu flag (the window closes
// on any discard, call, or rinshan draw).
func (r RoundState) ClearAllPlayersIppatsu() RoundState {
	nr := r
	for i := range nr.Players {
		nr.Players[i].IsIppatsu = false
	}
	return nr
}

// WithWall replaces the wall (used after every draw/dora reveal).
func (r RoundState) WithWall(w Wall) RoundState {
	nr := r
	nr.Wall = w
	return nr
}

// AppendDoraIndicators records newly revealed dora indicator tiles.
func (r RoundState) AppendDoraIndicators(tiles []TileID) RoundState {
	if len(tiles) == 0 {
		return r
	}
	nr := r
	nr.DoraIndicators = append(append([]TileID(nil), r.DoraIndicators...), tiles...)
	return nr
}

// DeclareRiichi deducts the 1000-point stick and sets the riichi/ippatsu/
// double-riichi flags on seat. ok is false if seat can't afford it (an
// engine invariant violation at the call site — legality was already
// checked before the discard was accepted).
func (r RoundState) DeclareRiichi(seat int, isDaburi bool) (RoundState, bool) {
	p := r.Players[seat]
	if p.Score < 1000 {
		return r, false
	}
	p.Score -= 1000
	p.IsRiichi = true
	p.IsIppatsu = true
	p.IsDaburi = isDaburi
	return r.WithPlayer(seat, p), true
}

// AddMeld appends a finalized meld to seat's hand, removing the tiles it
// consumed (the called tile is supplied separately, already removed from
// the discard row by the caller) and marking the hand open unless closed
// kan.
func (r RoundState) AddMeld(seat int, m Meld, consumedFromHand []TileID) RoundState {
	nr := r
	p := nr.Players[seat]
	tiles := cloneTiles(p.Tiles)
	for _, c := range consumedFromHand {
		for i, t := range tiles {
			if t == c {
				tiles = append(tiles[:i], tiles[i+1:]...)
				break
			}
		}
	}
	p.Tiles = tiles
	p.Melds = append(append([]Meld(nil), p.Melds...), m)
	nr.Players[seat] = p
	if m.Kind.IsOpen() {
		if nr.OpenHandSeats == nil {
			nr.OpenHandSeats = map[int]bool{}
		} else {
			cp := make(map[int]bool, len(nr.OpenHandSeats)+1)
			for k := range nr.OpenHandSeats {
				cp[k] = true
			}
			nr.OpenHandSeats = cp
		}
		nr.OpenHandSeats[seat] = true
	}
	if m.Kind.IsKan() {
		nr.KanCount++
		if nr.KanOwners == nil {
			nr.KanOwners = map[int]bool{}
		} else {
			cp := make(map[int]bool, len(nr.KanOwners)+1)
			for k := range nr.KanOwners {
				cp[k] = true
			}
			nr.KanOwners = cp
		}
		nr.KanOwners[seat] = true
	}
	return nr
}

// ReplaceMeld swaps an existing Pon for its AddedKan upgrade in-place within
// the meld slice (used by call_added_kan), preserving slot order.
func (r RoundState) ReplaceMeld(seat int, oldPon Meld, newKan Meld, consumedFromHand TileID) RoundState {
	nr := r
	p := nr.Players[seat]
	tiles := cloneTiles(p.Tiles)
	for i, t := range tiles {
		if t == consumedFromHand {
			tiles = append(tiles[:i], tiles[i+1:]...)
			break
		}
	}
	p.Tiles = tiles
	melds := append([]Meld(nil), p.Melds...)
	for i, m := range melds {
		if m.Kind == Pon && m.Type34() == oldPon.Type34() {
			melds[i] = newKan
			break
		}
	}
	p.Melds = melds
	nr.Players[seat] = p
	nr.KanCount++
	if nr.KanOwners == nil {
		nr.KanOwners = map[int]bool{}
	} else {
		cp := make(map[int]bool, len(nr.KanOwners)+1)
		for k := range nr.KanOwners {
			cp[k] = true
		}
		nr.KanOwners = cp
	}
	nr.KanOwners[seat] = true
	return nr
}

// SetPendingPrompt installs a new outstanding call opportunity.
func (r RoundState) SetPendingPrompt(p *PendingCallPrompt) RoundState {
	nr := r
	nr.PendingCallPrompt = p
	return nr
}

// MarkDrawn records tile as seat's freshly drawn tile (live-wall or
// rinshan), added to hand and flagged for tsumogiri/closed-kan checks.
func (r RoundState) MarkDrawn(seat int, tile TileID, isRinshan bool) RoundState {
	nr := r.AddTileToPlayer(seat, tile)
	p := nr.Players[seat]
	p.LastDrawn = tile
	p.HasDrawnTile = true
	p.IsRinshan = isRinshan
	p = ClearTemporaryFuriten(p)
	nr.Players[seat] = p
	return nr
}

// ClearDrawn clears the post-discard drawn-tile bookkeeping for seat.
func (r RoundState) ClearDrawn(seat int) RoundState {
	nr := r
	p := nr.Players[seat]
	p.HasDrawnTile = false
	p.IsRinshan = false
	nr.Players[seat] = p
	return nr
}

// RecordFirstDiscardWind appends seat's first-discard wind-type for the
// four-winds abort check; a no-op once all four seats have gone once or the
// tile wasn't a wind.
func (r RoundState) RecordFirstDiscardWind(seat int, tt TileType) RoundState {
	if len(r.FirstFourDiscardWinds) >= 4 || !tt.IsWind() {
		return r
	}
	if len(r.Players[seat].Discards) != 1 {
		return r
	}
	nr := r
	nr.FirstFourDiscardWinds = append(append([]Wind(nil), r.FirstFourDiscardWinds...), Wind(tt-East))
	return nr
}
