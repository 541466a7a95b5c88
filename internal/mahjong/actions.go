package mahjong

// GameAction enumerates the player-initiated actions the turn machine and
// call resolver accept, mirroring original_source's game.logic.enums.GameAction.
type GameAction int

const (
	ActionDiscard GameAction = iota
	ActionDeclareRiichi
	ActionCallChi
	ActionCallPon
	ActionCallKan // open kan, closed kan, or added kan — disambiguated by data
	ActionCallRon
	ActionDeclareTsumo
	ActionCallKyuushu
	ActionPass
)

// KanType disambiguates which of the three kan shapes ActionCallKan means.
type KanType int

const (
	KanOpen KanType = iota
	KanClosed
	KanAdded
)

// DiscardActionData carries the payload for ActionDiscard.
type DiscardActionData struct {
	TileID    TileID
	IsRiichi  bool
}

type RiichiActionData struct{}

type ChiActionData struct {
	CalledTile    TileID
	SequenceTiles [2]TileID
}

type PonActionData struct {
	CalledTile TileID
}

type KanActionData struct {
	Kind KanType
	Tile TileID // the tile type being kanned (for closed/added, the hand tile)
}

// MeldCallerOf returns the MeldCaller in callers belonging to seat and kind,
// or nil.
func findMeldCaller(callers []Caller, seat int, kind MeldKind) *MeldCaller {
	for _, c := range callers {
		if mc, ok := c.(MeldCaller); ok && mc.Seat == seat && mc.Kind == kind {
			return &mc
		}
	}
	return nil
}
