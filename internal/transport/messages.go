package transport

import "riichiserver/internal/mahjong"

// Client -> server payload shapes (spec.md §6.1). Fields are optional where
// a message type doesn't need them; json.Unmarshal leaves the zero value.

type joinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type setReadyPayload struct {
	Ready bool `json:"ready"`
}

type reconnectPayload struct {
	GameID string `json:"game_id"`
	Token  string `json:"token"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// gameActionPayload is the envelope for every rule-engine action; Action
// names the wire verb (spec.md's game-layer actions), the remaining
// fields are interpreted per-action by decodeActionData.
type gameActionPayload struct {
	Action   string        `json:"action"`
	TileID   mahjong.TileID `json:"tile_id"`
	IsRiichi bool          `json:"is_riichi"`

	CalledTile    mahjong.TileID    `json:"called_tile"`
	SequenceTiles [2]mahjong.TileID `json:"sequence_tiles"`

	KanType string `json:"kan_type"`
}

// decodeActionData turns a gameActionPayload into the (GameAction, data)
// pair internal/service's dispatch expects, mirroring the wire verbs
// spec.md §6.1/§7 names.
func decodeActionData(p gameActionPayload) (mahjong.GameAction, any, bool) {
	switch p.Action {
	case "discard":
		return mahjong.ActionDiscard, mahjong.DiscardActionData{TileID: p.TileID, IsRiichi: p.IsRiichi}, true
	case "call_chi":
		return mahjong.ActionCallChi, mahjong.ChiActionData{CalledTile: p.CalledTile, SequenceTiles: p.SequenceTiles}, true
	case "call_pon":
		return mahjong.ActionCallPon, mahjong.PonActionData{CalledTile: p.CalledTile}, true
	case "call_kan":
		kind, ok := decodeKanType(p.KanType)
		if !ok {
			return 0, nil, false
		}
		return mahjong.ActionCallKan, mahjong.KanActionData{Kind: kind, Tile: p.TileID}, true
	case "call_ron":
		return mahjong.ActionCallRon, nil, true
	case "declare_tsumo":
		return mahjong.ActionDeclareTsumo, nil, true
	case "call_kyuushu":
		return mahjong.ActionCallKyuushu, nil, true
	case "pass":
		return mahjong.ActionPass, nil, true
	default:
		return 0, nil, false
	}
}

func decodeKanType(s string) (mahjong.KanType, bool) {
	switch s {
	case "open":
		return mahjong.KanOpen, true
	case "closed":
		return mahjong.KanClosed, true
	case "added":
		return mahjong.KanAdded, true
	default:
		return 0, false
	}
}

// Server -> client lobby payloads; the rule-engine events themselves are
// sent as-is (mahjong's Event structs marshal directly).

type roomJoinedPayload struct {
	Token  string    `json:"token"`
	RoomID string    `json:"room_id"`
	Seat   int       `json:"seat"`
	Names  [4]string `json:"names"`
}

type playerJoinedPayload struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

type playerLeftPayload struct {
	Seat int `json:"seat"`
}

type playerReadyChangedPayload struct {
	Seat  int  `json:"seat"`
	Ready bool `json:"ready"`
}

type gameStartingPayload struct {
	GameID string `json:"game_id"`
}

type errorPayload struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
