// Package replay implements spec.md §4.12/§6.2's event log: a compact
// newline-delimited JSON recorder and a loader that reconstructs the
// logical action sequence from a seed and the recorded events alone,
// grounded on original_source's game.replay package (backend/game/replay,
// exercised end-to-end by backend/game/tests/unit/test_replay_loader.py,
// the only replay file the distillation kept). The teacher has no
// equivalent — GoMahjong persists per-round documents to Mongo
// (core/domain/entity/round_record.go) rather than a replayable action
// log — so this package's shape follows the spec and original_source
// directly, written in the teacher's style (exported error type, small
// pure functions, table-driven tag switches).
package replay

import (
	"fmt"

	"riichiserver/internal/mahjong"
)

// ReplayVersion is the event-log format version written into the first
// line of every recorded file and checked by the loader.
const ReplayVersion = "1.0"

// EventTag is the compact integer discriminant written as the "t" field
// of every event line.
type EventTag int

const (
	TagMeld         EventTag = 0
	TagDraw         EventTag = 1
	TagDiscard      EventTag = 2
	TagRoundEnd     EventTag = 4
	TagRiichi       EventTag = 5
	TagDoraRevealed EventTag = 6
	TagGameStarted  EventTag = 8
	TagRoundStarted EventTag = 9
	TagGameEnd      EventTag = 10
)

// WireRoundResultType is the "rt" field of a ROUND_END line.
type WireRoundResultType string

const (
	ResultTsumo          WireRoundResultType = "tsumo"
	ResultRon            WireRoundResultType = "ron"
	ResultDoubleRon      WireRoundResultType = "double_ron"
	ResultTripleRon      WireRoundResultType = "triple_ron"
	ResultAbortiveDraw   WireRoundResultType = "abortive_draw"
	ResultExhaustiveDraw WireRoundResultType = "exhaustive_draw"
)

// GameStartedPlayer is one "p[]" entry of the GAME_STARTED line.
type GameStartedPlayer struct {
	Seat int    `json:"s"`
	Name string `json:"nm"`
	AI   int    `json:"ai"`
}

// ReplayEvent is one reconstructed logical action: the player it belongs
// to, the GameAction it maps to, and the action's payload.
type ReplayEvent struct {
	PlayerName string
	Action     mahjong.GameAction
	Data       map[string]any
}

// Replay is what LoadReplayFromString/LoadReplayFromFile return: enough
// to re-run StartGame with the same seed and player names and feed
// Events back through internal/service.HandleAction in order.
type Replay struct {
	Seed        string // hex-encoded mahjong.Seed
	PlayerNames [4]string
	Events      []ReplayEvent
}

// ReplayLoadError is raised for any malformed input, invalid seed,
// unknown event type, out-of-range packed value, or reference to a seat
// not present in game_started.
type ReplayLoadError struct {
	Msg string
}

func (e *ReplayLoadError) Error() string { return e.Msg }

func newLoadError(format string, args ...any) *ReplayLoadError {
	return &ReplayLoadError{Msg: fmt.Sprintf(format, args...)}
}
