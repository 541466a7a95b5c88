// Package session implements the concurrent session coordinator: per-room
// lobbies, per-game exclusive locks, the reconnection-token store, and the
// turn/meld timer manager. It never touches rule-engine internals directly —
// it drives a GameService implementation (internal/service) under the
// game's lock and routes the resulting events to connections by target,
// mirroring the teacher's framework/conn worker-and-session split.
package session

import "riichiserver/internal/mahjong"

// Connection abstracts a single client's duplex transport so this package
// never imports gorilla/websocket directly — internal/transport implements
// it. Mirrors the teacher's conn.Connection seam between Worker and the
// wire. msgType is the protocol-level tag (spec.md §6.1: "room_joined",
// "draw", "error", ...); payload is marshaled by the transport layer.
type Connection interface {
	Send(msgType string, payload any) error
	Close() error
}

// dispatchEvent sends a rule-engine event to a single connection, tagging
// it with its own wire type name.
func dispatchEvent(conn Connection, ev mahjong.Event) error {
	return conn.Send(eventWireType(ev), ev)
}

// EventWireType exposes the event-to-wire-type-name mapping for callers
// outside this package that need to re-serialize an event for a transport
// other than a bound Connection (internal/mq's cross-node publish).
func EventWireType(ev mahjong.Event) string { return eventWireType(ev) }

func eventWireType(ev mahjong.Event) string {
	switch ev.(type) {
	case mahjong.DrawEvent:
		return "draw"
	case mahjong.DiscardEvent:
		return "discard"
	case mahjong.TurnEvent:
		return "turn"
	case mahjong.MeldEvent:
		return "meld"
	case mahjong.RiichiDeclaredEvent:
		return "riichi_declared"
	case mahjong.DoraRevealedEvent:
		return "dora_revealed"
	case mahjong.CallPromptEvent:
		return "call_prompt"
	case mahjong.PassAcknowledgedEvent:
		return "pass_acknowledged"
	case mahjong.RoundEndEvent:
		return "round_end"
	case mahjong.GameEndEvent:
		return "game_end"
	case mahjong.ErrorEvent:
		return "error"
	default:
		return "event"
	}
}

// GameService is the facade this package drives under a game's lock.
// internal/service implements it; keeping the interface here (rather than
// importing internal/service) lets session depend only on mahjong's event
// and action vocabulary, the same decoupling shape as mahjong.RuleConfig.
type GameService interface {
	StartGame(gameID string, names [4]string, aiSeats [4]bool, seed *mahjong.Seed) ([]mahjong.Event, error)
	HandleAction(gameID string, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error)
	ReplaceWithAIPlayer(gameID string, seat int) error
	RestoreHumanPlayer(gameID string, seat int) error
	BuildReconnectionSnapshot(gameID string, seat int) (any, error)
	BuildDrawEventForSeat(gameID string, seat int) (mahjong.Event, bool)
	IsSeatAI(gameID string, seat int) bool
	CancelGame(gameID string) error
}

// ErrorCode enumerates the session-layer error codes spec.md §6.1 names,
// surfaced to clients as an ErrorEvent-shaped payload distinct from
// mahjong.GameErrorCode (which covers rule-engine validation failures).
type ErrorCode string

const (
	ErrRoomNotFound      ErrorCode = "ROOM_NOT_FOUND"
	ErrRoomFull          ErrorCode = "ROOM_FULL"
	ErrAlreadyInRoom     ErrorCode = "ALREADY_IN_ROOM"
	ErrAlreadyInGame     ErrorCode = "ALREADY_IN_GAME"
	ErrNameTaken         ErrorCode = "NAME_TAKEN"
	ErrRoomTransitioning ErrorCode = "ROOM_TRANSITIONING"
	ErrNotInRoom         ErrorCode = "NOT_IN_ROOM"

	ErrReconnectNoSession     ErrorCode = "RECONNECT_NO_SESSION"
	ErrReconnectRetryLater    ErrorCode = "RECONNECT_RETRY_LATER"
	ErrReconnectGameGone      ErrorCode = "RECONNECT_GAME_GONE"
	ErrReconnectGameMismatch  ErrorCode = "RECONNECT_GAME_MISMATCH"
	ErrReconnectInRoom        ErrorCode = "RECONNECT_IN_ROOM"
	ErrReconnectAlreadyActive ErrorCode = "RECONNECT_ALREADY_ACTIVE"
	ErrReconnectNoSeat        ErrorCode = "RECONNECT_NO_SEAT"
	ErrReconnectSnapshotFailed ErrorCode = "RECONNECT_SNAPSHOT_FAILED"
)

// SessionError pairs a code with the seat it concerns, mirroring
// mahjong.ErrorEvent's shape but for lobby/reconnect failures that never
// touch game state.
type SessionError struct {
	Code ErrorCode
	Msg  string
}

func (e SessionError) Error() string { return string(e.Code) + ": " + e.Msg }

func sessErr(code ErrorCode, msg string) error { return SessionError{Code: code, Msg: msg} }
