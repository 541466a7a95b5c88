package mahjong

// GameErrorCode enumerates the game-layer error codes spec.md §6.1 lists.
// These surface as ErrorEvent payloads — validation failures, never state
// changes (spec.md §7 family 1).
type GameErrorCode string

const (
	ErrNotYourTurn        GameErrorCode = "NOT_YOUR_TURN"
	ErrInvalidDiscard      GameErrorCode = "INVALID_DISCARD"
	ErrInvalidRiichi       GameErrorCode = "INVALID_RIICHI"
	ErrInvalidTsumo        GameErrorCode = "INVALID_TSUMO"
	ErrInvalidRon          GameErrorCode = "INVALID_RON"
	ErrInvalidPon          GameErrorCode = "INVALID_PON"
	ErrInvalidChi          GameErrorCode = "INVALID_CHI"
	ErrInvalidKan          GameErrorCode = "INVALID_KAN"
	ErrInvalidPass         GameErrorCode = "INVALID_PASS"
	ErrCannotCallKyuushu   GameErrorCode = "CANNOT_CALL_KYUUSHU"
	ErrInvalidAction       GameErrorCode = "INVALID_ACTION"
)

// InvariantViolation is raised (panic'd) for spec.md §7 family 3: internal
// preconditions broken by the caller, e.g. resolving a prompt while seats
// are still pending, or drawing from an exhausted wall without checking
// first. These are programmer errors — recovered once at the session
// dispatch boundary (internal/session), never handled locally.
type InvariantViolation struct {
	Msg string
}

func (e InvariantViolation) Error() string { return e.Msg }

func panicInvariant(msg string) {
	panic(InvariantViolation{Msg: msg})
}
