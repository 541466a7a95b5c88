package session

import (
	"sync"
	"time"

	"riichiserver/internal/replay"
)

// GameEntry is the concurrent layer's view of one running match: its
// exclusive lock, its four seat connections (nil where AI-controlled or
// disconnected), and bookkeeping for the disconnect cascade.
type GameEntry struct {
	lock sync.Mutex

	ID        string
	RoomID    string
	Names     [4]string
	StartedAt time.Time
	Conns     [4]Connection
	AI        [4]bool

	humanTokens [4]string // token currently occupying each human seat

	Recorder *replay.Recorder // nil when the manager was built without a replay directory
}

// TryLock attempts to acquire the game's exclusive lock without blocking,
// used by Reconnect's "a game lock is available" precondition (spec.md
// §4.11.2) so a reconnect never queues behind an in-flight action dispatch.
func (g *GameEntry) TryLock() bool { return g.lock.TryLock() }
func (g *GameEntry) Lock()         { g.lock.Lock() }
func (g *GameEntry) Unlock()       { g.lock.Unlock() }

func (g *GameEntry) humanCount() int {
	n := 0
	for i := range g.Conns {
		if !g.AI[i] {
			n++
		}
	}
	return n
}

// Broadcast routes ev to every connection whose seat matches ev.Target(),
// or to all connected seats when the target is mahjong.TargetAll. The rule
// engine never touches connections directly; this is the one place events
// cross from mahjong's vocabulary into the wire.
func (g *GameEntry) broadcast(dispatch func(Connection) error, target string) {
	for seat, conn := range g.Conns {
		if conn == nil {
			continue
		}
		if target == "all" || target == seatTargetName(seat) {
			_ = dispatch(conn)
		}
	}
}

func seatTargetName(seat int) string {
	switch seat {
	case 0:
		return "seat_0"
	case 1:
		return "seat_1"
	case 2:
		return "seat_2"
	case 3:
		return "seat_3"
	default:
		return "seat_unknown"
	}
}

// GameRegistry is the games table spec.md §4.11 names: game_id -> Game.
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]*GameEntry
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{games: make(map[string]*GameEntry)}
}

func (r *GameRegistry) Create(gameID string, aiSeats [4]bool) *GameEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &GameEntry{ID: gameID, AI: aiSeats}
	r.games[gameID] = g
	return g
}

func (r *GameRegistry) Get(gameID string) (*GameEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[gameID]
	return g, ok
}

func (r *GameRegistry) Delete(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
}

// Count returns the number of currently running games, for load reporting.
func (r *GameRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// HumanPlayerCount sums humanCount() across every running game, for load
// reporting alongside Count.
func (r *GameRegistry) HumanPlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, g := range r.games {
		g.Lock()
		n += g.humanCount()
		g.Unlock()
	}
	return n
}
