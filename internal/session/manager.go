package session

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/obs"
	"riichiserver/internal/replay"
)

// Manager is the session coordinator of spec.md §4.11: it owns rooms,
// games, the session store, and the timer manager, and is the sole caller
// of GameService — every entry point acquires the relevant game's lock
// before touching state and releases it once outgoing events are
// dispatched, per spec.md §5.
type Manager struct {
	Service GameService

	rooms    *RoomManager
	games    *GameRegistry
	sessions *Store
	timers   *TimerManager

	turnBankSec       float64
	meldWindowSec     float64
	reconnectGraceSec float64

	replayDir string // empty disables the replay collector entirely

	// OnGameEnd/OnGameAborted, when set, are invoked once per game's
	// lifetime with enough detail for a durable persistence layer
	// (internal/persistence/mongo) to write a summary record — left nil
	// this manager never touches that package, keeping it optional.
	OnGameEnd     func(entry *GameEntry, standings [4]mahjong.PlayerRanking)
	OnGameAborted func(entry *GameEntry)

	tokenCounter uint64
}

func NewManager(svc GameService, turnBankSec, meldWindowSec, reconnectGraceSec float64, replayDir string) *Manager {
	return &Manager{
		Service:           svc,
		rooms:             NewRoomManager(),
		games:             NewGameRegistry(),
		sessions:          NewStore(),
		timers:            NewTimerManager(),
		turnBankSec:       turnBankSec,
		meldWindowSec:     meldWindowSec,
		reconnectGraceSec: reconnectGraceSec,
		replayDir:         replayDir,
	}
}

func (m *Manager) NewToken() string {
	n := atomic.AddUint64(&m.tokenCounter, 1)
	return fmt.Sprintf("tok-%x-%d", time.Now().UnixNano(), n)
}

// --- Lobby ---

func (m *Manager) CreateRoom() *Room { return m.rooms.Create() }

// Room exposes a lobby room by id, for transport-layer callers that need to
// re-derive a seat from its authoritative Room.SeatOf rather than trust a
// connection-local cache.
func (m *Manager) Room(roomID string) (*Room, bool) { return m.rooms.Get(roomID) }

func (m *Manager) JoinRoom(roomID, token, playerName string) (*Room, int, error) {
	if sd, ok := m.sessions.Get(token); ok && sd.GameID != "" {
		return nil, -1, sessErr(ErrAlreadyInGame, "token is already seated in a running game")
	}
	if m.sessions.NameTaken(playerName) {
		return nil, -1, sessErr(ErrNameTaken, "name already in use")
	}
	room, ok := m.rooms.Get(roomID)
	if !ok {
		return nil, -1, sessErr(ErrRoomNotFound, "no such room")
	}
	seat, err := room.Join(token, playerName)
	if err != nil {
		return nil, -1, err
	}
	sd := m.sessions.Create(token, playerName)
	sd.SetRoom(roomID)
	return room, seat, nil
}

func (m *Manager) LeaveRoom(roomID, token string) {
	room, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}
	if empty := room.Leave(token); empty {
		m.rooms.Delete(roomID)
	}
	m.sessions.Remove(token)
}

func (m *Manager) SetReady(roomID, token string, ready bool) error {
	room, ok := m.rooms.Get(roomID)
	if !ok {
		return sessErr(ErrRoomNotFound, "no such room")
	}
	return room.SetReady(token, ready)
}

// StartIfReady transitions a fully-ready room into a running game, fills
// empty seats with AI players, and returns the game id plus the service's
// start_game events. Returns ok=false if the room isn't ready yet.
func (m *Manager) StartIfReady(roomID string, seed *mahjong.Seed) (gameID string, events []mahjong.Event, ok bool, err error) {
	room, exists := m.rooms.Get(roomID)
	if !exists {
		return "", nil, false, sessErr(ErrRoomNotFound, "no such room")
	}
	if !room.AllReady() {
		return "", nil, false, nil
	}

	names, tokens, aiSeats := room.BeginTransition()
	gameID = roomID // one game per room, the room id doubles as game id

	entry := m.games.Create(gameID, aiSeats)
	entry.RoomID = roomID
	entry.Names = names
	entry.StartedAt = time.Now()
	for i, tok := range tokens {
		if tok == "" || aiSeats[i] {
			continue
		}
		if sd, found := m.sessions.Get(tok); found {
			sd.SetGameSeat(gameID, i)
		}
		entry.humanTokens[i] = tok
	}

	events, err = m.Service.StartGame(gameID, names, aiSeats, seed)
	if err != nil {
		m.games.Delete(gameID)
		return "", nil, false, err
	}
	room.MarkStarted()
	m.openRecorder(entry, names, aiSeats, seed)
	m.armTimersFromEvents(entry, events)
	m.recordEvents(entry, events)
	return gameID, events, true, nil
}

// openRecorder starts a per-game replay collector (spec.md §4.11 "the
// replay collector is per-game; the manager hands it events as they
// emerge"). A blank replayDir disables recording entirely — useful for
// tests and for AI-vs-AI scrims nobody needs to replay.
func (m *Manager) openRecorder(entry *GameEntry, names [4]string, aiSeats [4]bool, seed *mahjong.Seed) {
	if m.replayDir == "" {
		return
	}
	path := filepath.Join(m.replayDir, entry.ID+".ndjson")
	rec, err := replay.NewRecorder(path)
	if err != nil {
		obs.Warn("session: could not open replay file for game %s: %v", entry.ID, err)
		return
	}
	var sd mahjong.Seed
	if seed != nil {
		sd = *seed
	}
	if err := rec.WriteHeader(entry.ID, sd, replay.RNGVersion, names, aiSeats); err != nil {
		obs.Warn("session: could not write replay header for game %s: %v", entry.ID, err)
		return
	}
	entry.Recorder = rec
}

// recordEvents appends every event to the game's replay collector (if
// recording is enabled), finalizes the file once a GameEndEvent shows the
// match is over, and — independent of whether replay recording is on —
// fires OnGameEnd so a persistence layer can still write its summary
// record for a replay-less deployment.
func (m *Manager) recordEvents(entry *GameEntry, events []mahjong.Event) {
	for _, ev := range events {
		if entry.Recorder != nil {
			if err := entry.Recorder.Record(ev); err != nil {
				obs.Warn("session: replay write failed for game %s: %v", entry.ID, err)
				return
			}
		}
		if end, ok := ev.(mahjong.GameEndEvent); ok {
			if entry.Recorder != nil {
				if err := entry.Recorder.SaveAndCleanup(); err != nil {
					obs.Warn("session: replay save failed for game %s: %v", entry.ID, err)
				}
			}
			if m.OnGameEnd != nil {
				m.OnGameEnd(entry, end.Standings)
			}
		}
	}
}

// --- In-game action dispatch ---

// HandleAction looks up the caller's game and seat by token, acquires the
// game lock, dispatches to the service, arms/disarms timers, and returns
// the events for the caller to broadcast.
func (m *Manager) HandleAction(token string, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	sd, ok := m.sessions.Get(token)
	if !ok || sd.GameID == "" {
		return nil, sessErr(ErrNotInRoom, "no active game for this session")
	}
	_, gameID, seat := sd.snapshot()

	entry, ok := m.games.Get(gameID)
	if !ok {
		return nil, sessErr(ErrReconnectGameGone, "game no longer exists")
	}

	entry.Lock()
	defer entry.Unlock()

	m.timers.Stop(gameID, seat)
	events, err := m.Service.HandleAction(gameID, seat, action, data)
	if err != nil {
		return nil, err
	}
	m.armTimersFromEvents(entry, events)
	m.recordEvents(entry, events)
	return events, nil
}

// turnBankFired is the TimeoutFunc for a depleted turn-bank timer: the
// engine performs a tsumogiri discard of the just-drawn tile (spec.md
// §4.11 "TURN timeout"). Re-acquires the game lock and is a no-op if the
// game has already moved past this seat's turn.
func (m *Manager) turnBankFired(gameID string, seat int) {
	entry, ok := m.games.Get(gameID)
	if !ok {
		return
	}
	entry.Lock()
	defer entry.Unlock()

	if m.Service.IsSeatAI(gameID, seat) {
		return
	}

	events, err := m.Service.HandleAction(gameID, seat, mahjong.ActionDiscard, mahjong.DiscardActionData{})
	if err != nil {
		obs.Warn("session: turn-bank timeout discard failed game=%s seat=%d err=%v", gameID, seat, err)
		return
	}
	m.armTimersFromEvents(entry, events)
	m.recordEvents(entry, events)
	m.Broadcast(entry, events)
}

// meldWindowFired is the TimeoutFunc for a fixed call-prompt window: the
// seat's non-response auto-passes (spec.md §4.11 "auto-passes").
func (m *Manager) meldWindowFired(gameID string, seat int) {
	entry, ok := m.games.Get(gameID)
	if !ok {
		return
	}
	entry.Lock()
	defer entry.Unlock()

	if m.Service.IsSeatAI(gameID, seat) {
		return
	}

	events, err := m.Service.HandleAction(gameID, seat, mahjong.ActionPass, nil)
	if err != nil {
		obs.Warn("session: meld-window timeout pass failed game=%s seat=%d err=%v", gameID, seat, err)
		return
	}
	m.armTimersFromEvents(entry, events)
	m.recordEvents(entry, events)
	m.Broadcast(entry, events)
}

// armTimersFromEvents inspects the events a dispatch produced and arms the
// right timer for whatever happens next: a turn-bank timer for a newly
// current seat, or fixed meld windows for every seat a new call prompt is
// still waiting on.
func (m *Manager) armTimersFromEvents(entry *GameEntry, events []mahjong.Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case mahjong.TurnEvent:
			if !entry.AI[e.CurrentSeat] {
				m.timers.StartTurnBank(entry.ID, e.CurrentSeat, m.turnBankSec, m.turnBankFired)
			}
		case mahjong.CallPromptEvent:
			for seat := range e.Prompt.PendingSeats {
				if !entry.AI[seat] {
					m.timers.StartMeldWindow(entry.ID, seat, m.meldWindowSec, m.meldWindowFired)
				}
			}
		}
	}
}

// Broadcast fans events out to every connected seat per its Target().
func (m *Manager) Broadcast(entry *GameEntry, events []mahjong.Event) {
	for _, ev := range events {
		ev := ev
		entry.broadcast(func(conn Connection) error { return dispatchEvent(conn, ev) }, ev.Target())
	}
}

// GameEntry exposes a running game's concurrent-layer entry to the
// transport layer, which needs it to re-use Manager.Broadcast's
// target-routing after binding fresh connections post-start_game.
func (m *Manager) GameEntry(gameID string) (*GameEntry, bool) {
	return m.games.Get(gameID)
}

// ActiveGameCount and ActivePlayerCount feed cmd/gameserver's periodic load
// sampler, the same two figures the teacher's load_info.CalculateLoad
// weighs alongside CPU/memory.
func (m *Manager) ActiveGameCount() int   { return m.games.Count() }
func (m *Manager) ActivePlayerCount() int { return m.games.HumanPlayerCount() }

// BindConnection attaches a live connection to a game seat — called once
// by the transport layer right after a successful join/start or reconnect.
func (m *Manager) BindConnection(gameID string, seat int, conn Connection) {
	if entry, ok := m.games.Get(gameID); ok {
		entry.Lock()
		entry.Conns[seat] = conn
		entry.Unlock()
	}
}
