package session

import (
	"time"

	"riichiserver/internal/obs"
)

// Disconnect handles connection loss for a seated player: freezes the turn
// bank (if the seat's own turn was live), starts the reconnect grace
// timer, and severs the stored connection. Grounded on spec.md §4.11.1.
func (m *Manager) Disconnect(token string) {
	sd, ok := m.sessions.Get(token)
	if !ok || sd.GameID == "" {
		return
	}
	_, gameID, seat := sd.snapshot()

	entry, ok := m.games.Get(gameID)
	if !ok {
		return
	}

	entry.Lock()
	entry.Conns[seat] = nil
	entry.Unlock()

	if remaining, had := m.timers.FreezeTurnBank(gameID, seat); had {
		sd.SetRemainingBank(remaining)
	}
	sd.MarkDisconnected(time.Now())

	time.AfterFunc(time.Duration(m.reconnectGraceSec*float64(time.Second)), func() {
		m.graceExpired(token, gameID, seat)
	})
}

// graceExpired fires once the reconnect grace window elapses; it is a
// no-op if the player already reconnected (MarkConnected cleared the
// disconnected flag) in the meantime.
func (m *Manager) graceExpired(token, gameID string, seat int) {
	sd, ok := m.sessions.Get(token)
	if !ok || sd.IsConnected() {
		return
	}

	entry, ok := m.games.Get(gameID)
	if !ok {
		return
	}

	entry.Lock()
	defer entry.Unlock()

	if sd.IsConnected() {
		return
	}
	if err := m.Service.ReplaceWithAIPlayer(gameID, seat); err != nil {
		obs.Warn("session: replace-with-ai failed game=%s seat=%d err=%v", gameID, seat, err)
		return
	}
	entry.AI[seat] = true
	obs.Info("session: seat %d in game %s replaced with AI after grace expiry", seat, gameID)

	if entry.humanCount() == 0 {
		m.cancelGame(entry)
	}
}

// cancelGame tears down an all-AI game (spec.md §4.11 disconnect cascade:
// "if all human players leave a game, the game is cancelled"). Caller must
// already hold entry's lock.
func (m *Manager) cancelGame(entry *GameEntry) {
	if err := m.Service.CancelGame(entry.ID); err != nil {
		obs.Warn("session: cancel game %s failed: %v", entry.ID, err)
	}
	if entry.Recorder != nil {
		if err := entry.Recorder.CleanupGame(); err != nil {
			obs.Warn("session: discarding partial replay for game %s failed: %v", entry.ID, err)
		}
	}
	if m.OnGameAborted != nil {
		m.OnGameAborted(entry)
	}
	m.games.Delete(entry.ID)
}

// LeaveGame is the explicit client-initiated counterpart to Disconnect —
// same cascade, triggered by a leave_room/leave_game message rather than a
// severed connection.
func (m *Manager) LeaveGame(token string) {
	m.Disconnect(token)
}
