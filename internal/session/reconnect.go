package session

// GameReconnectedEvent is the "game_reconnected" payload sent to the seat
// that just reconnected; Snapshot is whatever BuildReconnectionSnapshot
// returned.
type GameReconnectedEvent struct {
	Seat     int
	Snapshot any
}

// PlayerReconnectedEvent is the "player_reconnected" payload broadcast to
// the other three seats.
type PlayerReconnectedEvent struct {
	Seat int
}

// Reconnect implements spec.md §4.11.2's validation chain and the
// concurrent-reconnect race defeat (recheck under the game lock). conn is
// bound to the seat only once every check has passed.
func (m *Manager) Reconnect(token, requestedGameID string, conn Connection) error {
	sd, ok := m.sessions.Get(token)
	if !ok {
		return sessErr(ErrReconnectNoSession, "unknown session token")
	}

	roomID, gameID, seat := sd.snapshot()
	if gameID == "" || gameID != requestedGameID {
		return sessErr(ErrReconnectGameMismatch, "token is not bound to the requested game")
	}
	if roomID != "" {
		return sessErr(ErrReconnectInRoom, "token is still seated in a room lobby")
	}
	if sd.IsConnected() {
		// Disconnect hasn't been recorded yet — caller raced ahead of the
		// server noticing the drop.
		return sessErr(ErrReconnectRetryLater, "session not yet marked disconnected")
	}

	entry, ok := m.games.Get(gameID)
	if !ok {
		return sessErr(ErrReconnectGameGone, "game no longer exists")
	}
	if !entry.TryLock() {
		return sessErr(ErrReconnectRetryLater, "game is mid-dispatch, try again")
	}
	defer entry.Unlock()

	// Recheck under the lock: another reconnect attempt (or a fresh
	// disconnect) may have changed things between the snapshot above and
	// acquiring the lock.
	if sd.IsConnected() {
		return sessErr(ErrReconnectAlreadyActive, "another connection already reconnected this seat")
	}
	if seat < 0 || seat > 3 {
		return sessErr(ErrReconnectNoSeat, "session has no seat recorded")
	}

	snapshot, err := m.Service.BuildReconnectionSnapshot(gameID, seat)
	if err != nil {
		// Leave the seat under AI control; the game continues uninterrupted.
		return sessErr(ErrReconnectSnapshotFailed, err.Error())
	}

	if err := m.Service.RestoreHumanPlayer(gameID, seat); err != nil {
		return sessErr(ErrReconnectSnapshotFailed, err.Error())
	}
	entry.AI[seat] = false
	entry.Conns[seat] = conn
	entry.humanTokens[seat] = token

	if bank, had := sd.TakeRemainingBank(); had {
		m.timers.StartTurnBank(gameID, seat, bank, m.turnBankFired)
	}
	sd.MarkConnected()

	return m.emitReconnectionEvents(entry, seat, conn, snapshot)
}

func (m *Manager) emitReconnectionEvents(entry *GameEntry, seat int, conn Connection, snapshot any) error {
	if err := conn.Send("game_reconnected", GameReconnectedEvent{Seat: seat, Snapshot: snapshot}); err != nil {
		return err
	}
	entry.broadcast(func(c Connection) error {
		if c == conn {
			return nil
		}
		return c.Send("player_reconnected", PlayerReconnectedEvent{Seat: seat})
	}, "all")

	if ev, ok := m.Service.BuildDrawEventForSeat(entry.ID, seat); ok {
		return dispatchEvent(conn, ev)
	}
	return nil
}
