package transport

import (
	"encoding/json"

	"riichiserver/internal/obs"
	"riichiserver/internal/session"
)

// dispatch.go routes one decoded client envelope to the matching
// *session.Manager call and fans the resulting lobby/game events back out
// over WebSocket connections, mirroring the teacher's Manager.messageHandler
// route-to-local-handler shape without its hall.marchRequest route-string
// indirection — this protocol's envelope.Type already names the handler.

func (s *Server) onJoinRoom(cs *clientSession, env envelope) {
	var p joinRoomPayload
	_ = json.Unmarshal(env.Payload, &p)
	roomID := p.RoomID
	if roomID == "" {
		roomID = cs.roomID
	}

	token := s.mgr.NewToken()
	room, seat, err := s.mgr.JoinRoom(roomID, token, cs.username)
	if err != nil {
		cs.sendError(err)
		return
	}

	cs.mu.Lock()
	cs.sessionToken = token
	cs.seatedRoom = roomID
	cs.seat = seat
	cs.mu.Unlock()

	s.mu.Lock()
	if s.roomConns[roomID] == nil {
		s.roomConns[roomID] = make(map[int]*clientSession)
	}
	s.roomConns[roomID][seat] = cs
	s.mu.Unlock()

	_ = cs.conn.Send("room_joined", roomJoinedPayload{
		Token: token, RoomID: roomID, Seat: seat, Names: room.Names(),
	})
	s.broadcastRoom(roomID, seat, "player_joined", playerJoinedPayload{Seat: seat, Name: cs.username})
}

func (s *Server) onLeaveRoom(cs *clientSession) {
	cs.mu.Lock()
	token, roomID, seat := cs.sessionToken, cs.seatedRoom, cs.seat
	cs.seatedRoom = ""
	cs.mu.Unlock()

	if token == "" || roomID == "" {
		return
	}
	// Re-derive the seat from the room itself rather than trusting the
	// connection-local cache, which only ever gets set once on join_room.
	if room, ok := s.mgr.Room(roomID); ok {
		if actual, ok := room.SeatOf(token); ok {
			seat = actual
		}
	}
	s.mgr.LeaveRoom(roomID, token)
	s.dropRoomConn(roomID, cs)
	s.broadcastRoom(roomID, seat, "player_left", playerLeftPayload{Seat: seat})
}

func (s *Server) onSetReady(cs *clientSession, env envelope) {
	var p setReadyPayload
	_ = json.Unmarshal(env.Payload, &p)

	cs.mu.Lock()
	token, roomID, seat := cs.sessionToken, cs.seatedRoom, cs.seat
	cs.mu.Unlock()
	if token == "" || roomID == "" {
		cs.sendError(session.SessionError{Code: session.ErrNotInRoom, Msg: "not seated in a room"})
		return
	}

	if err := s.mgr.SetReady(roomID, token, p.Ready); err != nil {
		cs.sendError(err)
		return
	}
	s.broadcastRoom(roomID, -1, "player_ready_changed", playerReadyChangedPayload{Seat: seat, Ready: p.Ready})
	s.attemptStart(roomID)
}

// attemptStart tries to transition a fully-readied room into a running
// game. A live seat (with a connection on record) is bound into the game
// entry and told game_starting before the first batch of events
// broadcasts; any human seat the transport never saw a connection for
// (shouldn't happen — join_room always records one) is silently skipped.
func (s *Server) attemptStart(roomID string) {
	gameID, events, ok, err := s.mgr.StartIfReady(roomID, nil)
	if err != nil {
		obs.Warn("transport: start_game failed for room %s: %v", roomID, err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	conns := s.roomConns[roomID]
	delete(s.roomConns, roomID)
	s.mu.Unlock()

	for seat, peer := range conns {
		peer.mu.Lock()
		peer.seatedGame = gameID
		peer.seatedRoom = ""
		peer.mu.Unlock()
		s.mgr.BindConnection(gameID, seat, peer.conn)
		_ = peer.conn.Send("game_starting", gameStartingPayload{GameID: gameID})
	}
	entry, ok := s.mgr.GameEntry(gameID)
	if !ok {
		return
	}
	s.mgr.Broadcast(entry, events)
	s.publishEvents(gameID, events)
}

func (s *Server) onReconnect(cs *clientSession, env envelope) {
	var p reconnectPayload
	_ = json.Unmarshal(env.Payload, &p)

	if err := s.mgr.Reconnect(p.Token, p.GameID, cs.conn); err != nil {
		cs.sendError(err)
		return
	}
	cs.mu.Lock()
	cs.sessionToken = p.Token
	cs.seatedGame = p.GameID
	cs.mu.Unlock()
}

func (s *Server) onGameAction(cs *clientSession, env envelope) {
	var p gameActionPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		cs.sendError(session.SessionError{Code: session.ErrNotInRoom, Msg: "malformed game_action payload"})
		return
	}
	action, data, ok := decodeActionData(p)
	if !ok {
		_ = cs.conn.Send("error", errorPayload{Code: "INVALID_ACTION", Msg: "unknown action " + p.Action})
		return
	}

	cs.mu.Lock()
	token := cs.sessionToken
	cs.mu.Unlock()

	events, err := s.mgr.HandleAction(token, action, data)
	if err != nil {
		cs.sendError(err)
		return
	}
	gameID := cs.seatedGameID()
	if entry, ok := s.mgr.GameEntry(gameID); ok {
		s.mgr.Broadcast(entry, events)
		s.publishEvents(gameID, events)
	}
}

func (cs *clientSession) seatedGameID() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.seatedGame
}

func (s *Server) onChat(cs *clientSession, env envelope) {
	var p chatPayload
	_ = json.Unmarshal(env.Payload, &p)

	cs.mu.Lock()
	roomID := cs.seatedRoom
	cs.mu.Unlock()
	if roomID == "" {
		return
	}
	s.broadcastRoom(roomID, -1, "chat", struct {
		From string `json:"from"`
		Text string `json:"text"`
	}{From: cs.username, Text: p.Text})
}

func (s *Server) broadcastRoom(roomID string, exceptSeat int, msgType string, payload any) {
	s.mu.Lock()
	conns := s.roomConns[roomID]
	s.mu.Unlock()
	for seat, peer := range conns {
		if seat == exceptSeat {
			continue
		}
		_ = peer.conn.Send(msgType, payload)
	}
}

func (s *Server) dropRoomConn(roomID string, cs *clientSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conns, ok := s.roomConns[roomID]; ok {
		delete(conns, cs.seat)
		if len(conns) == 0 {
			delete(s.roomConns, roomID)
		}
	}
}
