package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/mq"
	"riichiserver/internal/obs"
	"riichiserver/internal/session"
	"riichiserver/internal/ticket"
)

// Server is the WebSocket front door: it verifies game tickets on upgrade
// and routes decoded envelopes into a *session.Manager, generalized from
// the teacher's framework/conn.Manager (connection bucketing, BindUser,
// upgradeFunc) narrowed to this protocol's single /ws route and JSON
// envelope instead of protocal.Packet framing.
type Server struct {
	mgr      *session.Manager
	verifier *ticket.Verifier
	upgrader websocket.Upgrader
	bus      *mq.Bus // nil when running single-node; set via SetBus

	mu        sync.Mutex
	roomConns map[string]map[int]*clientSession // roomID -> seat -> session, lobby phase only
}

func NewServer(mgr *session.Manager, verifier *ticket.Verifier) *Server {
	return &Server{
		mgr:      mgr,
		verifier: verifier,
		roomConns: make(map[string]map[int]*clientSession),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// SetBus attaches the cross-node event bus. Optional: a single-node
// deployment never calls this, and publishEvents becomes a no-op.
func (s *Server) SetBus(bus *mq.Bus) { s.bus = bus }

// publishEvents mirrors a just-broadcast batch of events onto the cross-node
// bus so a connector node holding one of this game's seats on a different
// process also receives them — local delivery via Manager.Broadcast already
// happened by the time this is called, so a publish failure here never
// drops a locally-connected client's frame.
func (s *Server) publishEvents(gameID string, events []mahjong.Event) {
	if s.bus == nil {
		return
	}
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		wireType := session.EventWireType(ev)
		frame, err := json.Marshal(envelope{Type: wireType, Payload: body})
		if err != nil {
			continue
		}
		_ = s.bus.Publish(gameID, ev.Target(), frame)
	}
}

// ServeHTTP upgrades the connection once its ticket checks out; an invalid
// or replayed ticket closes the attempt with an HTTP auth error instead of
// ever reaching the WebSocket handshake (spec.md §6.3: "on failure the
// connection is closed with an auth error").
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ticket")
	if raw == "" {
		http.Error(w, "missing ticket", http.StatusUnauthorized)
		return
	}
	claims, err := s.verifier.Verify(raw)
	if err != nil {
		obs.Warn("transport: ticket rejected from %s: %v", r.RemoteAddr, err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		obs.Warn("transport: upgrade failed: %v", err)
		return
	}

	cs := &clientSession{
		server:   s,
		username: claims.Username,
		roomID:   claims.RoomID,
	}
	cs.conn = NewLongConnection(conn, cs.handle, cs.handleClose)
	obs.Info("transport: connection established user=%s room=%s", claims.Username, claims.RoomID)
}

// clientSession tracks the per-connection state a raw *LongConnection
// knows nothing about: which room/seat/game token this socket currently
// occupies, filled in as join_room/set_ready/reconnect messages arrive.
type clientSession struct {
	server *Server
	conn   *LongConnection

	username string
	roomID   string // from the ticket; join_room may target a different room

	mu           sync.Mutex
	sessionToken string
	seatedRoom   string
	seatedGame   string
	seat         int
}

func (cs *clientSession) handle(env envelope) {
	switch env.Type {
	case "join_room":
		cs.server.onJoinRoom(cs, env)
	case "leave_room":
		cs.server.onLeaveRoom(cs)
	case "set_ready":
		cs.server.onSetReady(cs, env)
	case "reconnect":
		cs.server.onReconnect(cs, env)
	case "game_action":
		cs.server.onGameAction(cs, env)
	case "chat":
		cs.server.onChat(cs, env)
	case "pong":
		// liveness only; the ping ticker already refreshed the read deadline.
	default:
		_ = cs.conn.Send("error", errorPayload{Code: "INVALID_ACTION", Msg: "unknown message type " + env.Type})
	}
}

func (cs *clientSession) handleClose() {
	cs.mu.Lock()
	token := cs.sessionToken
	room := cs.seatedRoom
	game := cs.seatedGame
	cs.mu.Unlock()

	if token == "" {
		return
	}
	if game != "" {
		cs.server.mgr.Disconnect(token)
	} else if room != "" {
		cs.server.mgr.LeaveRoom(room, token)
	}
	if room != "" {
		cs.server.dropRoomConn(room, cs)
	}
}

func (cs *clientSession) sendError(err error) {
	if se, ok := err.(session.SessionError); ok {
		_ = cs.conn.Send("error", errorPayload{Code: string(se.Code), Msg: se.Msg})
		return
	}
	_ = cs.conn.Send("error", errorPayload{Code: "INVALID_ACTION", Msg: err.Error()})
}
