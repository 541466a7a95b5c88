// Package transport implements the duplex WebSocket front door spec.md
// §6.1 describes: ticket verification on upgrade, the client/server JSON
// message envelope, and dispatch into internal/session. Generalized from
// the teacher's framework/conn package (LongConnection's read/write pumps,
// ping/pong liveness, Manager's connection bookkeeping), narrowed from a
// custom binary protocal.Packet wire format to the JSON envelope this
// spec's protocol actually uses.
package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"riichiserver/internal/obs"
)

var (
	pongWait     = 30 * time.Second
	writeWait    = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	maxFrameSize int64 = 1 << 16
)

// envelope is the wire shape every message, in either direction, takes:
// {"type": "...", "payload": {...}}.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LongConnection wraps one upgraded *websocket.Conn, running the same
// read-pump/write-pump/ping-ticker split as the teacher's LongConnection,
// narrowed to this protocol's JSON envelope and without the teacher's
// worker-pool fan-out (one game's message volume never justifies sharding
// reads across goroutines the way a gate server's entire userbase does).
type LongConnection struct {
	conn      *websocket.Conn
	writeChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once

	onMessage func(envelope)
	onClose   func()
}

// NewLongConnection wraps conn and starts its read/write pumps. onMessage
// is invoked for every decoded client message on the read pump's own
// goroutine — callers that touch shared state must synchronize themselves
// (the session package's per-game lock already does this for anything
// routed through a *session.Manager). onClose fires exactly once, from
// whichever pump notices the connection died first.
func NewLongConnection(conn *websocket.Conn, onMessage func(envelope), onClose func()) *LongConnection {
	lc := &LongConnection{
		conn:      conn,
		writeChan: make(chan []byte, 32),
		closeChan: make(chan struct{}),
		onMessage: onMessage,
		onClose:   onClose,
	}
	conn.SetReadLimit(maxFrameSize)
	conn.SetPongHandler(lc.pongHandler)
	go lc.writePump()
	go lc.readPump()
	return lc
}

func (lc *LongConnection) pongHandler(string) error {
	return lc.conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (lc *LongConnection) readPump() {
	defer lc.Close()
	_ = lc.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, raw, err := lc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				obs.Warn("transport: unexpected close: %v", err)
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			obs.Warn("transport: malformed message dropped: %v", err)
			continue
		}
		lc.onMessage(env)
	}
}

func (lc *LongConnection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() {
		_ = lc.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-lc.writeChan:
			if !ok {
				_ = lc.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := lc.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				obs.Warn("transport: write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := lc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-lc.closeChan:
			return
		}
	}
}

// Send implements session.Connection: marshal payload behind msgType and
// queue it for the write pump. Never blocks the caller on a slow socket —
// a full queue drops the send rather than stalling a held game lock.
func (lc *LongConnection) Send(msgType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(envelope{Type: msgType, Payload: body})
	if err != nil {
		return err
	}
	select {
	case lc.writeChan <- buf:
		return nil
	default:
		obs.Warn("transport: write queue full, dropping %s", msgType)
		return nil
	}
}

// Close implements session.Connection.
func (lc *LongConnection) Close() error {
	lc.closeOnce.Do(func() {
		close(lc.closeChan)
		close(lc.writeChan)
		if lc.onClose != nil {
			lc.onClose()
		}
	})
	return nil
}
