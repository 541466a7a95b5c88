package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/session"
	"riichiserver/internal/ticket"
)

// mapReplayCache mirrors internal/ticket's own test fake — a map-backed
// ReplayCache good enough for a single-process integration test.
type mapReplayCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMapReplayCache() *mapReplayCache { return &mapReplayCache{seen: make(map[string]bool)} }

func (c *mapReplayCache) CheckAndMark(jti string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[jti] {
		return true
	}
	c.seen[jti] = true
	return false
}

// stubService is a minimal GameService that deals nothing and just proves
// events flow from StartGame through to a connected client.
type stubService struct{}

func (stubService) StartGame(gameID string, names [4]string, aiSeats [4]bool, seed *mahjong.Seed) ([]mahjong.Event, error) {
	return []mahjong.Event{mahjong.NewTurnEvent(0, nil, 70)}, nil
}
func (stubService) HandleAction(gameID string, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	return nil, nil
}
func (stubService) ReplaceWithAIPlayer(gameID string, seat int) error { return nil }
func (stubService) RestoreHumanPlayer(gameID string, seat int) error { return nil }
func (stubService) BuildReconnectionSnapshot(gameID string, seat int) (any, error) { return nil, nil }
func (stubService) BuildDrawEventForSeat(gameID string, seat int) (mahjong.Event, bool) {
	return nil, false
}
func (stubService) IsSeatAI(gameID string, seat int) bool { return false }
func (stubService) CancelGame(gameID string) error        { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager, *ticket.Minter) {
	t.Helper()
	mgr := session.NewManager(stubService{}, 60, 8, 30, t.TempDir())
	minter := ticket.NewMinter("shared-secret", time.Minute)
	verifier := ticket.NewVerifier("shared-secret", newMapReplayCache())
	srv := NewServer(mgr, verifier)
	ts := httptest.NewServer(http.HandlerFunc(srv.ServeHTTP))
	return ts, mgr, minter
}

func dialWS(t *testing.T, ts *httptest.Server, rawTicket string) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?ticket=" + rawTicket
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v (resp=%v)", err, resp)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *gorillaws.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("malformed envelope: %v", err)
	}
	return env
}

func TestUpgradeRejectsMissingTicket(t *testing.T) {
	ts, _, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ws")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestUpgradeRejectsBadSignature(t *testing.T) {
	ts, _, _ := newTestServer(t)
	defer ts.Close()

	forged := ticket.NewMinter("wrong-secret", time.Minute)
	raw, err := forged.Mint("alice", "room-x")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	resp, err := http.Get(ts.URL + "/ws?ticket=" + raw)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a mis-signed ticket, got %d", resp.StatusCode)
	}
}

func TestJoinRoomAndAutoStartEmitsGameEvents(t *testing.T) {
	ts, mgr, minter := newTestServer(t)
	defer ts.Close()

	room := mgr.CreateRoom()
	raw, err := minter.Mint("alice", room.ID)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	conn := dialWS(t, ts, raw)
	defer conn.Close()

	if err := conn.WriteJSON(envelope{Type: "join_room"}); err != nil {
		t.Fatalf("write join_room: %v", err)
	}
	joined := readEnvelope(t, conn)
	if joined.Type != "room_joined" {
		t.Fatalf("expected room_joined, got %s", joined.Type)
	}
	var rj roomJoinedPayload
	if err := json.Unmarshal(joined.Payload, &rj); err != nil {
		t.Fatalf("bad room_joined payload: %v", err)
	}
	if rj.Seat != 0 {
		t.Fatalf("expected seat 0, got %d", rj.Seat)
	}

	if err := conn.WriteJSON(envelope{Type: "set_ready", Payload: json.RawMessage(`{"ready":true}`)}); err != nil {
		t.Fatalf("write set_ready: %v", err)
	}
	readyChanged := readEnvelope(t, conn)
	if readyChanged.Type != "player_ready_changed" {
		t.Fatalf("expected player_ready_changed, got %s", readyChanged.Type)
	}

	starting := readEnvelope(t, conn)
	if starting.Type != "game_starting" {
		t.Fatalf("expected game_starting, got %s", starting.Type)
	}

	turn := readEnvelope(t, conn)
	if turn.Type != "turn" {
		t.Fatalf("expected a turn event pass-through, got %s", turn.Type)
	}
}
