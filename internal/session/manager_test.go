package session

import (
	"errors"
	"testing"
	"time"

	"riichiserver/internal/mahjong"
)

type fakeConn struct {
	sent []string
}

func (c *fakeConn) Send(msgType string, payload any) error {
	c.sent = append(c.sent, msgType)
	return nil
}
func (c *fakeConn) Close() error { return nil }

type fakeService struct {
	snapshotErr    error
	restoreErr     error
	aiSeats        [4]bool
	drawEventOK    bool
	actionEvents   []mahjong.Event
}

func (f *fakeService) StartGame(gameID string, names [4]string, aiSeats [4]bool, seed *mahjong.Seed) ([]mahjong.Event, error) {
	return []mahjong.Event{mahjong.NewTurnEvent(0, nil, 70)}, nil
}
func (f *fakeService) HandleAction(gameID string, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	return f.actionEvents, nil
}
func (f *fakeService) ReplaceWithAIPlayer(gameID string, seat int) error {
	f.aiSeats[seat] = true
	return nil
}
func (f *fakeService) RestoreHumanPlayer(gameID string, seat int) error { return f.restoreErr }
func (f *fakeService) BuildReconnectionSnapshot(gameID string, seat int) (any, error) {
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return map[string]int{"seat": seat}, nil
}
func (f *fakeService) BuildDrawEventForSeat(gameID string, seat int) (mahjong.Event, bool) {
	if !f.drawEventOK {
		return nil, false
	}
	return mahjong.DrawEvent{Seat: seat, Tile: 0}, true
}
func (f *fakeService) IsSeatAI(gameID string, seat int) bool { return f.aiSeats[seat] }
func (f *fakeService) CancelGame(gameID string) error        { return nil }

func TestReconnectNoSession(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	if err := m.Reconnect("missing-token", "g1", &fakeConn{}); !isCode(err, ErrReconnectNoSession) {
		t.Fatalf("expected RECONNECT_NO_SESSION, got %v", err)
	}
}

func TestReconnectGameMismatch(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	sd := m.sessions.Create("tok", "alice")
	sd.SetGameSeat("g1", 0)
	if err := m.Reconnect("tok", "g2", &fakeConn{}); !isCode(err, ErrReconnectGameMismatch) {
		t.Fatalf("expected RECONNECT_GAME_MISMATCH, got %v", err)
	}
}

func TestReconnectRetryLaterWhenStillConnected(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	sd := m.sessions.Create("tok", "alice")
	sd.SetGameSeat("g1", 0)
	// never marked disconnected
	if err := m.Reconnect("tok", "g1", &fakeConn{}); !isCode(err, ErrReconnectRetryLater) {
		t.Fatalf("expected RECONNECT_RETRY_LATER, got %v", err)
	}
}

func TestReconnectGameGone(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	sd := m.sessions.Create("tok", "alice")
	sd.SetGameSeat("g1", 0)
	sd.MarkDisconnected(time.Now())
	if err := m.Reconnect("tok", "g1", &fakeConn{}); !isCode(err, ErrReconnectGameGone) {
		t.Fatalf("expected RECONNECT_GAME_GONE, got %v", err)
	}
}

func TestReconnectSnapshotFailureLeavesSeatOnAI(t *testing.T) {
	svc := &fakeService{snapshotErr: errors.New("boom")}
	m := NewManager(svc, 60, 8, 30, "")
	sd := m.sessions.Create("tok", "alice")
	sd.SetGameSeat("g1", 0)
	sd.MarkDisconnected(time.Now())
	entry := m.games.Create("g1", [4]bool{true, false, false, false})

	err := m.Reconnect("tok", "g1", &fakeConn{})
	if !isCode(err, ErrReconnectSnapshotFailed) {
		t.Fatalf("expected RECONNECT_SNAPSHOT_FAILED, got %v", err)
	}
	if !entry.AI[0] {
		t.Fatalf("seat should remain AI-controlled after a snapshot failure")
	}
}

func TestReconnectHappyPathEmitsEvents(t *testing.T) {
	svc := &fakeService{drawEventOK: true}
	m := NewManager(svc, 60, 8, 30, "")
	sd := m.sessions.Create("tok", "alice")
	sd.SetGameSeat("g1", 1)
	sd.MarkDisconnected(time.Now())
	sd.SetRemainingBank(42)
	entry := m.games.Create("g1", [4]bool{true, true, true, true})
	entry.AI[1] = true

	reconnecting := &fakeConn{}
	other := &fakeConn{}
	entry.Conns[2] = other

	if err := m.Reconnect("tok", "g1", reconnecting); err != nil {
		t.Fatalf("expected successful reconnect, got %v", err)
	}
	if entry.AI[1] {
		t.Fatalf("seat 1 should be restored to human control")
	}
	if len(reconnecting.sent) == 0 || reconnecting.sent[0] != "game_reconnected" {
		t.Fatalf("expected game_reconnected sent first, got %v", reconnecting.sent)
	}
	foundDraw := false
	for _, s := range reconnecting.sent {
		if s == "draw" {
			foundDraw = true
		}
	}
	if !foundDraw {
		t.Fatalf("expected a re-emitted draw event, got %v", reconnecting.sent)
	}
	if len(other.sent) == 0 || other.sent[0] != "player_reconnected" {
		t.Fatalf("expected the other seat to get player_reconnected, got %v", other.sent)
	}
}

func isCode(err error, code ErrorCode) bool {
	se, ok := err.(SessionError)
	return ok && se.Code == code
}
