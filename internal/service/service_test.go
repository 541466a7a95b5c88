package service

import (
	"testing"

	"riichiserver/internal/mahjong"
)

func testSeed(b byte) mahjong.Seed {
	var s mahjong.Seed
	for i := range s {
		s[i] = b
	}
	return s
}

func newTestService() *Service {
	return New(mahjong.DefaultRuleConfig(), nil)
}

func TestStartGameDealsAndEmitsFirstTurn(t *testing.T) {
	s := newTestService()
	seed := testSeed(1)
	names := [4]string{"alice", "bob", "carol", "dave"}
	events, err := s.StartGame("g1", names, [4]bool{}, &seed)
	if err != nil {
		t.Fatalf("StartGame returned error: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected at least one event from StartGame")
	}
	var turn mahjong.TurnEvent
	found := false
	for _, ev := range events {
		if t2, ok := ev.(mahjong.TurnEvent); ok {
			turn, found = t2, true
		}
	}
	if !found {
		t.Fatalf("expected a TurnEvent among StartGame's events, got %#v", events)
	}
	if turn.Seat != 0 {
		t.Fatalf("dealer of round 0 is seat 0, got seat %d", turn.Seat)
	}

	rt, ok := s.get("g1")
	if !ok {
		t.Fatalf("game was not registered")
	}
	for seat := 0; seat < 4; seat++ {
		if len(rt.state.Round.Players[seat].Tiles) != 13 {
			t.Fatalf("seat %d expected 13 dealt tiles, got %d", seat, len(rt.state.Round.Players[seat].Tiles))
		}
	}
}

func TestStartGameIsDeterministicForSameSeed(t *testing.T) {
	seed := testSeed(5)
	names := [4]string{"a", "b", "c", "d"}

	s1 := newTestService()
	_, err := s1.StartGame("g1", names, [4]bool{}, &seed)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	rt1, _ := s1.get("g1")

	s2 := newTestService()
	_, err = s2.StartGame("g1", names, [4]bool{}, &seed)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	rt2, _ := s2.get("g1")

	for seat := 0; seat < 4; seat++ {
		a, b := rt1.state.Round.Players[seat].Tiles, rt2.state.Round.Players[seat].Tiles
		if len(a) != len(b) {
			t.Fatalf("seat %d tile count diverged", seat)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("seat %d tile %d diverged between identically-seeded games", seat, i)
			}
		}
	}
}

func TestHandleActionRejectsDiscardFromWrongSeat(t *testing.T) {
	s := newTestService()
	seed := testSeed(2)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	rt, _ := s.get("g1")
	notDealer := (rt.state.Round.DealerSeat + 1) % 4
	events, err := s.HandleAction("g1", notDealer, mahjong.ActionDiscard, mahjong.DiscardActionData{TileID: 0})
	if err != nil {
		t.Fatalf("HandleAction should report the error via an ErrorEvent, not a Go error: %v", err)
	}
	found := false
	for _, ev := range events {
		if errEv, ok := ev.(mahjong.ErrorEvent); ok && errEv.Code == mahjong.ErrNotYourTurn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a NOT_YOUR_TURN error event, got %#v", events)
	}
}

func TestHandleActionDiscardAdvancesTurn(t *testing.T) {
	s := newTestService()
	seed := testSeed(11)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	rt, _ := s.get("g1")
	dealer := rt.state.Round.DealerSeat
	lastDrawn := rt.state.Round.Players[dealer].LastDrawn

	events, err := s.HandleAction("g1", dealer, mahjong.ActionDiscard, mahjong.DiscardActionData{TileID: lastDrawn})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	sawDiscard := false
	for _, ev := range events {
		if d, ok := ev.(mahjong.DiscardEvent); ok && d.Seat == dealer {
			sawDiscard = true
		}
	}
	if !sawDiscard {
		t.Fatalf("expected a DiscardEvent from seat %d, got %#v", dealer, events)
	}
}

func TestReplaceAndRestoreHumanPlayer(t *testing.T) {
	s := newTestService()
	seed := testSeed(3)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	if s.IsSeatAI("g1", 2) {
		t.Fatalf("seat 2 should start as a human")
	}
	if err := s.ReplaceWithAIPlayer("g1", 2); err != nil {
		t.Fatalf("ReplaceWithAIPlayer: %v", err)
	}
	if !s.IsSeatAI("g1", 2) {
		t.Fatalf("seat 2 should now be AI-controlled")
	}
	if err := s.RestoreHumanPlayer("g1", 2); err != nil {
		t.Fatalf("RestoreHumanPlayer: %v", err)
	}
	if s.IsSeatAI("g1", 2) {
		t.Fatalf("seat 2 should be human again")
	}
}

func TestAllAIGameRunsToCompletionWithoutHanging(t *testing.T) {
	s := newTestService()
	seed := testSeed(4)
	names := [4]string{"a", "b", "c", "d"}
	events, err := s.StartGame("g1", names, [4]bool{true, true, true, true}, &seed)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	sawRoundEnd := false
	for _, ev := range events {
		if _, ok := ev.(mahjong.RoundEndEvent); ok {
			sawRoundEnd = true
		}
	}
	if !sawRoundEnd {
		t.Fatalf("a table of four tsumogiri AIs should finish round 0 via exhaustive draw or a lucky win, got %d events", len(events))
	}
}

func TestCancelGameRemovesState(t *testing.T) {
	s := newTestService()
	seed := testSeed(6)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if err := s.CancelGame("g1"); err != nil {
		t.Fatalf("CancelGame: %v", err)
	}
	if _, ok := s.get("g1"); ok {
		t.Fatalf("game state should be gone after CancelGame")
	}
}

func TestBuildReconnectionSnapshotIncludesOwnHandOnly(t *testing.T) {
	s := newTestService()
	seed := testSeed(8)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	snapAny, err := s.BuildReconnectionSnapshot("g1", 1)
	if err != nil {
		t.Fatalf("BuildReconnectionSnapshot: %v", err)
	}
	snap, ok := snapAny.(ReconnectionSnapshot)
	if !ok {
		t.Fatalf("expected a ReconnectionSnapshot, got %T", snapAny)
	}
	if snap.Seat != 1 {
		t.Fatalf("snapshot seat mismatch: got %d", snap.Seat)
	}
	if len(snap.Hand) == 0 {
		t.Fatalf("expected seat 1's own hand in the snapshot")
	}
	if len(snap.Players) != 4 {
		t.Fatalf("expected four player snapshots")
	}
}

func TestBuildDrawEventForSeatOnlyForCurrentActor(t *testing.T) {
	s := newTestService()
	seed := testSeed(9)
	names := [4]string{"a", "b", "c", "d"}
	if _, err := s.StartGame("g1", names, [4]bool{}, &seed); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	rt, _ := s.get("g1")
	dealer := rt.state.Round.DealerSeat

	if _, ok := s.BuildDrawEventForSeat("g1", (dealer+1)%4); ok {
		t.Fatalf("non-current seat should not have a pending draw event")
	}
	ev, ok := s.BuildDrawEventForSeat("g1", dealer)
	if !ok {
		t.Fatalf("expected a pending draw event for the dealer")
	}
	if d, ok := ev.(mahjong.DrawEvent); !ok || d.Seat != dealer {
		t.Fatalf("expected a DrawEvent for seat %d, got %#v", dealer, ev)
	}
}
