package session

import (
	"testing"

	"riichiserver/internal/mahjong"
)

func TestOnGameEndFiresOnGameEndEventRegardlessOfRecording(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "") // no replay dir
	entry := m.games.Create("g1", [4]bool{})

	var gotEntry *GameEntry
	m.OnGameEnd = func(e *GameEntry, standings [4]mahjong.PlayerRanking) {
		gotEntry = e
	}

	end := mahjong.GameEndEvent{Standings: [4]mahjong.PlayerRanking{
		{Seat: 0, Name: "a", Score: 30000, Rank: 1},
		{Seat: 1, Name: "b", Score: 25000, Rank: 2},
		{Seat: 2, Name: "c", Score: 24000, Rank: 3},
		{Seat: 3, Name: "d", Score: 21000, Rank: 4},
	}}
	m.recordEvents(entry, []mahjong.Event{end})

	if gotEntry != entry {
		t.Fatalf("expected OnGameEnd to fire with the game's entry even without a replay directory configured")
	}
}

func TestOnGameAbortedFiresFromCancelGame(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	entry := m.games.Create("g1", [4]bool{true, false, false, false})

	called := false
	m.OnGameAborted = func(e *GameEntry) { called = true }

	m.cancelGame(entry)
	if !called {
		t.Fatalf("expected OnGameAborted to fire on cancelGame")
	}
}
