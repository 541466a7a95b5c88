package session

import (
	"os"
	"path/filepath"
	"testing"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/replay"
)

func TestOpenRecorderWritesHeaderAndEvents(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(&fakeService{}, 60, 8, 30, dir)
	entry := m.games.Create("g1", [4]bool{})

	names := [4]string{"Alice", "Bob", "Charlie", "Diana"}
	var seed mahjong.Seed
	m.openRecorder(entry, names, [4]bool{}, &seed)
	if entry.Recorder == nil {
		t.Fatalf("expected a recorder to be opened when replayDir is set")
	}

	m.recordEvents(entry, []mahjong.Event{mahjong.NewTurnEvent(0, nil, 70)})
	path := filepath.Join(dir, "g1.ndjson")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected a replay file at %s: %v", path, err)
	}

	r, err := replay.LoadReplayFromFile(path)
	if err != nil {
		t.Fatalf("LoadReplayFromFile: %v", err)
	}
	if r.PlayerNames != names {
		t.Fatalf("player names not preserved: %+v", r.PlayerNames)
	}
}

func TestOpenRecorderDisabledWithoutReplayDir(t *testing.T) {
	m := NewManager(&fakeService{}, 60, 8, 30, "")
	entry := m.games.Create("g1", [4]bool{})
	var seed mahjong.Seed
	m.openRecorder(entry, [4]string{"a", "b", "c", "d"}, [4]bool{}, &seed)
	if entry.Recorder != nil {
		t.Fatalf("expected no recorder when replayDir is empty")
	}
}

func TestRecordEventsFinalizesFileOnGameEnd(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(&fakeService{}, 60, 8, 30, dir)
	entry := m.games.Create("g1", [4]bool{})
	var seed mahjong.Seed
	m.openRecorder(entry, [4]string{"a", "b", "c", "d"}, [4]bool{}, &seed)

	end := mahjong.GameEndEvent{Standings: [4]mahjong.PlayerRanking{
		{Seat: 0, Name: "a", Score: 30000, Rank: 1},
		{Seat: 1, Name: "b", Score: 25000, Rank: 2},
		{Seat: 2, Name: "c", Score: 24000, Rank: 3},
		{Seat: 3, Name: "d", Score: 21000, Rank: 4},
	}}
	m.recordEvents(entry, []mahjong.Event{end})

	path := filepath.Join(dir, "g1.ndjson")
	if _, err := replay.LoadReplayFromFile(path); err != nil {
		t.Fatalf("expected a readable, finalized replay file: %v", err)
	}
}

func TestCancelGameDiscardsPartialReplay(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(&fakeService{}, 60, 8, 30, dir)
	entry := m.games.Create("g1", [4]bool{true, false, false, false})
	var seed mahjong.Seed
	m.openRecorder(entry, [4]string{"a", "b", "c", "d"}, [4]bool{true, false, false, false}, &seed)

	path := filepath.Join(dir, "g1.ndjson")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected the replay file to exist before cancellation: %v", err)
	}

	m.cancelGame(entry)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected the partial replay file to be discarded on cancelGame")
	}
}
