package replay

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"riichiserver/internal/mahjong"
)

func TestEncodeDecodeDiscardRoundTrip(t *testing.T) {
	packed := encodeDiscard(2, 118, true, false)
	seat, tile, tsumogiri, riichi, err := decodeDiscard(packed)
	if err != nil {
		t.Fatalf("decodeDiscard: %v", err)
	}
	if seat != 2 || tile != 118 || !tsumogiri || riichi {
		t.Fatalf("round-trip mismatch: seat=%d tile=%d tsumogiri=%v riichi=%v", seat, tile, tsumogiri, riichi)
	}
}

func TestDecodeDiscardRejectsOutOfRangeTile(t *testing.T) {
	// tile_id field holds 136, one past the valid 0..135 range.
	packed := 136 << discardSeatBits
	if _, _, _, _, err := decodeDiscard(packed); err == nil {
		t.Fatalf("expected an error for an out-of-range tile id")
	}
}

func TestEncodeDecodeMeldPonRoundTrip(t *testing.T) {
	d := meldData{Kind: mahjong.Pon, CallerSeat: 2, FromSeat: 0, Tiles: []mahjong.TileID{8, 9, 10}, CalledTile: 8, HasCalled: true}
	packed := encodeMeldCompact(d)
	decoded, err := decodeMeldCompact(packed)
	if err != nil {
		t.Fatalf("decodeMeldCompact: %v", err)
	}
	if decoded.Kind != mahjong.Pon || decoded.CallerSeat != 2 || decoded.FromSeat != 0 || decoded.CalledTile != 8 {
		t.Fatalf("round-trip mismatch: %+v", decoded)
	}
}

func TestEncodeDecodeMeldClosedKanHasNoFromSeat(t *testing.T) {
	d := meldData{Kind: mahjong.ClosedKan, CallerSeat: 1, FromSeat: -1, Tiles: []mahjong.TileID{0, 1, 2, 3}}
	decoded, err := decodeMeldCompact(encodeMeldCompact(d))
	if err != nil {
		t.Fatalf("decodeMeldCompact: %v", err)
	}
	if decoded.FromSeat != -1 {
		t.Fatalf("expected FromSeat -1 for a closed kan, got %d", decoded.FromSeat)
	}
	if decoded.HasCalled {
		t.Fatalf("closed kan should have no called tile")
	}
}

func testReplayContent() string {
	version := `{"version":"1.0"}`
	started := `{"t":8,"gid":"g1","p":[{"s":0,"nm":"Alice","ai":0},{"s":1,"nm":"Bob","ai":0},{"s":2,"nm":"Charlie","ai":0},{"s":3,"nm":"Diana","ai":0}],"sd":"` +
		"000000000000000000000000000000000000000000000000" + `","rv":"wall-v1"}`
	discard := `{"t":2,"d":` + strconv.Itoa(encodeDiscard(0, 118, false, false)) + `}`
	return version + "\n" + started + "\n" + discard
}

func TestLoadReplayFromStringParsesDiscard(t *testing.T) {
	replay, err := LoadReplayFromString(testReplayContent())
	if err != nil {
		t.Fatalf("LoadReplayFromString: %v", err)
	}
	if len(replay.Events) != 1 {
		t.Fatalf("expected one reconstructed action, got %d", len(replay.Events))
	}
	ev := replay.Events[0]
	if ev.PlayerName != "Alice" || ev.Action != mahjong.ActionDiscard {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Data["tile_id"] != 118 {
		t.Fatalf("expected tile_id 118, got %v", ev.Data["tile_id"])
	}
}

func TestLoadReplayRejectsEmptyContent(t *testing.T) {
	if _, err := LoadReplayFromString(""); err == nil {
		t.Fatalf("expected an error for empty content")
	}
}

func TestLoadReplayRejectsVersionMismatch(t *testing.T) {
	content := `{"version":"99.0"}` + "\n" + `{"t":8,"gid":"g","p":[],"sd":"x","rv":"wall-v1"}`
	if _, err := LoadReplayFromString(content); err == nil {
		t.Fatalf("expected an error for a version mismatch")
	}
}

func TestLoadReplayRejectsUnknownEventType(t *testing.T) {
	content := testReplayContent() + "\n" + `{"t":999}`
	if _, err := LoadReplayFromString(content); err == nil {
		t.Fatalf("expected an error for an unknown event type")
	}
}

func TestRecorderWritesReadableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.ndjson")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	names := [4]string{"Alice", "Bob", "Charlie", "Diana"}
	var seed mahjong.Seed
	if err := rec.WriteHeader("g1", seed, RNGVersion, names, [4]bool{}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := rec.Record(mahjong.DiscardEvent{Seat: 0, Tile: 4, IsTsumogiri: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.SaveAndCleanup(); err != nil {
		t.Fatalf("SaveAndCleanup: %v", err)
	}

	replay, err := LoadReplayFromFile(path)
	if err != nil {
		t.Fatalf("LoadReplayFromFile: %v", err)
	}
	if len(replay.Events) != 1 || replay.Events[0].PlayerName != "Alice" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
}

func TestCleanupGameRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.ndjson")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.CleanupGame(); err != nil {
		t.Fatalf("CleanupGame: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected the partial replay file to be removed")
	}
}
