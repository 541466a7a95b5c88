package mq

import (
	"encoding/json"
	"testing"
)

func TestSubjectIsNamespacedPerGame(t *testing.T) {
	if got, want := subject("g1"), "game.events.g1"; got != want {
		t.Fatalf("subject(%q) = %q, want %q", "g1", got, want)
	}
}

func TestFrameRoundTripsThroughJSON(t *testing.T) {
	f := Frame{GameID: "g1", Target: "seat_2", WireMsg: json.RawMessage(`{"type":"turn"}`)}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Frame
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GameID != f.GameID || out.Target != f.Target || string(out.WireMsg) != string(f.WireMsg) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, f)
	}
}
