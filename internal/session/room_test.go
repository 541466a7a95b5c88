package session

import "testing"

func TestRoomJoinRejectsDuplicateTokenAndName(t *testing.T) {
	r := NewRoom("r1")
	if _, err := r.Join("tok-a", "alice"); err != nil {
		t.Fatalf("first join should succeed: %v", err)
	}
	if _, err := r.Join("tok-a", "alice2"); err == nil {
		t.Fatalf("same token joining twice must fail with ALREADY_IN_ROOM")
	}
	if _, err := r.Join("tok-b", "alice"); err == nil {
		t.Fatalf("duplicate name in the same room must fail with NAME_TAKEN")
	}
}

func TestRoomFillsUpAndRejectsFifth(t *testing.T) {
	r := NewRoom("r2")
	for i := 0; i < 4; i++ {
		if _, err := r.Join(string(rune('a'+i)), string(rune('A'+i))); err != nil {
			t.Fatalf("seat %d should join: %v", i, err)
		}
	}
	if _, err := r.Join("e", "E"); err == nil {
		t.Fatalf("fifth join should fail with ROOM_FULL")
	}
}

func TestAllReadyFillsEmptySeatsWithAI(t *testing.T) {
	r := NewRoom("r3")
	seat, _ := r.Join("tok-a", "alice")
	if seat != 0 {
		t.Fatalf("expected seat 0, got %d", seat)
	}
	if r.AllReady() {
		t.Fatalf("alice hasn't readied up yet")
	}
	if err := r.SetReady("tok-a", true); err != nil {
		t.Fatalf("set ready failed: %v", err)
	}
	if !r.AllReady() {
		t.Fatalf("expected AllReady to fill remaining seats with ready AI players")
	}
	for i := 1; i < 4; i++ {
		if r.Seats[i] == nil || !r.Seats[i].isAI {
			t.Fatalf("seat %d should have been filled with an AI player", i)
		}
	}
}

func TestLeaveEmptiesRoomWhenNoHumansRemain(t *testing.T) {
	r := NewRoom("r4")
	r.Join("tok-a", "alice")
	if empty := r.Leave("tok-a"); !empty {
		t.Fatalf("room with no humans left should report empty")
	}
}
