package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"riichiserver/internal/mahjong"
)

func TestGameRecordRoundTripsThroughBSON(t *testing.T) {
	start := time.Now().Truncate(time.Millisecond)
	end := start.Add(45 * time.Minute)

	rec := GameRecord{
		ID:        primitive.NewObjectID(),
		GameID:    "g1",
		RoomID:    "r1",
		Players:   []PlayerInfo{{SeatIndex: 0, Name: "alice"}, {SeatIndex: 1, Name: "bob", WasAI: true}},
		StartTime: start,
		EndTime:   end,
		Standings: []FinalStanding{{SeatIndex: 0, Name: "alice", Score: 30000, Rank: 1}},
		Status:    "completed",
	}

	data, err := bson.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out GameRecord
	if err := bson.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GameID != rec.GameID || out.RoomID != rec.RoomID || len(out.Players) != 2 {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
	if !out.StartTime.Equal(start) {
		t.Fatalf("start time mismatch: got %v, want %v", out.StartTime, start)
	}
}

func TestAbortedRecordHasNoStandings(t *testing.T) {
	rec := GameRecord{Status: "aborted"}
	data, err := bson.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded bson.M
	if err := bson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := decoded["standings"]; present {
		t.Fatalf("expected omitempty standings to be absent on an aborted record, got %v", decoded["standings"])
	}
}

func TestStandingsBuiltFromPlayerRankingPreserveSeatOrder(t *testing.T) {
	standings := [4]mahjong.PlayerRanking{
		{Seat: 2, Name: "c", Score: 10000, Rank: 4},
		{Seat: 0, Name: "a", Score: 40000, Rank: 1},
		{Seat: 1, Name: "b", Score: 25000, Rank: 2},
		{Seat: 3, Name: "d", Score: 25000, Rank: 3},
	}

	var out []FinalStanding
	for _, st := range standings {
		out = append(out, FinalStanding{SeatIndex: st.Seat, Name: st.Name, Score: st.Score, Rank: st.Rank})
	}

	if len(out) != 4 || out[0].SeatIndex != 2 || out[1].SeatIndex != 0 {
		t.Fatalf("expected standings to mirror the input array order, got %+v", out)
	}
}

func TestCloseOnNilStoreIsSafe(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatalf("expected Close on a nil store to be a no-op, got %v", err)
	}
}
