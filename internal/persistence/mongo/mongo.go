// Package mongo is the durable game-record store spec.md §4.12's
// save_and_cleanup hands off to once the NDJSON replay file is finalized:
// a small per-game summary document (room, players, final standings,
// timing), distinct from the replay collector's full action log.
// Generalized from the teacher's common/database.MongoManager (client/db
// handle, URI+pool-size options, ping on connect) and
// core/infrastructure/persistence.GameRecordRepository narrowed from that
// repository's two-collection (game_records + round_records) shape down
// to one collection — this spec's replay file already IS the per-round
// event log, so a second round_records collection would just duplicate it.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"riichiserver/internal/config"
	"riichiserver/internal/mahjong"
)

// Store owns the mongo client and database handle, mirroring the teacher's
// MongoManager field-for-field.
type Store struct {
	cli *mongo.Client
	db  *mongo.Database
}

// Connect dials conf.URL, pings the primary to fail fast on a bad URI, and
// selects conf.DB.
func Connect(conf config.MongoConf) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Store{cli: client, db: client.Database(conf.DB)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.cli == nil {
		return nil
	}
	return s.cli.Disconnect(context.Background())
}

// PlayerInfo names one seat's occupant at game start, mirroring the
// teacher's entity.PlayerInfo narrowed to this spec's seat-index vocabulary
// (no separate user-id system; the display name is the identity).
type PlayerInfo struct {
	SeatIndex int    `bson:"seat_index"`
	Name      string `bson:"name"`
	WasAI     bool   `bson:"was_ai"`
}

// FinalStanding mirrors the teacher's entity.PlayerRanking, built directly
// from a mahjong.PlayerRanking rather than round-tripped through bson.M.
type FinalStanding struct {
	SeatIndex int    `bson:"seat_index"`
	Name      string `bson:"name"`
	Score     int    `bson:"score"`
	Rank      int    `bson:"rank"`
}

// GameRecord is the one-document-per-game summary, the mongo analogue of
// the teacher's entity.GameRecord (minus its round_records child
// collection — see package doc).
type GameRecord struct {
	ID         primitive.ObjectID `bson:"_id"`
	GameID     string             `bson:"game_id"`
	RoomID     string             `bson:"room_id"`
	Players    []PlayerInfo       `bson:"players"`
	StartTime  time.Time          `bson:"start_time"`
	EndTime    time.Time          `bson:"end_time"`
	DurationMs int64              `bson:"duration_ms"`
	Standings  []FinalStanding    `bson:"standings,omitempty"`
	Status     string             `bson:"status"` // "completed" or "aborted"
	ReplayPath string             `bson:"replay_path,omitempty"`
}

func (s *Store) collection() *mongo.Collection { return s.db.Collection("game_records") }

// SaveCompleted inserts the summary document for a game that ran to a
// GameEndEvent, called from the replay collector's save_and_cleanup path
// right after the NDJSON file is finalized.
func (s *Store) SaveCompleted(gameID, roomID string, players []PlayerInfo, start, end time.Time, standings [4]mahjong.PlayerRanking, replayPath string) error {
	rec := GameRecord{
		ID:         primitive.NewObjectID(),
		GameID:     gameID,
		RoomID:     roomID,
		Players:    players,
		StartTime:  start,
		EndTime:    end,
		DurationMs: end.Sub(start).Milliseconds(),
		Status:     "completed",
		ReplayPath: replayPath,
	}
	for _, st := range standings {
		rec.Standings = append(rec.Standings, FinalStanding{
			SeatIndex: st.Seat, Name: st.Name, Score: st.Score, Rank: st.Rank,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.collection().InsertOne(ctx, rec)
	return err
}

// SaveAborted inserts a summary document for a game that was cancelled
// before reaching a GameEndEvent (spec.md §4.11's cancelGame path).
func (s *Store) SaveAborted(gameID, roomID string, players []PlayerInfo, start, end time.Time) error {
	rec := GameRecord{
		ID:         primitive.NewObjectID(),
		GameID:     gameID,
		RoomID:     roomID,
		Players:    players,
		StartTime:  start,
		EndTime:    end,
		DurationMs: end.Sub(start).Milliseconds(),
		Status:     "aborted",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.collection().InsertOne(ctx, rec)
	return err
}

// FindByRoom returns the most recent game record for roomID, used by
// internal/admin's replay-lookup endpoint to resolve a room id to a game id
// without the caller needing to already know it.
func (s *Store) FindByRoom(roomID string) (*GameRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.M{"start_time": -1})
	var rec GameRecord
	err := s.collection().FindOne(ctx, bson.M{"room_id": roomID}, opts).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
