package session

import (
	"sync"
	"time"
)

// SessionData tracks one authenticated player's place in the world: which
// room or game they belong to, and — while disconnected — the turn bank
// they left behind. Guarded by its own RWMutex rather than a store-wide
// lock, the same per-entry locking shape as the teacher's conn.Session.
type SessionData struct {
	mu sync.RWMutex

	Token      string
	PlayerName string

	RoomID string // "" when not in a room
	GameID string // "" when not seated in a running game
	Seat   int

	connected        bool
	disconnectedAt   time.Time
	remainingBankSec float64
	hasRemainingBank bool
}

func newSessionData(token, playerName string) *SessionData {
	return &SessionData{
		Token:      token,
		PlayerName: playerName,
		Seat:       -1,
		connected:  true,
	}
}

func (s *SessionData) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *SessionData) MarkDisconnected(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.disconnectedAt = now
}

func (s *SessionData) MarkConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.disconnectedAt = time.Time{}
	s.hasRemainingBank = false
}

func (s *SessionData) DisconnectedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disconnectedAt
}

// SetRemainingBank stores the turn bank the seat still owned when it
// disconnected mid-turn (spec.md §4.11 scenario E). Absent when disconnect
// happened outside that seat's own turn.
func (s *SessionData) SetRemainingBank(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remainingBankSec = sec
	s.hasRemainingBank = true
}

func (s *SessionData) TakeRemainingBank() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.remainingBankSec, s.hasRemainingBank
	s.hasRemainingBank = false
	return sec, ok
}

func (s *SessionData) SetGameSeat(gameID string, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GameID = gameID
	s.Seat = seat
	s.RoomID = ""
}

func (s *SessionData) SetRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RoomID = roomID
}

func (s *SessionData) ClearGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GameID = ""
	s.Seat = -1
}

func (s *SessionData) snapshot() (roomID, gameID string, seat int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RoomID, s.GameID, s.Seat
}

// Store is the process-wide session_store spec.md §4.11 names: token ->
// SessionData, one owner at a time.
type Store struct {
	mu       sync.RWMutex
	byToken  map[string]*SessionData
	byPlayer map[string]string // player name -> token, for NAME_TAKEN checks
}

func NewStore() *Store {
	return &Store{
		byToken:  make(map[string]*SessionData),
		byPlayer: make(map[string]string),
	}
}

func (s *Store) Create(token, playerName string) *SessionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := newSessionData(token, playerName)
	s.byToken[token] = sd
	s.byPlayer[playerName] = token
	return sd
}

func (s *Store) Get(token string) (*SessionData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sd, ok := s.byToken[token]
	return sd, ok
}

func (s *Store) NameTaken(playerName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byPlayer[playerName]
	return ok
}

func (s *Store) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sd, ok := s.byToken[token]; ok {
		delete(s.byPlayer, sd.PlayerName)
		delete(s.byToken, token)
	}
}
