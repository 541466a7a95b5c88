package session

import (
	"sync"
)

// RoomPhase mirrors the lobby side of spec.md's room_id -> Room table:
// waiting for seats to fill and ready up, transitioning into a game (no
// further joins/leaves accepted), or already handed off.
type RoomPhase int

const (
	RoomWaiting RoomPhase = iota
	RoomTransitioning
	RoomStarted
)

type seatEntry struct {
	token string
	name  string
	ready bool
	isAI  bool
}

// Room is the pre-game lobby: 1..4 humans plus filler AI players, gated by
// set_ready before start_game is dispatched to the service facade.
type Room struct {
	mu sync.Mutex

	ID    string
	Phase RoomPhase
	Seats [4]*seatEntry
}

func NewRoom(id string) *Room {
	return &Room{ID: id, Phase: RoomWaiting}
}

func (r *Room) humanCount() int {
	n := 0
	for _, s := range r.Seats {
		if s != nil && !s.isAI {
			n++
		}
	}
	return n
}

// Join seats token/name in the first open slot. Fails with ROOM_FULL,
// ALREADY_IN_ROOM (by token), NAME_TAKEN (within this room), or
// ROOM_TRANSITIONING.
func (r *Room) Join(token, name string) (seat int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != RoomWaiting {
		return -1, sessErr(ErrRoomTransitioning, "room is starting")
	}

	open := -1
	for i, s := range r.Seats {
		if s == nil {
			if open == -1 {
				open = i
			}
			continue
		}
		if s.token == token {
			return -1, sessErr(ErrAlreadyInRoom, "already seated in this room")
		}
		if s.name == name {
			return -1, sessErr(ErrNameTaken, "name already taken in this room")
		}
	}
	if open == -1 {
		return -1, sessErr(ErrRoomFull, "room has no open seats")
	}

	r.Seats[open] = &seatEntry{token: token, name: name}
	return open, nil
}

// Leave vacates a seat. Returns true if the room is now empty of humans and
// should be torn down by the caller.
func (r *Room) Leave(token string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.Seats {
		if s != nil && s.token == token {
			r.Seats[i] = nil
		}
	}
	return r.humanCount() == 0
}

func (r *Room) SetReady(token string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.Seats {
		if s != nil && s.token == token {
			s.ready = ready
			return nil
		}
	}
	return sessErr(ErrNotInRoom, "token not seated in this room")
}

// AllReady reports whether every occupied seat (humans and AI fillers) is
// ready to start, and fills remaining empty seats with AI players first so
// a room with at least one human can start without waiting for three more.
func (r *Room) AllReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.Seats {
		if s == nil {
			r.Seats[i] = &seatEntry{name: aiName(i), ready: true, isAI: true}
		}
	}
	for _, s := range r.Seats {
		if !s.ready {
			return false
		}
	}
	return true
}

func aiName(seat int) string {
	switch seat {
	case 0:
		return "AI-East"
	case 1:
		return "AI-South"
	case 2:
		return "AI-West"
	case 3:
		return "AI-North"
	default:
		return "AI"
	}
}

// BeginTransition freezes the room against further joins/leaves and
// snapshots names/tokens/AI flags for start_game.
func (r *Room) BeginTransition() (names [4]string, tokens [4]string, aiSeats [4]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Phase = RoomTransitioning
	for i, s := range r.Seats {
		if s == nil {
			continue
		}
		names[i] = s.name
		tokens[i] = s.token
		aiSeats[i] = s.isAI
	}
	return
}

func (r *Room) MarkStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Phase = RoomStarted
}

// Names reports the occupant name at each seat ("" where empty), for the
// transport layer's room_joined/player_joined broadcasts.
func (r *Room) Names() [4]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names [4]string
	for i, s := range r.Seats {
		if s != nil {
			names[i] = s.name
		}
	}
	return names
}

// SeatOf reports which seat token occupies, if any.
func (r *Room) SeatOf(token string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.Seats {
		if s != nil && s.token == token {
			return i, true
		}
	}
	return -1, false
}

// RoomManager owns the rooms table and issues room ids.
type RoomManager struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	counter int
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room)}
}

func (m *RoomManager) Create() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	id := roomIDFromCounter(m.counter)
	room := NewRoom(id)
	m.rooms[id] = room
	return room
}

func (m *RoomManager) Get(roomID string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

func (m *RoomManager) Delete(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
}

func roomIDFromCounter(n int) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "room-0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{digits[n%len(digits)]}, buf...)
		n /= len(digits)
	}
	return "room-" + string(buf)
}

// RoomJoinedEvent is the payload behind the "room_joined" wire message —
// a lobby concept, not a rule-engine one, so it carries no Target().
type RoomJoinedEvent struct {
	RoomID string
	Seat   int
	Seats  [4]string
}
