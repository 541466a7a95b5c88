package session

import (
	"sync"
	"time"
)

// TimeoutFunc is invoked (on its own goroutine) when a timer fires without
// being cancelled first. The manager's caller is responsible for acquiring
// the game lock before touching state, per spec.md §5 ("timer firings
// acquire the same per-game lock").
type TimeoutFunc func(gameID string, seat int)

// seatTimer tracks one seat's live turn-bank timer, grounded on the
// teacher's pattern of pairing a *time.Timer with the wall-clock instant it
// was armed so elapsed time can be computed without a ticking goroutine.
type seatTimer struct {
	timer     *time.Timer
	startedAt time.Time
	bankSec   float64
	isFixed   bool // meld-prompt timer: doesn't deplete the seat's bank
}

// TimerManager is the per-(game,seat) turn_bank / meld-window owner spec.md
// §4.11 names. One instance is shared across all games; keys are
// "gameID/seat".
type TimerManager struct {
	mu     sync.Mutex
	timers map[string]*seatTimer
}

func NewTimerManager() *TimerManager {
	return &TimerManager{timers: make(map[string]*seatTimer)}
}

func timerKey(gameID string, seat int) string {
	return gameID + "/" + seatDigit(seat)
}

func seatDigit(seat int) string {
	return string(rune('0' + seat))
}

// StartTurnBank arms a depleting turn timer for seat with bankSec
// remaining. onTimeout fires if the bank reaches zero before Stop/Cancel.
func (m *TimerManager) StartTurnBank(gameID string, seat int, bankSec float64, onTimeout TimeoutFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := timerKey(gameID, seat)
	m.stopLocked(key)

	st := &seatTimer{startedAt: time.Now(), bankSec: bankSec}
	st.timer = time.AfterFunc(time.Duration(bankSec*float64(time.Second)), func() {
		onTimeout(gameID, seat)
	})
	m.timers[key] = st
}

// StartMeldWindow arms a fixed (non-depleting) window for a pon/chi/kan
// response; expiry auto-passes the seat.
func (m *TimerManager) StartMeldWindow(gameID string, seat int, windowSec float64, onTimeout TimeoutFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := timerKey(gameID, seat)
	m.stopLocked(key)

	st := &seatTimer{startedAt: time.Now(), bankSec: windowSec, isFixed: true}
	st.timer = time.AfterFunc(time.Duration(windowSec*float64(time.Second)), func() {
		onTimeout(gameID, seat)
	})
	m.timers[key] = st
}

// Stop cancels the seat's active timer, if any, with no further effect.
func (m *TimerManager) Stop(gameID string, seat int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(timerKey(gameID, seat))
}

func (m *TimerManager) stopLocked(key string) {
	if st, ok := m.timers[key]; ok {
		st.timer.Stop()
		delete(m.timers, key)
	}
}

// FreezeTurnBank stops the seat's timer (if it is a depleting turn-bank
// timer, not a fixed meld window) and returns the bank remaining at the
// moment of freeze, for SessionData.SetRemainingBank — spec.md §4.11
// scenario E.
func (m *TimerManager) FreezeTurnBank(gameID string, seat int) (remaining float64, hadTurnTimer bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := timerKey(gameID, seat)
	st, ok := m.timers[key]
	if !ok || st.isFixed {
		return 0, false
	}
	st.timer.Stop()
	delete(m.timers, key)

	elapsed := time.Since(st.startedAt).Seconds()
	remaining = st.bankSec - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
