// Package service is the facade spec.md §4.10 describes: it owns the
// game_id → GameState table, dispatches session-layer actions into the
// internal/mahjong rule engine, and drives AI player follow-up turns.
// Grounded on the teacher's runtime/game/application/service GameService
// (an interface backed by a struct holding a mutex-guarded registry
// looked up by id on every call) — generalized from the teacher's
// CreateRoom-only surface to the full start/act/reconnect/cancel surface
// this domain's service facade needs, and from its single RoomManager
// registry to the per-game round/dealer bookkeeping the engine package
// deliberately keeps out of its own frozen-state types.
package service

import (
	"fmt"
	"sync"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/obs"
)

// Service implements session.GameService without importing internal/session
// (the session package defines the interface; this package only needs to
// satisfy it structurally, same inversion as mahjong.RuleConfig).
type Service struct {
	cfg mahjong.RuleConfig
	ai  AIPlayer

	mu    sync.RWMutex
	games map[string]*gameRuntime
}

func New(cfg mahjong.RuleConfig, ai AIPlayer) *Service {
	if ai == nil {
		ai = TsumogiriAI{}
	}
	return &Service{cfg: cfg, ai: ai, games: make(map[string]*gameRuntime)}
}

// gameRuntime is the per-game record the facade keeps: the current round
// plus the game-spanning counters the engine's GameState doesn't carry
// across rounds on its own (wind rotation is a service-layer concern —
// RoundState.RoundWind is baked fresh into every new round by newRound).
type gameRuntime struct {
	state GameState
	aiSeats [4]bool
}

// GameState carries the engine's round/game pair the same way every
// mahjong function does — RoundState and GameState threaded as two
// explicit values rather than read back out of GameState.Round, which
// the engine itself never populates — plus the wind tracker the service
// layer maintains across hands (the engine's GameState only carries
// RoundNumber within the current wind; advancing from East to South is
// this package's job per spec.md §4.9's "dealer-renchan rule").
type GameState struct {
	Round mahjong.RoundState
	Game  mahjong.GameState
	Wind  mahjong.Wind
}

func (s *Service) get(gameID string) (*gameRuntime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.games[gameID]
	return rt, ok
}

func (s *Service) delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, gameID)
}

// StartGame implements session.GameService.StartGame: deals round 0, emits
// the dealer's first draw, then runs AI follow-up if the dealer is AI.
func (s *Service) StartGame(gameID string, names [4]string, aiSeats [4]bool, seed *mahjong.Seed) ([]mahjong.Event, error) {
	var sd mahjong.Seed
	if seed != nil {
		sd = *seed
	} else {
		sd = randomSeed()
	}

	round, game := newRound(gameID, names, sd, 0, 0, 0, mahjong.WindEast, initialScores(s.cfg), s.cfg)
	round, game, events := mahjong.ProcessDrawPhase(round, game, s.cfg)
	rt := &gameRuntime{
		state:   GameState{Round: round, Game: game, Wind: mahjong.WindEast},
		aiSeats: aiSeats,
	}

	s.mu.Lock()
	s.games[gameID] = rt
	s.mu.Unlock()

	more := s.runAIFollowUp(rt)
	return append(events, more...), nil
}

// HandleAction implements session.GameService.HandleAction.
func (s *Service) HandleAction(gameID string, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	rt, ok := s.get(gameID)
	if !ok {
		return nil, fmt.Errorf("service: no such game %q", gameID)
	}
	events, err := s.dispatch(rt, seat, action, data)
	if err != nil {
		return nil, err
	}
	more := s.runAIFollowUp(rt)
	return append(events, more...), nil
}

// ReplaceWithAIPlayer swaps a human for an AI player at seat; idempotent.
func (s *Service) ReplaceWithAIPlayer(gameID string, seat int) error {
	rt, ok := s.get(gameID)
	if !ok {
		return fmt.Errorf("service: no such game %q", gameID)
	}
	rt.aiSeats[seat] = true
	obs.Info("service: seat %d of game %s replaced with an AI player", seat, gameID)
	return nil
}

// RestoreHumanPlayer is the reverse of ReplaceWithAIPlayer, used on
// reconnect.
func (s *Service) RestoreHumanPlayer(gameID string, seat int) error {
	rt, ok := s.get(gameID)
	if !ok {
		return fmt.Errorf("service: no such game %q", gameID)
	}
	rt.aiSeats[seat] = false
	return nil
}

func (s *Service) IsSeatAI(gameID string, seat int) bool {
	rt, ok := s.get(gameID)
	if !ok {
		return false
	}
	return rt.aiSeats[seat]
}

// CancelGame drops the game's state without persisting a replay (spec.md
// §4.11 "Disconnect cascade").
func (s *Service) CancelGame(gameID string) error {
	s.delete(gameID)
	return nil
}
