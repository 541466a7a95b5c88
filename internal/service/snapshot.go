package service

import (
	"fmt"

	"riichiserver/internal/mahjong"
)

// ReconnectionSnapshot is everything spec.md §4.11 says a reconnecting
// client needs to redraw the board from scratch: its own concealed hand,
// every seat's public state, and whatever reactive prompt is in flight.
type ReconnectionSnapshot struct {
	Seat              int
	Hand              []mahjong.TileID
	Players           [4]PlayerSnapshot
	DoraIndicators    []mahjong.TileID
	RoundWind         mahjong.Wind
	DealerSeat        int
	CurrentPlayerSeat int
	HonbaSticks       int
	RiichiSticks      int
	WallLiveCount     int
	Phase             mahjong.RoundPhase
	Prompt            *mahjong.PendingCallPrompt
}

// PlayerSnapshot is one seat's publicly-visible state — no concealed
// tiles beyond the reconnecting seat's own hand.
type PlayerSnapshot struct {
	Seat     int
	Name     string
	Score    int
	Melds    []mahjong.Meld
	Discards []mahjong.Discard
	IsRiichi bool
}

// BuildReconnectionSnapshot implements session.GameService.
func (s *Service) BuildReconnectionSnapshot(gameID string, seat int) (any, error) {
	rt, ok := s.get(gameID)
	if !ok {
		return nil, fmt.Errorf("service: no such game %q", gameID)
	}
	if seat < 0 || seat >= 4 {
		return nil, fmt.Errorf("service: seat %d out of range", seat)
	}
	r := rt.state.Round

	snap := ReconnectionSnapshot{
		Seat:              seat,
		Hand:              append([]mahjong.TileID(nil), r.Players[seat].Tiles...),
		DoraIndicators:    append([]mahjong.TileID(nil), r.Wall.DoraIndicators()...),
		RoundWind:         r.RoundWind,
		DealerSeat:        r.DealerSeat,
		CurrentPlayerSeat: r.CurrentPlayerSeat,
		HonbaSticks:       rt.state.Game.HonbaSticks,
		RiichiSticks:      rt.state.Game.RiichiSticks,
		WallLiveCount:     r.Wall.LiveCount(),
		Phase:             r.Phase,
		Prompt:            r.PendingCallPrompt,
	}
	for i := 0; i < 4; i++ {
		p := r.Players[i]
		snap.Players[i] = PlayerSnapshot{
			Seat:     i,
			Name:     p.Name,
			Score:    p.Score,
			Melds:    append([]mahjong.Meld(nil), p.Melds...),
			Discards: append([]mahjong.Discard(nil), p.Discards...),
			IsRiichi: p.IsRiichi,
		}
	}
	return snap, nil
}

// BuildDrawEventForSeat implements session.GameService: it only has
// something to hand back if seat is mid-turn with a tile already drawn
// and no reactive prompt in the way — exactly the condition under which a
// disconnect would otherwise have swallowed that seat's draw event.
func (s *Service) BuildDrawEventForSeat(gameID string, seat int) (mahjong.Event, bool) {
	rt, ok := s.get(gameID)
	if !ok {
		return nil, false
	}
	r := rt.state.Round
	if r.Phase != mahjong.PhasePlaying || r.PendingCallPrompt != nil || r.CurrentPlayerSeat != seat {
		return nil, false
	}
	p := r.Players[seat]
	if !p.HasDrawnTile {
		return nil, false
	}
	return mahjong.DrawEvent{Seat: seat, Tile: p.LastDrawn}, true
}
