package service

import (
	"fmt"

	"riichiserver/internal/mahjong"
)

// dispatch.go turns one session-layer action into the matching
// internal/mahjong call, threading RoundState/GameState as the explicit
// pair every mahjong function expects (mirroring the teacher's own
// engine.NotifyEvent dispatch-by-type switch in runtime/game/engines).

// dispatch routes action against rt's current round, applying either the
// own-turn handler (seat == CurrentPlayerSeat, no pending prompt) or the
// reactive-prompt handler (seat is a pending caller on the outstanding
// prompt) — never both, since the engine can only be in one of those two
// states at a time for a given seat.
func (s *Service) dispatch(rt *gameRuntime, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	r := rt.state.Round

	if r.PendingCallPrompt != nil && r.PendingCallPrompt.PendingSeats[seat] {
		events, err := s.dispatchPromptResponse(rt, seat, action, data)
		return events, err
	}

	if r.Phase != mahjong.PhasePlaying {
		return nil, fmt.Errorf("service: round is not accepting actions")
	}

	switch action {
	case mahjong.ActionDiscard:
		return s.dispatchDiscard(rt, seat, data)
	case mahjong.ActionDeclareTsumo:
		return s.dispatchTsumo(rt, seat)
	case mahjong.ActionCallKan:
		return s.dispatchOwnTurnKan(rt, seat, data)
	case mahjong.ActionCallKyuushu:
		return s.dispatchKyuushu(rt, seat)
	default:
		return nil, fmt.Errorf("service: action %v is not valid outside a call prompt", action)
	}
}

func (s *Service) dispatchDiscard(rt *gameRuntime, seat int, data any) ([]mahjong.Event, error) {
	dd, ok := data.(mahjong.DiscardActionData)
	if !ok {
		return nil, fmt.Errorf("service: discard requires DiscardActionData")
	}
	nr, ng, events, code := mahjong.ProcessDiscardPhase(rt.state.Round, rt.state.Game, seat, dd.TileID, dd.IsRiichi, s.cfg)
	if code != "" {
		return []mahjong.Event{mahjong.ErrorEvent{Code: code, SeatOf: seat}}, nil
	}
	rt.state.Round, rt.state.Game = nr, ng
	return s.afterRoundTransition(rt, events), nil
}

func (s *Service) dispatchTsumo(rt *gameRuntime, seat int) ([]mahjong.Event, error) {
	r := rt.state.Round
	p := r.Players[seat]
	if r.CurrentPlayerSeat != seat || !p.HasDrawnTile {
		return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrInvalidTsumo, SeatOf: seat}}, nil
	}
	if !mahjong.IsAgariAny(mahjong.HandToCounts(p.Tiles), len(p.Melds)) || !mahjong.HasWinningYaku(r, seat, p.LastDrawn, true, false, s.cfg) {
		return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrInvalidTsumo, SeatOf: seat}}, nil
	}
	nr, ng, events := mahjong.ProcessTsumoCall(r, rt.state.Game, s.cfg)
	rt.state.Round, rt.state.Game = nr, ng
	return s.afterRoundTransition(rt, events), nil
}

func (s *Service) dispatchKyuushu(rt *gameRuntime, seat int) ([]mahjong.Event, error) {
	r := rt.state.Round
	p := r.Players[seat]
	isFirst := r.CurrentPlayerSeat == seat && r.TurnCount < 4 && len(r.OpenHandSeats) == 0
	if !mahjong.CanDeclareKyuushu(p, isFirst, s.cfg.KyuushuMinTypes) {
		return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrCannotCallKyuushu, SeatOf: seat}}, nil
	}
	nr, ng, events := mahjong.ResolveAbortiveDraw(r, rt.state.Game, mahjong.ReasonKyuushuKyuuhai)
	rt.state.Round, rt.state.Game = nr, ng
	return s.afterRoundTransition(rt, events), nil
}

// dispatchOwnTurnKan handles a kan declared on the actor's own turn (open
// kan off the last discard is instead offered through the reactive prompt
// path — this covers ActionCallKan's closed/added shapes plus the open-kan
// shape when it's already this seat's turn and a prior meld left them to
// act again).
func (s *Service) dispatchOwnTurnKan(rt *gameRuntime, seat int, data any) ([]mahjong.Event, error) {
	kd, ok := data.(mahjong.KanActionData)
	if !ok {
		return nil, fmt.Errorf("service: kan requires KanActionData")
	}
	r := rt.state.Round
	p := r.Players[seat]

	var nr mahjong.RoundState
	var events []mahjong.Event
	switch kd.Kind {
	case mahjong.KanClosed:
		if !mahjong.CanClosedKan(p.Tiles, kd.Tile.To34(), p.IsRiichi, p.LastDrawn, true) {
			return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrInvalidKan, SeatOf: seat}}, nil
		}
		nr, events = mahjong.ProcessClosedKan(r, seat, kd.Tile.To34(), s.cfg)
	case mahjong.KanAdded:
		var ok2 bool
		nr, events, ok2 = mahjong.ProcessAddedKan(r, seat, kd.Tile.To34(), s.cfg)
		if !ok2 {
			return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrInvalidKan, SeatOf: seat}}, nil
		}
	default:
		return nil, fmt.Errorf("service: open kan must be declared through the call prompt")
	}

	if nr.PendingCallPrompt != nil {
		// added kan opened a chankan window; nothing resolves yet.
		rt.state.Round = nr
		return events, nil
	}
	if mahjong.IsFourKans(nr) {
		fr, fg, fev := mahjong.ResolveAbortiveDraw(nr, rt.state.Game, mahjong.ReasonFourKans)
		rt.state.Round, rt.state.Game = fr, fg
		return s.afterRoundTransition(rt, append(events, fev...)), nil
	}
	rt.state.Round = nr
	events = append(events, mahjong.NewTurnEvent(seat, mahjong.GetAvailableActions(nr, seat, s.cfg), nr.Wall.LiveCount()))
	return events, nil
}

// dispatchPromptResponse records seat's reply against the outstanding
// prompt and, once every pending seat has answered, resolves it.
func (s *Service) dispatchPromptResponse(rt *gameRuntime, seat int, action mahjong.GameAction, data any) ([]mahjong.Event, error) {
	r := rt.state.Round
	resp := mahjong.CallResponse{Seat: seat, Action: action}
	switch d := data.(type) {
	case mahjong.ChiActionData:
		resp.SequenceTiles = d.SequenceTiles[:]
		resp.KanTile = d.CalledTile
	case mahjong.PonActionData:
		resp.KanTile = d.CalledTile
	case mahjong.KanActionData:
		resp.KanTile = d.Tile
	}
	if action == mahjong.ActionCallRon {
		winTile := r.PendingCallPrompt.TileID
		isChankan := r.PendingCallPrompt.CallType == mahjong.CallTypeChankan
		if !mahjong.HasWinningYaku(r, seat, winTile, false, isChankan, s.cfg) {
			return []mahjong.Event{mahjong.ErrorEvent{Code: mahjong.ErrInvalidRon, SeatOf: seat}}, nil
		}
	}

	nr := r.AddPromptResponse(resp)
	rt.state.Round = nr
	if len(nr.PendingCallPrompt.PendingSeats) > 0 {
		return []mahjong.Event{mahjong.PassAcknowledgedEvent{Seat: seat}}, nil
	}

	nr2, ng2, events := mahjong.ResolveCallPrompt(nr, rt.state.Game, s.cfg)
	rt.state.Round, rt.state.Game = nr2, ng2
	return s.afterRoundTransition(rt, events), nil
}

// afterRoundTransition rolls the wind/round counters forward and appends a
// GameEndEvent once the match's final hand is finished. Must run after
// every dispatch path that might have ended the round, since finishRound /
// ResolveAbortiveDraw / ResolveExhaustiveDraw all leave wind rotation to
// this package (spec.md §4.9's "dealer-renchan rule" only covers dealer
// seat, not the East→South→West→North progression).
func (s *Service) afterRoundTransition(rt *gameRuntime, events []mahjong.Event) []mahjong.Event {
	if rt.state.Round.Phase != mahjong.PhaseFinished {
		return events
	}

	scores := lastScores(events)
	riichiSticks := lastRiichiSticks(events)
	game := rt.state.Game
	wind := rt.state.Wind

	if game.RoundNumber >= 4 {
		nextW, done := nextWind(wind, s.cfg.EndOnEastOnly)
		if done {
			events = append(events, mahjong.GameEndEvent{Standings: standingsOf(game.PlayerNames, scores)})
			rt.state.Game.GamePhase = mahjong.GameFinished
			return events
		}
		wind = nextW
		rt.state.Wind = wind
		game.RoundNumber = 0
	}

	handIndex := nextHandIndex(wind, game.RoundNumber)
	round, newGame := newRound(game.GameID, game.PlayerNames, game.Seed, handIndex, game.HonbaSticks, riichiSticks, wind, scores, s.cfg)
	newGame.RoundNumber = game.RoundNumber
	round, newGame, drawEvents := mahjong.ProcessDrawPhase(round, newGame, s.cfg)
	rt.state.Round, rt.state.Game = round, newGame
	return append(events, drawEvents...)
}

// nextWind advances East→South→West→North, reporting whether the match is
// over: a tonpuusen (EndOnEastOnly) match ends when East's four hands are
// done, a full hanchan ends when South's are.
func nextWind(wind mahjong.Wind, endOnEastOnly bool) (mahjong.Wind, bool) {
	switch wind {
	case mahjong.WindEast:
		if endOnEastOnly {
			return wind, true
		}
		return mahjong.WindSouth, false
	case mahjong.WindSouth:
		return wind, true
	}
	return wind, true
}

// lastScores pulls the ending score totals and carried-over riichi-stick
// count out of whichever round-end event this hand produced, since the
// engine never writes settled scores back onto RoundState.Players itself.
func lastScores(events []mahjong.Event) [4]int {
	ev, _ := lastRoundEnd(events)
	return ev.Scores
}

func lastRiichiSticks(events []mahjong.Event) int {
	ev, _ := lastRoundEnd(events)
	return ev.RiichiSticks
}

func lastRoundEnd(events []mahjong.Event) (mahjong.RoundEndEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if ev, ok := events[i].(mahjong.RoundEndEvent); ok {
			return ev, true
		}
	}
	return mahjong.RoundEndEvent{}, false
}

func standingsOf(names [4]string, scores [4]int) [4]mahjong.PlayerRanking {
	var ranked [4]int
	for i := range ranked {
		ranked[i] = i
	}
	for i := 1; i < 4; i++ {
		for j := i; j > 0 && scores[ranked[j]] > scores[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	var standings [4]mahjong.PlayerRanking
	for rank, seat := range ranked {
		standings[rank] = mahjong.PlayerRanking{
			Seat:  seat,
			Name:  names[seat],
			Score: scores[seat],
			Rank:  rank + 1,
		}
	}
	return standings
}
