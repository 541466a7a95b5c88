package service

import "riichiserver/internal/mahjong"

// maxAIFollowUpSteps bounds the AI follow-up loop so a buggy AIPlayer
// implementation can never hang a game thread — spec.md §4.10 requires
// the loop to terminate; a round realistically needs well under this many
// actions even at four AI seats.
const maxAIFollowUpSteps = 512

// runAIFollowUp repeatedly advances rt while control belongs to an AI
// seat — either the current turn or a still-pending reactive prompt —
// dispatching through the same path a human action would take, so AI
// decisions are recorded in the event stream exactly like human ones.
func (s *Service) runAIFollowUp(rt *gameRuntime) []mahjong.Event {
	var all []mahjong.Event
	for i := 0; i < maxAIFollowUpSteps; i++ {
		r := rt.state.Round
		if r.Phase != mahjong.PhasePlaying {
			return all
		}

		if prompt := r.PendingCallPrompt; prompt != nil {
			seat, caller, ok := nextAIPromptCaller(rt, prompt)
			if !ok {
				return all
			}
			action, data := s.ai.ChoosePromptResponse(r, seat, caller, s.cfg)
			events, err := s.dispatch(rt, seat, action, data)
			if err != nil {
				return all
			}
			all = append(all, events...)
			continue
		}

		seat := r.CurrentPlayerSeat
		if !rt.aiSeats[seat] {
			return all
		}
		available := mahjong.GetAvailableActions(r, seat, s.cfg)
		if len(available) == 0 {
			return all
		}
		action, data := s.ai.ChooseTurnAction(r, seat, available, s.cfg)
		events, err := s.dispatch(rt, seat, action, data)
		if err != nil {
			return all
		}
		all = append(all, events...)
	}
	return all
}

// nextAIPromptCaller finds the lowest-numbered AI-controlled seat still
// pending on prompt, iterating seats in a fixed order rather than ranging
// over the PendingSeats map — map iteration order is not deterministic in
// Go, and spec.md §4.12 requires deterministic replay.
func nextAIPromptCaller(rt *gameRuntime, prompt *mahjong.PendingCallPrompt) (int, mahjong.Caller, bool) {
	for seat := 0; seat < 4; seat++ {
		if !prompt.PendingSeats[seat] || !rt.aiSeats[seat] {
			continue
		}
		for _, c := range prompt.Callers {
			if c.SeatOf() == seat {
				return seat, c, true
			}
		}
	}
	return 0, nil, false
}
