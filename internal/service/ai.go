package service

import "riichiserver/internal/mahjong"

// AIPlayer decides the single next action for a seat the service controls.
// Grounded on original_source's AIPlayer.choose_action protocol (spec.md
// §4.10, §4.12's "deterministic AI player" requirement): every decision is
// a pure function of round state, so a replay can re-derive it without
// having recorded it.
type AIPlayer interface {
	// ChooseTurnAction picks the action for seat's own turn out of
	// whatever GetAvailableActions currently offers.
	ChooseTurnAction(r mahjong.RoundState, seat int, available []mahjong.GameAction, cfg mahjong.RuleConfig) (mahjong.GameAction, any)

	// ChoosePromptResponse picks seat's reply to the outstanding call
	// prompt seat is listed as a pending caller on.
	ChoosePromptResponse(r mahjong.RoundState, seat int, caller mahjong.Caller, cfg mahjong.RuleConfig) (mahjong.GameAction, any)
}

// TsumogiriAI is the default, deterministic AI: it never riichis, never
// calls, and on its own turn discards whatever it just drew (tsumogiri),
// declaring tsumo if that is legal. It always passes on reactive prompts.
// This is the simplest AI that still terminates every follow-up loop,
// matching spec.md §4.10's "must terminate" requirement.
type TsumogiriAI struct{}

func (TsumogiriAI) ChooseTurnAction(r mahjong.RoundState, seat int, available []mahjong.GameAction, cfg mahjong.RuleConfig) (mahjong.GameAction, any) {
	for _, a := range available {
		if a == mahjong.ActionDeclareTsumo {
			return mahjong.ActionDeclareTsumo, nil
		}
	}
	p := r.Players[seat]
	return mahjong.ActionDiscard, mahjong.DiscardActionData{TileID: p.LastDrawn}
}

func (TsumogiriAI) ChoosePromptResponse(r mahjong.RoundState, seat int, caller mahjong.Caller, cfg mahjong.RuleConfig) (mahjong.GameAction, any) {
	if rc, ok := caller.(mahjong.RonCaller); ok {
		winTile := r.PendingCallPrompt.TileID
		isChankan := r.PendingCallPrompt.CallType == mahjong.CallTypeChankan
		if mahjong.HasWinningYaku(r, rc.Seat, winTile, false, isChankan, cfg) {
			return mahjong.ActionCallRon, nil
		}
	}
	return mahjong.ActionPass, nil
}
