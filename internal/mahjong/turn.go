package mahjong

// turn.go is the per-turn state machine: draw, discard, and the deferred
// dora-reveal timing spec.md §4.5 requires (kan-dora only becomes visible
// once the following discard survives the call-prompt window, so a ron
// can never be scored against dora it couldn't have known about). Grounded
// on original_source's game.logic.turn (process_draw_phase,
// process_discard_phase, emit_deferred_dora_events).

// ActionResult bundles the events one action handler produced plus whether
// the service layer still owes a post-discard call-prompt resolution step.
// Mirrors original_source's ActionResult NamedTuple exactly.
type ActionResult struct {
	Events           []Event
	NeedsPostDiscard bool
}

// GetAvailableActions lists every action seat may currently take. Only
// meaningful when seat == round.CurrentPlayerSeat and no call prompt is
// outstanding; the service layer calls this to populate each TurnEvent.
func GetAvailableActions(r RoundState, seat int, cfg RuleConfig) []GameAction {
	if r.PendingCallPrompt != nil || r.CurrentPlayerSeat != seat || r.Phase != PhasePlaying {
		return nil
	}
	p := r.Players[seat]
	actions := []GameAction{ActionDiscard}

	if canDeclareRiichiNow(p, r) {
		actions = append(actions, ActionDeclareRiichi)
	}
	if p.HasDrawnTile {
		if IsAgariAny(HandToCounts(p.Tiles), fixedMeldCount(p.Melds)) && HasWinningYaku(r, seat, p.LastDrawn, true, false, cfg) {
			actions = append(actions, ActionDeclareTsumo)
		}
		if hasClosedOrAddedKanOption(p, r) {
			actions = append(actions, ActionCallKan)
		}
	}
	if CanDeclareKyuushu(p, r.TurnCount < 4 && len(r.OpenHandSeats) == 0, cfg.KyuushuMinTypes) {
		actions = append(actions, ActionCallKyuushu)
	}
	return actions
}

func canDeclareRiichiNow(p Player, r RoundState) bool {
	if p.IsRiichi || !p.IsClosed() || p.Score < 1000 || !p.HasDrawnTile {
		return false
	}
	if r.Wall.LiveCount() < 4 {
		return false
	}
	waits := WaitingOn(Player{Tiles: removeOne(p.Tiles, p.LastDrawn)})
	return len(waits) > 0
}

func removeOne(tiles []TileID, tile TileID) []TileID {
	out := append([]TileID(nil), tiles...)
	for i, t := range out {
		if t == tile {
			return append(out[:i], out[i+1:]...)
		}
	}
	return out
}

func hasClosedOrAddedKanOption(p Player, r RoundState) bool {
	counts := CountArray34(p.Tiles)
	for tt := 0; tt < NumTileTypes; tt++ {
		if counts[tt] == 4 {
			return true
		}
	}
	for _, m := range p.Melds {
		if m.Kind == Pon {
			if _, ok := CanAddedKan(p.Melds, p.Tiles, m.Type34()); ok {
				return true
			}
		}
	}
	return false
}

// ProcessDrawPhase draws for round.CurrentPlayerSeat from the live wall (or
// signals exhaustive draw if none remain) and emits the resulting events.
func ProcessDrawPhase(r RoundState, g GameState, cfg RuleConfig) (RoundState, GameState, []Event) {
	if r.Wall.LiveCount() == 0 {
		nr, ng, ev := ResolveExhaustiveDraw(r, g)
		return nr, ng, ev
	}
	nw, tile, ok := r.Wall.DrawTile()
	if !ok {
		nr, ng, ev := ResolveExhaustiveDraw(r, g)
		return nr, ng, ev
	}
	nr := r.WithWall(nw)
	nr = nr.MarkDrawn(r.CurrentPlayerSeat, tile, false)

	events := []Event{DrawEvent{Seat: r.CurrentPlayerSeat, Tile: tile}}
	events = append(events, NewTurnEvent(r.CurrentPlayerSeat, GetAvailableActions(nr, r.CurrentPlayerSeat, cfg), nr.Wall.LiveCount()))
	return nr, g, events
}

// ProcessDiscardPhase removes tile from seat's hand, records the discard,
// tracks the first-discard wind (four-winds), builds the reactive call
// prompt for the other three seats, and — if isRiichiDeclare — marks the
// discard as a pending riichi (finalized only once the prompt resolves
// with no ron against it, per original_source's deferred-riichi design).
func ProcessDiscardPhase(r RoundState, g GameState, seat int, tile TileID, isRiichiDeclare bool, cfg RuleConfig) (RoundState, GameState, []Event, GameErrorCode) {
	if r.CurrentPlayerSeat != seat || r.Phase != PhasePlaying {
		return r, g, nil, ErrNotYourTurn
	}
	p := r.Players[seat]
	if isRiichiDeclare && !canDeclareRiichiNow(p, r) {
		return r, g, nil, ErrInvalidRiichi
	}
	kuikae := p.KuikaeTiles
	if kuikae != nil && kuikae[tile.To34()] {
		return r, g, nil, ErrInvalidDiscard
	}

	wasTsumogiri := p.HasDrawnTile && p.LastDrawn == tile

	nr, ok := r.RemoveTileFromPlayer(seat, tile)
	if !ok {
		return r, g, nil, ErrInvalidDiscard
	}
	nr = nr.ClearDrawn(seat)
	np := nr.Players[seat]
	np.KuikaeTiles = nil
	nr = nr.WithPlayer(seat, np)

	d := Discard{Tile: tile, IsTsumogiri: wasTsumogiri, IsRiichiDiscard: isRiichiDeclare}
	nr = nr.UpdateAllDiscards(d)
	np = nr.Players[seat]
	np.Discards = append(append([]Discard(nil), np.Discards...), d)
	nr = nr.WithPlayer(seat, np)
	nr = nr.RecordFirstDiscardWind(seat, tile.To34())

	events := []Event{DiscardEvent{Seat: seat, Tile: tile, IsTsumogiri: d.IsTsumogiri, IsRiichi: isRiichiDeclare}}

	prompt := buildCallPrompt(nr, seat, tile, CallTypeDiscard, cfg)
	if prompt != nil {
		nr = nr.SetPendingPrompt(prompt)
		events = append(events, CallPromptEvent{Prompt: prompt})
		return nr, g, events, ""
	}

	// nobody can react: resolve immediately as if all passed.
	rr, rg, moreEvents := resolveAllPassed(nr, g, seat, cfg)
	events = append(events, moreEvents...)
	return rr, rg, events, ""
}

// buildCallPrompt enumerates every seat's reaction options to a discard (or
// a chankan-eligible added kan) and returns nil if nobody can react at all.
func buildCallPrompt(r RoundState, fromSeat int, tile TileID, ct CallType, cfg RuleConfig) *PendingCallPrompt {
	var callers []Caller
	pending := map[int]bool{}
	for s := 0; s < 4; s++ {
		if s == fromSeat {
			continue
		}
		p := r.Players[s]
		if IsAgariAny(HandToCounts(append(cloneTiles(p.Tiles), tile)), fixedMeldCount(p.Melds)) && !IsFuriten(p) &&
			HasWinningYaku(r, s, tile, false, ct == CallTypeChankan, cfg) {
			callers = append(callers, RonCaller{Seat: s})
			pending[s] = true
			continue
		}
		if ct == CallTypeChankan {
			continue // only ron is offered against a chankan window
		}
		if opts := CanPon(p.Tiles, tile, p.IsRiichi); opts != nil {
			callers = append(callers, MeldCaller{Seat: s, Kind: Pon, Options: opts})
			pending[s] = true
		}
		if CanOpenKan(p.Tiles, tile, p.IsRiichi) {
			callers = append(callers, MeldCaller{Seat: s, Kind: OpenKan, Options: [][]TileID{matchingTiles(p.Tiles, tile)}})
			pending[s] = true
		}
		if opts := CanChi(p.Tiles, s, fromSeat, tile, p.IsRiichi); opts != nil {
			callers = append(callers, MeldCaller{Seat: s, Kind: Chi, Options: opts})
			pending[s] = true
		}
	}
	if len(callers) == 0 {
		return nil
	}
	return &PendingCallPrompt{CallType: ct, TileID: tile, FromSeat: fromSeat, PendingSeats: pending, Callers: callers}
}

// resolveAllPassed runs the same "nobody reacted" path the call resolver
// reaches when every pending seat has passed: reveal deferred dora,
// finalize a pending riichi declaration, check four-riichi, advance the
// turn, and draw for the next seat.
func resolveAllPassed(r RoundState, g GameState, discarderSeat int, cfg RuleConfig) (RoundState, GameState, []Event) {
	nr := r
	ng := g
	var events []Event

	nw, revealed := nr.Wall.RevealPendingDora()
	if len(revealed) > 0 {
		nr = nr.WithWall(nw).AppendDoraIndicators(revealed)
		events = append(events, DoraRevealedEvent{Indicators: revealed})
	}

	discarder := nr.Players[discarderSeat]
	if len(discarder.Discards) > 0 {
		last := discarder.Discards[len(discarder.Discards)-1]
		if last.IsRiichiDiscard && !discarder.IsRiichi {
			var ok bool
			nr, ok = nr.DeclareRiichi(discarderSeat, nr.TurnCount < 4 && len(nr.OpenHandSeats) == 0 && nr.KanCount == 0)
			if ok {
				ng.RiichiSticks = g.RiichiSticks + 1
				events = append(events, RiichiDeclaredEvent{Seat: discarderSeat})
				if IsFourRiichi(nr) {
					fr, fg, fev := ResolveAbortiveDraw(nr, ng, ReasonFourRiichi)
					return fr, fg, append(events, fev...)
				}
			}
		}
	}

	if len(nr.OpenHandSeats) == 0 && nr.KanCount == 0 && IsFourWinds(nr) {
		fr, fg, fev := ResolveAbortiveDraw(nr.ClearPendingPrompt(), ng, ReasonFourWinds)
		return fr, fg, append(events, fev...)
	}

	nr = nr.ClearPendingPrompt()
	nr = nr.AdvanceTurn()
	if nr.Phase == PhasePlaying {
		dr, dg, dev := ProcessDrawPhase(nr, ng, cfg)
		return dr, dg, append(events, dev...)
	}
	return nr, ng, events
}
