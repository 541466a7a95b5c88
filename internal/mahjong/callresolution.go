package mahjong

// callresolution.go resolves a PendingCallPrompt once every pending seat has
// responded, and carries out the round-ending scoring (tsumo, ron, abortive
// draw, exhaustive draw). Grounded on original_source's resolve_call_prompt
// / _resolve_ron_responses / _pick_best_meld_response / _resolve_all_passed,
// reproduced here as a frozen-state state machine instead of in-place
// mutation of round_state/game_state.

const tripleRonCount = 3

// ResolveCallPrompt dispatches the outstanding prompt by priority — ron
// beats meld beats all-pass — per spec.md §4.6's "ron-dominant" invariant.
// Must only be called once PendingCallPrompt.PendingSeats is empty.
func ResolveCallPrompt(r RoundState, g GameState, cfg RuleConfig) (RoundState, GameState, []Event) {
	prompt := r.PendingCallPrompt
	if prompt == nil {
		return r, g, nil
	}
	if len(prompt.PendingSeats) != 0 {
		panicInvariant("ResolveCallPrompt called with seats still pending")
	}

	var ronSeats []int
	var meldResponses []CallResponse
	for _, resp := range prompt.Responses {
		switch resp.Action {
		case ActionCallRon:
			ronSeats = append(ronSeats, resp.Seat)
		case ActionCallPon, ActionCallChi, ActionCallKan:
			meldResponses = append(meldResponses, resp)
		}
	}

	// Every seat offered a ron on this tile who did not take it becomes
	// temporary-furiten (riichi-furiten if already in riichi), spec.md §4.8
	// "furiten on pass" — independent of whatever the prompt resolves to.
	r = applyPassedRonFuriten(r, prompt, ronSeats)

	if len(ronSeats) > 0 {
		return resolveRonResponses(r, g, prompt, ronSeats, cfg)
	}

	if len(meldResponses) > 0 {
		if best := pickBestMeldResponse(meldResponses, prompt); best != nil {
			return resolveMeldResponse(r, g, prompt, *best, cfg)
		}
	}

	nr := r.ClearPendingPrompt()
	if prompt.CallType == CallTypeChankan {
		return CompleteAddedKanAfterChankanDecline(nr, g, prompt.FromSeat, cfg)
	}
	return resolveAllPassed(nr, g, prompt.FromSeat, cfg)
}

// applyPassedRonFuriten marks every RonCaller seat in prompt.Callers that
// did not respond with ron as temporary-furiten, so passing on a winning
// tile can't be followed by a ron on the same wait later in the round.
func applyPassedRonFuriten(r RoundState, prompt *PendingCallPrompt, ronSeats []int) RoundState {
	ronSet := make(map[int]bool, len(ronSeats))
	for _, s := range ronSeats {
		ronSet[s] = true
	}
	nr := r
	for _, c := range prompt.Callers {
		if _, ok := c.(RonCaller); !ok {
			continue
		}
		seat := c.SeatOf()
		if ronSet[seat] {
			continue
		}
		nr = nr.WithPlayer(seat, ApplyTemporaryFuriten(nr.Players[seat]))
	}
	return nr
}

func resolveRonResponses(r RoundState, g GameState, prompt *PendingCallPrompt, ronSeats []int, cfg RuleConfig) (RoundState, GameState, []Event) {
	if len(ronSeats) == tripleRonCount {
		nr, ng, ev := ResolveAbortiveDraw(r.ClearPendingPrompt(), g, ReasonTripleRon)
		return nr, ng, ev
	}
	nr := r.ClearPendingPrompt()
	return ProcessRonCall(nr, g, ronSeats, prompt.TileID, prompt.FromSeat, prompt.CallType == CallTypeChankan, cfg)
}

var meldCallPriority = map[MeldKind]int{OpenKan: 0, Pon: 0, Chi: 2}

func pickBestMeldResponse(responses []CallResponse, prompt *PendingCallPrompt) *CallResponse {
	priorityOf := func(seat int, action GameAction) int {
		kind := actionToMeldKind(action)
		mc := findMeldCaller(prompt.Callers, seat, kind)
		if mc == nil {
			return 99
		}
		return meldCallPriority[mc.Kind]
	}
	var best *CallResponse
	bestPriority := 100
	for i := range responses {
		pr := priorityOf(responses[i].Seat, responses[i].Action)
		if pr < bestPriority {
			bestPriority = pr
			best = &responses[i]
		}
	}
	return best
}

func actionToMeldKind(a GameAction) MeldKind {
	switch a {
	case ActionCallPon:
		return Pon
	case ActionCallChi:
		return Chi
	default:
		return OpenKan
	}
}

func resolveMeldResponse(r RoundState, g GameState, prompt *PendingCallPrompt, best CallResponse, cfg RuleConfig) (RoundState, GameState, []Event) {
	nr := r.ClearPendingPrompt()
	kind := actionToMeldKind(best.Action)
	nr, events := ProcessMeldCall(nr, best.Seat, kind, prompt.TileID, prompt.FromSeat, best.SequenceTiles, cfg)
	if nr.Phase == PhaseFinished {
		return nr, g, events
	}
	if kind.IsKan() && IsFourKans(nr) {
		fr, fg, fev := ResolveAbortiveDraw(nr, g, ReasonFourKans)
		return fr, fg, append(events, fev...)
	}
	events = append(events, NewTurnEvent(best.Seat, GetAvailableActions(nr, best.Seat, cfg), nr.Wall.LiveCount()))
	return nr, g, events
}

// ProcessMeldCall removes the discard from the discard row (it moves into
// the meld), builds the Meld, sets kuikae restrictions on the caller, and —
// for an open kan — immediately draws the rinshan tile.
func ProcessMeldCall(r RoundState, seat int, kind MeldKind, calledTile TileID, fromSeat int, sequenceTiles []TileID, cfg RuleConfig) (RoundState, []Event) {
	nr := r
	p := nr.Players[seat]

	var consumed []TileID
	var meldTiles []TileID
	switch kind {
	case Chi:
		consumed = sequenceTiles
		meldTiles = append(append([]TileID(nil), sequenceTiles...), calledTile)
	case Pon:
		consumed = matchingTiles(p.Tiles, calledTile)[:2]
		meldTiles = append(append([]TileID(nil), consumed...), calledTile)
	case OpenKan:
		consumed = matchingTiles(p.Tiles, calledTile)[:3]
		meldTiles = append(append([]TileID(nil), consumed...), calledTile)
	}
	m := Meld{Kind: kind, Tiles: meldTiles, CalledTile: calledTile, CallerSeat: seat, FromSeat: fromSeat}
	nr = nr.AddMeld(seat, m, consumed)

	newP := nr.Players[seat]
	newP.KuikaeTiles = KuikaeForbiddenTypes(kind, calledTile, sequenceTiles, cfg.HasKuikaeSuji)
	newP.PaoSeat = maybeAssignPao(nr, seat, m, fromSeat, cfg)
	nr = nr.WithPlayer(seat, newP)
	nr = nr.ClearAllPlayersIppatsu()
	nr.CurrentPlayerSeat = seat

	var events []Event
	events = append(events, MeldEvent{Meld: m, CallSeat: seat})

	if kind == OpenKan {
		nr, events = drawRinshanAndOpenChankan(nr, seat, events, cfg)
	}
	return nr, events
}

func maybeAssignPao(r RoundState, seat int, m Meld, fromSeat int, cfg RuleConfig) int {
	dragonCount, windCount := 0, 0
	for _, mm := range r.Players[seat].Melds {
		if (mm.Kind == Pon || mm.Kind.IsKan()) && mm.Type34().IsDragon() {
			dragonCount++
		}
		if (mm.Kind == Pon || mm.Kind.IsKan()) && mm.Type34().IsWind() {
			windCount++
		}
	}
	seat2 := PaoSeatForMeldCompletion(m.Type34(), dragonCount, windCount, fromSeat, cfg.PaoEnabled)
	if seat2 >= 0 {
		return seat2
	}
	return r.Players[seat].PaoSeat
}

// drawRinshanAndOpenChankan draws the rinshan tile for an open kan, defers
// a dora reveal, and opens a chankan ron window before the caller's
// discard (the caller must still discard/tsumo from the drawn tile).
func drawRinshanAndOpenChankan(r RoundState, seat int, events []Event, cfg RuleConfig) (RoundState, []Event) {
	if !r.Wall.CanDrawFromDead() {
		return r, events
	}
	nw, tile, ok := r.Wall.DrawFromDead()
	if !ok {
		return r, events
	}
	nr := r.WithWall(nw)
	nr = nr.MarkDrawn(seat, tile, true)
	nw2, okInc := nr.Wall.IncrementPendingDora()
	if okInc {
		nr = nr.WithWall(nw2)
	}
	events = append(events, DrawEvent{Seat: seat, Tile: tile})
	return nr, events
}

// ProcessAddedKan upgrades an existing Pon to AddedKan, opens the chankan
// window (ron-only reaction from the other three seats), and only draws the
// rinshan tile immediately if nobody can rob the kan.
func ProcessAddedKan(r RoundState, seat int, tt TileType, cfg RuleConfig) (RoundState, []Event, bool) {
	p := r.Players[seat]
	pon, ok := CanAddedKan(p.Melds, p.Tiles, tt)
	if !ok {
		return r, nil, false
	}
	var theTile TileID
	for _, t := range p.Tiles {
		if t.To34() == tt {
			theTile = t
			break
		}
	}
	newKan := Meld{Kind: AddedKan, Tiles: append(append([]TileID(nil), pon.Tiles...), theTile), CalledTile: pon.CalledTile, CallerSeat: seat, FromSeat: pon.FromSeat}
	nr := r.ReplaceMeld(seat, pon, newKan, theTile)
	nr = nr.ClearAllPlayersIppatsu()

	prompt := buildCallPrompt(nr, seat, theTile, CallTypeChankan, cfg)
	if prompt != nil {
		nr = nr.SetPendingPrompt(prompt)
		return nr, []Event{MeldEvent{Meld: newKan, CallSeat: seat}, CallPromptEvent{Prompt: prompt}}, true
	}

	events := []Event{MeldEvent{Meld: newKan, CallSeat: seat}}
	nr, events = drawRinshanAndOpenChankanFromAdded(nr, seat, events)
	return nr, events, true
}

func drawRinshanAndOpenChankanFromAdded(r RoundState, seat int, events []Event) (RoundState, []Event) {
	if !r.Wall.CanDrawFromDead() {
		return r, events
	}
	nw, tile, ok := r.Wall.DrawFromDead()
	if !ok {
		return r, events
	}
	nr := r.WithWall(nw).MarkDrawn(seat, tile, true)
	nw2, okInc := nr.Wall.IncrementPendingDora()
	if okInc {
		nr = nr.WithWall(nw2)
	}
	return nr, append(events, DrawEvent{Seat: seat, Tile: tile})
}

// ProcessClosedKan declares a concealed kan from seat's own hand: builds the
// meld (FromSeat -1, per spec.md §9's "ClosedKan carries FromSeat = -1"),
// clears ippatsu, and immediately draws the rinshan tile — a closed kan is
// never chankan-eligible, so there is no reactive window to open. Caller
// must have already validated CanClosedKan.
func ProcessClosedKan(r RoundState, seat int, tt TileType, cfg RuleConfig) (RoundState, []Event) {
	p := r.Players[seat]
	tiles := matchingTiles(p.Tiles, TileID(int(tt)*4))
	m := Meld{Kind: ClosedKan, Tiles: append([]TileID(nil), tiles[:4]...), CalledTile: tiles[0], CallerSeat: seat, FromSeat: -1}
	nr := r.AddMeld(seat, m, tiles[:4])
	nr = nr.ClearAllPlayersIppatsu()

	events := []Event{MeldEvent{Meld: m, CallSeat: seat}}
	return drawRinshanAndOpenChankanFromAdded(nr, seat, events)
}

// ProcessTsumoCall scores and ends the round on a self-draw win.
func ProcessTsumoCall(r RoundState, g GameState, cfg RuleConfig) (RoundState, GameState, []Event) {
	winner := r.Players[r.CurrentPlayerSeat]
	situation := WinSituation{
		WinTile:        winner.LastDrawn,
		IsTsumo:        true,
		IsRinshan:      winner.IsRinshan,
		IsHaitei:       r.Wall.LiveCount() == 0 && !winner.IsRinshan,
		IsIppatsu:      winner.IsIppatsu,
		IsFirstTsumo:   isFirstUncalledTsumo(r, winner),
		RoundWind:      r.RoundWind,
		SeatWind:       seatWindOf(r, r.CurrentPlayerSeat),
		DoraIndicators: r.Wall.DoraIndicators(),
		UraIndicators:  r.Wall.CollectUraIndicators(cfg.IncludeKanUra),
	}
	score, _ := ScoreHand(removeLastDrawnForScoring(winner), situation)
	result := WinResult{
		WinnerSeat: r.CurrentPlayerSeat, LoserSeat: -1, WinTile: winner.LastDrawn,
		Han: score.Han, Fu: score.Fu, Yaku: score.Yaku, YakumanMul: score.YakumanMul,
		PaoSeat: winner.PaoSeat,
	}
	deltas := Payment(score.BasePoints, r.CurrentPlayerSeat, -1, r.DealerSeat, true, g.HonbaSticks)
	if winner.PaoSeat >= 0 && winner.PaoSeat != r.CurrentPlayerSeat {
		deltas = paoRedirectTsumo(deltas, winner.PaoSeat, r.CurrentPlayerSeat)
	}
	result.Points = deltas[r.CurrentPlayerSeat]

	return finishRound(r, g, ReasonTsumo, []WinResult{result}, deltas)
}

// ProcessRonCall scores and ends the round for one or two simultaneous
// winners against fromSeat's discard (or chankan tile).
func ProcessRonCall(r RoundState, g GameState, winnerSeats []int, winTile TileID, fromSeat int, isChankan bool, cfg RuleConfig) (RoundState, GameState, []Event) {
	closerSeat := closestToDiscarder(winnerSeats, fromSeat)

	var results []WinResult
	var totalDeltas [4]int
	for _, seat := range winnerSeats {
		winner := r.Players[seat]
		situation := WinSituation{
			WinTile:        winTile,
			IsTsumo:        false,
			IsHoutei:       r.Wall.LiveCount() == 0 && !isChankan,
			IsChankan:      isChankan,
			IsIppatsu:      winner.IsIppatsu,
			RoundWind:      r.RoundWind,
			SeatWind:       seatWindOf(r, seat),
			DoraIndicators: r.Wall.DoraIndicators(),
			UraIndicators:  r.Wall.CollectUraIndicators(cfg.IncludeKanUra),
		}
		score, _ := ScoreHand(winner, situation)
		loser := fromSeat
		if winner.PaoSeat >= 0 {
			loser = winner.PaoSeat
		}
		// honba on a multi-ron only goes to the winner seated closest to the
		// discarder (spec.md's closer-wins rule) — every other winner is
		// paid the bare base*mult payment, or totalDeltas would debit the
		// discarder 300*honba once per winner instead of once per round.
		honba := 0
		if seat == closerSeat {
			honba = g.HonbaSticks
		}
		deltas := Payment(score.BasePoints, seat, loser, r.DealerSeat, false, honba)
		for i := 0; i < 4; i++ {
			totalDeltas[i] += deltas[i]
		}
		res := WinResult{
			WinnerSeat: seat, LoserSeat: loser, WinTile: winTile,
			Han: score.Han, Fu: score.Fu, Yaku: score.Yaku, YakumanMul: score.YakumanMul,
			Points: deltas[seat], PaoSeat: winner.PaoSeat,
		}
		// results[0] is what finishRound credits the riichi-stick pot to, so
		// the closer-wins seat must lead regardless of response order.
		if seat == closerSeat {
			results = append([]WinResult{res}, results...)
		} else {
			results = append(results, res)
		}
	}
	return finishRound(r, g, ReasonRon, results, totalDeltas)
}

// closestToDiscarder picks the seat in seats that is nearest fromSeat going
// counter-clockwise (the next seat to act after fromSeat), the standard
// "closer wins" tiebreak for which simultaneous-ron winner collects the
// honba surcharge.
func closestToDiscarder(seats []int, fromSeat int) int {
	best := -1
	bestDist := 5
	for _, s := range seats {
		dist := (s - fromSeat + 4) % 4
		if dist < bestDist {
			bestDist = dist
			best = s
		}
	}
	return best
}

func paoRedirectTsumo(deltas [4]int, paoSeat, winnerSeat int) [4]int {
	total := 0
	for s := 0; s < 4; s++ {
		if s != winnerSeat {
			total += -deltas[s]
			deltas[s] = 0
		}
	}
	deltas[paoSeat] = -total
	return deltas
}

func removeLastDrawnForScoring(p Player) Player {
	p.Tiles = removeOne(p.Tiles, p.LastDrawn)
	return p
}

// isFirstUncalledTsumo reports tenhou/chiihou eligibility: winner tsumos on
// their very first draw, before anyone has discarded or opened a meld.
// Grounded on original_source's is_tenhou/is_chiihou (game/tests/unit/
// test_win.go), extended to also require KanCount == 0 so a closed kan
// before the first discard (invisible to OpenHandSeats) still disqualifies
// it, matching the same no-interruption guard used for daburi/four-winds.
func isFirstUncalledTsumo(r RoundState, winner Player) bool {
	return len(r.AllDiscards) == 0 && len(r.OpenHandSeats) == 0 && r.KanCount == 0 && !winner.IsRinshan
}

func seatWindOf(r RoundState, seat int) Wind {
	return Wind((seat - r.DealerSeat + 4) % 4)
}

// HasWinningYaku implements spec.md §4.7's no-yaku gate: a structurally
// complete hand is only a legal win if ScoreHand finds at least one yaku.
// Shared by the ron-caller offer (buildCallPrompt), the tsumo option in
// GetAvailableActions, and the service layer's own defense-in-depth check
// before dispatching ActionCallRon/ActionDeclareTsumo.
func HasWinningYaku(r RoundState, seat int, winTile TileID, isTsumo, isChankan bool, cfg RuleConfig) bool {
	winner := r.Players[seat]
	if isTsumo {
		winner.LastDrawn = winTile
	}
	situation := WinSituation{
		WinTile:        winTile,
		IsTsumo:        isTsumo,
		IsRinshan:      isTsumo && winner.IsRinshan,
		IsHaitei:       isTsumo && r.Wall.LiveCount() == 0 && !winner.IsRinshan,
		IsHoutei:       !isTsumo && r.Wall.LiveCount() == 0 && !isChankan,
		IsChankan:      isChankan,
		IsIppatsu:      winner.IsIppatsu,
		RoundWind:      r.RoundWind,
		SeatWind:       seatWindOf(r, seat),
		DoraIndicators: r.Wall.DoraIndicators(),
		UraIndicators:  r.Wall.CollectUraIndicators(cfg.IncludeKanUra),
	}
	hand := winner
	if isTsumo {
		hand = removeLastDrawnForScoring(winner)
	}
	_, ok := ScoreHand(hand, situation)
	return ok
}

func finishRound(r RoundState, g GameState, reason RoundEndReason, results []WinResult, deltas [4]int) (RoundState, GameState, []Event) {
	nr := r
	nr.Phase = PhaseFinished

	if g.RiichiSticks > 0 && len(results) > 0 {
		pot := g.RiichiSticks * 1000
		deltas[results[0].WinnerSeat] += pot
		for i := range results {
			if results[i].WinnerSeat == results[0].WinnerSeat {
				results[i].Points += pot
			}
		}
	}

	ng := g
	scores := [4]int{}
	for i := 0; i < 4; i++ {
		scores[i] = r.Players[i].Score + deltas[i]
	}
	anyDealerWin := false
	for _, res := range results {
		if res.WinnerSeat == r.DealerSeat {
			anyDealerWin = true
		}
	}
	if anyDealerWin {
		ng.HonbaSticks = g.HonbaSticks + 1
	} else {
		ng.HonbaSticks = 0
		ng.RoundNumber = g.RoundNumber + 1
	}
	ng.RiichiSticks = 0

	ev := RoundEndEvent{
		Reason: reason, Results: results, ScoreDeltas: deltas, Scores: scores,
		NextDealer: nextDealer(r, anyDealerWin), Honba: ng.HonbaSticks, RiichiSticks: ng.RiichiSticks,
	}
	return nr, ng, []Event{ev}
}

func nextDealer(r RoundState, dealerRepeats bool) int {
	if dealerRepeats {
		return r.DealerSeat
	}
	return (r.DealerSeat + 1) % 4
}

// ResolveAbortiveDraw ends the round with no winner for the named reason
// (spec.md §4.10): honba increments, dealer repeats, riichi sticks carry
// over to the next round.
func ResolveAbortiveDraw(r RoundState, g GameState, reason RoundEndReason) (RoundState, GameState, []Event) {
	nr := r
	nr.Phase = PhaseFinished
	ng := g
	ng.HonbaSticks = g.HonbaSticks + 1
	scores := [4]int{}
	for i := 0; i < 4; i++ {
		scores[i] = r.Players[i].Score
	}
	ev := RoundEndEvent{Reason: reason, Scores: scores, NextDealer: r.DealerSeat, Honba: ng.HonbaSticks, RiichiSticks: ng.RiichiSticks}
	return nr, ng, []Event{ev}
}

// ResolveExhaustiveDraw implements ordinary wall-exhaustion: tenpai seats
// split 3000 from noten seats (1000/3000, 1500/1500, 3000/1000 splits
// depending on the tenpai count), honba increments, dealer repeats only if
// the dealer was tenpai.
func ResolveExhaustiveDraw(r RoundState, g GameState) (RoundState, GameState, []Event) {
	nr := r
	nr.Phase = PhaseFinished
	ng := g
	ng.HonbaSticks = g.HonbaSticks + 1

	var tenpaiSeats []int
	for s := 0; s < 4; s++ {
		if len(WaitingOn(r.Players[s])) > 0 {
			tenpaiSeats = append(tenpaiSeats, s)
		}
	}
	deltas := tenpaiPaymentSplit(tenpaiSeats)
	scores := [4]int{}
	for i := 0; i < 4; i++ {
		scores[i] = r.Players[i].Score + deltas[i]
	}
	dealerTenpai := false
	for _, s := range tenpaiSeats {
		if s == r.DealerSeat {
			dealerTenpai = true
		}
	}
	ev := RoundEndEvent{
		Reason: ReasonExhaustiveDraw, ScoreDeltas: deltas, Scores: scores,
		NextDealer: nextDealer(r, dealerTenpai), Honba: ng.HonbaSticks, RiichiSticks: ng.RiichiSticks,
	}
	if !dealerTenpai {
		ng.RoundNumber = g.RoundNumber + 1
	}
	return nr, ng, []Event{ev}
}

func tenpaiPaymentSplit(tenpaiSeats []int) [4]int {
	var deltas [4]int
	n := len(tenpaiSeats)
	if n == 0 || n == 4 {
		return deltas
	}
	tenpai := map[int]bool{}
	for _, s := range tenpaiSeats {
		tenpai[s] = true
	}
	totalPot := 3000
	per := totalPot / n
	noten := 4 - n
	perNoten := totalPot / noten
	for s := 0; s < 4; s++ {
		if tenpai[s] {
			deltas[s] += per
		} else {
			deltas[s] -= perNoten
		}
	}
	return deltas
}

// CompleteAddedKanAfterChankanDecline finishes the open-kan-equivalent flow
// once the chankan ron window expires with no caller: the dead-wall draw
// proceeds now, deferred.
func CompleteAddedKanAfterChankanDecline(r RoundState, g GameState, seat int, cfg RuleConfig) (RoundState, GameState, []Event) {
	nr := r.ClearPendingPrompt()
	events := []Event{}
	nr, events = drawRinshanAndOpenChankanFromAdded(nr, seat, events)
	if IsFourKans(nr) {
		fr, fg, fev := ResolveAbortiveDraw(nr, g, ReasonFourKans)
		return fr, fg, append(events, fev...)
	}
	events = append(events, NewTurnEvent(seat, GetAvailableActions(nr, seat, cfg), nr.Wall.LiveCount()))
	return nr, g, events
}
