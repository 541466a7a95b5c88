package mahjong

// fu.go assembles a HandContext from a finished hand, evaluates every legal
// decomposition through yaku.go, and resolves han+fu into points and the
// per-seat payment split. Grounded on the teacher's runtime/game/engines/
// mahjong/score_calculator.go, which has the correct payment-table
// arithmetic (base points, dealer/non-dealer split, limit bands) but stubs
// every fu sub-calculation (checkPinfu, calculatePairFu, calculateWaitFu all
// return 0); those are rebuilt here against win.go's real decomposition
// search instead of left as stubs.

// WinSituation carries every fact about a completed win that isn't already
// on the Player/RoundState: which tile completed it, how, and the dora
// indicators in play.
type WinSituation struct {
	WinTile        TileID
	IsTsumo        bool
	IsRinshan      bool
	IsHaitei       bool
	IsHoutei       bool
	IsChankan      bool
	IsIppatsu      bool
	IsFirstTsumo   bool
	RoundWind      Wind
	SeatWind       Wind
	DoraIndicators []TileID
	UraIndicators  []TileID
}

// ScoreResult is the resolved han/fu/points for one winner, independent of
// the multi-winner payment split (spec.md §4.9 resolves that separately for
// double/triple ron).
type ScoreResult struct {
	Han        int
	Fu         int
	Yaku       []Yaku
	YakumanMul int
	BasePoints int // "base points" per the standard formula, pre-payment-split
}

func countMatchingDora(tiles []TileID, indicators []TileID) int {
	n := 0
	for _, ind := range indicators {
		want := ind.To34().Next()
		for _, t := range tiles {
			if t.To34() == want {
				n++
			}
		}
	}
	return n
}

func countAkadora(tiles []TileID) int {
	n := 0
	for _, t := range tiles {
		if t.IsRedFive() {
			n++
		}
	}
	return n
}

// allHandTiles returns every physical tile contributing to the hand: the
// concealed tiles plus every tile in every meld (including kan's 4th tile).
func allHandTiles(p Player) []TileID {
	out := append([]TileID(nil), p.Tiles...)
	for _, m := range p.Melds {
		out = append(out, m.Tiles...)
	}
	return out
}

// ScoreHand evaluates winner's completed hand (14 concealed tiles if closed
// tsumo, 13 concealed + melds otherwise) against situation and returns the
// best-scoring legal reading. Returns ok=false if no yaku applies at all
// (an illegal win — the caller should never reach this for a hand the
// engine itself validated as agari-with-yaku, but menzen tsumo / riichi
// alone always supplies one, so this only fires for a bug upstream).
func ScoreHand(winner Player, situation WinSituation) (ScoreResult, bool) {
	full := append(cloneTiles(winner.Tiles), situation.WinTile)
	h := HandToCounts(full)
	fixedMelds := fixedMeldCount(winner.Melds)

	dora := countMatchingDora(full, situation.DoraIndicators)
	ura := 0
	if winner.IsRiichi {
		ura = countMatchingDora(full, situation.UraIndicators)
	}
	aka := countAkadora(full)

	if IsAgariKokushi(h) {
		waits := WaitingTypes(HandToCounts(winner.Tiles), 0)
		tanki := len(waits) == 13
		ctx := HandContext{IsClosed: true, WinTile: situation.WinTile, IsTsumo: situation.IsTsumo}
		ys, mul := EvaluateYakuman(ctx, false, true, tanki)
		return finalizeYakuman(ys, mul), true
	}

	var best *ScoreResult
	consider := func(sr ScoreResult) {
		if best == nil || scoreRank(sr) > scoreRank(*best) {
			cp := sr
			best = &cp
		}
	}

	if fixedMelds == 0 && IsAgariChiitoi(h) {
		ctx := buildHandContext(winner, situation, Decomposition{}, fixedMelds, dora, ura, aka)
		ctx.IsClosed = true
		standard := EvaluateYaku(ctx)
		standard = append(standard, YakuResult{Yaku: YakuChiitoitsu, Han: 2})
		standard = appendDoraYaku(standard, dora, ura, aka)
		han := sumHan(standard)
		fu := 25
		consider(ScoreResult{Han: han, Fu: fu, Yaku: yakuList(standard), BasePoints: basePoints(han, fu)})
	}

	if fixedMelds <= 4 {
		decomps := EnumerateStandardDecompositions(h, fixedMelds)
		for _, d := range decomps {
			ctx := buildHandContext(winner, situation, d, fixedMelds, dora, ura, aka)

			waits := WaitingTypes(HandToCounts(winner.Tiles), fixedMelds)
			tanki := false
			for _, w := range waits {
				if w == situation.WinTile.To34() && w == d.Pair && waitShape(ctx) == waitTanki {
					tanki = true
				}
			}
			ys, mul := EvaluateYakuman(ctx, false, false, tanki)
			if mul > 0 {
				consider(finalizeYakuman(ys, mul))
				continue
			}

			standard := EvaluateYaku(ctx)
			standard = appendDoraYaku(standard, dora, ura, aka)
			han := sumHan(standard)
			if han == 0 {
				continue
			}
			if han >= 13 {
				standard = []YakuResult{{Yaku: YakuKazoeYakuman, Han: 13}}
				han = 13
			}
			fu := calculateFu(ctx)
			consider(ScoreResult{Han: han, Fu: fu, Yaku: yakuList(standard), BasePoints: basePoints(han, fu)})
		}
	}

	if best == nil {
		return ScoreResult{}, false
	}
	return *best, true
}

func finalizeYakuman(ys []YakuResult, mul int) ScoreResult {
	names := make([]Yaku, 0, len(ys))
	for _, y := range ys {
		names = append(names, y.Yaku)
	}
	return ScoreResult{Han: 13 * mul, Fu: 0, Yaku: names, YakumanMul: mul, BasePoints: 8000 * mul}
}

func scoreRank(s ScoreResult) int {
	if s.YakumanMul > 0 {
		return 1_000_000 + s.YakumanMul
	}
	return s.Han*1000 + s.Fu
}

func buildHandContext(winner Player, situation WinSituation, d Decomposition, fixedMelds int, dora, ura, aka int) HandContext {
	return HandContext{
		Decomp:       d,
		OpenMelds:    winner.Melds,
		IsClosed:     winner.IsClosed(),
		WinTile:      situation.WinTile,
		IsTsumo:      situation.IsTsumo,
		SeatWind:     situation.SeatWind,
		RoundWind:    situation.RoundWind,
		IsRiichi:     winner.IsRiichi,
		IsIppatsu:    situation.IsIppatsu,
		IsFirstTsumo: situation.IsFirstTsumo,
		IsDaburi:     winner.IsDaburi,
		IsHaitei:     situation.IsHaitei,
		IsHoutei:     situation.IsHoutei,
		IsRinshan:    situation.IsRinshan,
		IsChankan:    situation.IsChankan,
		DoraCount:    dora,
		UraDoraCount: ura,
		AkaDoraCount: aka,
	}
}

func appendDoraYaku(in []YakuResult, dora, ura, aka int) []YakuResult {
	if dora > 0 {
		in = append(in, YakuResult{Yaku: YakuDora, Han: dora})
	}
	if ura > 0 {
		in = append(in, YakuResult{Yaku: YakuUraDora, Han: ura})
	}
	if aka > 0 {
		in = append(in, YakuResult{Yaku: YakuAkadora, Han: aka})
	}
	return in
}

func sumHan(ys []YakuResult) int {
	total := 0
	hasBase := false
	for _, y := range ys {
		if y.Yaku != YakuDora && y.Yaku != YakuUraDora && y.Yaku != YakuAkadora {
			hasBase = true
		}
		total += y.Han
	}
	if !hasBase {
		return 0 // dora alone never supplies a win
	}
	return total
}

func yakuList(ys []YakuResult) []Yaku {
	out := make([]Yaku, 0, len(ys))
	for _, y := range ys {
		out = append(out, y.Yaku)
	}
	return out
}

// calculateFu implements spec.md's standard fu table: base 20, +10 menzen
// ron, +2 tsumo, per-group fu by (sequence=0 / triplet or kan, open/closed,
// simple/terminal-honor), pair fu for yakuhai pairs, wait-shape fu, rounded
// up to the nearest 10 (70->80 etc).
func calculateFu(ctx HandContext) int {
	fu := 20
	if !ctx.IsTsumo && ctx.IsClosed {
		fu += 10
	}
	if ctx.IsTsumo {
		fu += 2
	}

	for _, g := range ctx.Decomp.Groups {
		if g.Kind != GroupTriplet {
			continue
		}
		fu += tripletFu(g.Type, true, false)
	}
	for _, m := range ctx.OpenMelds {
		switch m.Kind {
		case Pon:
			fu += tripletFu(m.Type34(), false, false)
		case OpenKan, AddedKan:
			fu += tripletFu(m.Type34(), false, true)
		case ClosedKan:
			fu += tripletFu(m.Type34(), true, true)
		}
	}

	if ctx.Decomp.Pair.IsDragon() {
		fu += 2
	}
	if ctx.Decomp.Pair == ctx.SeatWind.TileType() {
		fu += 2
	}
	if ctx.Decomp.Pair == ctx.RoundWind.TileType() {
		fu += 2
	}

	switch waitShape(ctx) {
	case waitKanchan, waitPenchan, waitTanki:
		fu += 2
	}

	// pinfu tsumo is the one standard exception kept at 20 flat.
	allSequences := true
	for _, g := range ctx.Decomp.Groups {
		if g.Kind != GroupSequence {
			allSequences = false
		}
	}
	if allSequences && len(ctx.OpenMelds) == 0 && ctx.IsTsumo && waitShape(ctx) == waitRyanmen {
		return 20
	}
	if allSequences && len(ctx.OpenMelds) == 0 && !ctx.IsTsumo && waitShape(ctx) == waitRyanmen {
		return 30 // pinfu ron: 20 base + 10 menzen ron, no other fu applies
	}

	return roundUpToTen(fu)
}

func tripletFu(tt TileType, closed, isKan bool) int {
	base := 2
	if tt.IsTerminalOrHonor() {
		base = 4
	}
	if isKan {
		base *= 4
	}
	if closed && !isKan {
		base *= 2
	}
	return base
}

func roundUpToTen(fu int) int {
	if fu%10 == 0 {
		return fu
	}
	return (fu/10 + 1) * 10
}

// basePoints is the standard base-point formula: fu * 2^(2+han), capped by
// the limit bands (mangan and above ignore fu entirely).
func basePoints(han, fu int) int {
	switch {
	case han >= 13:
		return 8000
	case han >= 11:
		return 6000
	case han >= 8:
		return 4000
	case han >= 6:
		return 3000
	case han >= 5:
		return 2000
	}
	bp := fu
	for i := 0; i < 2+han; i++ {
		bp *= 2
	}
	if bp > 2000 {
		return 2000 // mangan cap for a 4-han-high-fu / 3-han-70-fu hand
	}
	return bp
}

// Payment computes the four score deltas for one win, per spec.md §4.9.
// base is the ScoreResult.BasePoints (or the yakuman-resolved equivalent).
// dealerSeat/winnerSeat/loserSeat (-1 for tsumo) determine the split;
// honba adds 300 per stick split three ways on tsumo, 300 flat on ron.
func Payment(base int, winnerSeat, loserSeat, dealerSeat int, isTsumo bool, honba int) [4]int {
	var deltas [4]int
	isDealerWin := winnerSeat == dealerSeat
	if isTsumo {
		if isDealerWin {
			each := roundUpToHundred(base * 2)
			for s := 0; s < 4; s++ {
				if s == winnerSeat {
					continue
				}
				pay := each + 100*honba
				deltas[s] -= pay
				deltas[winnerSeat] += pay
			}
			return deltas
		}
		dealerShare := roundUpToHundred(base * 2)
		nonDealerShare := roundUpToHundred(base)
		for s := 0; s < 4; s++ {
			if s == winnerSeat {
				continue
			}
			share := nonDealerShare
			if s == dealerSeat {
				share = dealerShare
			}
			pay := share + 100*honba
			deltas[s] -= pay
			deltas[winnerSeat] += pay
		}
		return deltas
	}

	mult := 4
	if isDealerWin {
		mult = 6
	}
	pay := roundUpToHundred(base*mult) + 300*honba
	deltas[loserSeat] -= pay
	deltas[winnerSeat] += pay
	return deltas
}

func roundUpToHundred(v int) int {
	if v%100 == 0 {
		return v
	}
	return (v/100 + 1) * 100
}
