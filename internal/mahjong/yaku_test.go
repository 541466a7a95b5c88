package mahjong

import "testing"

func allSimplesDecomp() HandContext {
	return HandContext{
		IsClosed: true,
		Decomp: Decomposition{
			Pair: Pin5,
			Groups: []Group{
				{Kind: GroupSequence, Type: Man2},
				{Kind: GroupSequence, Type: Man5},
				{Kind: GroupSequence, Type: Pin2},
				{Kind: GroupSequence, Type: Sou3},
			},
		},
		WinTile: TileID(int(Sou4) * 4),
	}
}

func TestTanyao(t *testing.T) {
	ctx := allSimplesDecomp()
	if !checkTanyao(ctx) {
		t.Fatalf("all-simples hand should qualify for tanyao")
	}
}

func TestTanyaoFailsWithTerminal(t *testing.T) {
	ctx := allSimplesDecomp()
	ctx.Decomp.Groups[0] = Group{Kind: GroupSequence, Type: Man1}
	if checkTanyao(ctx) {
		t.Fatalf("a 123m sequence includes a terminal and must fail tanyao")
	}
}

func TestPinfuRequiresRyanmenAndNonYakuhaiPair(t *testing.T) {
	ctx := allSimplesDecomp()
	ctx.IsTsumo = false
	// 3s4s waiting on 5s (the WinTile), ryanmen.
	ctx.Decomp.Groups[3] = Group{Kind: GroupSequence, Type: Sou3}
	ctx.WinTile = TileID(int(Sou5) * 4)
	if !checkPinfu(ctx) {
		t.Fatalf("expected pinfu shape to qualify")
	}

	ctx.Decomp.Pair = East
	if checkPinfu(ctx) {
		t.Fatalf("a round/seat wind pair disqualifies pinfu (here just checking honor pair in general is excluded when it's a value tile in context)")
	}
}

func TestYakuhaiCountsEachValueTriplet(t *testing.T) {
	ctx := HandContext{
		SeatWind:  WindEast,
		RoundWind: WindEast,
		Decomp: Decomposition{
			Pair: Man2,
			Groups: []Group{
				{Kind: GroupTriplet, Type: East}, // double east: seat + round
				{Kind: GroupTriplet, Type: White},
				{Kind: GroupSequence, Type: Man3},
				{Kind: GroupSequence, Type: Pin4},
			},
		},
	}
	if got := yakuhaiHan(ctx); got != 3 {
		t.Fatalf("expected 3 han (double east + one dragon), got %d", got)
	}
}

func TestHonitsuAndChinitsu(t *testing.T) {
	ctx := HandContext{
		Decomp: Decomposition{
			Pair: East,
			Groups: []Group{
				{Kind: GroupSequence, Type: Man2},
				{Kind: GroupSequence, Type: Man5},
				{Kind: GroupTriplet, Type: Man7},
				{Kind: GroupTriplet, Type: White},
			},
		},
	}
	if suitPurity(ctx) != 1 {
		t.Fatalf("expected honitsu (one suit + honors), got %d", suitPurity(ctx))
	}

	ctx.Decomp.Pair = Man9
	ctx.Decomp.Groups[3] = Group{Kind: GroupTriplet, Type: Man8}
	if suitPurity(ctx) != 2 {
		t.Fatalf("expected chinitsu (one suit, no honors), got %d", suitPurity(ctx))
	}
}

func TestScoreRankPrefersHigherHan(t *testing.T) {
	low := ScoreResult{Han: 1, Fu: 30}
	high := ScoreResult{Han: 3, Fu: 30}
	if scoreRank(high) <= scoreRank(low) {
		t.Fatalf("a 3-han hand must outrank a 1-han hand")
	}
}

func TestBasePointsLimitBands(t *testing.T) {
	if basePoints(5, 30) != 2000 {
		t.Fatalf("5 han should be a flat mangan (2000 base), got %d", basePoints(5, 30))
	}
	if basePoints(13, 0) != 8000 {
		t.Fatalf("13+ han should be yakuman base (8000), got %d", basePoints(13, 0))
	}
}

func TestEvaluateYakumanTenhouForDealer(t *testing.T) {
	ctx := HandContext{SeatWind: WindEast, IsFirstTsumo: true, IsTsumo: true}
	ys, mul := EvaluateYakuman(ctx, false, false, false)
	if mul != 1 || len(ys) != 1 || ys[0].Yaku != YakuTenhou {
		t.Fatalf("expected a single tenhou yakuman, got %v mul=%d", ys, mul)
	}
}

func TestEvaluateYakumanChiihouForNonDealer(t *testing.T) {
	ctx := HandContext{SeatWind: WindSouth, IsFirstTsumo: true, IsTsumo: true}
	ys, mul := EvaluateYakuman(ctx, false, false, false)
	if mul != 1 || len(ys) != 1 || ys[0].Yaku != YakuChiihou {
		t.Fatalf("expected a single chiihou yakuman, got %v mul=%d", ys, mul)
	}
}

func TestEvaluateYakumanNoTenhouOnceInterrupted(t *testing.T) {
	ctx := HandContext{SeatWind: WindEast, IsFirstTsumo: false, IsTsumo: true}
	ys, mul := EvaluateYakuman(ctx, false, false, false)
	if mul != 0 || len(ys) != 0 {
		t.Fatalf("a tsumo after the first go-around must not score tenhou, got %v mul=%d", ys, mul)
	}
}

func TestRoundUpToTen(t *testing.T) {
	if roundUpToTen(22) != 30 {
		t.Fatalf("22 should round up to 30, got %d", roundUpToTen(22))
	}
	if roundUpToTen(30) != 30 {
		t.Fatalf("30 should stay 30, got %d", roundUpToTen(30))
	}
}
