package service

import (
	"crypto/rand"

	"riichiserver/internal/mahjong"
)

// randomSeed draws a fresh 192-bit seed for a game that wasn't started
// from a recorded replay (spec.md §4.12 always wants a seed on record; one
// not supplied by the caller is simply generated here instead of deferred
// to the caller, since every StartGame needs one regardless).
func randomSeed() mahjong.Seed {
	var s mahjong.Seed
	if _, err := rand.Read(s[:]); err != nil {
		panic("service: failed to read random seed: " + err.Error())
	}
	return s
}

// newRound builds a fresh RoundState + GameState for one hand: creates the
// wall, deals 13 tiles to each seat starting from the dealer, and leaves
// the dealer's own 14th-tile draw to the caller (ProcessDrawPhase), per
// spec.md §4.10's "initializes round 0, deals, emits the dealer's first
// draw" sequencing. scores carries each seat's running total into the new
// hand — mahjong.NewPlayer always starts a player at cfg.InitialPoints, so
// carrying scores across hands is this package's job, not the engine's.
func newRound(gameID string, names [4]string, seed mahjong.Seed, roundIndex, honbaSticks, riichiSticks int, wind mahjong.Wind, scores [4]int, cfg mahjong.RuleConfig) (mahjong.RoundState, mahjong.GameState) {
	dealerSeat := roundIndex % 4
	wall := mahjong.CreateWall(seed, roundIndex, dealerSeat)

	var players [4]mahjong.Player
	for s := 0; s < 4; s++ {
		players[s] = mahjong.NewPlayer(s, names[s], scores[s])
	}

	round := mahjong.RoundState{
		Wall:              wall,
		Players:           players,
		DealerSeat:        dealerSeat,
		CurrentPlayerSeat: dealerSeat,
		RoundWind:         wind,
		Phase:             mahjong.PhasePlaying,
	}
	for i := 0; i < 4; i++ {
		for s := 0; s < 4; s++ {
			seat := (dealerSeat + s) % 4
			w, tile, ok := round.Wall.DrawTile()
			if !ok {
				break
			}
			round = round.WithWall(w).AddTileToPlayer(seat, tile)
		}
	}

	game := mahjong.GameState{
		Round:        round,
		RoundNumber:  roundIndex / 4,
		HonbaSticks:  honbaSticks,
		RiichiSticks: riichiSticks,
		GamePhase:    mahjong.GameInProgress,
		Seed:         seed,
		GameID:       gameID,
		PlayerNames:  names,
	}
	return round, game
}

// initialScores fills every seat with the table's starting point total for
// a brand-new game (round 0 of East).
func initialScores(cfg mahjong.RuleConfig) [4]int {
	return [4]int{cfg.InitialPoints, cfg.InitialPoints, cfg.InitialPoints, cfg.InitialPoints}
}

// nextHandIndex folds a wind + within-wind round number back into a single
// 0-based index CreateWall's round_index parameter expects, keeping the
// dealer-seat derivation (roundIndex % 4) consistent across an entire
// East+South hanchan instead of resetting every wind.
func nextHandIndex(wind mahjong.Wind, roundNumber int) int {
	windOffset := 0
	switch wind {
	case mahjong.WindSouth:
		windOffset = 4
	case mahjong.WindWest:
		windOffset = 8
	case mahjong.WindNorth:
		windOffset = 12
	}
	return windOffset + roundNumber
}
