package replay

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"riichiserver/internal/mahjong"
)

// Recorder appends one compact JSON line per recordable event to an
// append-only file, flushing after every write so a crash mid-game
// loses at most nothing already fsynced — grounded on spec.md §6.2's
// "appended atomically per line during play" and the teacher's own
// preference for flush-on-write logging (internal/obs wraps zap's
// production config, which syncs on every entry too).
type Recorder struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

// NewRecorder opens path for appending and writes nothing yet — the
// version tag and GAME_STARTED line are written by WriteHeader, kept
// separate so a caller building a Recorder before StartGame has run can
// still construct one.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot open %q: %w", path, err)
	}
	return &Recorder{f: f, w: bufio.NewWriter(f), path: path}, nil
}

// WriteHeader writes the version tag line and the GAME_STARTED line.
// rngVersion is recorded so the loader can refuse a replay produced by
// an incompatible wall-shuffling algorithm.
func (r *Recorder) WriteHeader(gameID string, seed mahjong.Seed, rngVersion string, names [4]string, aiSeats [4]bool) error {
	if err := r.writeLine(map[string]any{"version": ReplayVersion}); err != nil {
		return err
	}
	players := make([]GameStartedPlayer, 4)
	for s := 0; s < 4; s++ {
		ai := 0
		if aiSeats[s] {
			ai = 1
		}
		players[s] = GameStartedPlayer{Seat: s, Name: names[s], AI: ai}
	}
	return r.writeLine(map[string]any{
		"t":   TagGameStarted,
		"gid": gameID,
		"p":   players,
		"sd":  hex.EncodeToString(seed[:]),
		"rv":  rngVersion,
	})
}

// WriteRoundStarted records the dealing state at the top of a hand.
func (r *Recorder) WriteRoundStarted(round mahjong.RoundState, game mahjong.GameState) error {
	type playerDeal struct {
		Seat  int `json:"s"`
		Score int `json:"sc"`
		Tiles int `json:"tl"` // tile count, not the concealed hand itself
	}
	players := make([]playerDeal, 4)
	for s := 0; s < 4; s++ {
		players[s] = playerDeal{Seat: s, Score: round.Players[s].Score, Tiles: len(round.Players[s].Tiles)}
	}
	return r.writeLine(map[string]any{
		"t":  TagRoundStarted,
		"w":  round.RoundWind.String(),
		"dl": round.DealerSeat,
		"h":  game.HonbaSticks,
		"r":  game.RiichiSticks,
		"di": round.Wall.DoraIndicators(),
		"p":  players,
	})
}

// Record translates one rule-engine event into its compact wire shape
// and appends it. Events with no entry in spec.md §4.12's event table
// (TurnEvent, CallPromptEvent, PassAcknowledgedEvent, ErrorEvent) are
// session-layer bookkeeping the replay driver re-derives from the
// actions it feeds back in, so they are silently not recorded.
func (r *Recorder) Record(ev mahjong.Event) error {
	switch e := ev.(type) {
	case mahjong.DrawEvent:
		return r.writeLine(map[string]any{"t": TagDraw, "d": encodeDiscard(e.Seat, e.Tile, false, false)})
	case mahjong.DiscardEvent:
		return r.writeLine(map[string]any{"t": TagDiscard, "d": encodeDiscard(e.Seat, e.Tile, e.IsTsumogiri, e.IsRiichi)})
	case mahjong.RiichiDeclaredEvent:
		return r.writeLine(map[string]any{"t": TagRiichi, "s": e.Seat})
	case mahjong.DoraRevealedEvent:
		return r.writeLine(map[string]any{"t": TagDoraRevealed, "ti": e.Indicators})
	case mahjong.MeldEvent:
		called := e.Meld.CalledTile
		if e.Meld.Kind == mahjong.AddedKan && len(e.Meld.Tiles) > 0 {
			// e.Meld.CalledTile still carries the original Pon's called
			// tile; the replay action needs the tile just moved from
			// hand into the kan instead, which ProcessAddedKan always
			// appends last.
			called = e.Meld.Tiles[len(e.Meld.Tiles)-1]
		}
		d := meldData{
			Kind:       e.Meld.Kind,
			CallerSeat: e.Meld.CallerSeat,
			FromSeat:   e.Meld.FromSeat,
			Tiles:      e.Meld.Tiles,
			CalledTile: called,
			HasCalled:  e.Meld.Kind != mahjong.ClosedKan,
		}
		return r.writeLine(map[string]any{"t": TagMeld, "m": encodeMeldCompact(d)})
	case mahjong.RoundEndEvent:
		return r.writeLine(roundEndWireLine(e))
	case mahjong.GameEndEvent:
		return r.writeLine(map[string]any{"t": TagGameEnd, "st": e.Standings})
	default:
		return nil
	}
}

func roundEndWireLine(e mahjong.RoundEndEvent) map[string]any {
	line := map[string]any{"t": TagRoundEnd}
	switch e.Reason {
	case mahjong.ReasonTsumo:
		line["rt"] = ResultTsumo
		if len(e.Results) > 0 {
			line["ws"] = e.Results[0].WinnerSeat
		}
	case mahjong.ReasonRon:
		if len(e.Results) > 1 {
			line["rt"] = ResultDoubleRon
			wn := make([]map[string]any, len(e.Results))
			for i, res := range e.Results {
				wn[i] = map[string]any{"ws": res.WinnerSeat}
			}
			line["wn"] = wn
			line["ls"] = e.Results[0].LoserSeat
		} else if len(e.Results) == 1 {
			line["rt"] = ResultRon
			line["ws"] = e.Results[0].WinnerSeat
			line["ls"] = e.Results[0].LoserSeat
		}
	default:
		line["rt"] = ResultAbortiveDraw
		line["rn"] = string(e.Reason)
	}
	return line
}

func (r *Recorder) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("replay: marshal event: %w", err)
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	return r.w.Flush()
}

// SaveAndCleanup flushes and closes the file on a completed game.
func (r *Recorder) SaveAndCleanup() error {
	if err := r.w.Flush(); err != nil {
		return err
	}
	return r.f.Close()
}

// CleanupGame closes and discards the partial file when all humans
// disconnected before the game finished (spec.md §6.2).
func (r *Recorder) CleanupGame() error {
	_ = r.f.Close()
	return os.Remove(r.path)
}
