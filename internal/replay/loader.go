package replay

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"riichiserver/internal/mahjong"
)

// maxReplayEvents bounds how many lines a single file may contain before
// the loader gives up, per spec.md §4.12 "rejects files > configured
// max-events" — grounded on original_source's _MAX_REPLAY_EVENTS.
const maxReplayEvents = 200_000

// RNGVersion is recorded into every GAME_STARTED line and checked by the
// loader; bumped whenever CreateWall's shuffle algorithm changes in a
// way that would make an old replay produce a different wall.
const RNGVersion = "wall-v1"

// LoadReplayFromFile reads path and parses it the same way
// LoadReplayFromString does.
func LoadReplayFromFile(path string) (*Replay, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, newLoadError("Cannot read replay file %q: %v", path, err)
	}
	return LoadReplayFromString(string(b))
}

// LoadReplayFromString parses a complete newline-delimited event log and
// reconstructs the logical action sequence.
func LoadReplayFromString(content string) (*Replay, error) {
	if strings.TrimSpace(content) == "" {
		return nil, newLoadError("Empty replay content")
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) < 2 {
		return nil, newLoadError("Replay must contain at least a version tag and a game_started event")
	}
	if len(lines) > maxReplayEvents {
		return nil, newLoadError("Replay exceeds the maximum event count of %d", maxReplayEvents)
	}

	if err := checkVersionTag(lines[0]); err != nil {
		return nil, err
	}

	seed, names, err := parseGameStarted(lines[1])
	if err != nil {
		return nil, err
	}
	seatNames := make(map[int]string, 4)
	for i, n := range names {
		seatNames[i] = n
	}

	replay := &Replay{Seed: seed, PlayerNames: names}
	for _, line := range lines[2:] {
		raw, err := decodeLine(line)
		if err != nil {
			return nil, err
		}
		tagVal, ok := raw["t"]
		if !ok {
			return nil, newLoadError("Event missing required 't' field")
		}
		tag, err := intField(tagVal, "'t'")
		if err != nil {
			return nil, err
		}

		events, err := eventsForLine(EventTag(tag), raw, seatNames)
		if err != nil {
			return nil, err
		}
		replay.Events = append(replay.Events, events...)
	}
	return replay, nil
}

func checkVersionTag(line string) error {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return newLoadError("Malformed JSON in version tag line: %v", err)
	}
	v, ok := raw["version"]
	if !ok {
		return newLoadError("First line must be a version tag")
	}
	vs, ok := v.(string)
	if !ok || vs != ReplayVersion {
		return newLoadError("Replay version mismatch: expected %q, got %v", ReplayVersion, v)
	}
	return nil
}

func decodeLine(line string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, newLoadError("Malformed JSON: %v", err)
	}
	return raw, nil
}

func parseGameStarted(line string) (string, [4]string, error) {
	var names [4]string
	raw, err := decodeLine(line)
	if err != nil {
		return "", names, err
	}
	tagVal, ok := raw["t"]
	if !ok {
		return "", names, newLoadError("Event missing required 't' field")
	}
	tag, err := intField(tagVal, "'t'")
	if err != nil {
		return "", names, err
	}
	if EventTag(tag) != TagGameStarted {
		return "", names, newLoadError("First event must be game_started")
	}

	sdVal, ok := raw["sd"]
	if !ok {
		return "", names, newLoadError("game_started missing 'sd' field")
	}
	sd, ok := sdVal.(string)
	if !ok {
		return "", names, newLoadError("game_started has an invalid seed")
	}
	if len(sd) != 48 {
		return "", names, newLoadError("game_started has an invalid seed")
	}
	if _, err := hex.DecodeString(sd); err != nil {
		return "", names, newLoadError("game_started has an invalid seed")
	}

	rvVal, ok := raw["rv"]
	if !ok {
		return "", names, newLoadError("game_started missing 'rv' field")
	}
	rv, ok := rvVal.(string)
	if !ok || rv != RNGVersion {
		return "", names, newLoadError("RNG version mismatch: expected %q, got %v", RNGVersion, rvVal)
	}

	pVal, ok := raw["p"]
	if !ok {
		return "", names, newLoadError("game_started missing 'p' field")
	}
	pList, ok := pVal.([]any)
	if !ok {
		return "", names, newLoadError("game_started 'p' field must be a list")
	}
	seen := map[int]bool{}
	for i, entry := range pList {
		m, ok := entry.(map[string]any)
		if !ok {
			return "", names, newLoadError("player entry %d is not an object", i)
		}
		sVal, ok := m["s"]
		if !ok {
			return "", names, newLoadError("player entry %d missing required field 's'", i)
		}
		seat, err := intField(sVal, "player seat")
		if err != nil {
			return "", names, newLoadError("player entry %d has a non-integer seat", i)
		}
		nmVal, ok := m["nm"]
		if !ok {
			return "", names, newLoadError("player entry %d missing required field 'nm'", i)
		}
		nm, ok := nmVal.(string)
		if !ok || nm == "" {
			return "", names, newLoadError("player entry %d has an invalid name", i)
		}
		if seat < 0 || seat > 3 || seen[seat] {
			return "", names, newLoadError("game_started must have exactly seats 0..3")
		}
		seen[seat] = true
		names[seat] = nm
	}
	if len(seen) != 4 {
		return "", names, newLoadError("game_started must have exactly seats 0..3")
	}
	return sd, names, nil
}

// intField rejects JSON booleans (Go's encoding/json happily type-asserts
// a bool as not-a-float64, but a naive float64 conversion of true/false
// would silently succeed in other languages' loaders — reject explicitly
// for parity with spec.md's strict packed-value validation).
func intField(v any, label string) (int, error) {
	if _, ok := v.(bool); ok {
		return 0, newLoadError("%s field must be an integer", label)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, newLoadError("%s field must be an integer", label)
	}
	return int(f), nil
}

func eventsForLine(tag EventTag, raw map[string]any, seatNames map[int]string) ([]ReplayEvent, error) {
	switch tag {
	case TagDiscard:
		return discardEvent(raw, seatNames)
	case TagMeld:
		return meldEvent(raw, seatNames)
	case TagRoundEnd:
		return roundEndEvents(raw, seatNames)
	case TagDraw, TagRiichi, TagDoraRevealed, TagRoundStarted, TagGameEnd, TagGameStarted:
		return nil, nil
	default:
		return nil, newLoadError("Unknown event type: %d", tag)
	}
}

func discardEvent(raw map[string]any, seatNames map[int]string) ([]ReplayEvent, error) {
	dVal, ok := raw["d"]
	if !ok {
		return nil, newLoadError("discard event missing 'd' field")
	}
	packed, err := intField(dVal, "discard 'd'")
	if err != nil {
		return nil, newLoadError("Invalid discard packed value: %v", dVal)
	}
	seat, tile, _, isRiichi, err := decodeDiscard(packed)
	if err != nil {
		return nil, err
	}
	name, ok := seatNames[seat]
	if !ok {
		return nil, newLoadError("discard event references unknown seat %d", seat)
	}
	action := mahjong.ActionDiscard
	if isRiichi {
		action = mahjong.ActionDeclareRiichi
	}
	return []ReplayEvent{{PlayerName: name, Action: action, Data: map[string]any{"tile_id": int(tile)}}}, nil
}

func meldEvent(raw map[string]any, seatNames map[int]string) ([]ReplayEvent, error) {
	mVal, ok := raw["m"]
	if !ok {
		return nil, newLoadError("Compact meld event missing 'm' field")
	}
	packed, err := intField(mVal, "meld 'm'")
	if err != nil {
		return nil, newLoadError("Invalid compact meld value: %v", mVal)
	}
	d, err := decodeMeldCompact(packed)
	if err != nil {
		return nil, err
	}
	name, ok := seatNames[d.CallerSeat]
	if !ok {
		return nil, newLoadError("meld event references unknown seat %d", d.CallerSeat)
	}

	switch d.Kind {
	case mahjong.Pon:
		return []ReplayEvent{{PlayerName: name, Action: mahjong.ActionCallPon, Data: map[string]any{"tile_id": int(d.CalledTile)}}}, nil
	case mahjong.Chi:
		var rest []int
		for _, t := range d.Tiles {
			if t != d.CalledTile {
				rest = append(rest, int(t))
			}
		}
		return []ReplayEvent{{PlayerName: name, Action: mahjong.ActionCallChi, Data: map[string]any{"tile_id": int(d.CalledTile), "sequence_tiles": rest}}}, nil
	case mahjong.OpenKan:
		return []ReplayEvent{{PlayerName: name, Action: mahjong.ActionCallKan, Data: map[string]any{"tile_id": int(d.CalledTile), "kan_type": "open"}}}, nil
	case mahjong.ClosedKan:
		return []ReplayEvent{{PlayerName: name, Action: mahjong.ActionCallKan, Data: map[string]any{"tile_id": int(d.Tiles[0]), "kan_type": "closed"}}}, nil
	case mahjong.AddedKan:
		return []ReplayEvent{{PlayerName: name, Action: mahjong.ActionCallKan, Data: map[string]any{"tile_id": int(d.CalledTile), "kan_type": "added"}}}, nil
	default:
		return nil, newLoadError("Unknown meld_type in decoded IMME: %d", d.Kind)
	}
}

func roundEndEvents(raw map[string]any, seatNames map[int]string) ([]ReplayEvent, error) {
	rtVal, ok := raw["rt"]
	if !ok {
		return nil, newLoadError("round_end missing 'rt' field")
	}
	rt, ok := rtVal.(string)
	if !ok {
		return nil, newLoadError("round_end 'rt' field must be a string")
	}

	switch WireRoundResultType(rt) {
	case ResultTsumo:
		seat, err := seatField(raw, "ws", seatNames)
		if err != nil {
			return nil, newLoadError("tsumo round_end missing or invalid field 'ws'")
		}
		return []ReplayEvent{{PlayerName: seatNames[seat], Action: mahjong.ActionDeclareTsumo}}, nil
	case ResultRon:
		seat, err := seatField(raw, "ws", seatNames)
		if err != nil {
			return nil, newLoadError("ron round_end missing or invalid field 'ws'")
		}
		return []ReplayEvent{{PlayerName: seatNames[seat], Action: mahjong.ActionCallRon}}, nil
	case ResultDoubleRon, ResultTripleRon:
		wnVal, ok := raw["wn"]
		if !ok {
			return nil, newLoadError("double_ron round_end must have at least one winner")
		}
		wnList, ok := wnVal.([]any)
		if !ok || len(wnList) == 0 {
			return nil, newLoadError("double_ron round_end must have at least one winner")
		}
		events := make([]ReplayEvent, 0, len(wnList))
		for _, w := range wnList {
			m, ok := w.(map[string]any)
			if !ok {
				return nil, newLoadError("double_ron round_end missing or invalid field 'ws'")
			}
			seat, err := seatField(m, "ws", seatNames)
			if err != nil {
				return nil, newLoadError("double_ron round_end missing or invalid field 'ws'")
			}
			events = append(events, ReplayEvent{PlayerName: seatNames[seat], Action: mahjong.ActionCallRon})
		}
		return events, nil
	case ResultAbortiveDraw:
		rnVal, _ := raw["rn"]
		if rn, _ := rnVal.(string); rn == "nine_terminals" {
			seat, err := seatField(raw, "s", seatNames)
			if err != nil {
				return nil, newLoadError("nine_terminals abortive_draw missing or invalid field 's'")
			}
			return []ReplayEvent{{PlayerName: seatNames[seat], Action: mahjong.ActionCallKyuushu}}, nil
		}
		return nil, nil
	case ResultExhaustiveDraw:
		return nil, nil
	default:
		return nil, newLoadError("Unknown round_end result type: %v", rt)
	}
}

func seatField(raw map[string]any, key string, seatNames map[int]string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, newLoadError("missing field %q", key)
	}
	seat, err := intField(v, key)
	if err != nil {
		return 0, err
	}
	if _, ok := seatNames[seat]; !ok {
		return 0, newLoadError("references unknown seat %d", seat)
	}
	return seat, nil
}
