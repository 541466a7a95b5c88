package replay

import "riichiserver/internal/mahjong"

// encodeDiscard/decodeDiscard pack a DISCARD line's "d" field: seat (2
// bits), tile_id (8 bits, 0..135 per mahjong.NumTiles), is_tsumogiri and
// is_riichi (1 bit each) — grounded on spec.md §4.12's
// "packed(seat, tile_id, flags…)" and original_source's
// game.messaging.compact.encode_discard/decode_discard.
const (
	discardSeatBits = 2
	discardTileBits = 8
	discardMaxValue = 1<<(discardSeatBits+discardTileBits+2) - 1
)

func encodeDiscard(seat int, tile mahjong.TileID, isTsumogiri, isRiichi bool) int {
	v := seat
	v |= int(tile) << discardSeatBits
	if isTsumogiri {
		v |= 1 << (discardSeatBits + discardTileBits)
	}
	if isRiichi {
		v |= 1 << (discardSeatBits + discardTileBits + 1)
	}
	return v
}

// decodeDiscard returns seat, tile, is_tsumogiri, is_riichi, or an error
// if packed is out of the valid bit range or encodes a tile_id outside
// 0..135.
func decodeDiscard(packed int) (int, mahjong.TileID, bool, bool, error) {
	if packed < 0 || packed > discardMaxValue {
		return 0, 0, false, false, newLoadError("Invalid discard packed value: %d", packed)
	}
	seat := packed & (1<<discardSeatBits - 1)
	tile := (packed >> discardSeatBits) & (1<<discardTileBits - 1)
	isTsumogiri := packed&(1<<(discardSeatBits+discardTileBits)) != 0
	isRiichi := packed&(1<<(discardSeatBits+discardTileBits+1)) != 0
	if tile >= mahjong.NumTiles {
		return 0, 0, false, false, newLoadError("Invalid discard packed value: %d", packed)
	}
	return seat, mahjong.TileID(tile), isTsumogiri, isRiichi, nil
}

// meldData is the decoded shape of a compact IMME-encoded meld, midway
// between the wire integer and a mahjong.Meld (the caller still needs to
// resolve from_seat/called tile into the CallResponse the replay driver
// feeds back into the service).
type meldData struct {
	Kind       mahjong.MeldKind
	CallerSeat int
	FromSeat   int // -1 for closed kan
	Tiles      []mahjong.TileID
	CalledTile mahjong.TileID
	HasCalled  bool
}

const (
	meldKindBits   = 3
	meldSeatBits   = 3 // 0..3, 4 means "none" for FromSeat
	meldIndexBits  = 3 // index into tiles, 4 means "none"
	meldTileBits   = 8
	meldNoneSeat   = 4
	meldNoneIndex  = 4
	meldTileNone   = 0xFF
	meldMaxKind    = 4 // AddedKan
	meldMaxTileIdx = 3
)

// encodeMeldCompact packs a finalized meld plus its resolving context
// (who called it from whom, and which tile in the tile list was the
// called one) into one integer, fitting Chi/Pon's 3-tile melds and
// Kan's 4-tile melds into the same fixed 4-slot layout (unused slots
// carry the meldTileNone sentinel).
func encodeMeldCompact(d meldData) int {
	var tiles [4]int
	for i := range tiles {
		tiles[i] = meldTileNone
	}
	for i, t := range d.Tiles {
		if i >= 4 {
			break
		}
		tiles[i] = int(t)
	}

	calledIdx := meldNoneIndex
	if d.HasCalled {
		for i, t := range d.Tiles {
			if t == d.CalledTile {
				calledIdx = i
				break
			}
		}
	}
	fromSeat := meldNoneSeat
	if d.FromSeat >= 0 {
		fromSeat = d.FromSeat
	}

	v := int(d.Kind)
	shift := meldKindBits
	v |= d.CallerSeat << shift
	shift += meldSeatBits
	v |= fromSeat << shift
	shift += meldSeatBits
	v |= calledIdx << shift
	shift += meldIndexBits
	for _, t := range tiles {
		v |= t << shift
		shift += meldTileBits
	}
	return v
}

func decodeMeldCompact(packed int) (meldData, error) {
	if packed < 0 {
		return meldData{}, newLoadError("Invalid compact meld value: %d", packed)
	}
	shift := 0
	kind := packed >> shift & (1<<meldKindBits - 1)
	shift += meldKindBits
	callerSeat := packed >> shift & (1<<meldSeatBits - 1)
	shift += meldSeatBits
	fromSeatRaw := packed >> shift & (1<<meldSeatBits - 1)
	shift += meldSeatBits
	calledIdx := packed >> shift & (1<<meldIndexBits - 1)
	shift += meldIndexBits

	var tiles []mahjong.TileID
	for i := 0; i < 4; i++ {
		t := packed >> shift & (1<<meldTileBits - 1)
		shift += meldTileBits
		if t != meldTileNone {
			if t >= mahjong.NumTiles {
				return meldData{}, newLoadError("Invalid compact meld value: %d", packed)
			}
			tiles = append(tiles, mahjong.TileID(t))
		}
	}

	if kind > meldMaxKind || callerSeat > 3 {
		return meldData{}, newLoadError("Invalid compact meld value: %d", packed)
	}
	d := meldData{
		Kind:       mahjong.MeldKind(kind),
		CallerSeat: callerSeat,
		FromSeat:   -1,
		Tiles:      tiles,
	}
	if fromSeatRaw != meldNoneSeat {
		if fromSeatRaw > 3 {
			return meldData{}, newLoadError("Invalid compact meld value: %d", packed)
		}
		d.FromSeat = fromSeatRaw
	}
	if calledIdx != meldNoneIndex {
		if calledIdx > meldMaxTileIdx || calledIdx >= len(tiles) {
			return meldData{}, newLoadError("Invalid compact meld value: %d", packed)
		}
		d.CalledTile = tiles[calledIdx]
		d.HasCalled = true
	}
	return d, nil
}
