package mahjong

import "testing"

func TestTileIDTo34(t *testing.T) {
	if TileID(0).To34() != Man1 {
		t.Fatalf("expected Man1, got %v", TileID(0).To34())
	}
	if TileID(135).To34() != Red {
		t.Fatalf("expected Red, got %v", TileID(135).To34())
	}
	for i := TileID(0); i < 4; i++ {
		if i.To34() != Man1 {
			t.Fatalf("copies 0..3 of Man1 should all map to Man1, got %v at %d", i.To34(), i)
		}
	}
}

func TestIsRedFive(t *testing.T) {
	red5m := TileID(int(Man5) * 4)
	if !red5m.IsRedFive() {
		t.Fatalf("copy index 0 of a five should be red")
	}
	if TileID(int(Man5)*4 + 1).IsRedFive() {
		t.Fatalf("copy index 1 of a five should not be red")
	}
	if TileID(int(Man4) * 4).IsRedFive() {
		t.Fatalf("a four is never red")
	}
}

func TestIsTerminalOrHonor(t *testing.T) {
	cases := map[TileType]bool{
		Man1: true, Man9: true, Man5: false,
		Pin1: true, Sou9: true,
		East: true, Red: true,
	}
	for tt, want := range cases {
		if got := tt.IsTerminalOrHonor(); got != want {
			t.Errorf("%v.IsTerminalOrHonor() = %v, want %v", tt, got, want)
		}
	}
}

func TestNext(t *testing.T) {
	if Man9.Next() != Man1 {
		t.Fatalf("Man9 dora successor should wrap to Man1, got %v", Man9.Next())
	}
	if East.Next() != South {
		t.Fatalf("East successor should be South, got %v", East.Next())
	}
	if North.Next() != East {
		t.Fatalf("North should wrap to East, got %v", North.Next())
	}
	if Red.Next() != White {
		t.Fatalf("Red should wrap to White, got %v", Red.Next())
	}
}

func TestSuitAndNumber(t *testing.T) {
	if Pin5.Suit() != 1 || Pin5.Number() != 5 {
		t.Fatalf("Pin5 suit/number wrong: %d/%d", Pin5.Suit(), Pin5.Number())
	}
	if East.Suit() != -1 || East.Number() != 0 {
		t.Fatalf("honor tiles should report suit -1, number 0")
	}
}
