package cdg

import (
	"testing"
)

// replayRegion encodes src at (x, y) against prev and replays the packets
// on a screen seeded with the prior content.
func replayRegion(t *testing.T, enc TileEncoder, src *Bitmap, x, y int, prev *Bitmap) (*Screen, []Packet) {
	t.Helper()
	screen := NewScreen()
	if enc.Background != 0 {
		screen.ApplyAll(MemoryPresetPackets(enc.Background))
	}
	if prev != nil {
		screen.ApplyAll(enc.Encode(prev, 0, 0, nil))
	}
	packets := enc.Encode(src, x, y, prev)
	screen.ApplyAll(packets)
	return screen, packets
}

// checkRegion verifies that the screen under src matches src exactly.
func checkRegion(t *testing.T, screen *Screen, src *Bitmap, x, y int) {
	t.Helper()
	for sy := 0; sy < src.Height(); sy++ {
		for sx := 0; sx < src.Width(); sx++ {
			if got, want := screen.IndexAt(x+sx, y+sy), src.At(sx, sy); got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x+sx, y+sy, got, want)
			}
		}
	}
}

// singleTile builds a 6x12 bitmap from a paint function.
func singleTile(paint func(x, y int) ColorIndex) *Bitmap {
	bm := NewBitmap(TileWidth, TileHeight)
	for y := 0; y < TileHeight; y++ {
		for x := 0; x < TileWidth; x++ {
			bm.Set(x, y, paint(x, y))
		}
	}
	return bm
}

func TestTileEncoder_ReductionLadder(t *testing.T) {
	tests := []struct {
		name       string
		paint      func(x, y int) ColorIndex
		maxPackets int
	}{
		{
			name:       "single color",
			paint:      func(x, y int) ColorIndex { return 7 },
			maxPackets: 1,
		},
		{
			name: "two colors",
			paint: func(x, y int) ColorIndex {
				if (x+y)%2 == 0 {
					return 4
				}
				return 6
			},
			maxPackets: 1,
		},
		{
			name: "three colors",
			paint: func(x, y int) ColorIndex {
				return ColorIndex([3]int{1, 5, 9}[(x+2*y)%3])
			},
			maxPackets: 2,
		},
		{
			name: "four colors symmetric",
			// {4,5,6,7} has XOR-sum zero.
			paint: func(x, y int) ColorIndex {
				return ColorIndex(4 + (x+y)%4)
			},
			maxPackets: 2,
		},
		{
			name: "four colors asymmetric",
			// {1,2,4,8}: XOR-sum 15, four varying bits.
			paint: func(x, y int) ColorIndex {
				return ColorIndex(1 << ((x + y) % 4))
			},
			maxPackets: 3,
		},
		{
			name: "eight colors",
			paint: func(x, y int) ColorIndex {
				return ColorIndex((x + y*TileWidth) % 8)
			},
			maxPackets: 3, // three varying bits, zero constant bits
		},
		{
			name: "sixteen colors",
			paint: func(x, y int) ColorIndex {
				return ColorIndex((x + y*TileWidth) % 16)
			},
			maxPackets: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := singleTile(tt.paint)
			var enc TileEncoder
			screen, packets := replayRegion(t, enc, src, 5*TileWidth, 3*TileHeight, nil)
			if len(packets) > tt.maxPackets {
				t.Errorf("emitted %d packets, want at most %d", len(packets), tt.maxPackets)
			}
			checkRegion(t, screen, src, 5*TileWidth, 3*TileHeight)
		})
	}
}

func TestTileEncoder_TwoColorRoundTrip(t *testing.T) {
	src := singleTile(func(x, y int) ColorIndex {
		if x < 3 {
			return 2
		}
		return 11
	})
	var enc TileEncoder
	packets := enc.Encode(src, 0, 0, nil)
	if len(packets) != 1 {
		t.Fatalf("two-color tile produced %d packets, want 1", len(packets))
	}

	// Re-decode the pattern from the packet's operands alone.
	p := packets[0]
	color0 := ColorIndex(p.Data[0])
	color1 := ColorIndex(p.Data[1])
	for y := 0; y < TileHeight; y++ {
		for x := 0; x < TileWidth; x++ {
			c := color0
			if p.Data[4+y]&(1<<(TileWidth-1-x)) != 0 {
				c = color1
			}
			if c != src.At(x, y) {
				t.Fatalf("pixel (%d,%d): decoded %d, want %d", x, y, c, src.At(x, y))
			}
		}
	}
}

func TestTileEncoder_AnyPaletteExact(t *testing.T) {
	// A tile with every index present and no structure still replays
	// exactly and within the four-packet bound.
	src := singleTile(func(x, y int) ColorIndex {
		return ColorIndex((x*7 + y*5 + 3) % 16)
	})
	var enc TileEncoder
	screen, packets := replayRegion(t, enc, src, 0, 0, nil)
	if len(packets) > 4 {
		t.Errorf("emitted %d packets, want at most 4", len(packets))
	}
	checkRegion(t, screen, src, 0, 0)
}

func TestTileEncoder_SkipsBackgroundTiles(t *testing.T) {
	// A mostly-empty region should only spend packets on tiles holding
	// foreground pixels.
	src := NewBitmap(TileWidth*4, TileHeight)
	src.Set(1, 1, 9) // only the first tile has content

	var enc TileEncoder
	packets := enc.Encode(src, 0, 0, nil)
	if len(packets) != 1 {
		t.Fatalf("emitted %d packets, want 1", len(packets))
	}
	if got := int(packets[0].Data[3]); got != 0 {
		t.Errorf("packet column = %d, want 0", got)
	}
}

func TestTileEncoder_Idempotent(t *testing.T) {
	// Re-encoding an already-drawn, unchanged line against itself yields
	// zero packets.
	src := NewBitmap(60, TileHeight)
	for x := 0; x < 60; x++ {
		src.Set(x, 3, ColorIndex(4+x%4))
	}

	prev := NewBitmap(ScreenWidth, ScreenHeight)
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			prev.Set(x, y, src.At(x, y))
		}
	}

	var enc TileEncoder
	if packets := enc.Encode(src, 0, 0, prev); len(packets) != 0 {
		t.Errorf("re-encode produced %d packets, want 0", len(packets))
	}
}

func TestTileEncoder_OverdrawEmitsBackground(t *testing.T) {
	// Erasing a line means drawing background over known content; uniform
	// background tiles must be emitted in that case.
	prev := NewBitmap(ScreenWidth, ScreenHeight)
	for x := 0; x < TileWidth; x++ {
		prev.Set(x, 0, 9)
	}
	blank := NewBitmap(TileWidth, TileHeight)

	var enc TileEncoder
	packets := enc.Encode(blank, 0, 0, prev)
	if len(packets) != 1 {
		t.Fatalf("emitted %d packets, want 1", len(packets))
	}
	screen := NewScreen()
	screen.ApplyAll(enc.Encode(prev, 0, 0, nil))
	screen.ApplyAll(packets)
	checkRegion(t, screen, blank, 0, 0)
}

func TestTileEncoder_ColumnMajorOrder(t *testing.T) {
	// Two tile columns, two tile rows, all four tiles with content: the
	// sweep must visit both rows of column 0 before column 1.
	src := NewBitmap(TileWidth*2, TileHeight*2)
	src.Fill(5)

	var enc TileEncoder
	packets := enc.Encode(src, 0, 0, nil)
	if len(packets) != 4 {
		t.Fatalf("emitted %d packets, want 4", len(packets))
	}
	type pos struct{ row, col int }
	var got []pos
	for _, p := range packets {
		got = append(got, pos{int(p.Data[2]), int(p.Data[3])})
	}
	want := []pos{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visit order %v, want %v", got, want)
		}
	}
}

func TestTileEncoder_UnalignedRegion(t *testing.T) {
	// A region straddling tile boundaries replays exactly; surrounding
	// pixels stay untouched.
	src := NewBitmap(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, ColorIndex(1+(x+y)%3))
		}
	}
	var enc TileEncoder
	screen, _ := replayRegion(t, enc, src, 4, 7, nil)
	checkRegion(t, screen, src, 4, 7)
	if got := screen.IndexAt(3, 7); got != 0 {
		t.Errorf("pixel left of region = %d, want background", got)
	}
	if got := screen.IndexAt(14, 7); got != 0 {
		t.Errorf("pixel right of region = %d, want background", got)
	}
}

func TestTileEncoder_NonZeroBackground(t *testing.T) {
	enc := TileEncoder{Background: 3}
	src := NewBitmap(TileWidth, TileHeight)
	src.Fill(3)
	if packets := enc.Encode(src, 0, 0, nil); len(packets) != 0 {
		t.Errorf("background-colored tile produced %d packets, want 0", len(packets))
	}
}
