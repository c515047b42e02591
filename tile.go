package cdg

// tilePixels holds the 6x12 color indices of one tile, indexed [y][x].
type tilePixels [TileHeight][TileWidth]ColorIndex

// TileEncoder reduces palette-indexed bitmap regions into tile packet
// sequences. Packets are the scarce resource of a 300-packet-per-second
// stream, so the encoder covers each tile with the fewest instructions the
// format permits: at most 4 for any 16-color tile, at most 2 for tiles of
// up to two colors.
//
// The zero value is a valid encoder with BackgroundIndex as the assumed
// screen background.
type TileEncoder struct {
	// Background is the color index assumed to cover the screen where no
	// expected content is supplied.
	Background ColorIndex
}

// Encode produces the packets that make the screen region under src match
// src. The bitmap's top-left corner is placed at screen pixel (x, y); the
// affected tile range is every tile the region touches. prev is the
// expected current screen content (a full-screen bitmap), or nil when the
// region is known to hold only the background color.
//
// Tiles are visited column-major, top-to-bottom within a column and
// columns left-to-right, so drawing a static image produces a
// left-to-right reveal sweep.
func (e TileEncoder) Encode(src *Bitmap, x, y int, prev *Bitmap) []Packet {
	if src == nil || src.Width() == 0 || src.Height() == 0 {
		return nil
	}
	col0, col1 := tileSpan(x, src.Width(), TileWidth, TileColumns)
	row0, row1 := tileSpan(y, src.Height(), TileHeight, TileRows)

	var packets []Packet
	for col := col0; col <= col1; col++ {
		for row := row0; row <= row1; row++ {
			want := e.tileAt(src, x, y, prev, row, col)
			have := e.expectedAt(prev, row, col)
			packets = append(packets, e.reduceTile(want, have, row, col, prev != nil)...)
		}
	}
	return packets
}

// tileSpan returns the inclusive tile index range covered by a region
// starting at pixel origin with the given extent, clamped to the screen.
func tileSpan(origin, extent, unit, limit int) (lo, hi int) {
	lo = origin / unit
	if origin < 0 {
		lo = (origin - unit + 1) / unit
	}
	hi = (origin + extent - 1) / unit
	if lo < 0 {
		lo = 0
	}
	if hi > limit-1 {
		hi = limit - 1
	}
	return lo, hi
}

// tileAt samples the desired post-draw content of tile (row, col): src
// pixels where the region covers the tile, expected screen content
// elsewhere.
func (e TileEncoder) tileAt(src *Bitmap, x, y int, prev *Bitmap, row, col int) tilePixels {
	var t tilePixels
	for ty := 0; ty < TileHeight; ty++ {
		for tx := 0; tx < TileWidth; tx++ {
			px := col*TileWidth + tx
			py := row*TileHeight + ty
			sx := px - x
			sy := py - y
			if sx >= 0 && sx < src.Width() && sy >= 0 && sy < src.Height() {
				t[ty][tx] = src.At(sx, sy)
			} else if prev != nil {
				t[ty][tx] = prev.At(px, py)
			} else {
				t[ty][tx] = e.Background
			}
		}
	}
	return t
}

// expectedAt samples what tile (row, col) currently shows.
func (e TileEncoder) expectedAt(prev *Bitmap, row, col int) tilePixels {
	var t tilePixels
	for ty := 0; ty < TileHeight; ty++ {
		for tx := 0; tx < TileWidth; tx++ {
			if prev != nil {
				t[ty][tx] = prev.At(col*TileWidth+tx, row*TileHeight+ty)
			} else {
				t[ty][tx] = e.Background
			}
		}
	}
	return t
}

// reduceTile covers one tile with the fewest packets, by increasing
// palette size. overdraw reports whether unknown prior content may sit
// under the tile, which forces even uniform background tiles to be drawn.
func (e TileEncoder) reduceTile(want, have tilePixels, row, col int, overdraw bool) []Packet {
	if want == have {
		return nil
	}
	colors := distinctColors(want)
	switch len(colors) {
	case 1:
		c := colors[0]
		if c == e.Background && !overdraw {
			return nil
		}
		return []Packet{TileBlockPacket(false, c, c, row, col, TileMask{})}

	case 2:
		return []Packet{
			TileBlockPacket(false, colors[0], colors[1], row, col, maskOf(want, colors[1])),
		}

	case 3:
		// Draw the two most frequent colors, then XOR the third in on top
		// of pixels initially painted colors[0].
		return []Packet{
			TileBlockPacket(false, colors[0], colors[1], row, col, maskOf(want, colors[1])),
			TileBlockPacket(true, 0, colors[2]^colors[0], row, col, maskOf(want, colors[2])),
		}

	case 4:
		c := colors
		if c[2]^c[0] == c[1]^c[3] {
			// XOR-sum of the four indices is zero, so one XOR value d
			// relates both pairs: c2 = c0^d and c3 = c1^d. Two packets
			// with combined masks cover the tile.
			m1 := maskOf(want, c[1]).Or(maskOf(want, c[3]))
			m2 := maskOf(want, c[2]).Or(maskOf(want, c[3]))
			return []Packet{
				TileBlockPacket(false, c[0], c[1], row, col, m1),
				TileBlockPacket(true, 0, c[2]^c[0], row, col, m2),
			}
		}
		if varyingBits(c) >= 3 && c[0]^c[1]^c[2]^c[3] != 0 {
			// Base packet plus one XOR correction for each remaining
			// color; the XOR packets stack independently.
			return []Packet{
				TileBlockPacket(false, c[0], c[1], row, col, maskOf(want, c[1])),
				TileBlockPacket(true, 0, c[2]^c[0], row, col, maskOf(want, c[2])),
				TileBlockPacket(true, 0, c[3]^c[0], row, col, maskOf(want, c[3])),
			}
		}
		fallthrough

	default:
		return bitPlanePackets(want, colors, row, col)
	}
}

// bitPlanePackets decomposes a tile into one packet per index bit that
// varies across its palette. Bits shared by every color are folded into
// the first packet's base color, so any 16-color tile needs at most 4
// packets.
func bitPlanePackets(want tilePixels, colors []ColorIndex, row, col int) []Packet {
	var varying ColorIndex
	for _, c := range colors[1:] {
		varying |= c ^ colors[0]
	}
	base := colors[0] &^ varying

	var packets []Packet
	for bit := ColorIndex(1); bit <= 8; bit <<= 1 {
		if varying&bit == 0 {
			continue
		}
		var mask TileMask
		for y := 0; y < TileHeight; y++ {
			for x := 0; x < TileWidth; x++ {
				if want[y][x]&bit != 0 {
					mask.Set(x, y)
				}
			}
		}
		if len(packets) == 0 {
			packets = append(packets, TileBlockPacket(false, base, base|bit, row, col, mask))
		} else {
			packets = append(packets, TileBlockPacket(true, 0, bit, row, col, mask))
		}
	}
	return packets
}

// distinctColors returns the distinct indices of a tile ordered by
// decreasing pixel count, ties broken by index.
func distinctColors(t tilePixels) []ColorIndex {
	var count [16]int
	for y := range t {
		for x := range t[y] {
			count[t[y][x]&0x0f]++
		}
	}
	var colors []ColorIndex
	for i, n := range count {
		if n > 0 {
			colors = append(colors, ColorIndex(i))
		}
	}
	for i := 1; i < len(colors); i++ {
		for j := i; j > 0 && count[colors[j]] > count[colors[j-1]]; j-- {
			colors[j], colors[j-1] = colors[j-1], colors[j]
		}
	}
	return colors
}

// maskOf returns the mask of pixels holding color c.
func maskOf(t tilePixels, c ColorIndex) TileMask {
	var mask TileMask
	for y := range t {
		for x := range t[y] {
			if t[y][x] == c {
				mask.Set(x, y)
			}
		}
	}
	return mask
}

// varyingBits counts the index bits that differ across the palette.
func varyingBits(colors []ColorIndex) int {
	var varying ColorIndex
	for _, c := range colors[1:] {
		varying |= c ^ colors[0]
	}
	n := 0
	for bit := ColorIndex(1); bit <= 8; bit <<= 1 {
		if varying&bit != 0 {
			n++
		}
	}
	return n
}
