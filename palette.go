package cdg

import (
	"fmt"
	"image/color"
)

// ColorIndex is a 4-bit index into the 16-entry CD+G color table.
type ColorIndex uint8

// Reserved color table slots. The remaining slots are allocated by
// [Palette]: two for title/label text, four per singer, and whatever is
// left over for quantized background images.
const (
	BackgroundIndex ColorIndex = 0
	BorderIndex     ColorIndex = 1
	TitleIndex      ColorIndex = 2
	SubtitleIndex   ColorIndex = 3
)

// singerBase is the first color table slot available to singers. Singer
// slots are allocated in aligned groups of four so that the active colors
// sit at inactive ^ singerDelta.
const (
	singerBase  = 4
	singerDelta = 2
)

// MaxSingers is the number of singers a single color table can hold.
const MaxSingers = 3

// SingerSlots is the color table allocation for one singer. The active
// slots are the XOR of the inactive slots with Delta, so a highlight sweep
// can flip fill and stroke pixels with a single TileBlockXor color.
type SingerSlots struct {
	InactiveFill   ColorIndex
	InactiveStroke ColorIndex
	ActiveFill     ColorIndex
	ActiveStroke   ColorIndex
	Delta          ColorIndex
}

// Palette manages the 16-entry color table: reserved slots, per-singer
// highlight slots, and a trailing region for quantized image colors.
type Palette struct {
	table   [16]color.RGBA
	singers []SingerSlots
	imageLo ColorIndex // first slot handed to AllocImage
}

// NewPalette creates a palette with the given background, border, and
// title colors in their reserved slots.
func NewPalette(background, border, title, subtitle color.RGBA) *Palette {
	p := &Palette{imageLo: singerBase}
	p.table[BackgroundIndex] = background
	p.table[BorderIndex] = border
	p.table[TitleIndex] = title
	p.table[SubtitleIndex] = subtitle
	return p
}

// AddSinger allocates the four-slot group for the next singer. The group
// is aligned so that active = inactive ^ 2 holds for both fill and stroke.
func (p *Palette) AddSinger(inactiveFill, inactiveStroke, activeFill, activeStroke color.RGBA) (SingerSlots, error) {
	if len(p.singers) >= MaxSingers {
		return SingerSlots{}, fmt.Errorf("cdg: color table full, at most %d singers", MaxSingers)
	}
	base := ColorIndex(singerBase + 4*len(p.singers))
	s := SingerSlots{
		InactiveFill:   base,
		InactiveStroke: base + 1,
		ActiveFill:     base ^ singerDelta,
		ActiveStroke:   (base + 1) ^ singerDelta,
		Delta:          singerDelta,
	}
	p.table[s.InactiveFill] = inactiveFill
	p.table[s.InactiveStroke] = inactiveStroke
	p.table[s.ActiveFill] = activeFill
	p.table[s.ActiveStroke] = activeStroke
	p.singers = append(p.singers, s)
	p.imageLo = base + 4
	return s, nil
}

// Singer returns the slot allocation for singer i.
func (p *Palette) Singer(i int) SingerSlots {
	return p.singers[i]
}

// Singers returns the number of singers allocated so far.
func (p *Palette) Singers() int {
	return len(p.singers)
}

// FreeSlots returns the number of color table slots available for
// quantized image colors.
func (p *Palette) FreeSlots() int {
	return 16 - int(p.imageLo)
}

// AllocImage places up to FreeSlots image colors in the trailing table
// region and returns the index of the first one.
func (p *Palette) AllocImage(colors []color.RGBA) (ColorIndex, error) {
	if len(colors) > p.FreeSlots() {
		return 0, fmt.Errorf("cdg: %d image colors do not fit in %d free slots", len(colors), p.FreeSlots())
	}
	base := p.imageLo
	for i, c := range colors {
		p.table[base+ColorIndex(i)] = c
	}
	p.imageLo = base + ColorIndex(len(colors))
	return base, nil
}

// Table returns the full 16-entry color table.
func (p *Palette) Table() [16]color.RGBA {
	return p.table
}

// Color returns the table entry for idx.
func (p *Palette) Color(idx ColorIndex) color.RGBA {
	return p.table[idx&0x0f]
}

// encodeColor packs an RGBA color into the 12-bit CD+G layout: the high
// byte carries the 4-bit red and the top half of green, the low byte the
// bottom half of green and the 4-bit blue.
func encodeColor(c color.RGBA) (hi, lo byte) {
	r := c.R >> 4
	g := c.G >> 4
	b := c.B >> 4
	hi = r<<2 | g>>2
	lo = (g&0x03)<<4 | b
	return hi, lo
}

// LoadColorTablePackets encodes the full 16-entry table as one
// LoadColorTableLo packet (entries 0-7) and one LoadColorTableHi packet
// (entries 8-15).
func LoadColorTablePackets(table [16]color.RGBA) []Packet {
	lo := Packet{Command: true, Instruction: LoadColorTableLo}
	hi := Packet{Command: true, Instruction: LoadColorTableHi}
	for i := 0; i < 8; i++ {
		h, l := encodeColor(table[i])
		lo.Data[2*i] = h
		lo.Data[2*i+1] = l
		h, l = encodeColor(table[i+8])
		hi.Data[2*i] = h
		hi.Data[2*i+1] = l
	}
	return []Packet{lo, hi}
}
