package cdg

import (
	"fmt"
	"image"
	"image/color"
)

// Screen is a reference interpreter for a CD+G packet stream: a 300x216
// index buffer plus the 16-entry color table. It implements the subset of
// the instruction set the composer emits; scroll and transparency
// instructions are accepted and ignored.
//
// Screen exists for two consumers: the property tests, which replay
// encoder output and compare pixels, and the preview player.
type Screen struct {
	pix    [ScreenHeight][ScreenWidth]ColorIndex
	table  [16]color.RGBA
	border ColorIndex
}

// NewScreen returns a screen cleared to index 0 with an all-black table.
func NewScreen() *Screen {
	return &Screen{}
}

// Apply interprets a single packet.
func (s *Screen) Apply(p Packet) {
	if !p.Command {
		return
	}
	switch p.Instruction {
	case MemoryPreset:
		// Repeat nibble > 0 marks a retransmission of a preset already
		// applied; replaying it anyway is harmless and simpler.
		s.clear(ColorIndex(p.Data[0] & 0x0f))
	case BorderPreset:
		s.border = ColorIndex(p.Data[0] & 0x0f)
	case TileBlock:
		s.tile(p, false)
	case TileBlockXor:
		s.tile(p, true)
	case LoadColorTableLo:
		s.loadTable(p, 0)
	case LoadColorTableHi:
		s.loadTable(p, 8)
	case ScrollPreset, ScrollCopy, DefineTransparent, NoInstruction:
		// Not emitted by the composer.
	}
}

// ApplyAll interprets each packet in order.
func (s *Screen) ApplyAll(packets []Packet) {
	for _, p := range packets {
		s.Apply(p)
	}
}

// ApplyBinary interprets a serialized stream. The stream length must be a
// multiple of PacketSize.
func (s *Screen) ApplyBinary(stream []byte) error {
	if len(stream)%PacketSize != 0 {
		return fmt.Errorf("cdg: stream length %d is not a multiple of %d", len(stream), PacketSize)
	}
	for off := 0; off < len(stream); off += PacketSize {
		s.Apply(parsePacket(stream[off : off+PacketSize]))
	}
	return nil
}

// parsePacket decodes one 24-byte physical packet.
func parsePacket(b []byte) Packet {
	p := Packet{
		Command:     b[0]&0x3f == commandTVGraphics,
		Instruction: Instruction(b[1] & dataMask),
	}
	copy(p.Data[:], b[4:20])
	return p
}

func (s *Screen) clear(c ColorIndex) {
	for y := range s.pix {
		for x := range s.pix[y] {
			s.pix[y][x] = c
		}
	}
}

func (s *Screen) tile(p Packet, xor bool) {
	color0 := ColorIndex(p.Data[0] & 0x0f)
	color1 := ColorIndex(p.Data[1] & 0x0f)
	row := int(p.Data[2] & 0x1f)
	col := int(p.Data[3] & 0x3f)
	if row >= TileRows || col >= TileColumns {
		return
	}
	for ty := 0; ty < TileHeight; ty++ {
		bits := p.Data[4+ty] & dataMask
		for tx := 0; tx < TileWidth; tx++ {
			c := color0
			if bits&(1<<(TileWidth-1-tx)) != 0 {
				c = color1
			}
			px := &s.pix[row*TileHeight+ty][col*TileWidth+tx]
			if xor {
				*px ^= c
			} else {
				*px = c
			}
		}
	}
}

func (s *Screen) loadTable(p Packet, base int) {
	for i := 0; i < 8; i++ {
		hi := p.Data[2*i] & dataMask
		lo := p.Data[2*i+1] & dataMask
		r := hi >> 2
		g := (hi&0x03)<<2 | lo>>4
		b := lo & 0x0f
		s.table[base+i] = color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 0xff}
	}
}

// IndexAt returns the color index at screen pixel (x, y).
func (s *Screen) IndexAt(x, y int) ColorIndex {
	return s.pix[y][x]
}

// ColorAt returns the table color at screen pixel (x, y).
func (s *Screen) ColorAt(x, y int) color.RGBA {
	return s.table[s.pix[y][x]]
}

// Table returns the current color table.
func (s *Screen) Table() [16]color.RGBA {
	return s.table
}

// RGBA renders the visible area into a new image. The off-screen margin
// around the visible area is painted with the border color.
func (s *Screen) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	mx := (ScreenWidth - VisibleWidth) / 2
	my := (ScreenHeight - VisibleHeight) / 2
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			c := s.table[s.pix[y][x]]
			if x < mx || x >= ScreenWidth-mx || y < my || y >= ScreenHeight-my {
				c = s.table[s.border]
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
