package cdg

import "io"

// Screen geometry. The virtual screen is addressed in 6x12-pixel tiles;
// the outermost pixels form the border and are not addressable by tiles.
const (
	ScreenWidth   = 300
	ScreenHeight  = 216
	VisibleWidth  = 280
	VisibleHeight = 192

	TileWidth  = 6
	TileHeight = 12

	TileRows    = ScreenHeight / TileHeight // 18
	TileColumns = ScreenWidth / TileWidth   // 50
)

// Stream timing. One packet occupies one frame slot.
const (
	PacketsPerSecond = 300
	FramesPerSecond  = 300
)

// PacketSize is the physical size of one packet on the wire: command byte,
// instruction byte, 2 parity bytes, 16 data bytes, 4 parity bytes.
const PacketSize = 24

// commandTVGraphics marks a subcode packet as carrying a CD+G instruction.
const commandTVGraphics = 0x09

// dataMask limits payload bytes to the 6 bits the subchannel can carry.
const dataMask = 0x3f

// Instruction identifies a CD+G instruction within a command packet.
type Instruction uint8

// CD+G instructions.
const (
	NoInstruction     Instruction = 0
	MemoryPreset      Instruction = 1
	BorderPreset      Instruction = 2
	TileBlock         Instruction = 6
	ScrollPreset      Instruction = 20
	ScrollCopy        Instruction = 24
	DefineTransparent Instruction = 28
	LoadColorTableLo  Instruction = 30
	LoadColorTableHi  Instruction = 31
	TileBlockXor      Instruction = 38
)

// String returns the instruction mnemonic.
func (i Instruction) String() string {
	switch i {
	case NoInstruction:
		return "NoInstruction"
	case MemoryPreset:
		return "MemoryPreset"
	case BorderPreset:
		return "BorderPreset"
	case TileBlock:
		return "TileBlock"
	case ScrollPreset:
		return "ScrollPreset"
	case ScrollCopy:
		return "ScrollCopy"
	case DefineTransparent:
		return "DefineTransparent"
	case LoadColorTableLo:
		return "LoadColorTableLo"
	case LoadColorTableHi:
		return "LoadColorTableHi"
	case TileBlockXor:
		return "TileBlockXor"
	default:
		return "Unknown"
	}
}

// Packet is one CD+G instruction. The zero value is a no-op packet, the
// filler for idle frame slots.
type Packet struct {
	Command     bool
	Instruction Instruction
	Data        [16]byte
}

// AppendBinary appends the 24-byte physical layout of p to dst. Parity
// bytes are written as zero; players do not verify them.
func (p Packet) AppendBinary(dst []byte) []byte {
	if p.Command {
		dst = append(dst, commandTVGraphics)
	} else {
		dst = append(dst, 0)
	}
	dst = append(dst, byte(p.Instruction)&dataMask)
	dst = append(dst, 0, 0) // Q parity
	for _, b := range p.Data {
		dst = append(dst, b&dataMask)
	}
	dst = append(dst, 0, 0, 0, 0) // P parity
	return dst
}

// WritePackets writes the physical layout of each packet to w.
func WritePackets(w io.Writer, packets []Packet) (int, error) {
	buf := make([]byte, 0, PacketSize)
	total := 0
	for _, p := range packets {
		buf = p.AppendBinary(buf[:0])
		n, err := w.Write(buf)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TileMask is a 12-row bit mask selecting pixels within one tile. Bit 5 of
// a row is the leftmost pixel, bit 0 the rightmost.
type TileMask [TileHeight]byte

// Set marks the pixel at (x, y) within the tile.
func (m *TileMask) Set(x, y int) {
	m[y] |= 1 << (TileWidth - 1 - x)
}

// Get reports whether the pixel at (x, y) is marked.
func (m *TileMask) Get(x, y int) bool {
	return m[y]&(1<<(TileWidth-1-x)) != 0
}

// IsZero reports whether no pixel is marked.
func (m TileMask) IsZero() bool {
	return m == TileMask{}
}

// Or returns the union of m and other.
func (m TileMask) Or(other TileMask) TileMask {
	for i := range m {
		m[i] |= other[i]
	}
	return m
}

// MemoryPresetPackets clears the whole screen to color. The instruction is
// emitted sixteen times with an incrementing repeat nibble so that a player
// that drops packets still converges on a cleared screen.
func MemoryPresetPackets(color ColorIndex) []Packet {
	packets := make([]Packet, 16)
	for repeat := range packets {
		p := Packet{Command: true, Instruction: MemoryPreset}
		p.Data[0] = byte(color) & 0x0f
		p.Data[1] = byte(repeat) & 0x0f
		packets[repeat] = p
	}
	return packets
}

// BorderPresetPackets sets the border area to color, with the same sixteen
// fold repetition as MemoryPresetPackets.
func BorderPresetPackets(color ColorIndex) []Packet {
	packets := make([]Packet, 16)
	for repeat := range packets {
		p := Packet{Command: true, Instruction: BorderPreset}
		p.Data[0] = byte(color) & 0x0f
		p.Data[1] = byte(repeat) & 0x0f
		packets[repeat] = p
	}
	return packets
}

// TileBlockPacket draws one 6x12 tile at (row, column). Pixels whose mask
// bit is clear are set to color0, pixels whose bit is set to color1. When
// xor is true the colors are XOR-combined with the pixels already on
// screen instead of replacing them.
func TileBlockPacket(xor bool, color0, color1 ColorIndex, row, column int, mask TileMask) Packet {
	ins := TileBlock
	if xor {
		ins = TileBlockXor
	}
	p := Packet{Command: true, Instruction: ins}
	p.Data[0] = byte(color0) & 0x0f
	p.Data[1] = byte(color1) & 0x0f
	p.Data[2] = byte(row) & 0x1f
	p.Data[3] = byte(column) & 0x3f
	for i := 0; i < TileHeight; i++ {
		p.Data[4+i] = mask[i] & dataMask
	}
	return p
}
