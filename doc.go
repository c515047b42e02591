// Package cdg implements the CD+G ("CD+Graphics") packet model: the binary
// instruction set, the tile reduction encoder that turns palette-indexed
// bitmaps into minimal packet sequences, and a reference interpreter that
// replays a stream onto a virtual screen.
//
// # Overview
//
// CD+G delivers graphics in a compact disc's subchannel at exactly 300
// packets per second. Each packet is 24 bytes and occupies one 1/300-second
// frame slot. The drawable surface is a 300x216 virtual screen (280x192
// visible) addressed in 6x12-pixel tiles, with a 16-entry color table.
//
// This package is the leaf of the module. The scheduling layer lives in
// [github.com/karaokeforge/cdg/compose], the end-to-end pipeline in
// [github.com/karaokeforge/cdg/karaoke].
//
// # Quick Start
//
//	bm := cdg.NewBitmap(48, 12)
//	// ... fill bm with color indices ...
//
//	var enc cdg.TileEncoder
//	packets := enc.Encode(bm, 12, 24, nil)
//
//	var buf bytes.Buffer
//	cdg.WritePackets(&buf, packets)
//
// # Coordinate System
//
// Origin (0,0) at top-left, x increases right, y increases down. Tile rows
// are counted in 12-pixel steps (0..17), tile columns in 6-pixel steps
// (0..49).
//
// # Logging
//
// The package produces no log output by default. Call [SetLogger] to enable
// structured logging for timing warnings and resource fallbacks.
package cdg

// Version is the current version of the library.
const Version = "0.3.0"
