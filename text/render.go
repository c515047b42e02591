package text

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/norm"

	"github.com/karaokeforge/cdg"
)

// Syllable is one highlighting unit of a rendered line.
type Syllable struct {
	Text string

	// Mask marks the line-local pixels this syllable contributed,
	// fill and outline both. Masks of a line are disjoint.
	Mask *cdg.Bitmap

	// Left and Right are the line-local pixel columns the highlight
	// sweep moves across. Right of one syllable equals Left of the
	// next.
	Left, Right int
}

// Line is a rendered lyric line.
type Line struct {
	// Bitmap holds the line's pixels: fill index over stroke index
	// over background zero.
	Bitmap *cdg.Bitmap

	// Baseline is the text baseline row within Bitmap.
	Baseline int

	Syllables []Syllable
}

// RenderLine shapes and rasterizes a line given as its syllables. The
// whole line is shaped as one run, so kerning and ligatures work
// across syllable boundaries; each glyph is attributed to a syllable
// through its cluster index.
func (f *Face) RenderLine(syllables []string, fill, stroke cdg.ColorIndex) (*Line, error) {
	if f.size <= 0 {
		return nil, fmt.Errorf("%w: font size %v", cdg.ErrConfiguration, f.size)
	}
	if len(syllables) == 0 {
		return nil, fmt.Errorf("%w: no syllables", cdg.ErrConfiguration)
	}

	// Normalize per syllable, then join, so the cluster ranges stay
	// aligned with syllable boundaries.
	normalized := make([]string, len(syllables))
	starts := make([]int, len(syllables)+1)
	var runes []rune
	for i, syl := range syllables {
		normalized[i] = norm.NFC.String(syl)
		starts[i] = len(runes)
		runes = append(runes, []rune(normalized[i])...)
	}
	starts[len(syllables)] = len(runes)

	glyphs := f.shape(runes)

	var total float64
	pens := make([]float64, len(glyphs)+1)
	for i, g := range glyphs {
		pens[i+1] = pens[i] + g.advance
	}
	if len(glyphs) > 0 {
		total = pens[len(glyphs)]
	}

	m := f.Metrics()
	pad := int(math.Ceil(f.stroke)) + 1
	width := 2*pad + int(math.Ceil(total))
	height := 2*pad + int(math.Ceil(m.Ascent+m.Descent))
	baseline := pad + int(math.Ceil(m.Ascent))
	if width < 1 {
		width = 1
	}

	// Attribute each glyph to the syllable containing its cluster.
	sylOf := make([]int, len(glyphs))
	for i, g := range glyphs {
		s := len(syllables) - 1
		for k := 0; k < len(syllables); k++ {
			if g.cluster < starts[k+1] {
				s = k
				break
			}
		}
		sylOf[i] = s
	}

	// Pen positions at syllable boundaries.
	bounds := make([]int, len(syllables)+1)
	for k := 1; k < len(syllables); k++ {
		b := total
		for i := range glyphs {
			if sylOf[i] >= k {
				b = pens[i]
				break
			}
		}
		bounds[k] = int(math.Round(b))
	}
	bounds[len(syllables)] = int(math.Round(total))

	fills := make([][]bool, len(syllables))
	extents := make([][]bool, len(syllables))
	for s := range syllables {
		fills[s] = f.rasterize(glyphs, sylOf, s, width, height, float64(pad), float64(baseline))
		extents[s] = f.stamp(fills[s], width, height)
	}

	bm := cdg.NewBitmap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			covered := false
			for s := range syllables {
				if extents[s][i] {
					covered = true
					break
				}
			}
			if !covered {
				continue
			}
			c := stroke
			for s := range syllables {
				if fills[s][i] {
					c = fill
					break
				}
			}
			bm.Set(x, y, c)
		}
	}

	// Masks claim pixels in syllable order: each pixel belongs to the
	// first syllable whose outline reaches it.
	line := &Line{Bitmap: bm, Baseline: baseline}
	claimed := make([]bool, width*height)
	for s := range syllables {
		mask := cdg.NewBitmap(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				if extents[s][i] && !claimed[i] {
					claimed[i] = true
					mask.Set(x, y, 1)
				}
			}
		}
		line.Syllables = append(line.Syllables, Syllable{
			Text: normalized[s],
			Mask: mask,
			Left: pad + bounds[s],
			Right: pad + bounds[s+1],
		})
	}
	return line, nil
}

// RenderText rasterizes a single run of text, for titles and captions.
func (f *Face) RenderText(text string, fill, stroke cdg.ColorIndex) (*cdg.Bitmap, error) {
	line, err := f.RenderLine([]string{text}, fill, stroke)
	if err != nil {
		return nil, err
	}
	return line.Bitmap, nil
}

// rasterize renders the glyphs of one syllable into a boolean coverage
// grid of the full line extent.
func (f *Face) rasterize(glyphs []shapedGlyph, sylOf []int, syl, width, height int, pad, baseline float64) []bool {
	r := vector.NewRasterizer(width, height)
	drew := false
	for i, g := range glyphs {
		if sylOf[i] != syl {
			continue
		}
		f.source.mu.Lock()
		segs, err := f.source.sfnt.LoadGlyph(&f.source.buf, g.gid,
			fixed.Int26_6(f.size*64), nil)
		f.source.mu.Unlock()
		if err != nil || len(segs) == 0 {
			continue
		}
		ox := pad + g.x
		oy := baseline
		open := false
		for _, seg := range segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					r.ClosePath()
				}
				r.MoveTo(segPoint(seg.Args[0], ox, oy))
				open = true
			case sfnt.SegmentOpLineTo:
				r.LineTo(segPoint(seg.Args[0], ox, oy))
			case sfnt.SegmentOpQuadTo:
				bx, by := segPoint(seg.Args[0], ox, oy)
				cx, cy := segPoint(seg.Args[1], ox, oy)
				r.QuadTo(bx, by, cx, cy)
			case sfnt.SegmentOpCubeTo:
				bx, by := segPoint(seg.Args[0], ox, oy)
				cx, cy := segPoint(seg.Args[1], ox, oy)
				dx, dy := segPoint(seg.Args[2], ox, oy)
				r.CubeTo(bx, by, cx, cy, dx, dy)
			}
		}
		if open {
			r.ClosePath()
		}
		drew = true
	}

	grid := make([]bool, width*height)
	if !drew {
		return grid
	}
	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	for i, a := range dst.Pix {
		grid[i] = a >= 0x80
	}
	return grid
}

// stamp widens a coverage grid by the stroke radius, approximated by
// re-stamping the fill at eight offsets around the circle.
func (f *Face) stamp(fill []bool, width, height int) []bool {
	if f.stroke <= 0 {
		return fill
	}
	d := int(math.Round(f.stroke))
	if d < 1 {
		d = 1
	}
	e := int(math.Round(f.stroke / math.Sqrt2))
	if e < 1 {
		e = 1
	}
	offsets := [...][2]int{
		{0, 0},
		{d, 0}, {-d, 0}, {0, d}, {0, -d},
		{e, e}, {e, -e}, {-e, e}, {-e, -e},
	}

	out := make([]bool, len(fill))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fill[y*width+x] {
				continue
			}
			for _, off := range offsets {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				out[ny*width+nx] = true
			}
		}
	}
	return out
}

func segPoint(p fixed.Point26_6, ox, oy float64) (float32, float32) {
	return float32(ox + fixedToFloat(p.X)), float32(oy + fixedToFloat(p.Y))
}
