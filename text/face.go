package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gotextfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Face is a Source at a concrete pixel size, optionally with an
// outline stroke. Face is a small value-like object; create as many as
// needed.
type Face struct {
	source *Source
	size   float64
	stroke float64
}

// FaceOption configures a Face.
type FaceOption func(*Face)

// WithStroke adds an outline of the given radius, in pixels, around
// the glyph fill. Zero disables the outline.
func WithStroke(radius float64) FaceOption {
	return func(f *Face) {
		if radius > 0 {
			f.stroke = radius
		}
	}
}

// Size returns the pixel size the Face was created at.
func (f *Face) Size() float64 {
	return f.size
}

// Stroke returns the outline radius in pixels, zero when disabled.
func (f *Face) Stroke() float64 {
	return f.stroke
}

// Metrics are the vertical measurements of a Face, in pixels.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of a line.
	Ascent float64

	// Descent is the distance from the baseline to the bottom of a
	// line.
	Descent float64

	// Height is the recommended line spacing.
	Height float64
}

// Metrics returns the Face's vertical metrics.
func (f *Face) Metrics() Metrics {
	ppem := fixed.Int26_6(f.size * 64)
	f.source.mu.Lock()
	m, err := f.source.sfnt.Metrics(&f.source.buf, ppem, xfont.HintingNone)
	f.source.mu.Unlock()
	if err != nil {
		return Metrics{Ascent: f.size, Descent: f.size * 0.25, Height: f.size * 1.25}
	}
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		Height:  fixedToFloat(m.Height),
	}
}

// Measure returns the advance width of text in pixels, after shaping.
func (f *Face) Measure(text string) float64 {
	glyphs := f.shape([]rune(norm.NFC.String(text)))
	var w float64
	for _, g := range glyphs {
		w += g.advance
	}
	return w
}

// shapedGlyph is one positioned glyph of a shaped run.
type shapedGlyph struct {
	gid     sfnt.GlyphIndex
	cluster int // rune index into the shaped text
	x       float64
	advance float64
}

// shaperPool pools HarfbuzzShaper instances; they carry mutable buffers
// and are not safe for concurrent use.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// shape runs HarfBuzz shaping over runes and returns glyphs with
// resolved pen positions. Runs are shaped left to right; lyric text in
// right-to-left scripts is out of scope for now.
func (f *Face) shape(runes []rune) []shapedGlyph {
	if len(runes) == 0 {
		return nil
	}

	// font.Face is not safe for concurrent use; wrap the shared Font
	// per call, construction is cheap.
	face := gotextfont.NewFace(f.source.shaped)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(f.size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]shapedGlyph, 0, len(output.Glyphs))
	var x float64
	for _, g := range output.Glyphs {
		glyphs = append(glyphs, shapedGlyph{
			gid:     sfnt.GlyphIndex(g.GlyphID),
			cluster: g.TextIndex(),
			x:       x + fixedToFloat(g.XOffset),
			advance: fixedToFloat(g.Advance),
		})
		x += fixedToFloat(g.Advance)
	}
	return glyphs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
