package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	gotextfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/karaokeforge/cdg"
)

// ErrEmptyFontData is returned when a Source is created from no bytes.
var ErrEmptyFontData = errors.New("text: empty font data")

// Source is a loaded font file. One Source hands out Faces at multiple
// sizes; the parsed font tables are shared. Source is safe for
// concurrent use.
type Source struct {
	data   []byte
	sfnt   *sfnt.Font
	shaped *gotextfont.Font
	name   string

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewSource parses font data (TTF or OTF). The slice is copied and can
// be reused by the caller.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	owned := make([]byte, len(data))
	copy(owned, data)

	parsed, err := sfnt.Parse(owned)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	shapedFace, err := gotextfont.ParseTTF(bytes.NewReader(owned))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	s := &Source{
		data:   owned,
		sfnt:   parsed,
		shaped: shapedFace.Font,
	}
	if name, err := parsed.Name(&s.buf, sfnt.NameIDFamily); err == nil {
		s.name = name
	}
	return s, nil
}

// NewSourceFromFile loads a font file.
func NewSourceFromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: font %s: %w: %v", path, cdg.ErrResource, err)
	}
	return NewSource(data)
}

// DefaultSource returns a Source for the bundled fallback face
// (Go Regular). It is used when a project names no font or names one
// that cannot be read.
func DefaultSource() *Source {
	s, err := NewSource(goregular.TTF)
	if err != nil {
		// The bundled font always parses.
		panic(err)
	}
	return s
}

// LoadSource loads the font at path, falling back to the bundled
// default face when path is empty or unreadable. The fallback is
// logged, not fatal.
func LoadSource(path string) *Source {
	if path == "" {
		return DefaultSource()
	}
	s, err := NewSourceFromFile(path)
	if err != nil {
		cdg.Logger().Warn("font unavailable, using bundled default",
			"path", path, "error", err)
		return DefaultSource()
	}
	return s
}

// Name returns the font family name, or "" when the font has none.
func (s *Source) Name() string {
	return s.name
}

// Face creates a Face of this font at the given pixel size.
func (s *Source) Face(size float64, opts ...FaceOption) *Face {
	f := &Face{source: s, size: size}
	for _, opt := range opts {
		opt(f)
	}
	return f
}
