// Package config reads karaoke project descriptions from YAML.
//
// A project file names the song, the font and color styling, the clear
// mode, the instrumental breaks, and the lyric sets themselves. Lyric
// lines carry inline syllable and singer markup, see ParseLine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the top-level project description.
type Project struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Font   Font   `yaml:"font"`
	Colors Colors `yaml:"colors"`

	// LinesPerPage is the number of lines shown at once. Zero means
	// every line of a set fits on one page.
	LinesPerPage int `yaml:"lines_per_page"`

	// ClearMode selects how finished lines leave the screen: "delayed"
	// (default), "eager", or "page".
	ClearMode string `yaml:"clear_mode"`

	Instrumentals []Instrumental `yaml:"instrumentals"`

	// Lyrics holds one or more lyric sets. Concurrent sets (duets with
	// overlapping lines) are listed separately and interleaved by the
	// composer.
	Lyrics [][]LineEntry `yaml:"lyrics"`
}

// Font selects the typeface used for lyric lines and the title screen.
type Font struct {
	Path   string  `yaml:"path"`
	Size   float64 `yaml:"size"`
	Stroke float64 `yaml:"stroke"`
}

// Colors styles the fixed screen elements and the per-singer slots.
// All values are "#rrggbb" hex strings.
type Colors struct {
	Background string         `yaml:"background"`
	Border     string         `yaml:"border"`
	Title      string         `yaml:"title"`
	Artist     string         `yaml:"artist"`
	Singers    []SingerColors `yaml:"singers"`
}

// SingerColors styles one singer's sung and unsung text.
type SingerColors struct {
	Fill         string `yaml:"fill"`
	Stroke       string `yaml:"stroke"`
	ActiveFill   string `yaml:"active_fill"`
	ActiveStroke string `yaml:"active_stroke"`
}

// Instrumental marks a section without lyrics.
type Instrumental struct {
	// Sync is the section start in centiseconds.
	Sync int `yaml:"sync"`

	// Wait defers the section until the active line finishes.
	Wait bool `yaml:"wait"`

	// Image is an optional background picture shown for the section.
	Image string `yaml:"image,omitempty"`

	// Text is an optional caption shown instead of or over the image.
	Text string `yaml:"text,omitempty"`
}

// LineEntry is one lyric line as written in the project file.
type LineEntry struct {
	// Text is the line with "/" syllable separators and optional
	// "{sN}" singer markers, see ParseLine.
	Text string `yaml:"text"`

	// Sync lists centisecond timestamps: one per syllable start plus a
	// final line end time.
	Sync []int `yaml:"sync"`
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read project: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates an in-memory project description.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the project for the problems that would otherwise
// surface as broken streams: missing styling, unknown modes, markup and
// sync mismatches, non-monotonic timestamps. Errors name the offending
// yaml path.
func (p *Project) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title: required")
	}
	switch p.ClearMode {
	case "", "delayed", "eager", "page":
	default:
		return fmt.Errorf("clear_mode: unknown mode %q", p.ClearMode)
	}
	if p.ClearMode == "page" && p.LinesPerPage < 1 {
		return fmt.Errorf("lines_per_page: required for page clear mode")
	}
	if p.LinesPerPage < 0 {
		return fmt.Errorf("lines_per_page: must not be negative")
	}

	if len(p.Colors.Singers) == 0 {
		return fmt.Errorf("colors.singers: at least one singer required")
	}
	for _, field := range []struct {
		path, value string
	}{
		{"colors.background", p.Colors.Background},
		{"colors.border", p.Colors.Border},
		{"colors.title", p.Colors.Title},
	} {
		if _, err := ParseColor(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.path, err)
		}
	}
	for i, s := range p.Colors.Singers {
		for _, field := range []struct {
			path, value string
		}{
			{"fill", s.Fill},
			{"stroke", s.Stroke},
			{"active_fill", s.ActiveFill},
			{"active_stroke", s.ActiveStroke},
		} {
			if _, err := ParseColor(field.value); err != nil {
				return fmt.Errorf("colors.singers[%d].%s: %w", i, field.path, err)
			}
		}
	}

	for i, ins := range p.Instrumentals {
		if ins.Sync < 0 {
			return fmt.Errorf("instrumentals[%d].sync: must not be negative", i)
		}
		if i > 0 && ins.Sync < p.Instrumentals[i-1].Sync {
			return fmt.Errorf("instrumentals[%d].sync: before instrumentals[%d]", i, i-1)
		}
	}

	if len(p.Lyrics) == 0 {
		return fmt.Errorf("lyrics: at least one lyric set required")
	}
	for si, set := range p.Lyrics {
		for li, line := range set {
			parsed, err := ParseLine(line.Text)
			if err != nil {
				return fmt.Errorf("lyrics[%d][%d].text: %w", si, li, err)
			}
			if parsed.Singer >= len(p.Colors.Singers) {
				return fmt.Errorf("lyrics[%d][%d].text: singer %d not in colors.singers",
					si, li, parsed.Singer+1)
			}
			if want := len(parsed.Syllables) + 1; len(line.Sync) != want {
				return fmt.Errorf("lyrics[%d][%d].sync: %d syllables need %d times, have %d",
					si, li, len(parsed.Syllables), want, len(line.Sync))
			}
			for ti := 1; ti < len(line.Sync); ti++ {
				if line.Sync[ti] < line.Sync[ti-1] {
					return fmt.Errorf("lyrics[%d][%d].sync[%d]: before sync[%d]",
						si, li, ti, ti-1)
				}
			}
			if line.Sync[0] < 0 {
				return fmt.Errorf("lyrics[%d][%d].sync[0]: must not be negative", si, li)
			}
		}
	}
	return nil
}
