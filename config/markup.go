package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParsedLine is a lyric line with its markup resolved.
type ParsedLine struct {
	// Singer is the zero-based singer index, from a "{sN}" marker.
	Singer int

	// Syllables are the highlighting units of the line, in order, with
	// separators and markers stripped.
	Syllables []string
}

// Text returns the displayed line, syllables joined back together.
func (l ParsedLine) Text() string {
	return strings.Join(l.Syllables, "")
}

// ParseLine resolves the inline markup of a lyric line. "/" separates
// syllables and a leading "{sN}" assigns the line to singer N (1-based
// in the markup). A line without a marker belongs to singer 1.
//
//	{s2}Nev/er gon/na give/ you up
//
// A marker anywhere but the start of the line is rejected; one line is
// sung by one singer.
func ParseLine(text string) (ParsedLine, error) {
	line := ParsedLine{}
	rest := text
	if strings.HasPrefix(rest, "{") {
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return line, fmt.Errorf("unterminated marker in %q", text)
		}
		marker := rest[1:end]
		if !strings.HasPrefix(marker, "s") {
			return line, fmt.Errorf("unknown marker %q", marker)
		}
		n, err := strconv.Atoi(marker[1:])
		if err != nil || n < 1 {
			return line, fmt.Errorf("bad singer marker %q", marker)
		}
		line.Singer = n - 1
		rest = rest[end+1:]
	}
	if strings.Contains(rest, "{") {
		return line, fmt.Errorf("singer marker must start the line in %q", text)
	}
	if strings.TrimSpace(rest) == "" {
		return line, fmt.Errorf("empty line")
	}
	for _, syl := range strings.Split(rest, "/") {
		if syl == "" {
			continue
		}
		line.Syllables = append(line.Syllables, syl)
	}
	if len(line.Syllables) == 0 {
		return line, fmt.Errorf("no syllables in %q", text)
	}
	return line, nil
}

// ParseColor decodes a "#rrggbb" hex string.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// Frames converts a centisecond timestamp to a packet frame index at
// the stream rate of 300 packets per second.
func Frames(centiseconds int) int {
	return centiseconds * 3
}
