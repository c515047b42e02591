// Package compose schedules CD+G packet streams: it plans per-line draw and
// erase times from syllable timestamps and runs the frame-indexed
// simulation that interleaves line drawing, syllable highlighting,
// instrumental screens, and page transitions under the fixed
// 300-packet-per-second budget.
package compose

import "github.com/karaokeforge/cdg"

// ClearMode selects when old lyric lines are erased relative to new ones
// being drawn. The selection happens once at load time; the planner and
// composer dispatch on the value.
type ClearMode uint8

const (
	// ClearLineDelayed maximizes visible lyric time by deferring a
	// line's erase until just before the replacing line's highlight.
	// This is the default.
	ClearLineDelayed ClearMode = iota

	// ClearLineEager pipelines one page ahead: the next page's
	// corresponding line draws as soon as the old one is erased.
	ClearLineEager

	// ClearPage draws a whole page as one burst and clears the full
	// screen between pages. No per-line erase is scheduled.
	ClearPage
)

// String returns the mode name used in configuration files.
func (m ClearMode) String() string {
	switch m {
	case ClearLineDelayed:
		return "delayed"
	case ClearLineEager:
		return "eager"
	case ClearPage:
		return "page"
	default:
		return "unknown"
	}
}

// Syllable is one timed unit of a line. Start and End are frame offsets
// into the stream; Left and Right are the screen-space pixel edges of the
// span the highlight sweep must cross. Mask isolates, in line-local
// coordinates, exactly the pixels newly revealed by this syllable.
type Syllable struct {
	Text  string
	Start int
	End   int
	Left  int
	Right int
	Mask  *cdg.Bitmap
}

// Line is one rendered lyric line: its bitmap, screen position, singer,
// and ordered syllables.
type Line struct {
	Bitmap    *cdg.Bitmap
	X, Y      int
	Singer    int
	Syllables []Syllable
}

// Start returns the frame the line's first syllable begins.
func (l *Line) Start() int {
	if len(l.Syllables) == 0 {
		return 0
	}
	return l.Syllables[0].Start
}

// End returns the frame the line's last syllable ends.
func (l *Line) End() int {
	if len(l.Syllables) == 0 {
		return 0
	}
	return l.Syllables[len(l.Syllables)-1].End
}

// Lyric is one concurrent lyric set: ordered lines grouped into pages.
type Lyric struct {
	Lines        []Line
	LinesPerPage int
	Mode         ClearMode
}

// pageOf returns the page index of line i.
func (ly *Lyric) pageOf(i int) int {
	if ly.LinesPerPage <= 0 {
		return 0
	}
	return i / ly.LinesPerPage
}

// LyricTimes is the planner's output: one draw frame per line and, in the
// line clear modes, one erase frame per line. Both arrays are
// non-decreasing. Erase is empty in page mode, where whole-page clears are
// the composer's job.
type LyricTimes struct {
	Draw  []int
	Erase []int
}

// Warning records a recoverable timing degradation: the composer proceeds
// with best-effort output instead of failing.
type Warning struct {
	Frame   int
	Line    int
	Message string
}

// Instrumental is a scheduled instrumental section. Screen is the
// pre-rendered full-screen bitmap to show, or nil for a plain cleared
// screen. Wait defers the section until the active line's syllables
// finish.
type Instrumental struct {
	Frame  int
	Wait   bool
	Screen *cdg.Bitmap
}
