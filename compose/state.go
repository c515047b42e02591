package compose

import (
	"fmt"

	"github.com/karaokeforge/cdg"
)

// lyricState is the per-lyric-set machine the composer advances once per
// tick. Its observable state is a set of cursors (next line to draw, next
// line to erase, next syllable to highlight) plus the two packet queues
// feeding the frame slots. A lyric set is drained when every cursor has
// run off its array and both queues are empty.
type lyricState struct {
	lyric *Lyric
	times LyricTimes
	index int

	drawCursor  int
	eraseCursor int
	sylLine     int
	sylIndex    int

	drawQueue      []cdg.Packet
	highlightQueue []highlightGroup
}

// highlightGroup is one sweep step's packets, tagged with the line they
// belong to so the group can be discarded once that line leaves the
// screen.
type highlightGroup struct {
	line    int
	packets []cdg.Packet
}

func newLyricState(ly *Lyric, times LyricTimes, index int) *lyricState {
	return &lyricState{lyric: ly, times: times, index: index}
}

// advance fires every event whose scheduled frame has been reached:
// line draws (with a page clear on page-mode transitions), syllable
// highlight planning, and line erases. Erases run last so a same-frame
// highlight of the erased line is dropped rather than queued behind it.
func (st *lyricState) advance(frame int, c *Composer) {
	for st.drawCursor < len(st.times.Draw) && frame >= st.times.Draw[st.drawCursor] {
		st.drawLine(st.drawCursor, c)
		st.drawCursor++
	}

	for st.sylLine < len(st.lyric.Lines) {
		line := &st.lyric.Lines[st.sylLine]
		if st.sylIndex >= len(line.Syllables) {
			st.sylLine++
			st.sylIndex = 0
			continue
		}
		syl := &line.Syllables[st.sylIndex]
		if frame < syl.Start {
			break
		}
		st.queueHighlight(line, syl, frame, c)
		st.sylIndex++
	}

	for st.eraseCursor < len(st.times.Erase) && frame >= st.times.Erase[st.eraseCursor] {
		j := st.eraseCursor
		st.dropStaleHighlights(j, frame, c)
		st.drawQueue = append(st.drawQueue, c.eraseLine(&st.lyric.Lines[j])...)
		st.eraseCursor++
	}
}

// dropStaleHighlights discards queued highlight groups for lines up to
// and including line, which is about to be erased or cleared away. A
// XOR packet delivered after its tiles were repainted would flip the
// singer delta onto the new content, so undelivered groups must never
// outlive their line.
func (st *lyricState) dropStaleHighlights(line, frame int, c *Composer) {
	dropped := 0
	kept := st.highlightQueue[:0]
	for _, g := range st.highlightQueue {
		if g.line <= line {
			dropped += len(g.packets)
			continue
		}
		kept = append(kept, g)
	}
	st.highlightQueue = kept
	if dropped > 0 {
		c.warn(Warning{
			Frame: frame,
			Line:  line,
			Message: fmt.Sprintf("dropping %d undelivered highlight packets for line %d, schedule is too tight",
				dropped, line),
		})
	}
}

// drawLine tile-encodes line i and queues its packets, clearing the
// screen first on a page-mode page transition.
func (st *lyricState) drawLine(i int, c *Composer) {
	if st.lyric.Mode == ClearPage {
		page := st.lyric.pageOf(i)
		if page != c.currentPage {
			c.lastPage = c.currentPage
			c.currentPage = page
			if !c.justCleared {
				st.dropStaleHighlights(i-1, c.frame(), c)
				st.drawQueue = append(st.drawQueue, cdg.MemoryPresetPackets(c.background)...)
				c.justCleared = true
			}
		}
	}
	line := &st.lyric.Lines[i]
	packets := c.enc.Encode(line.Bitmap, line.X, line.Y, nil)
	if len(packets) > 0 {
		c.justCleared = false
	}
	st.drawQueue = append(st.drawQueue, packets...)
	cdg.Logger().Debug("line queued",
		"lyric", st.index, "line", i, "packets", len(packets))
}

// queueHighlight plans the syllable's sweep against its live budget and
// queues the resulting packet groups.
func (st *lyricState) queueHighlight(line *Line, syl *Syllable, frame int, c *Composer) {
	budget := syl.End - frame
	if budget < 1 {
		budget = 1
	}
	steps, degraded := planSteps(syl.Left, syl.Right, budget*c.highlightBandwidth)
	if degraded {
		c.warn(Warning{
			Frame: frame,
			Line:  st.sylLine,
			Message: fmt.Sprintf("highlight budget %d below %d mandatory steps for %q, sweep will skip tiles",
				budget*c.highlightBandwidth, mandatoryStepCount(syl.Left, syl.Right), syl.Text),
		})
	}
	delta := c.singerDelta(line.Singer)
	groups := highlightGroups(line, syl, steps, delta)
	for _, g := range groups {
		st.highlightQueue = append(st.highlightQueue, highlightGroup{line: st.sylLine, packets: g})
	}
	if len(groups) > 0 {
		c.justCleared = false
	}
}

// popDraw removes and returns the next queued draw packet.
func (st *lyricState) popDraw() (cdg.Packet, bool) {
	if len(st.drawQueue) == 0 {
		return cdg.Packet{}, false
	}
	p := st.drawQueue[0]
	st.drawQueue = st.drawQueue[1:]
	return p, true
}

// popHighlight removes and returns the next queued highlight packet,
// consuming groups front to back.
func (st *lyricState) popHighlight() (cdg.Packet, bool) {
	for len(st.highlightQueue) > 0 {
		g := &st.highlightQueue[0]
		if len(g.packets) == 0 {
			st.highlightQueue = st.highlightQueue[1:]
			continue
		}
		p := g.packets[0]
		g.packets = g.packets[1:]
		return p, true
	}
	return cdg.Packet{}, false
}

// queuesEmpty reports whether both packet queues are drained.
func (st *lyricState) queuesEmpty() bool {
	if len(st.drawQueue) > 0 {
		return false
	}
	for _, g := range st.highlightQueue {
		if len(g.packets) > 0 {
			return false
		}
	}
	return true
}

// drained reports whether every scheduled event fired and every queue
// emptied.
func (st *lyricState) drained() bool {
	return st.drawCursor >= len(st.times.Draw) &&
		st.eraseCursor >= len(st.times.Erase) &&
		st.sylLine >= len(st.lyric.Lines) &&
		st.queuesEmpty()
}

// midLine reports whether the machine is inside a line's highlight: some
// syllables of the current line fired but more remain, or highlight
// packets are still queued.
func (st *lyricState) midLine() bool {
	if st.sylIndex > 0 && st.sylLine < len(st.lyric.Lines) {
		return true
	}
	for _, g := range st.highlightQueue {
		if len(g.packets) > 0 {
			return true
		}
	}
	return false
}

// nextEvent returns the earliest scheduled frame still pending, or
// maxFrame when nothing remains.
func (st *lyricState) nextEvent() int {
	next := maxFrame
	if st.drawCursor < len(st.times.Draw) {
		next = min(next, st.times.Draw[st.drawCursor])
	}
	if st.eraseCursor < len(st.times.Erase) {
		next = min(next, st.times.Erase[st.eraseCursor])
	}
	if st.sylLine < len(st.lyric.Lines) {
		line := &st.lyric.Lines[st.sylLine]
		if st.sylIndex < len(line.Syllables) {
			next = min(next, line.Syllables[st.sylIndex].Start)
		}
	}
	return next
}

const maxFrame = int(^uint(0) >> 1)
