package compose

import (
	"fmt"

	"github.com/karaokeforge/cdg"
)

// Composer runs the frame-indexed simulation that merges every lyric
// set's schedule, syllable highlighting, and instrumental sections into
// one gapless packet stream at 300 packets per second.
//
// The simulation is single-threaded and deterministic: per tick it fires
// due events on every lyric state, then emits a fixed number of highlight
// and draw slots, each consuming one queued packet or a no-op. The frame
// counter is simply the number of packets emitted so far.
type Composer struct {
	timing             Timing
	highlightBandwidth int
	drawBandwidth      int

	palette    *cdg.Palette
	background cdg.ColorIndex
	enc        cdg.TileEncoder

	lyrics        []*lyricState
	instrumentals []Instrumental
	intro         *cdg.Bitmap
	outro         *cdg.Bitmap
	audioFrames   int

	out      []cdg.Packet
	warnings []Warning

	// Scheduler state, reset per run.
	instIdx      int
	pendingClear int
	justCleared  bool
	currentPage  int
	lastPage     int
	hlRR, drawRR int
}

// Option configures a Composer during creation.
type Option func(*Composer)

// WithTiming overrides the timing constants.
func WithTiming(t Timing) Option {
	return func(c *Composer) { c.timing = t }
}

// WithBandwidth sets the number of highlight and draw packet slots per
// tick. Both must be at least 1.
func WithBandwidth(highlight, draw int) Option {
	return func(c *Composer) {
		c.highlightBandwidth = highlight
		c.drawBandwidth = draw
	}
}

// WithInstrumentals schedules instrumental sections, ordered by frame.
func WithInstrumentals(ins []Instrumental) Option {
	return func(c *Composer) { c.instrumentals = ins }
}

// WithIntro shows a pre-rendered splash screen before the first lyric
// event.
func WithIntro(screen *cdg.Bitmap) Option {
	return func(c *Composer) { c.intro = screen }
}

// WithOutro shows a pre-rendered screen after the last lyric event.
func WithOutro(screen *cdg.Bitmap) Option {
	return func(c *Composer) { c.outro = screen }
}

// WithAudioFrames extends the stream to cover an audio track of the given
// length in frames.
func WithAudioFrames(frames int) Option {
	return func(c *Composer) { c.audioFrames = frames }
}

// NewComposer validates the configuration and prepares a composer. Page
// clear mode batches whole-screen clears and therefore cannot coexist
// with a second concurrent lyric set; that combination is rejected here,
// before any composition work.
func NewComposer(palette *cdg.Palette, lyrics []*Lyric, opts ...Option) (*Composer, error) {
	if palette == nil {
		return nil, fmt.Errorf("%w: palette required", cdg.ErrConfiguration)
	}
	if len(lyrics) == 0 {
		return nil, fmt.Errorf("%w: at least one lyric set required", cdg.ErrConfiguration)
	}
	if len(lyrics) > 1 {
		for _, ly := range lyrics {
			if ly.Mode == ClearPage {
				return nil, fmt.Errorf("%w: page clear mode cannot combine with concurrent lyric sets", cdg.ErrConfiguration)
			}
		}
	}

	c := &Composer{
		timing:             DefaultTiming(),
		highlightBandwidth: 2,
		drawBandwidth:      1,
		palette:            palette,
		background:         cdg.BackgroundIndex,
		pendingClear:       -1,
		currentPage:        -1,
	}
	c.enc = cdg.TileEncoder{Background: c.background}
	for _, opt := range opts {
		opt(c)
	}
	if c.highlightBandwidth < 1 || c.drawBandwidth < 1 {
		return nil, fmt.Errorf("%w: bandwidth slots must be at least 1", cdg.ErrConfiguration)
	}

	for i, ly := range lyrics {
		times, warnings := PlanTimes(ly, c.timing)
		c.warnings = append(c.warnings, warnings...)
		c.lyrics = append(c.lyrics, newLyricState(ly, times, i))
	}
	return c, nil
}

// Warnings returns every timing degradation recorded while planning and
// composing.
func (c *Composer) Warnings() []Warning {
	return c.warnings
}

// Compose runs the simulation and returns the finished stream. The result
// length is always a whole number of seconds (a multiple of 300 packets).
func (c *Composer) Compose() ([]cdg.Packet, error) {
	c.begin()
	c.introPhase()

	for !c.done() {
		c.checkInstrumental()
		frame := c.frame()
		for _, st := range c.lyrics {
			st.advance(frame, c)
		}
		c.emitTick()
	}

	c.outroPhase()
	cdg.Logger().Info("stream composed",
		"packets", len(c.out),
		"seconds", len(c.out)/cdg.PacketsPerSecond,
		"warnings", len(c.warnings))
	return c.out, nil
}

// begin emits the stream preamble: the color table load paired with its
// mandatory full clear, plus the border preset.
func (c *Composer) begin() {
	c.out = append(c.out, cdg.LoadColorTablePackets(c.palette.Table())...)
	c.out = append(c.out, cdg.MemoryPresetPackets(c.background)...)
	c.out = append(c.out, cdg.BorderPresetPackets(cdg.BorderIndex)...)
	c.justCleared = true
}

// introPhase draws the splash screen, holds it, and clears in time for
// the first scheduled event.
func (c *Composer) introPhase() {
	if c.intro == nil {
		return
	}
	c.out = append(c.out, c.enc.Encode(c.intro, 0, 0, nil)...)
	c.justCleared = false

	first := c.nextEventFrame()
	if c.instIdx < len(c.instrumentals) {
		first = min(first, c.instrumentals[c.instIdx].Frame)
	}
	if first == maxFrame {
		return
	}
	clearAt := first - c.timing.PostClearMargin - 16
	c.padTo(clearAt)
	c.appendClear()
}

// done reports whether every lyric set drained, every instrumental
// fired, and no deferred clear remains.
func (c *Composer) done() bool {
	if c.instIdx < len(c.instrumentals) || c.pendingClear >= 0 {
		return false
	}
	for _, st := range c.lyrics {
		if !st.drained() {
			return false
		}
	}
	return true
}

// emitTick emits one slot group: highlight slots first, then draw slots,
// each taking a packet from the lyric queues round-robin or a no-op.
// Highlight packets preempt drawing so sweep latency stays bounded while
// background drawing still progresses every tick.
func (c *Composer) emitTick() {
	for i := 0; i < c.highlightBandwidth; i++ {
		c.out = append(c.out, c.popSlot(&c.hlRR, (*lyricState).popHighlight))
	}
	for i := 0; i < c.drawBandwidth; i++ {
		c.out = append(c.out, c.popSlot(&c.drawRR, (*lyricState).popDraw))
	}
}

// popSlot takes the next packet from the lyric states, rotating the
// round-robin cursor, or returns a no-op packet when every queue is
// empty.
func (c *Composer) popSlot(rr *int, pop func(*lyricState) (cdg.Packet, bool)) cdg.Packet {
	n := len(c.lyrics)
	for k := 0; k < n; k++ {
		st := c.lyrics[(*rr+k)%n]
		if p, ok := pop(st); ok {
			*rr = (*rr + k) % n
			return p
		}
	}
	return cdg.Packet{}
}

// checkInstrumental fires a due instrumental section and any deferred
// post-instrumental clear.
func (c *Composer) checkInstrumental() {
	frame := c.frame()
	if c.pendingClear >= 0 && frame >= c.pendingClear {
		c.appendClear()
		c.skipMootErases()
		c.pendingClear = -1
	}
	if c.instIdx >= len(c.instrumentals) {
		return
	}
	ins := c.instrumentals[c.instIdx]
	if frame < ins.Frame {
		return
	}
	if ins.Wait && c.anyMidLine() {
		return
	}
	if ins.Wait && !c.allQueuesEmpty() {
		c.warn(Warning{
			Frame:   frame,
			Message: "queues not empty at waited instrumental, schedule is too tight",
		})
	}
	c.flushQueues()
	if !c.justCleared {
		c.appendClear()
	}
	c.skipMootErases()
	if ins.Screen != nil {
		c.out = append(c.out, c.enc.Encode(ins.Screen, 0, 0, nil)...)
		c.justCleared = false
	}
	c.instIdx++

	// Clear before the lyrics resume, unless the next instrumental
	// replaces this screen first.
	next := c.nextEventFrame()
	if next == maxFrame {
		return
	}
	if c.instIdx < len(c.instrumentals) && c.instrumentals[c.instIdx].Frame <= next {
		return
	}
	c.pendingClear = max(c.frame(), next-c.timing.ClearGuard)
}

// outroPhase clears the lyrics away, shows the outro screen if any, and
// pads the stream to its final length.
func (c *Composer) outroPhase() {
	if !c.justCleared {
		c.appendClear()
	}
	if c.outro != nil {
		c.out = append(c.out, c.enc.Encode(c.outro, 0, 0, nil)...)
		c.justCleared = false
	}
	total := max(c.audioFrames, c.frame()+c.timing.LeadOut)
	if rem := total % cdg.PacketsPerSecond; rem != 0 {
		total += cdg.PacketsPerSecond - rem
	}
	c.padTo(total)
}

// frame returns the current frame index: one packet per frame slot.
func (c *Composer) frame() int {
	return len(c.out)
}

func (c *Composer) appendClear() {
	c.out = append(c.out, cdg.MemoryPresetPackets(c.background)...)
	c.justCleared = true
}

// padTo fills the stream with no-op packets up to frame.
func (c *Composer) padTo(frame int) {
	for c.frame() < frame {
		c.out = append(c.out, cdg.Packet{})
	}
}

// flushQueues drains every pending queue straight into the stream.
func (c *Composer) flushQueues() {
	for _, st := range c.lyrics {
		for {
			p, ok := st.popHighlight()
			if !ok {
				break
			}
			c.out = append(c.out, p)
		}
		for {
			p, ok := st.popDraw()
			if !ok {
				break
			}
			c.out = append(c.out, p)
		}
	}
}

// skipMootErases advances erase cursors past lines a full-screen clear
// already removed, so a later erase does not punch background holes into
// whatever replaced them.
func (c *Composer) skipMootErases() {
	for _, st := range c.lyrics {
		if st.eraseCursor < st.drawCursor {
			st.eraseCursor = st.drawCursor
		}
	}
}

func (c *Composer) anyMidLine() bool {
	for _, st := range c.lyrics {
		if st.midLine() {
			return true
		}
	}
	return false
}

func (c *Composer) allQueuesEmpty() bool {
	for _, st := range c.lyrics {
		if !st.queuesEmpty() {
			return false
		}
	}
	return true
}

// nextEventFrame returns the earliest pending scheduled event across all
// lyric sets.
func (c *Composer) nextEventFrame() int {
	next := maxFrame
	for _, st := range c.lyrics {
		next = min(next, st.nextEvent())
	}
	return next
}

// eraseLine produces the packets that restore the background over a
// drawn line.
func (c *Composer) eraseLine(line *Line) []cdg.Packet {
	blank := cdg.NewBitmap(line.Bitmap.Width(), line.Bitmap.Height())
	if c.background != 0 {
		blank.Fill(c.background)
	}
	prev := cdg.NewBitmap(cdg.ScreenWidth, cdg.ScreenHeight)
	if c.background != 0 {
		prev.Fill(c.background)
	}
	for y := 0; y < line.Bitmap.Height(); y++ {
		for x := 0; x < line.Bitmap.Width(); x++ {
			prev.Set(line.X+x, line.Y+y, line.Bitmap.At(x, y))
		}
	}
	return c.enc.Encode(blank, line.X, line.Y, prev)
}

// singerDelta returns the highlight XOR delta for a singer, falling back
// to the first singer's when the index is out of range.
func (c *Composer) singerDelta(singer int) cdg.ColorIndex {
	if singer < 0 || singer >= c.palette.Singers() {
		singer = 0
	}
	if c.palette.Singers() == 0 {
		return 2
	}
	return c.palette.Singer(singer).Delta
}

// warn records a degradation and logs it.
func (c *Composer) warn(w Warning) {
	c.warnings = append(c.warnings, w)
	cdg.Logger().Warn(w.Message, "frame", w.Frame, "line", w.Line)
}
