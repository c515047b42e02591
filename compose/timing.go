package compose

// Timing collects the frame-count constants governing the schedule. The
// defaults are inherited from years of player-compatibility folklore; they
// are fields rather than package constants so a caller can override one
// without re-deriving the rest.
//
// All values are in frames (1/300 s).
type Timing struct {
	// DrawGap spaces consecutive line draws within a page burst.
	DrawGap int

	// PreDrawLead is how far ahead of its first syllable a line is
	// ideally drawn.
	PreDrawLead int

	// ClearGuard is the minimum room needed to clear safely between a
	// line's highlight end and the next page's draw.
	ClearGuard int

	// PostClearMargin separates a clear or erase from the draw that
	// follows it.
	PostClearMargin int

	// MaxEraseGap caps how long a finished line may linger before its
	// erase (450 cs historically).
	MaxEraseGap int

	// EagerThreshold is the inter-page gap above which eager mode
	// switches from proportional spacing to a fixed cadence (8 s).
	EagerThreshold int

	// PostHighlightDelay is the fixed pause between a line's highlight
	// end and its erase where no successor constrains it.
	PostHighlightDelay int

	// MinVisible is the minimum time a drawn line stays on screen.
	MinVisible int

	// LeadOut is the minimum stream time after the last event.
	LeadOut int
}

// DefaultTiming returns the historical defaults.
func DefaultTiming() Timing {
	return Timing{
		DrawGap:            50,
		PreDrawLead:        900,
		ClearGuard:         96,
		PostClearMargin:    12,
		MaxEraseGap:        1350,
		EagerThreshold:     2400,
		PostHighlightDelay: 150,
		MinVisible:         150,
		LeadOut:            900,
	}
}
