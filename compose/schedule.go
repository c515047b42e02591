package compose

import "fmt"

// PlanTimes computes the draw and erase schedule for one lyric set. The
// planner may shorten a syllable's highlight end when the schedule leaves
// no safe room to clear; every such degradation is returned as a Warning
// rather than an error. Frame arrays in the result are non-decreasing.
func PlanTimes(ly *Lyric, t Timing) (LyricTimes, []Warning) {
	var times LyricTimes
	var warnings []Warning
	switch ly.Mode {
	case ClearPage:
		times, warnings = planPage(ly, t)
	case ClearLineEager:
		times, warnings = planLine(ly, t, true)
	default:
		times, warnings = planLine(ly, t, false)
	}
	warnings = append(warnings, enforceMonotonic(&times)...)
	return times, warnings
}

// planPage schedules whole-page bursts. Lines on a page draw together
// spaced by DrawGap; the composer clears the screen on each page
// transition, so no per-line erase is produced.
func planPage(ly *Lyric, t Timing) (LyricTimes, []Warning) {
	n := len(ly.Lines)
	times := LyricTimes{Draw: make([]int, n)}
	var warnings []Warning

	perPage := ly.LinesPerPage
	if perPage <= 0 {
		perPage = n
	}
	prevEnd := 0
	for first := 0; first < n; first += perPage {
		last := min(first+perPage, n)
		pageStart := ly.Lines[first].Start()

		base := pageStart - t.PreDrawLead
		if first == 0 {
			base = max(base, 0)
		} else {
			if pageStart-prevEnd < t.ClearGuard {
				// Not enough room to clear between pages: shorten the
				// previous line's highlight to create it.
				shortened := shortenLineEnd(&ly.Lines[first-1], pageStart-t.ClearGuard)
				warnings = append(warnings, Warning{
					Frame: pageStart,
					Line:  first - 1,
					Message: fmt.Sprintf("page gap %d below clear guard %d, highlight shortened to frame %d",
						pageStart-prevEnd, t.ClearGuard, shortened),
				})
				prevEnd = shortened
			}
			base = max(base, prevEnd+t.ClearGuard)
		}
		for i := first; i < last; i++ {
			times.Draw[i] = base + (i-first)*t.DrawGap
		}
		prevEnd = ly.Lines[last-1].End()
	}
	return times, warnings
}

// planLine schedules the two line clear modes. Each line i erases to make
// room for line i+L, where L is the lines-per-page; the modes differ in
// how much of the inter-page gap the erase defers.
func planLine(ly *Lyric, t Timing, eager bool) (LyricTimes, []Warning) {
	n := len(ly.Lines)
	times := LyricTimes{Draw: make([]int, n), Erase: make([]int, n)}
	var warnings []Warning

	perPage := ly.LinesPerPage
	if perPage <= 0 {
		perPage = n
	}

	// The first page draws ahead of its own syllables.
	for i := 0; i < min(perPage, n); i++ {
		times.Draw[i] = max(0, ly.Lines[i].Start()-t.PreDrawLead)
	}

	for j := 0; j < n; j++ {
		i := j + perPage
		if i >= n {
			// No successor replaces this line; erase on a fixed delay.
			times.Erase[j] = ly.Lines[j].End() + t.PostHighlightDelay
			continue
		}

		start := ly.Lines[i].Start()
		end := ly.Lines[j].End()
		var erase int
		if eager {
			gap := start - end
			if gap >= t.EagerThreshold {
				erase = end + t.PostHighlightDelay
				times.Draw[i] = start - t.PreDrawLead
				times.Erase[j] = erase
				continue
			}
			erase = end + max(gap, 0)/4
		} else {
			// Delayed mode: spread the gap, leaning toward the late end
			// so the old line stays visible as long as possible, but
			// never inside the successor's clear guard.
			lo := max(end, ly.Lines[j].Start()+t.MinVisible)
			hi := min(end+t.MaxEraseGap, start-t.ClearGuard)
			prop := end + (start-end)*3/4
			if hi < lo {
				erase = lo
				warnings = append(warnings, Warning{
					Frame: erase,
					Line:  j,
					Message: fmt.Sprintf("no safe erase window before line %d, accepting tight margin (%d > %d)",
						i, lo, hi),
				})
			} else {
				erase = clamp(prop, lo, hi)
			}
		}
		times.Erase[j] = erase

		draw := min(erase+t.PostClearMargin, start)
		if draw < erase {
			// The successor's highlight is already due; draw on top of
			// the erase rather than emit overlapping instructions.
			draw = erase
			warnings = append(warnings, Warning{
				Frame:   draw,
				Line:    i,
				Message: fmt.Sprintf("line %d draw collides with erase of line %d", i, j),
			})
		}
		times.Draw[i] = draw
	}
	return times, warnings
}

// shortenLineEnd moves the line's last syllable end to at most frame,
// never before its start, and returns the resulting end.
func shortenLineEnd(l *Line, frame int) int {
	if len(l.Syllables) == 0 {
		return frame
	}
	s := &l.Syllables[len(l.Syllables)-1]
	if frame < s.Start {
		frame = s.Start
	}
	if frame < s.End {
		s.End = frame
	}
	return s.End
}

// enforceMonotonic makes both frame arrays non-decreasing by running
// maximum. Inputs with monotone syllable times already satisfy this; an
// adjustment means upstream timestamps overlap and is worth a warning.
func enforceMonotonic(times *LyricTimes) []Warning {
	var warnings []Warning
	for _, arr := range [][]int{times.Draw, times.Erase} {
		for i := 1; i < len(arr); i++ {
			if arr[i] < arr[i-1] {
				warnings = append(warnings, Warning{
					Frame:   arr[i-1],
					Line:    i,
					Message: "schedule not monotonic, clamping to previous frame",
				})
				arr[i] = arr[i-1]
			}
		}
	}
	return warnings
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
