package compose

import "github.com/karaokeforge/cdg"

// planSteps chooses the x positions of a syllable's highlight sweep across
// [left, right). Every tile-column boundary strictly inside the span is
// mandatory, and the sweep always terminates at right. When the slot
// budget allows more steps, extras are spread evenly across the span,
// snapped toward the middle of a tile column. When the budget cannot even
// cover the mandatory boundaries the sweep is thinned to what fits;
// degraded reports that case so the caller can log it. The returned
// positions are strictly increasing.
func planSteps(left, right, budgetSlots int) (steps []int, degraded bool) {
	if right <= left {
		return nil, false
	}

	var mandatory []int
	for x := (left/cdg.TileWidth + 1) * cdg.TileWidth; x < right; x += cdg.TileWidth {
		if x > left {
			mandatory = append(mandatory, x)
		}
	}

	if budgetSlots < len(mandatory)+1 {
		// Not enough slots for every boundary: keep an evenly spaced
		// subset, always ending at right. The highlight will visually
		// skip tiles but stays monotonic.
		keep := max(budgetSlots, 1)
		all := append(append([]int{}, mandatory...), right)
		steps = thinSteps(all, keep)
		return steps, true
	}

	extra := budgetSlots - 1 - len(mandatory)
	if limit := right - left - len(mandatory) - 1; extra > limit {
		extra = max(limit, 0)
	}

	steps = append(steps, mandatory...)
	taken := make(map[int]bool, len(steps)+2)
	for _, x := range steps {
		taken[x] = true
	}
	taken[left] = true
	taken[right] = true

	for k := 1; k <= extra; k++ {
		x := left + (right-left)*k/(extra+1)
		x = snapToColumnMiddle(x, left, right, taken)
		if x > left && x < right && !taken[x] {
			steps = append(steps, x)
			taken[x] = true
		}
	}

	steps = append(steps, right)
	sortInts(steps)
	return steps, false
}

// mandatoryStepCount returns the fewest steps a full sweep of
// [left, right) can use: one per tile-column boundary strictly inside
// the span plus the terminal step at right.
func mandatoryStepCount(left, right int) int {
	if right <= left {
		return 0
	}
	n := 1
	for x := (left/cdg.TileWidth + 1) * cdg.TileWidth; x < right; x += cdg.TileWidth {
		if x > left {
			n++
		}
	}
	return n
}

// snapToColumnMiddle nudges x to the nearest free position, preferring
// the middle of a tile column (x mod 6 == 3).
func snapToColumnMiddle(x, left, right int, taken map[int]bool) int {
	col := x / cdg.TileWidth
	mid := col*cdg.TileWidth + cdg.TileWidth/2
	if mid > left && mid < right && !taken[mid] {
		return mid
	}
	for d := 1; d < cdg.TileWidth; d++ {
		for _, cand := range []int{x - d, x + d} {
			if cand > left && cand < right && !taken[cand] {
				return cand
			}
		}
	}
	return x
}

// thinSteps picks n evenly distributed entries of sorted, always
// including the final one.
func thinSteps(sorted []int, n int) []int {
	if n >= len(sorted) {
		return sorted
	}
	out := make([]int, 0, n)
	for k := 1; k <= n; k++ {
		out = append(out, sorted[len(sorted)*k/n-1])
	}
	// The integer walk can repeat an index; drop duplicates.
	dedup := out[:0]
	for i, v := range out {
		if i == 0 || v != dedup[len(dedup)-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// highlightGroups builds the packet groups of one syllable's sweep. Each
// step becomes one group: a TileBlockXor per touched tile, flipping the
// reveal-mask pixels between the previous step and this one by the
// singer's palette delta. Tiles within a step are visited column-major.
func highlightGroups(line *Line, syl *Syllable, steps []int, delta cdg.ColorIndex) [][]cdg.Packet {
	if syl.Mask == nil || len(steps) == 0 {
		return nil
	}
	groups := make([][]cdg.Packet, 0, len(steps))
	prevX := syl.Left
	for _, x := range steps {
		group := stepPackets(line, syl, prevX, x, delta)
		groups = append(groups, group)
		prevX = x
	}
	return groups
}

// stepPackets emits the XOR tiles for mask pixels with screen x in
// [fromX, toX).
func stepPackets(line *Line, syl *Syllable, fromX, toX int, delta cdg.ColorIndex) []cdg.Packet {
	if toX <= fromX {
		return nil
	}
	col0 := fromX / cdg.TileWidth
	col1 := (toX - 1) / cdg.TileWidth
	row0 := line.Y / cdg.TileHeight
	row1 := (line.Y + line.Bitmap.Height() - 1) / cdg.TileHeight

	var packets []cdg.Packet
	for col := col0; col <= col1; col++ {
		for row := row0; row <= row1; row++ {
			var mask cdg.TileMask
			for ty := 0; ty < cdg.TileHeight; ty++ {
				for tx := 0; tx < cdg.TileWidth; tx++ {
					px := col*cdg.TileWidth + tx
					py := row*cdg.TileHeight + ty
					if px < fromX || px >= toX {
						continue
					}
					if syl.Mask.At(px-line.X, py-line.Y) != cdg.BackgroundIndex {
						mask.Set(tx, ty)
					}
				}
			}
			if !mask.IsZero() {
				packets = append(packets, cdg.TileBlockPacket(true, 0, delta, row, col, mask))
			}
		}
	}
	return packets
}
