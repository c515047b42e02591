package compose

import (
	"testing"

	"github.com/karaokeforge/cdg"
)

func TestPlanSteps_MandatoryBoundaries(t *testing.T) {
	// Spec scenario: span [30, 78] with 6-pixel tiles and a budget of
	// 12 slots. Every tile boundary inside the span is mandatory.
	steps, degraded := planSteps(30, 78, 12)
	if degraded {
		t.Fatal("degraded with sufficient budget")
	}

	mandatory := []int{36, 42, 48, 54, 60, 66, 72}
	have := make(map[int]bool, len(steps))
	for _, x := range steps {
		have[x] = true
	}
	for _, x := range mandatory {
		if !have[x] {
			t.Errorf("mandatory boundary %d missing from %v", x, steps)
		}
	}
	if steps[len(steps)-1] != 78 {
		t.Errorf("sweep does not terminate at 78: %v", steps)
	}
	// Up to budget-1-mandatory extra steps on top of the boundaries and
	// the terminal step.
	if len(steps) > 12 {
		t.Errorf("%d steps exceed the 12-slot budget: %v", len(steps), steps)
	}
	if extra := len(steps) - len(mandatory) - 1; extra > 12-1-len(mandatory) {
		t.Errorf("%d extra steps, want at most %d", extra, 12-1-len(mandatory))
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			t.Errorf("steps not strictly increasing: %v", steps)
		}
	}
}

func TestPlanSteps_BudgetBelowMandatory(t *testing.T) {
	steps, degraded := planSteps(30, 78, 5)
	if !degraded {
		t.Fatal("expected degraded sweep")
	}
	if len(steps) > 5 {
		t.Errorf("%d steps exceed budget 5: %v", len(steps), steps)
	}
	if steps[len(steps)-1] != 78 {
		t.Errorf("degraded sweep does not terminate at 78: %v", steps)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			t.Errorf("degraded steps not monotonic: %v", steps)
		}
	}
}

func TestPlanSteps_SingleSlot(t *testing.T) {
	steps, degraded := planSteps(30, 78, 1)
	if !degraded {
		t.Error("one slot for eight boundaries should degrade")
	}
	if len(steps) != 1 || steps[0] != 78 {
		t.Errorf("steps = %v, want the single terminal step", steps)
	}
}

func TestPlanSteps_NarrowSpan(t *testing.T) {
	// A span inside one tile column has no mandatory boundaries.
	steps, degraded := planSteps(14, 17, 10)
	if degraded {
		t.Fatal("unexpected degradation")
	}
	if steps[len(steps)-1] != 17 {
		t.Errorf("terminal step = %d, want 17", steps[len(steps)-1])
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			t.Errorf("steps not strictly increasing: %v", steps)
		}
	}
	if len(steps) > 3 {
		t.Errorf("%d steps inside a 3-pixel span: %v", len(steps), steps)
	}
}

func TestMandatoryStepCount(t *testing.T) {
	tests := []struct{ left, right, want int }{
		{30, 78, 8}, // 7 interior boundaries + terminal step
		{12, 48, 6},
		{14, 17, 1}, // span inside one tile column
		{30, 30, 0},
	}
	for _, tt := range tests {
		if got := mandatoryStepCount(tt.left, tt.right); got != tt.want {
			t.Errorf("mandatoryStepCount(%d, %d) = %d, want %d", tt.left, tt.right, got, tt.want)
		}
	}
}

func TestPlanSteps_EmptySpan(t *testing.T) {
	if steps, _ := planSteps(30, 30, 10); steps != nil {
		t.Errorf("steps = %v for empty span, want nil", steps)
	}
}

func TestHighlightGroups_FlipsMaskedPixels(t *testing.T) {
	// A line at a tile-aligned position, fully masked by one syllable:
	// applying all groups must flip exactly the masked pixels by the
	// singer delta.
	line := testLine(2*cdg.TileHeight, []int{0}, 100)
	syl := &line.Syllables[0]

	steps, _ := planSteps(syl.Left, syl.Right, 40)
	groups := highlightGroups(&line, syl, steps, 2)
	if len(groups) != len(steps) {
		t.Fatalf("%d groups for %d steps", len(groups), len(steps))
	}

	screen := cdg.NewScreen()
	var enc cdg.TileEncoder
	screen.ApplyAll(enc.Encode(line.Bitmap, line.X, line.Y, nil))
	for _, g := range groups {
		screen.ApplyAll(g)
	}

	for y := 0; y < line.Bitmap.Height(); y++ {
		for x := 0; x < line.Bitmap.Width(); x++ {
			want := line.Bitmap.At(x, y)
			if syl.Mask.At(x, y) != 0 {
				want ^= 2
			}
			if got := screen.IndexAt(line.X+x, line.Y+y); got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestHighlightGroups_MonotonicCoverage(t *testing.T) {
	// Each successive group must only touch pixels at or beyond the
	// previous step boundary.
	line := testLine(0, []int{0}, 100)
	syl := &line.Syllables[0]
	steps, _ := planSteps(syl.Left, syl.Right, 20)
	groups := highlightGroups(&line, syl, steps, 2)

	prev := syl.Left
	for gi, g := range groups {
		for _, p := range g {
			col := int(p.Data[3])
			lo := col * cdg.TileWidth
			hi := lo + cdg.TileWidth
			if hi <= prev || lo >= steps[gi] {
				t.Errorf("group %d touches column %d outside [%d,%d)", gi, col, prev, steps[gi])
			}
		}
		prev = steps[gi]
	}
}

func TestHighlightGroups_NilMask(t *testing.T) {
	line := testLine(0, []int{0}, 100)
	syl := line.Syllables[0]
	syl.Mask = nil
	if groups := highlightGroups(&line, &syl, []int{20, 40}, 2); groups != nil {
		t.Errorf("groups = %v for nil mask, want nil", groups)
	}
}
