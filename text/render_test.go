package text

import (
	"errors"
	"testing"

	"github.com/karaokeforge/cdg"
)

const (
	testFill   = cdg.ColorIndex(4)
	testStroke = cdg.ColorIndex(5)
)

func TestRenderLine(t *testing.T) {
	face := DefaultSource().Face(20, WithStroke(1.5))
	line, err := face.RenderLine([]string{"Nev", "er gon", "na"}, testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}

	if !line.Bitmap.Any() {
		t.Fatal("empty line bitmap")
	}
	if len(line.Syllables) != 3 {
		t.Fatalf("got %d syllables", len(line.Syllables))
	}

	w, h := line.Bitmap.Width(), line.Bitmap.Height()
	var fills, strokes int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch line.Bitmap.At(x, y) {
			case testFill:
				fills++
			case testStroke:
				strokes++
			}
		}
	}
	if fills == 0 {
		t.Error("no fill pixels")
	}
	if strokes == 0 {
		t.Error("no stroke pixels")
	}

	// Masks are disjoint and together cover every drawn pixel.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			claims := 0
			for _, syl := range line.Syllables {
				if syl.Mask.At(x, y) != 0 {
					claims++
				}
			}
			drawn := line.Bitmap.At(x, y) != 0
			if drawn && claims != 1 {
				t.Fatalf("pixel (%d,%d) claimed by %d masks", x, y, claims)
			}
			if !drawn && claims != 0 {
				t.Fatalf("undrawn pixel (%d,%d) claimed", x, y)
			}
		}
	}

	// Sweep spans tile the line left to right.
	prev := line.Syllables[0]
	if prev.Left < 0 || prev.Left >= prev.Right {
		t.Errorf("first span [%d,%d)", prev.Left, prev.Right)
	}
	for _, syl := range line.Syllables[1:] {
		if syl.Left != prev.Right {
			t.Errorf("span gap: %d then %d", prev.Right, syl.Left)
		}
		prev = syl
	}
	if prev.Right > w {
		t.Errorf("last span ends at %d beyond width %d", prev.Right, w)
	}
}

func TestRenderLine_SplitDoesNotChangePixels(t *testing.T) {
	face := DefaultSource().Face(18)

	whole, err := face.RenderLine([]string{"gonna"}, testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}
	split, err := face.RenderLine([]string{"gon", "na"}, testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}

	if whole.Bitmap.Width() != split.Bitmap.Width() ||
		whole.Bitmap.Height() != split.Bitmap.Height() {
		t.Fatalf("dimensions differ: %dx%d vs %dx%d",
			whole.Bitmap.Width(), whole.Bitmap.Height(),
			split.Bitmap.Width(), split.Bitmap.Height())
	}
	for y := 0; y < whole.Bitmap.Height(); y++ {
		for x := 0; x < whole.Bitmap.Width(); x++ {
			if whole.Bitmap.At(x, y) != split.Bitmap.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between whole and split line", x, y)
			}
		}
	}
}

func TestRenderLine_Errors(t *testing.T) {
	src := DefaultSource()
	if _, err := src.Face(0).RenderLine([]string{"la"}, testFill, testStroke); !errors.Is(err, cdg.ErrConfiguration) {
		t.Errorf("zero size: err = %v", err)
	}
	if _, err := src.Face(20).RenderLine(nil, testFill, testStroke); !errors.Is(err, cdg.ErrConfiguration) {
		t.Errorf("no syllables: err = %v", err)
	}
}

func TestRenderText(t *testing.T) {
	face := DefaultSource().Face(24, WithStroke(1))
	bm, err := face.RenderText("Never Gonna Give You Up", testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}
	if !bm.Any() {
		t.Error("empty title bitmap")
	}
	if bm.Height() < 24 {
		t.Errorf("title height %d below the em size", bm.Height())
	}
}

func TestRenderLine_NFCNormalization(t *testing.T) {
	face := DefaultSource().Face(18)

	// "é" precomposed vs "e" + combining acute.
	composed, err := face.RenderLine([]string{"café"}, testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}
	decomposed, err := face.RenderLine([]string{"café"}, testFill, testStroke)
	if err != nil {
		t.Fatal(err)
	}
	if composed.Bitmap.Width() != decomposed.Bitmap.Width() {
		t.Errorf("widths differ: %d vs %d",
			composed.Bitmap.Width(), decomposed.Bitmap.Width())
	}
}
