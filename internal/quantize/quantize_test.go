package quantize

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/karaokeforge/cdg"
)

func TestImage_Solid(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	want := color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff}
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+0] = want.R
		src.Pix[i+1] = want.G
		src.Pix[i+2] = want.B
		src.Pix[i+3] = 0xff
	}

	bm, palette, err := Image(src, 8, 4)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != cdg.ScreenWidth || bm.Height() != cdg.ScreenHeight {
		t.Errorf("bitmap %dx%d, want screen size", bm.Width(), bm.Height())
	}
	if len(palette) != 1 {
		t.Fatalf("palette = %v, want one entry", palette)
	}
	if palette[0] != want {
		t.Errorf("palette[0] = %v, want %v", palette[0], want)
	}
	for y := 0; y < bm.Height(); y++ {
		for x := 0; x < bm.Width(); x++ {
			if bm.At(x, y) != 8 {
				t.Fatalf("pixel (%d,%d) = %d, want 8", x, y, bm.At(x, y))
			}
		}
	}
}

func TestImage_GradientRespectsBudget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 256, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 256; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(255 - x), B: 0x40, A: 0xff})
		}
	}

	base := cdg.ColorIndex(10)
	bm, palette, err := Image(src, base, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(palette) == 0 || len(palette) > 6 {
		t.Fatalf("palette has %d entries, budget 6", len(palette))
	}
	for y := 0; y < bm.Height(); y++ {
		for x := 0; x < bm.Width(); x++ {
			idx := bm.At(x, y)
			if idx < base || int(idx) >= int(base)+len(palette) {
				t.Fatalf("pixel (%d,%d) = %d outside slots [%d,%d)",
					x, y, idx, base, int(base)+len(palette))
			}
		}
	}
}

func TestImage_Errors(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if _, _, err := Image(src, 4, 0); !errors.Is(err, cdg.ErrConfiguration) {
		t.Errorf("zero colors: err = %v", err)
	}
	if _, _, err := Image(src, 14, 5); !errors.Is(err, cdg.ErrConfiguration) {
		t.Errorf("slot overflow: err = %v", err)
	}
}

func TestFile_Missing(t *testing.T) {
	_, _, err := File(t.TempDir()+"/missing.png", 8, 4)
	if !errors.Is(err, cdg.ErrResource) {
		t.Errorf("err = %v, want ErrResource", err)
	}
}

func TestNearest(t *testing.T) {
	palette := []color.RGBA{
		{R: 0, G: 0, B: 0, A: 0xff},
		{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		{R: 0xff, G: 0, B: 0, A: 0xff},
	}
	tests := []struct {
		c    color.RGBA
		want int
	}{
		{color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}, 0},
		{color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}, 1},
		{color.RGBA{R: 0xe0, G: 0x20, B: 0x10, A: 0xff}, 2},
	}
	for _, tt := range tests {
		if got := nearest(palette, tt.c); got != tt.want {
			t.Errorf("nearest(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}
