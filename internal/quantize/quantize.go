// Package quantize reduces background pictures to the handful of color
// table slots a CD+G screen has left over.
//
// Pictures are scaled to the full 300x216 screen with Catmull-Rom
// resampling, then median-cut down to the requested number of colors.
package quantize

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/karaokeforge/cdg"
)

// File loads a PNG or JPEG picture and reduces it to at most colors
// palette entries. The returned bitmap indexes pixels as base+i for
// palette entry i.
func File(path string, base cdg.ColorIndex, colors int) (*cdg.Bitmap, []color.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("quantize: %s: %w: %v", path, cdg.ErrResource, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("quantize: decode %s: %w", path, err)
	}
	return Image(img, base, colors)
}

// Image scales a picture to the CD+G screen and reduces it to at most
// colors palette entries.
func Image(img image.Image, base cdg.ColorIndex, colors int) (*cdg.Bitmap, []color.RGBA, error) {
	if colors < 1 {
		return nil, nil, fmt.Errorf("%w: %d image colors", cdg.ErrConfiguration, colors)
	}
	if int(base)+colors > 16 {
		return nil, nil, fmt.Errorf("%w: %d image colors do not fit above slot %d",
			cdg.ErrConfiguration, colors, base)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, cdg.ScreenWidth, cdg.ScreenHeight))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	palette := medianCut(scaled, colors)
	bm := cdg.NewBitmap(cdg.ScreenWidth, cdg.ScreenHeight)
	for y := 0; y < cdg.ScreenHeight; y++ {
		for x := 0; x < cdg.ScreenWidth; x++ {
			c := scaled.RGBAAt(x, y)
			bm.Set(x, y, base+cdg.ColorIndex(nearest(palette, c)))
		}
	}
	return bm, palette, nil
}

// box is a set of pixels with its bounding range per channel.
type box struct {
	pixels []color.RGBA
}

// medianCut reduces the image to at most n representative colors.
func medianCut(img *image.RGBA, n int) []color.RGBA {
	seen := make(map[color.RGBA]struct{})
	var pixels []color.RGBA
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			c := img.RGBAAt(x, y)
			c.A = 0xff
			pixels = append(pixels, c)
			seen[c] = struct{}{}
		}
	}
	if len(seen) <= n {
		out := make([]color.RGBA, 0, len(seen))
		for c := range seen {
			out = append(out, c)
		}
		sort.Slice(out, func(i, j int) bool { return rgbKey(out[i]) < rgbKey(out[j]) })
		return out
	}

	boxes := []box{{pixels: pixels}}
	for len(boxes) < n {
		// Split the box with the widest channel spread.
		widest, spread := -1, 0
		for i := range boxes {
			if s := boxes[i].spread(); s > spread {
				widest, spread = i, s
			}
		}
		if widest < 0 {
			break // every box is a single color
		}
		a, b := boxes[widest].split()
		boxes[widest] = a
		boxes = append(boxes, b)
	}

	out := make([]color.RGBA, len(boxes))
	for i := range boxes {
		out[i] = boxes[i].average()
	}
	return out
}

// spread returns the widest channel range of the box, zero when the box
// cannot be split further.
func (b *box) spread() int {
	if len(b.pixels) < 2 {
		return 0
	}
	var minC, maxC [3]int
	for i := range minC {
		minC[i] = 255
	}
	for _, p := range b.pixels {
		for i, v := range [3]int{int(p.R), int(p.G), int(p.B)} {
			minC[i] = min(minC[i], v)
			maxC[i] = max(maxC[i], v)
		}
	}
	s := 0
	for i := range minC {
		s = max(s, maxC[i]-minC[i])
	}
	return s
}

// split cuts the box at the median of its widest channel.
func (b *box) split() (box, box) {
	var minC, maxC [3]int
	for i := range minC {
		minC[i] = 255
	}
	for _, p := range b.pixels {
		for i, v := range [3]int{int(p.R), int(p.G), int(p.B)} {
			minC[i] = min(minC[i], v)
			maxC[i] = max(maxC[i], v)
		}
	}
	ch := 0
	for i := 1; i < 3; i++ {
		if maxC[i]-minC[i] > maxC[ch]-minC[ch] {
			ch = i
		}
	}
	sort.Slice(b.pixels, func(i, j int) bool {
		return channel(b.pixels[i], ch) < channel(b.pixels[j], ch)
	})
	mid := len(b.pixels) / 2
	return box{pixels: b.pixels[:mid]}, box{pixels: b.pixels[mid:]}
}

// average returns the mean color of the box.
func (b *box) average() color.RGBA {
	if len(b.pixels) == 0 {
		return color.RGBA{A: 0xff}
	}
	var r, g, bl int
	for _, p := range b.pixels {
		r += int(p.R)
		g += int(p.G)
		bl += int(p.B)
	}
	n := len(b.pixels)
	return color.RGBA{
		R: uint8(r / n),
		G: uint8(g / n),
		B: uint8(bl / n),
		A: 0xff,
	}
}

// nearest returns the palette index closest to c by squared RGB
// distance.
func nearest(palette []color.RGBA, c color.RGBA) int {
	best, bestD := 0, 1<<30
	for i, p := range palette {
		dr := int(p.R) - int(c.R)
		dg := int(p.G) - int(c.G)
		db := int(p.B) - int(c.B)
		if d := dr*dr + dg*dg + db*db; d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func channel(c color.RGBA, ch int) int {
	switch ch {
	case 0:
		return int(c.R)
	case 1:
		return int(c.G)
	default:
		return int(c.B)
	}
}

func rgbKey(c color.RGBA) int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}
