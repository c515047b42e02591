package cdg

// Bitmap is a rectangular buffer of color table indices. It is the
// interchange format between the rasterizing collaborators and the tile
// encoder.
type Bitmap struct {
	width  int
	height int
	pix    []ColorIndex
}

// NewBitmap creates a bitmap with the given dimensions, filled with
// BackgroundIndex.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]ColorIndex, width*height),
	}
}

// Width returns the width of the bitmap in pixels.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the height of the bitmap in pixels.
func (b *Bitmap) Height() int {
	return b.height
}

// At returns the color index at (x, y). Out-of-bounds reads return
// BackgroundIndex.
func (b *Bitmap) At(x, y int) ColorIndex {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return BackgroundIndex
	}
	return b.pix[y*b.width+x]
}

// Set writes the color index at (x, y). Out-of-bounds writes are ignored.
func (b *Bitmap) Set(x, y int, c ColorIndex) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.pix[y*b.width+x] = c
}

// Fill sets every pixel to c.
func (b *Bitmap) Fill(c ColorIndex) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	out := NewBitmap(b.width, b.height)
	copy(out.pix, b.pix)
	return out
}

// Any reports whether any pixel differs from BackgroundIndex.
func (b *Bitmap) Any() bool {
	for _, p := range b.pix {
		if p != BackgroundIndex {
			return true
		}
	}
	return false
}
