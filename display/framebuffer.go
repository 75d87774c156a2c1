package display

import (
	"image"
	"image/color"

	"github.com/bodgit/apw/raster"
)

// Framebuffer is an in-memory Sink. Pixels fill the current window left to
// right, top to bottom, and wrap back to the window origin once it is full,
// as the addressing logic of a typical TFT controller does. It implements
// the image.Image interface.
type Framebuffer struct {
	width, height int
	pix           []raster.Color
	window        image.Rectangle
	cursor        image.Point
}

// NewFramebuffer returns a black Framebuffer with the window covering the
// whole display.
func NewFramebuffer(width, height int) *Framebuffer {
	r := image.Rect(0, 0, width, height)
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]raster.Color, width*height),
		window: r,
		cursor: r.Min,
	}
}

// Size implements the Sink interface.
func (f *Framebuffer) Size() (int, int) {
	return f.width, f.height
}

// SetWindow implements the Sink interface.
func (f *Framebuffer) SetWindow(x0, y0, x1, y1 int) error {
	w := image.Rect(x0, y0, x1+1, y1+1)
	if x1 < x0 || y1 < y0 || !w.In(f.Bounds()) {
		return ErrBadWindow
	}
	f.window = w
	f.cursor = w.Min
	return nil
}

// Window returns the current address window.
func (f *Framebuffer) Window() image.Rectangle {
	return f.window
}

// PushPixels implements the Sink interface.
func (f *Framebuffer) PushPixels(pixels []raster.Color, first bool) error {
	if first {
		f.cursor = f.window.Min
	}
	if f.window.Empty() {
		return nil
	}
	for _, c := range pixels {
		f.pix[f.cursor.Y*f.width+f.cursor.X] = c
		f.cursor.X++
		if f.cursor.X == f.window.Max.X {
			f.cursor.X = f.window.Min.X
			f.cursor.Y++
			if f.cursor.Y == f.window.Max.Y {
				f.cursor.Y = f.window.Min.Y
			}
		}
	}
	return nil
}

// ColorModel implements the image.Image interface.
func (f *Framebuffer) ColorModel() color.Model {
	return raster.Model
}

// Bounds implements the image.Image interface.
func (f *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// At implements the image.Image interface.
func (f *Framebuffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return raster.Color(0)
	}
	return f.pix[y*f.width+x]
}
