/*
Package raster implements the packed 16-bit pixel raster shared by the APW
encoder and decoder.

Colors are packed as RRRRRGGGGGGBBBBB. Conversion from 8 bits per channel
truncates each channel to the available width.
*/
package raster

import (
	"errors"
	"image"
	"image/color"
)

// MaxDimension is the largest width or height a raster can have
const MaxDimension = 0xffff

var (
	// ErrTooLarge is returned when either dimension exceeds MaxDimension
	ErrTooLarge = errors.New("raster: image dimensions too large")
	// ErrUnsupportedColorModel is returned for sources carrying no color
	ErrUnsupportedColorModel = errors.New("raster: unsupported color model")
)

// Color is a packed 5/6/5 color.
type Color uint16

// Pack returns the Color for the given 8-bit channels.
func Pack(r, g, b uint8) Color {
	return Color(uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b)>>3)
}

// RGB returns the 8-bit channels with the low bits left clear.
func (c Color) RGB() (uint8, uint8, uint8) {
	return uint8(c>>8) & 0xf8, uint8(c>>3) & 0xfc, uint8(c << 3)
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r, g, b = uint32(r8), uint32(g8), uint32(b8)
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

// Model converts any color to a Color.
var Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	switch p := c.(type) {
	case Color:
		return p
	case color.NRGBA:
		// Ignore alpha rather than premultiplying it
		return Pack(p.R, p.G, p.B)
	case color.NRGBA64:
		return Pack(uint8(p.R>>8), uint8(p.G>>8), uint8(p.B>>8))
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Raster is a row-major sequence of packed colors. It implements the
// image.Image interface.
type Raster struct {
	Width, Height int
	Pix           []Color
}

// New returns a black raster of the given size.
func New(width, height int) (*Raster, error) {
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return nil, ErrTooLarge
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}, nil
}

// ColorModel implements the image.Image interface.
func (r *Raster) ColorModel() color.Model {
	return Model
}

// Bounds implements the image.Image interface.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// At implements the image.Image interface.
func (r *Raster) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return Color(0)
	}
	return r.Pix[y*r.Width+x]
}

// Set stores c at x, y, anything outside the raster is ignored.
func (r *Raster) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return
	}
	r.Pix[y*r.Width+x] = Model.Convert(c).(Color)
}

// Len returns the number of pixels.
func (r *Raster) Len() int {
	return len(r.Pix)
}

// RunLength returns the number of consecutive pixels equal to the pixel at
// p, starting at p. It returns 0 if p is past the end.
func (r *Raster) RunLength(p int) int {
	if p < 0 || p >= len(r.Pix) {
		return 0
	}
	c := r.Pix[p]
	n := 1
	for p+n < len(r.Pix) && r.Pix[p+n] == c {
		n++
	}
	return n
}

// Supported reports whether images using m can be converted.
func Supported(m color.Model) bool {
	switch m {
	case color.AlphaModel, color.Alpha16Model:
		return false
	}
	return true
}

// FromImage converts m into a Raster, the top-left corner of m becomes 0, 0.
func FromImage(m image.Image) (*Raster, error) {
	if !Supported(m.ColorModel()) {
		return nil, ErrUnsupportedColorModel
	}

	if r, ok := m.(*Raster); ok {
		dup := &Raster{Width: r.Width, Height: r.Height, Pix: make([]Color, len(r.Pix))}
		copy(dup.Pix, r.Pix)
		return dup, nil
	}

	b := m.Bounds()
	r, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.Pix[i] = model(m.At(x, y)).(Color)
			i++
		}
	}

	return r, nil
}
