package image

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/bodgit/apw/palette"
	"github.com/bodgit/apw/raster"
	"github.com/ericpauley/go-quantize/quantize"
)

// Options are the encoding parameters.
type Options struct {
	// Colors, if non-zero, reduces the image to at most this many
	// colors before encoding so more runs can use the palette cache
	Colors int
	// Dither applies Floyd-Steinberg error diffusion when reducing
	Dither bool
}

// KindStats counts the instructions of a single kind.
type KindStats struct {
	Codes  int
	Pixels int
	Bytes  int
}

// Stats summarises an encoded stream, indexed by Kind.
type Stats [numKinds]KindStats

// Total returns the sum over every kind.
func (s *Stats) Total() KindStats {
	var t KindStats
	for _, k := range s {
		t.Codes += k.Codes
		t.Pixels += k.Pixels
		t.Bytes += k.Bytes
	}
	return t
}

func (s *Stats) add(i Instruction) {
	s[i.Kind].Codes++
	s[i.Kind].Pixels += i.Run
	s[i.Kind].Bytes += i.Len()
}

type encoder struct {
	w     *bufio.Writer
	stats Stats
	tmp   [4]byte
}

func (e *encoder) writeHeader(r *raster.Raster) error {
	if r.Width > raster.MaxDimension || r.Height > raster.MaxDimension {
		return ErrTooLarge
	}

	var h [headerSize]byte
	copy(h[:], magic)
	binary.LittleEndian.PutUint16(h[4:], uint16(r.Width))
	binary.LittleEndian.PutUint16(h[6:], uint16(r.Height))
	h[8] = capacity

	_, err := e.w.Write(h[:])
	return err
}

func (e *encoder) writeInstruction(i Instruction, _ *palette.Cache) error {
	e.stats.add(i)
	_, err := e.w.Write(i.AppendBinary(e.tmp[:0]))
	return err
}

func (e *encoder) encode(r *raster.Raster) error {
	if err := e.writeHeader(r); err != nil {
		return err
	}

	if err := Plan(r, e.writeInstruction); err != nil {
		return err
	}

	if err := e.w.WriteByte(opEndOfStream); err != nil {
		return err
	}

	return e.w.Flush()
}

// EncodeRaster writes r to w in APW format and returns statistics about
// the instructions used.
func EncodeRaster(w io.Writer, r *raster.Raster) (*Stats, error) {
	e := encoder{w: bufio.NewWriter(w)}
	if err := e.encode(r); err != nil {
		return nil, err
	}
	return &e.stats, nil
}

// Reduce returns m reduced to o.Colors colors using a median cut palette.
// m is returned unchanged if o is nil, o.Colors is zero or m cannot be
// encoded anyway.
func Reduce(m image.Image, o *Options) image.Image {
	if o == nil || o.Colors <= 0 || !raster.Supported(m.ColorModel()) {
		return m
	}

	b := m.Bounds()
	if b.Empty() {
		return m
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, o.Colors), m))

	var d draw.Drawer = draw.Src
	if o.Dither {
		d = draw.FloydSteinberg
	}
	d.Draw(pm, b, m, b.Min)

	return pm
}

// Encode writes the Image m to w in APW format. Options may be nil.
func Encode(w io.Writer, m image.Image, o *Options) error {
	r, err := raster.FromImage(Reduce(m, o))
	if err != nil {
		return err
	}

	_, err = EncodeRaster(w, r)
	return err
}
