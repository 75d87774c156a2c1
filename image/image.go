/*
Package image implements an APW image decoder and encoder.

An APW file is a nine byte header followed by a stream of run
instructions. The header is the ASCII magic "CBLS", the width and height as
little-endian 16-bit values and the palette capacity, which is always 20.

Each instruction describes a run of identical packed 16-bit pixels. The
color either comes from one of the 20 slots of a palette cache, or is given
literally. A store instruction writes its literal color into a slot as well
as drawing it, and the encoder greedily decides which colors are worth a
slot based on how many bytes they would save over the rest of the image.
A zero byte ends the stream.

The decoder is a streaming interpreter that only holds the palette cache and
a small pixel buffer so it can drive a display directly, see Draw.
*/
package image

import (
	"errors"
	"image"

	"github.com/bodgit/apw/palette"
	"github.com/bodgit/apw/raster"
)

const (
	magic      = "CBLS"
	headerSize = 9
	capacity   = palette.Size
)

// First byte of each instruction
const (
	opEndOfStream     = 0x00
	opImmediate       = 0x20
	opPair            = 0x40
	opShortRun        = 0x60
	opStoreEntry      = 0x80
	opLongRun         = 0xa0
	opLiteral         = 0xc0
	opMultipleLiteral = 0xe0
)

// Run length limits
const (
	minShortRun        = 3
	maxShortRun        = 0xff + minShortRun
	maxStoreRun        = 0xff + 1
	minLongRun         = maxShortRun + 1
	maxLongRun         = 0xffff + minLongRun
	maxLiteralRun      = 0x1f + 1
	minMultipleLiteral = maxLiteralRun + 1
	maxMultipleLiteral = 0xff + minMultipleLiteral
)

var (
	// ErrOriginOutOfBounds is returned when the draw origin is outside
	// the display
	ErrOriginOutOfBounds = errors.New("apw: origin out of bounds")
	// ErrOpen is returned when the file to draw cannot be opened
	ErrOpen = errors.New("apw: cannot open file")
	// ErrBadMagic is returned when the stream does not start with "CBLS"
	ErrBadMagic = errors.New("apw: bad magic")
	// ErrPaletteCapacity is returned when the header declares more
	// palette slots than are supported
	ErrPaletteCapacity = errors.New("apw: palette capacity mismatch")
	// ErrTruncated is returned when the stream ends early
	ErrTruncated = errors.New("apw: truncated stream")
	// ErrInvalidSlotIndex is returned for an instruction referencing a
	// slot outside the palette cache
	ErrInvalidSlotIndex = palette.ErrInvalidSlot
	// ErrInvalidOpcode is returned for an unassigned first byte
	ErrInvalidOpcode = errors.New("apw: invalid opcode")
	// ErrTooLarge is returned when encoding an image wider or taller
	// than 65535 pixels
	ErrTooLarge = raster.ErrTooLarge

	errNotEnough = errors.New("apw: not enough image data")
	errTooMuch   = errors.New("apw: too much image data")
	errBadRaster = errors.New("apw: raster size mismatch")
)

func init() {
	image.RegisterFormat("apw", magic, Decode, DecodeConfig)
}
