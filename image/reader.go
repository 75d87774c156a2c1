package image

import (
	"bufio"
	"encoding/binary"
	"image"
	"io"

	"github.com/bodgit/apw/palette"
	"github.com/bodgit/apw/raster"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = ErrTruncated
	}
	return err
}

// Header is the fixed part of an APW stream.
type Header struct {
	Width, Height int
	// Capacity is the declared number of palette slots
	Capacity int
}

func readHeader(r io.Reader) (Header, error) {
	var b [headerSize]byte
	if err := readFull(r, b[:]); err != nil {
		return Header{}, err
	}
	if string(b[:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Width:    int(binary.LittleEndian.Uint16(b[4:])),
		Height:   int(binary.LittleEndian.Uint16(b[6:])),
		Capacity: int(b[8]),
	}
	if h.Capacity > capacity {
		return Header{}, ErrPaletteCapacity
	}
	return h, nil
}

type state int

const (
	stateReadOpcode state = iota
	stateError
	stateDone
)

// Decoder interprets an APW stream one instruction at a time, replaying
// the palette cache as it goes.
type Decoder struct {
	r      *bufio.Reader
	header Header
	cache  palette.Cache
	state  state
	err    error
	tmp    [3]byte
}

// NewDecoder reads the header from r and returns a Decoder positioned at
// the first instruction.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		r:      br,
		header: h,
		cache:  palette.New(),
	}, nil
}

// Header returns the stream header.
func (d *Decoder) Header() Header {
	return d.header
}

// Palette returns a copy of the palette cache as it stands after the last
// instruction returned by Next.
func (d *Decoder) Palette() palette.Cache {
	return d.cache
}

// Next returns the next instruction. It returns io.EOF once the end of
// stream instruction has been read, any other error is sticky.
func (d *Decoder) Next() (Instruction, error) {
	switch d.state {
	case stateDone:
		return Instruction{}, io.EOF
	case stateError:
		return Instruction{}, d.err
	}

	i, err := d.readInstruction()
	switch {
	case err != nil:
		d.state, d.err = stateError, err
		return Instruction{}, err
	case i.Kind == EndOfStream:
		d.state = stateDone
		return Instruction{}, io.EOF
	}

	return i, nil
}

func (d *Decoder) slot(op, base byte) (int, raster.Color, error) {
	slot := int(op - base)
	c, err := d.cache.At(slot)
	return slot, c, err
}

func (d *Decoder) readColor() (raster.Color, error) {
	if err := readFull(d.r, d.tmp[:2]); err != nil {
		return 0, err
	}
	return raster.Color(binary.LittleEndian.Uint16(d.tmp[:2])), nil
}

func (d *Decoder) readInstruction() (i Instruction, err error) {
	op, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = ErrTruncated
		}
		return i, err
	}

	switch {
	case op == opEndOfStream:
		i.Kind = EndOfStream
	case op < opImmediate:
		return i, ErrInvalidOpcode
	case op < opPair:
		i.Kind, i.Run = Immediate, 1
		i.Slot, i.Color, err = d.slot(op, opImmediate)
	case op < opShortRun:
		i.Kind, i.Run = Pair, 2
		i.Slot, i.Color, err = d.slot(op, opPair)
	case op < opStoreEntry:
		i.Kind = ShortRun
		if i.Slot, i.Color, err = d.slot(op, opShortRun); err != nil {
			return i, err
		}
		if err = readFull(d.r, d.tmp[:1]); err != nil {
			return i, err
		}
		i.Run = int(d.tmp[0]) + minShortRun
	case op < opLongRun:
		i.Kind, i.Slot = StoreEntry, int(op-opStoreEntry)
		if i.Slot >= palette.Size {
			return i, ErrInvalidSlotIndex
		}
		if err = readFull(d.r, d.tmp[:1]); err != nil {
			return i, err
		}
		i.Run = int(d.tmp[0]) + 1
		if i.Color, err = d.readColor(); err != nil {
			return i, err
		}
		err = d.cache.Store(i.Slot, i.Color)
	case op < opLiteral:
		i.Kind = LongRun
		if i.Slot, i.Color, err = d.slot(op, opLongRun); err != nil {
			return i, err
		}
		if err = readFull(d.r, d.tmp[:2]); err != nil {
			return i, err
		}
		i.Run = int(binary.LittleEndian.Uint16(d.tmp[:2])) + minLongRun
	case op < opMultipleLiteral:
		i.Kind, i.Run = Literal, int(op&0x1f)+1
		i.Color, err = d.readColor()
	default:
		// The low bits are ignored
		i.Kind = MultipleLiteral
		if err = readFull(d.r, d.tmp[:1]); err != nil {
			return i, err
		}
		i.Run = int(d.tmp[0]) + minMultipleLiteral
		i.Color, err = d.readColor()
	}

	return i, err
}

// Decode reads an APW image from r and returns it as an image.Image. The
// returned image is a *raster.Raster.
func Decode(r io.Reader) (image.Image, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}

	m, err := raster.New(d.header.Width, d.header.Height)
	if err != nil {
		return nil, err
	}

	p := 0
	for {
		i, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if p+i.Run > m.Len() {
			return nil, errTooMuch
		}
		for end := p + i.Run; p < end; p++ {
			m.Pix[p] = i.Color
		}
	}

	if p != m.Len() {
		return nil, errNotEnough
	}

	return m, nil
}

// DecodeConfig returns the color model and dimensions of an APW image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: raster.Model,
		Width:      h.Width,
		Height:     h.Height,
	}, nil
}
