package image

import (
	"encoding/binary"

	"github.com/bodgit/apw/raster"
)

// Kind identifies the encoding of an Instruction.
type Kind int

// Instruction kinds
const (
	EndOfStream     Kind = iota // no run, terminates the stream
	Immediate                   // one pixel from a slot
	Pair                        // two pixels from a slot
	ShortRun                    // 3 to 258 pixels from a slot
	StoreEntry                  // 1 to 256 pixels of a literal also stored in a slot
	LongRun                     // 259 to 65794 pixels from a slot
	Literal                     // 1 to 32 pixels of an uncached literal
	MultipleLiteral             // 33 to 288 pixels of an uncached literal
	numKinds
)

var kindNames = [numKinds]string{
	"end of stream",
	"immediate",
	"pair",
	"short run",
	"store entry",
	"long run",
	"literal",
	"multiple literal",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Instruction is a single decoded or planned run.
type Instruction struct {
	Kind Kind
	// Slot is the palette slot read, or written for StoreEntry
	Slot int
	// Run is the number of pixels
	Run int
	// Color is the color of every pixel in the run
	Color raster.Color
}

// Len returns the number of bytes the instruction encodes to.
func (i Instruction) Len() int {
	switch i.Kind {
	case ShortRun:
		return 2
	case LongRun, Literal:
		return 3
	case StoreEntry, MultipleLiteral:
		return 4
	default:
		return 1
	}
}

func putColor(b []byte, c raster.Color) []byte {
	return binary.LittleEndian.AppendUint16(b, uint16(c))
}

// AppendBinary appends the encoded instruction to b. The run length must
// already be within the limits of the kind.
func (i Instruction) AppendBinary(b []byte) []byte {
	slot := byte(i.Slot)
	switch i.Kind {
	case Immediate:
		return append(b, opImmediate+slot)
	case Pair:
		return append(b, opPair+slot)
	case ShortRun:
		return append(b, opShortRun+slot, byte(i.Run-minShortRun))
	case StoreEntry:
		return putColor(append(b, opStoreEntry+slot, byte(i.Run-1)), i.Color)
	case LongRun:
		return binary.LittleEndian.AppendUint16(append(b, opLongRun+slot), uint16(i.Run-minLongRun))
	case Literal:
		return putColor(append(b, opLiteral|byte(i.Run-1)), i.Color)
	case MultipleLiteral:
		return putColor(append(b, opMultipleLiteral, byte(i.Run-minMultipleLiteral)), i.Color)
	default:
		return append(b, opEndOfStream)
	}
}
