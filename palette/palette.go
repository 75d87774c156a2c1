/*
Package palette implements the fixed size color cache referenced by slot
index from APW run instructions.

Every stream starts with slot 0 black, slot 1 white and the remaining slots
black. The encoder models the cache and the decoder replays it, the two must
agree after every instruction.
*/
package palette

import (
	"errors"

	"github.com/bodgit/apw/raster"
)

// Size is the number of slots in the cache
const Size = 20

// ErrInvalidSlot is returned for any slot index outside [0, Size)
var ErrInvalidSlot = errors.New("palette: invalid slot index")

// Cache is the palette cache. The zero value is not in the initial state,
// use New or Reset.
type Cache [Size]raster.Color

// New returns a cache in its initial state.
func New() Cache {
	var c Cache
	c.Reset()
	return c
}

// Reset returns the cache to its initial state.
func (c *Cache) Reset() {
	for i := range c {
		c[i] = 0x0000
	}
	c[1] = 0xffff
}

// Index returns the lowest slot holding color, if any.
func (c *Cache) Index(color raster.Color) (int, bool) {
	for i, v := range c {
		if v == color {
			return i, true
		}
	}
	return -1, false
}

// At returns the color held in slot i.
func (c *Cache) At(i int) (raster.Color, error) {
	if i < 0 || i >= Size {
		return 0, ErrInvalidSlot
	}
	return c[i], nil
}

// Store overwrites slot i with color.
func (c *Cache) Store(i int, color raster.Color) error {
	if i < 0 || i >= Size {
		return ErrInvalidSlot
	}
	c[i] = color
	return nil
}
