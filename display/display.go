/*
Package display implements the pixel side of APW decoding: the Sink
interface a display controller is driven through, the Relay that batches
decoded runs into fixed size chunks, and Framebuffer, an in-memory Sink that
behaves like an addressing-window TFT controller.
*/
package display

import (
	"errors"

	"github.com/bodgit/apw/raster"
)

// ErrBadWindow is returned by Framebuffer.SetWindow for an empty window or
// one not within the display
var ErrBadWindow = errors.New("display: invalid address window")

// Sink is a display that is written by first selecting an address window
// and then streaming pixels into it.
type Sink interface {
	// Size returns the addressable extent of the display
	Size() (width, height int)
	// SetWindow selects the inclusive window subsequent pixels fill
	SetWindow(x0, y0, x1, y1 int) error
	// PushPixels writes pixels into the window. first is set for the
	// first chunk of an image which restarts at the window origin
	PushPixels(pixels []raster.Color, first bool) error
}
