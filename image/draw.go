package image

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/apw/display"
)

func checkOrigin(s display.Sink, x, y int) error {
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return ErrOriginOutOfBounds
	}
	return nil
}

// Draw decodes the APW stream from r onto s with the top-left corner at
// x, y.
//
// The address window is clipped to the display but every decoded pixel is
// still pushed to s, so an image that does not fit wraps within the window
// according to the display's own addressing. A failure part way through
// leaves whatever was already pushed on the display.
func Draw(r io.Reader, s display.Sink, x, y int) error {
	if err := checkOrigin(s, x, y); err != nil {
		return err
	}

	d, err := NewDecoder(r)
	if err != nil {
		return err
	}

	sw, sh := s.Size()
	w, h := d.header.Width, d.header.Height
	if x+w > sw {
		w = sw - x
	}
	if y+h > sh {
		h = sh - y
	}
	if w > 0 && h > 0 {
		if err := s.SetWindow(x, y, x+w-1, y+h-1); err != nil {
			return err
		}
	}

	relay := display.NewRelay(s)
	for {
		i, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := relay.Write(i.Color, i.Run); err != nil {
			return err
		}
	}

	return relay.Flush()
}

// DrawFile opens the named APW file and draws it onto s with the top-left
// corner at x, y. The origin is checked before the file is opened.
func DrawFile(file string, s display.Sink, x, y int) error {
	if err := checkOrigin(s, x, y); err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	return Draw(bufio.NewReader(f), s, x, y)
}
