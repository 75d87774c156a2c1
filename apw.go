/*
Package apw is a library for converting images to the APW format and
maintaining directories of them for small RGB565 TFT displays.
*/
package apw

import (
	"fmt"
	"io"
	"log"
)

const defaultWorkers = 10

// Options control how source images are prepared before encoding.
type Options struct {
	// FitWidth and FitHeight shrink the source to fit, preserving the
	// aspect ratio. Zero means no limit in that direction
	FitWidth, FitHeight int
	// Colors, if non-zero, reduces the source to this many colors
	Colors int
	// Dither applies error diffusion when reducing colors
	Dither bool
	// Workers is the number of directories Scan converts in parallel
	Workers int
}

// key identifies the options affecting the encoded output
func (o Options) key() string {
	return fmt.Sprintf("fit=%dx%d colors=%d dither=%t", o.FitWidth, o.FitHeight, o.Colors, o.Dither)
}

// Converter converts images to APW, remembering previous conversions in an
// optional database.
type Converter struct {
	db     *ImageDB
	logger *log.Logger
	opts   Options
}

// New returns a Converter using the database at file, which is created if
// necessary. An empty file disables the database. A nil logger discards
// everything.
func New(file string, logger *log.Logger, opts Options) (*Converter, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Converter{
		logger: logger,
		opts:   opts,
	}
	if c.opts.Workers <= 0 {
		c.opts.Workers = defaultWorkers
	}

	if file != "" {
		db, err := NewImageDB(file)
		if err != nil {
			return nil, err
		}
		c.db = db
	}

	return c, nil
}

// Close closes the database, if any.
func (c *Converter) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
