package apw

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/bodgit/apw/display"
	apwimage "github.com/bodgit/apw/image"
	"github.com/bodgit/apw/raster"
	"github.com/disintegration/gift"
)

// fit shrinks m to fit within the configured size
func (c *Converter) fit(m image.Image) image.Image {
	w, h := c.opts.FitWidth, c.opts.FitHeight
	if w <= 0 && h <= 0 {
		return m
	}
	if w <= 0 {
		w = raster.MaxDimension
	}
	if h <= 0 {
		h = raster.MaxDimension
	}

	b := m.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return m
	}

	g := gift.New(gift.ResizeToFit(w, h, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, m)

	return dst
}

func (c *Converter) logStats(name string, s *apwimage.Stats) {
	for k := apwimage.Immediate; k <= apwimage.MultipleLiteral; k++ {
		c.logger.Printf("%s: %-16s %6d (%d -> %d)\n", name, k, s[k].Codes, s[k].Pixels*2, s[k].Bytes)
	}
	t := s.Total()
	c.logger.Printf("%s: %-16s %6d (%d -> %d)\n", name, "total", t.Codes, t.Pixels*2, t.Bytes)
}

func (c *Converter) encode(name string, m image.Image) ([]byte, error) {
	r, err := raster.FromImage(apwimage.Reduce(c.fit(m), &apwimage.Options{
		Colors: c.opts.Colors,
		Dither: c.opts.Dither,
	}))
	if err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	s, err := apwimage.EncodeRaster(b, r)
	if err != nil {
		return nil, err
	}
	c.logStats(name, s)

	return b.Bytes(), nil
}

func (c *Converter) convert(name string, r io.Reader) ([]byte, error) {
	h := sha1.New()
	m, format, err := image.Decode(io.TeeReader(r, h))
	if err != nil {
		return nil, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	if c.db != nil {
		b, err := c.db.Find(sha, c.opts.key())
		if err != nil {
			return nil, err
		}
		if b != nil {
			c.logger.Printf("Using cached conversion of \"%s\"\n", name)
			return b, nil
		}
	}

	c.logger.Printf("Converting \"%s\" (%s, %dx%d)\n", name, format, m.Bounds().Dx(), m.Bounds().Dy())

	b, err := c.encode(name, m)
	if err != nil {
		return nil, err
	}

	if c.db != nil {
		cfg, err := apwimage.DecodeConfig(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		if _, err := c.db.Add(sha, c.opts.key(), cfg.Width, cfg.Height, b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Convert decodes an image in any registered format from r and returns it
// encoded as APW.
func (c *Converter) Convert(r io.Reader) ([]byte, error) {
	return c.convert("image", r)
}

func (c *Converter) convertFile(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.convert(file, f)
}

// ConvertFile converts the image in file and writes it to out. Nothing is
// written if the conversion fails.
func (c *Converter) ConvertFile(file, out string) error {
	b, err := c.convertFile(file)
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

// Render draws the APW image in file onto a width by height display with
// its top-left corner at x, y and writes the display contents to out as a
// PNG image.
func (c *Converter) Render(file, out string, width, height, x, y int) error {
	fb := display.NewFramebuffer(width, height)
	if err := apwimage.DrawFile(file, fb, x, y); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, fb); err != nil {
		return err
	}

	return f.Close()
}
