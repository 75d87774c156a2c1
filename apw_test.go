package apw

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apwimage "github.com/bodgit/apw/image"
	"github.com/bodgit/apw/metadata"
	"github.com/bodgit/apw/raster"
	goerrors "github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Bands of color so runs are worth caching
			m.Set(x, y, color.RGBA{uint8(x / 4 * 40), uint8(y / 3 * 30), 0x80, 0xff})
		}
	}
	return m
}

func writePNG(t *testing.T, file string, m image.Image) {
	t.Helper()
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func decodeFile(t *testing.T, file string) *raster.Raster {
	t.Helper()
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	m, err := apwimage.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return m.(*raster.Raster)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.apw")

	src := testImage(40, 30)
	writePNG(t, in, src)

	logs := new(bytes.Buffer)
	c, err := New(filepath.Join(t.TempDir(), "apw.db"), log.New(logs, "", 0), Options{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.ConvertFile(in, out))

	want, err := raster.FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, want, decodeFile(t, out))

	n, err := c.db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, logs.String(), "Using cached conversion")

	// Second time round comes from the database
	require.NoError(t, os.Remove(out))
	require.NoError(t, c.ConvertFile(in, out))
	assert.Equal(t, want, decodeFile(t, out))
	assert.Contains(t, logs.String(), "Using cached conversion")
}

func TestConvertOptions(t *testing.T) {
	c, err := New("", nil, Options{FitWidth: 20, Colors: 4})
	require.NoError(t, err)
	defer c.Close()

	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, testImage(40, 30)))

	out, err := c.Convert(b)
	require.NoError(t, err)

	m, err := apwimage.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 15), m.Bounds())

	colors := make(map[raster.Color]struct{})
	for _, p := range m.(*raster.Raster).Pix {
		colors[p] = struct{}{}
	}
	assert.LessOrEqual(t, len(colors), 4)
}

func TestConvertErrors(t *testing.T) {
	c, err := New("", nil, Options{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Convert(strings.NewReader("not an image"))
	assert.Equal(t, image.ErrFormat, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.apw")
	assert.Error(t, c.ConvertFile(filepath.Join(dir, "missing.png"), out))
	assert.NoFileExists(t, out)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.apw")
	out := filepath.Join(dir, "out.png")

	r := &raster.Raster{Width: 2, Height: 2, Pix: []raster.Color{0xf800, 0x07e0, 0x001f, 0xffff}}
	b := new(bytes.Buffer)
	_, err := apwimage.EncodeRaster(b, r)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in, b.Bytes(), 0644))

	c, err := New("", nil, Options{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Render(in, out, 8, 6, 3, 4))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), m.Bounds())

	for i, p := range r.Pix {
		want := color.RGBAModel.Convert(p)
		assert.Equal(t, want, color.RGBAModel.Convert(m.At(3+i%2, 4+i/2)), "pixel %d", i)
	}
	assert.Equal(t, color.RGBAModel.Convert(raster.Color(0)), color.RGBAModel.Convert(m.At(0, 0)))

	bad := filepath.Join(dir, "bad.png")
	assert.Equal(t, apwimage.ErrOriginOutOfBounds, c.Render(in, bad, 8, 6, 8, 0))
	assert.NoFileExists(t, bad)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	hidden := filepath.Join(root, ".hidden")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.Mkdir(hidden, 0755))

	writePNG(t, filepath.Join(sub, "a.png"), testImage(16, 12))
	writePNG(t, filepath.Join(sub, "b.PNG"), testImage(8, 8))
	writePNG(t, filepath.Join(hidden, "c.png"), testImage(8, 8))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("ignored"), 0644))

	c, err := New(filepath.Join(t.TempDir(), "apw.db"), nil, Options{Workers: 2})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Scan(root))

	assert.FileExists(t, filepath.Join(sub, "a.apw"))
	assert.FileExists(t, filepath.Join(sub, "b.apw"))
	assert.NoFileExists(t, filepath.Join(hidden, "c.apw"))
	assert.NoFileExists(t, filepath.Join(root, metadata.Filename))

	b, err := os.ReadFile(filepath.Join(sub, metadata.Filename))
	require.NoError(t, err)

	db := metadata.New()
	require.NoError(t, db.UnmarshalBinary(b))
	assert.Equal(t, 2, db.Length())

	a, err := os.ReadFile(filepath.Join(sub, "a.apw"))
	require.NoError(t, err)
	got, ok := db.Get(metadata.CRCFilename("a"))
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

func TestScanError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not a png"), 0644))

	c, err := New("", nil, Options{})
	require.NoError(t, err)
	defer c.Close()

	err = c.Scan(root)
	require.Error(t, err)

	var goErr *goerrors.Error
	assert.True(t, errors.As(err, &goErr))
	assert.True(t, strings.HasPrefix(err.Error(), root))
}

func TestImageDB(t *testing.T) {
	db, err := NewImageDB(filepath.Join(t.TempDir(), "apw.db"))
	require.NoError(t, err)
	defer db.Close()

	b, err := db.Find("ABCD", "x")
	require.NoError(t, err)
	assert.Nil(t, b)

	apw := []byte{'C', 'B', 'L', 'S', 0x01, 0x00, 0x01, 0x00, 0x14, 0x20, 0x00}
	_, err = db.Add("ABCD", "x", 1, 1, apw)
	require.NoError(t, err)

	b, err = db.Find("ABCD", "x")
	require.NoError(t, err)
	assert.Equal(t, apw, b)

	b, err = db.Find("ABCD", "y")
	require.NoError(t, err)
	assert.Nil(t, b)

	// Replaced rather than duplicated
	_, err = db.Add("ABCD", "x", 1, 1, apw)
	require.NoError(t, err)
	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
