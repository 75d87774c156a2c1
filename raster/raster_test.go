package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"black", 0x00, 0x00, 0x00, 0x0000},
		{"white", 0xff, 0xff, 0xff, 0xffff},
		{"red", 0xff, 0x00, 0x00, 0xf800},
		{"green", 0x00, 0xff, 0x00, 0x07e0},
		{"blue", 0x00, 0x00, 0xff, 0x001f},
		{"truncated", 0x07, 0x03, 0x07, 0x0000},
		{"mixed", 0x12, 0x34, 0x56, 0x11aa},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pack(tt.r, tt.g, tt.b))
		})
	}
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := Color(0xffff).RGBA()
	assert.Equal(t, []uint32{0xf8f8, 0xfcfc, 0xf8f8, 0xffff}, []uint32{r, g, b, a})

	r8, g8, b8 := Color(0x11aa).RGB()
	assert.Equal(t, Color(0x11aa), Pack(r8, g8, b8))
}

func TestModel(t *testing.T) {
	assert.Equal(t, Color(0xf800), Model.Convert(color.RGBA{0xff, 0x00, 0x00, 0xff}))
	// Alpha is ignored for non-premultiplied colors
	assert.Equal(t, Color(0x001f), Model.Convert(color.NRGBA{0x00, 0x00, 0xff, 0x10}))
	assert.Equal(t, Color(0x1234), Model.Convert(Color(0x1234)))
}

func TestNew(t *testing.T) {
	r, err := New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Len())
	assert.Equal(t, image.Rect(0, 0, 3, 2), r.Bounds())

	_, err = New(MaxDimension+1, 1)
	assert.Equal(t, ErrTooLarge, err)
}

func TestRunLength(t *testing.T) {
	r := &Raster{Width: 7, Height: 1, Pix: []Color{1, 1, 1, 2, 3, 3, 3}}

	tests := []struct {
		p, want int
	}{
		{0, 3},
		{1, 2},
		{2, 1},
		{3, 1},
		{4, 3},
		{6, 1},
		{7, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.RunLength(tt.p), "position %d", tt.p)
	}
}

func TestFromImage(t *testing.T) {
	m := image.NewRGBA(image.Rect(10, 10, 12, 11))
	m.Set(10, 10, color.RGBA{0xff, 0xff, 0xff, 0xff})
	m.Set(11, 10, color.RGBA{0x00, 0x00, 0xff, 0xff})

	r, err := FromImage(m)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Width)
	assert.Equal(t, 1, r.Height)
	assert.Equal(t, []Color{0xffff, 0x001f}, r.Pix)
	assert.Equal(t, Color(0x001f), r.At(1, 0))
	assert.Equal(t, Color(0), r.At(5, 5))

	_, err = FromImage(image.NewAlpha(image.Rect(0, 0, 1, 1)))
	assert.Equal(t, ErrUnsupportedColorModel, err)
}

func TestFromImageCopiesRaster(t *testing.T) {
	src := &Raster{Width: 2, Height: 1, Pix: []Color{1, 2}}
	r, err := FromImage(src)
	require.NoError(t, err)
	r.Pix[0] = 9
	assert.Equal(t, Color(1), src.Pix[0])
}
