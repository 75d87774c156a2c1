package display

import (
	"errors"
	"image"
	"testing"

	"github.com/bodgit/apw/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunk struct {
	pixels []raster.Color
	first  bool
}

type recorder struct {
	chunks []chunk
	err    error
}

func (r *recorder) Size() (int, int) { return 320, 240 }

func (r *recorder) SetWindow(x0, y0, x1, y1 int) error { return nil }

func (r *recorder) PushPixels(pixels []raster.Color, first bool) error {
	dup := make([]raster.Color, len(pixels))
	copy(dup, pixels)
	r.chunks = append(r.chunks, chunk{dup, first})
	return r.err
}

func TestRelay(t *testing.T) {
	tests := []struct {
		name   string
		runs   []int
		chunks []int
	}{
		{"empty", nil, nil},
		{"partial", []int{3}, []int{3}},
		{"exact", []int{ChunkSize}, []int{ChunkSize}},
		{"split", []int{60, 10}, []int{ChunkSize, 6}},
		{"long", []int{3*ChunkSize + 1}, []int{ChunkSize, ChunkSize, ChunkSize, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(recorder)
			r := NewRelay(s)

			var want []raster.Color
			for i, run := range tt.runs {
				require.NoError(t, r.Write(raster.Color(i+1), run))
				for j := 0; j < run; j++ {
					want = append(want, raster.Color(i+1))
				}
			}
			require.NoError(t, r.Flush())

			var got []raster.Color
			var sizes []int
			for i, c := range s.chunks {
				assert.Equal(t, i == 0, c.first, "chunk %d", i)
				sizes = append(sizes, len(c.pixels))
				got = append(got, c.pixels...)
			}
			assert.Equal(t, tt.chunks, sizes)
			assert.Equal(t, want, got)
			assert.Equal(t, len(tt.chunks), r.Chunks())
		})
	}
}

func TestRelayError(t *testing.T) {
	errSink := errors.New("sink failed")
	s := &recorder{err: errSink}
	r := NewRelay(s)
	assert.Equal(t, errSink, r.Write(0x1234, ChunkSize))
}

func TestFramebufferWindow(t *testing.T) {
	f := NewFramebuffer(4, 3)
	w, h := f.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)

	assert.Equal(t, ErrBadWindow, f.SetWindow(2, 0, 1, 0))
	assert.Equal(t, ErrBadWindow, f.SetWindow(0, 0, 4, 2))

	require.NoError(t, f.SetWindow(1, 1, 2, 2))
	assert.Equal(t, image.Rect(1, 1, 3, 3), f.Window())

	require.NoError(t, f.PushPixels([]raster.Color{1, 2, 3}, true))
	require.NoError(t, f.PushPixels([]raster.Color{4, 5}, false))

	// The fifth pixel wraps back to the window origin
	want := []raster.Color{
		0, 0, 0, 0,
		0, 5, 2, 0,
		0, 3, 4, 0,
	}
	assert.Equal(t, want, f.pix)
	assert.Equal(t, raster.Color(5), f.At(1, 1))
	assert.Equal(t, raster.Color(0), f.At(9, 9))

	// A new image restarts at the origin
	require.NoError(t, f.PushPixels([]raster.Color{7}, true))
	assert.Equal(t, raster.Color(7), f.At(1, 1))
}
