package display

import "github.com/bodgit/apw/raster"

// ChunkSize is the number of pixels forwarded to a Sink at once
const ChunkSize = 64

// Relay expands runs of pixels and forwards them to a Sink in chunks of
// ChunkSize pixels.
type Relay struct {
	sink   Sink
	buf    [ChunkSize]raster.Color
	n      int
	pushed int
}

// NewRelay returns a Relay writing to s.
func NewRelay(s Sink) *Relay {
	return &Relay{sink: s}
}

// Write queues run copies of c, pushing each chunk as it fills.
func (r *Relay) Write(c raster.Color, run int) error {
	for ; run > 0; run-- {
		r.buf[r.n] = c
		r.n++
		if r.n == ChunkSize {
			if err := r.push(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush pushes any partial chunk.
func (r *Relay) Flush() error {
	if r.n == 0 {
		return nil
	}
	return r.push()
}

// Chunks returns the number of chunks pushed so far.
func (r *Relay) Chunks() int {
	return r.pushed
}

func (r *Relay) push() error {
	err := r.sink.PushPixels(r.buf[:r.n], r.pushed == 0)
	r.n = 0
	r.pushed++
	return err
}
