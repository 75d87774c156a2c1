package image

import (
	"sort"

	"github.com/bodgit/apw/raster"
)

// Pixels the cost model assumes one uncached instruction covers in a long run
const uncachedBlock = 255 + 31

// runCost returns the bytes needed to encode a run of n pixels without and
// with its color in the palette cache.
func runCost(n int) (uncached, cached int) {
	switch {
	case n <= 2:
		return 3, 1
	case n < 32:
		return 3, 2
	case n < maxShortRun:
		return 4, 2
	default:
		return 4 * ((n + uncachedBlock - 1) / uncachedBlock), 3
	}
}

func runGain(n int) int {
	uncached, cached := runCost(n)
	return uncached - cached
}

// Gain returns the number of bytes saved by having mine in the palette
// cache for every run of it from p to the end of r.
func Gain(r *raster.Raster, p int, mine raster.Color) int {
	gain := 0
	for p < r.Len() {
		if r.Pix[p] != mine {
			p++
			continue
		}
		n := r.RunLength(p)
		gain += runGain(n)
		p += n
	}
	return gain
}

type span struct {
	start, end int
}

type colorRuns struct {
	spans []span
	// suffix[k] is the gain of spans[k:]
	suffix []int
}

// gainIndex answers Gain in logarithmic time from the maximal runs of
// every color.
type gainIndex map[raster.Color]*colorRuns

func newGainIndex(r *raster.Raster) gainIndex {
	g := make(gainIndex)
	for p := 0; p < r.Len(); {
		n := r.RunLength(p)
		c := g[r.Pix[p]]
		if c == nil {
			c = new(colorRuns)
			g[r.Pix[p]] = c
		}
		c.spans = append(c.spans, span{p, p + n})
		p += n
	}

	for _, c := range g {
		c.suffix = make([]int, len(c.spans)+1)
		for k := len(c.spans) - 1; k >= 0; k-- {
			c.suffix[k] = c.suffix[k+1] + runGain(c.spans[k].end-c.spans[k].start)
		}
	}

	return g
}

func (g gainIndex) gain(p int, mine raster.Color) int {
	c, ok := g[mine]
	if !ok {
		return 0
	}
	k := sort.Search(len(c.spans), func(i int) bool {
		return c.spans[i].end > p
	})
	switch {
	case k == len(c.spans):
		return 0
	case c.spans[k].start < p:
		// Only the remainder of a run already partly encoded
		return runGain(c.spans[k].end-p) + c.suffix[k+1]
	default:
		return c.suffix[k]
	}
}
