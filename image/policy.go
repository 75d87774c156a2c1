package image

import (
	"github.com/bodgit/apw/palette"
	"github.com/bodgit/apw/raster"
)

type planner struct {
	r     *raster.Raster
	pos   int
	cache palette.Cache
	gains gainIndex
}

func newPlanner(r *raster.Raster) *planner {
	return &planner{
		r:     r,
		cache: palette.New(),
		gains: newGainIndex(r),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func cachedRun(slot int, c raster.Color, n int) Instruction {
	i := Instruction{Slot: slot, Run: n, Color: c}
	switch {
	case n == 1:
		i.Kind = Immediate
	case n == 2:
		i.Kind = Pair
	case n <= maxShortRun:
		i.Kind = ShortRun
	default:
		i.Kind = LongRun
		i.Run = minInt(n, maxLongRun)
	}
	return i
}

func literalRun(c raster.Color, n int) Instruction {
	if n <= maxLiteralRun {
		return Instruction{Kind: Literal, Run: n, Color: c}
	}
	return Instruction{Kind: MultipleLiteral, Run: minInt(n, maxMultipleLiteral), Color: c}
}

// evict returns the slot a new color with gain g0 should replace, or -1 if
// every occupant is worth more than that.
func (p *planner) evict(g0 int) int {
	best := -1
	for i, c := range p.cache {
		// Anything matching slot 0 is treated as unused, take it
		// straight away
		if i > 0 && c == p.cache[0] {
			return i
		}
		if g := p.gains.gain(p.pos, c); g < g0 {
			g0, best = g, i
		}
	}
	return best
}

func (p *planner) next() Instruction {
	c := p.r.Pix[p.pos]
	n := p.r.RunLength(p.pos)

	var i Instruction
	if slot, ok := p.cache.Index(c); ok {
		i = cachedRun(slot, c, n)
	} else if g0 := p.gains.gain(p.pos, c); g0 <= 0 {
		i = Instruction{Kind: Literal, Run: minInt(n, maxLiteralRun), Color: c}
	} else if slot := p.evict(g0); slot >= 0 {
		p.cache[slot] = c
		i = Instruction{Kind: StoreEntry, Slot: slot, Run: minInt(n, maxStoreRun), Color: c}
	} else {
		i = literalRun(c, n)
	}

	// Anything beyond the run limit of the chosen kind is picked up by
	// the next instruction
	p.pos += i.Run

	return i
}

// Plan chooses the instructions that encode r. fn is called for each one
// in stream order along with the palette cache as it stands once the
// instruction has been applied. The end of stream is not passed to fn.
func Plan(r *raster.Raster, fn func(Instruction, *palette.Cache) error) error {
	if len(r.Pix) != r.Width*r.Height {
		return errBadRaster
	}
	p := newPlanner(r)
	for p.pos < r.Len() {
		if err := fn(p.next(), &p.cache); err != nil {
			return err
		}
	}
	return nil
}
