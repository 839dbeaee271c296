package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/laneview/pkg/lanes"
)

// LayoutScrap positions scrap views around the window, nearest position
// first, and returns where they went. Items being removed are positioned
// without taking lane space. The lanes and cached placements are left
// untouched, so the pass can be repeated for every animation frame.
func (e *Engine) LayoutScrap(scrap []Scrap) []Placement {
	if len(e.children) == 0 || e.lanes == nil || len(scrap) == 0 {
		return nil
	}
	e.sync()

	entries := e.entries.Clone()
	e.lanes.Save()
	defer func() {
		e.lanes.Restore()
		e.entries = entries
	}()

	first, last, _ := e.visibleRange()
	remaining := slices.Clone(scrap)
	var out []Placement
	out = e.fillFromScrap(&remaining, lanes.Start, first-1, out)
	out = e.fillFromScrap(&remaining, lanes.End, last+1, out)
	return out
}

func (e *Engine) fillFromScrap(remaining *[]Scrap, dir lanes.Direction, position int, out []Placement) []Placement {
	step := 1
	if dir == lanes.Start {
		step = -1
	}
	for ; ; position += step {
		i := nextScrap(*remaining, dir, position)
		if i < 0 {
			return out
		}
		s := (*remaining)[i]
		*remaining = slices.Delete(*remaining, i, i+1)

		c := &child{view: s.View, position: s.Position}
		if err := e.setupChild(c, dir, !s.Removed); err != nil {
			e.logger.Debug("scrap layout stopped", "position", s.Position, "err", err)
			return out
		}
		out = append(out, Placement{Position: c.position, Frame: c.frame, Lane: c.info.Start, Span: c.span})
	}
}

// nextScrap returns the index of the scrap closest to position on the dir
// side of it, or -1.
func nextScrap(scrap []Scrap, dir lanes.Direction, position int) int {
	best, bestDistance := -1, math.MaxInt
	for i, s := range scrap {
		d := s.Position - position
		if (dir == lanes.End && d < 0) || (dir == lanes.Start && d > 0) {
			continue
		}
		if ad := abs(d); ad < bestDistance {
			best, bestDistance = i, ad
			if d == 0 {
				break
			}
		}
	}
	return best
}
