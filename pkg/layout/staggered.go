package layout

import "github.com/matzehuels/laneview/pkg/lanes"

// StaggeredGrid places items of varying extent into the lane whose trailing
// edge is least advanced. Items implementing [Spanned] may cover several
// lanes.
type StaggeredGrid struct {
	LaneGrid
}

// NewStaggeredGrid returns a staggered grid policy.
func NewStaggeredGrid(cols, rows int) *StaggeredGrid {
	return &StaggeredGrid{LaneGrid: newLaneGrid(cols, rows)}
}

func (*StaggeredGrid) Name() string { return "staggered" }

func (*StaggeredGrid) SpanFor(env *Env, position int, v View) (int, error) {
	if v == nil {
		entry := env.Entries.Get(position)
		if entry == nil {
			return 0, missingEntry(position)
		}
		return max(1, entry.Span), nil
	}
	if s, ok := v.(Spanned); ok {
		return clampSpan(s.Span(), env.Lanes.Count()), nil
	}
	return 1, nil
}

func (*StaggeredGrid) LaneFor(env *Env, position, span int, dir lanes.Direction) (lanes.Info, error) {
	return cachedLane(env, position, span, dir)
}

// RelayoutTo replays every item before position. Items with a cached size
// are replayed without being materialized.
func (g *StaggeredGrid) RelayoutTo(env *Env, position, offset int) error {
	return replay(env, position, offset, func(i int) (replayItem, error) {
		if entry := env.Entries.Get(i); entry != nil && entry.HasSize() {
			span := max(1, entry.Span)
			info, err := cachedLane(env, i, span, lanes.End)
			if err != nil {
				return replayItem{}, err
			}
			size := lanes.Size{Width: entry.Width, Height: entry.Height}
			return replayItem{info: info, span: span, size: size, entry: env.Entries.Get(i)}, nil
		}

		v, err := env.ViewFor(i)
		if err != nil {
			return replayItem{}, err
		}
		span, err := g.SpanFor(env, i, v)
		if err != nil {
			return replayItem{}, err
		}
		info, err := cachedLane(env, i, span, lanes.End)
		if err != nil {
			return replayItem{}, err
		}
		size := env.Measure(i, v, span)
		entry := env.Entries.Get(i)
		entry.Width, entry.Height = size.Width, size.Height
		return replayItem{info: info, span: span, size: size, entry: entry}, nil
	})
}
