package layout

import (
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/placement"
)

// SpannableGrid places items in cells of a grid where each item may cover
// several columns and rows. Cell sizes follow the lane sizes, so the cell
// extent along the scroll axis comes from the aspect ratio.
type SpannableGrid struct {
	LaneGrid
}

// NewSpannableGrid returns a spannable grid policy.
func NewSpannableGrid(cols, rows int) *SpannableGrid {
	return &SpannableGrid{LaneGrid: newLaneGrid(cols, rows)}
}

func (*SpannableGrid) Name() string { return "spannable" }

// SpanFor records the item's column and row spans and returns the span along
// the lanes: columns when scrolling vertically, rows otherwise.
func (s *SpannableGrid) SpanFor(env *Env, position int, v View) (int, error) {
	entry := env.Entries.Get(position)
	if v == nil {
		if entry == nil || entry.ColSpan == 0 {
			return 0, missingEntry(position)
		}
		return s.laneSpan(env, entry), nil
	}

	cols, rows := 1, 1
	if gs, ok := v.(GridSpanned); ok {
		cols, rows = gs.GridSpan()
	}
	count := env.Lanes.Count()
	if env.Orientation == lanes.Vertical {
		cols, rows = clampSpan(cols, count), max(1, rows)
	} else {
		cols, rows = max(1, cols), clampSpan(rows, count)
	}
	if entry == nil {
		entry = placement.NewEntry(lanes.Undefined)
		env.Entries.Put(position, entry)
	}
	entry.ColSpan, entry.RowSpan = cols, rows
	return s.laneSpan(env, entry), nil
}

func (*SpannableGrid) laneSpan(env *Env, entry *placement.Entry) int {
	if env.Orientation == lanes.Vertical {
		return entry.ColSpan
	}
	return entry.RowSpan
}

func (*SpannableGrid) LaneFor(env *Env, position, span int, dir lanes.Direction) (lanes.Info, error) {
	return cachedLane(env, position, span, dir)
}

// Constraints sizes an item to exactly its cells.
func (*SpannableGrid) Constraints(env *Env, position, span int) (int, int) {
	entry := env.Entries.Get(position)
	cols, rows := span, 1
	if env.Orientation == lanes.Horizontal {
		cols, rows = 1, span
	}
	if entry != nil && entry.ColSpan > 0 {
		cols, rows = entry.ColSpan, entry.RowSpan
	}
	return env.Lanes.LaneSizeH() * cols, env.Lanes.LaneSizeV() * rows
}

// RelayoutTo replays every item before position. Items already in the cache
// are not materialized since their cells fix their size.
func (s *SpannableGrid) RelayoutTo(env *Env, position, offset int) error {
	return replay(env, position, offset, func(i int) (replayItem, error) {
		entry := env.Entries.Get(i)
		var span int
		if entry != nil && entry.ColSpan > 0 {
			span = s.laneSpan(env, entry)
		} else {
			v, err := env.ViewFor(i)
			if err != nil {
				return replayItem{}, err
			}
			if span, err = s.SpanFor(env, i, v); err != nil {
				return replayItem{}, err
			}
		}
		info, err := cachedLane(env, i, span, lanes.End)
		if err != nil {
			return replayItem{}, err
		}
		entry = env.Entries.Get(i)
		size := lanes.Size{
			Width:  env.Lanes.LaneSizeH() * entry.ColSpan,
			Height: env.Lanes.LaneSizeV() * entry.RowSpan,
		}
		return replayItem{info: info, span: span, size: size, entry: entry}, nil
	})
}

func clampSpan(span, count int) int {
	return min(max(1, span), max(1, count))
}
