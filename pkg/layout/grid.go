package layout

import "github.com/matzehuels/laneview/pkg/lanes"

// LaneGrid is the column and row count of a grid policy. Columns are the
// lanes when scrolling vertically and Rows when scrolling horizontally.
type LaneGrid struct {
	Columns int
	Rows    int
}

func newLaneGrid(cols, rows int) LaneGrid {
	return LaneGrid{Columns: max(1, cols), Rows: max(1, rows)}
}

func (g *LaneGrid) LaneCount(o lanes.Orientation) int {
	if o == lanes.Vertical {
		return max(1, g.Columns)
	}
	return max(1, g.Rows)
}

// SetColumns changes the column count. The engine notices the new lane count
// on its next layout.
func (g *LaneGrid) SetColumns(n int) { g.Columns = max(1, n) }

// SetRows changes the row count.
func (g *LaneGrid) SetRows(n int) { g.Rows = max(1, n) }

// Size returns the column and row counts.
func (g *LaneGrid) Size() (cols, rows int) { return g.Columns, g.Rows }

// Grid places items in uniform cells: item i goes to lane i mod LaneCount.
type Grid struct {
	LaneGrid
}

// NewGrid returns a uniform grid policy. Non-positive counts become 1.
func NewGrid(cols, rows int) *Grid {
	return &Grid{LaneGrid: newLaneGrid(cols, rows)}
}

func (*Grid) Name() string { return "grid" }

func (*Grid) SpanFor(*Env, int, View) (int, error) { return 1, nil }

func (g *Grid) LaneFor(env *Env, position, _ int, _ lanes.Direction) (lanes.Info, error) {
	lane := position % env.Lanes.Count()
	return lanes.Info{Start: lane, Anchor: lane}, nil
}

// RelayoutTo needs no replay: every row starts at the same edge, so only the
// lanes left of the anchor in its row are advanced by the anchor's extent.
func (g *Grid) RelayoutTo(env *Env, position, offset int) error {
	env.Lanes.ResetForOffset(offset)
	lane := position % env.Lanes.Count()
	if lane == 0 {
		return nil
	}
	v, err := env.ViewFor(position)
	if err != nil {
		return err
	}
	extent := env.Measure(position, v, 1).Extent(env.Orientation)
	for i := 0; i < lane; i++ {
		env.Lanes.OffsetLane(i, extent)
	}
	return nil
}
