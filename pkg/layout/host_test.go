package layout

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/lanes"
)

type fakeItem struct {
	extent int
	span   int
	rows   int
}

type fakeView struct {
	position int
	item     fakeItem
	frame    lanes.Rect
	checked  bool
}

func (v *fakeView) Measure(width, height int) lanes.Size {
	switch {
	case width > 0 && height > 0:
		return lanes.Size{Width: width, Height: height}
	case width > 0:
		return lanes.Size{Width: width, Height: v.item.extent}
	default:
		return lanes.Size{Width: v.item.extent, Height: height}
	}
}

func (v *fakeView) Layout(frame lanes.Rect) { v.frame = frame }
func (v *fakeView) Span() int               { return max(1, v.item.span) }
func (v *fakeView) GridSpan() (int, int)    { return max(1, v.item.span), max(1, v.item.rows) }
func (v *fakeView) SetChecked(checked bool) { v.checked = checked }

type fakeHost struct {
	vp     lanes.Viewport
	items  []fakeItem
	pool   []*fakeView
	live   map[*fakeView]bool
	failAt int
}

func newHost(width, height int, items []fakeItem) *fakeHost {
	return &fakeHost{
		vp:     lanes.Viewport{Width: width, Height: height},
		items:  items,
		live:   make(map[*fakeView]bool),
		failAt: NoPosition,
	}
}

func uniform(n, extent int) []fakeItem {
	items := make([]fakeItem, n)
	for i := range items {
		items[i] = fakeItem{extent: extent}
	}
	return items
}

func extents(values ...int) []fakeItem {
	items := make([]fakeItem, len(values))
	for i, v := range values {
		items[i] = fakeItem{extent: v}
	}
	return items
}

func (h *fakeHost) Viewport() lanes.Viewport { return h.vp }
func (h *fakeHost) ItemCount() int           { return len(h.items) }

func (h *fakeHost) ViewFor(position int) View {
	if position == h.failAt {
		return nil
	}
	var v *fakeView
	if n := len(h.pool); n > 0 {
		v, h.pool = h.pool[n-1], h.pool[:n-1]
	} else {
		v = &fakeView{}
	}
	v.position, v.item = position, h.items[position]
	h.live[v] = true
	return v
}

func (h *fakeHost) Recycle(v View) {
	fv := v.(*fakeView)
	delete(h.live, fv)
	h.pool = append(h.pool, fv)
}

func (h *fakeHost) insert(position int, items ...fakeItem) {
	h.items = append(h.items[:position], append(append([]fakeItem(nil), items...), h.items[position:]...)...)
}

func (h *fakeHost) remove(position, count int) {
	h.items = append(h.items[:position], h.items[position+count:]...)
}

func quietOptions(o lanes.Orientation) Options {
	return Options{Orientation: o, Logger: log.New(io.Discard)}
}

func mustLayout(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Layout(); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
}

func mustScroll(t *testing.T, e *Engine, delta int) int {
	t.Helper()
	got, err := e.ScrollBy(delta)
	if err != nil {
		t.Fatalf("ScrollBy(%d) error: %v", delta, err)
	}
	return got
}

// checkWindow verifies that the window is contiguous and that no two items
// overlap.
func checkWindow(t *testing.T, e *Engine) {
	t.Helper()
	ps := e.Placements()
	for i := 1; i < len(ps); i++ {
		if ps[i].Position != ps[i-1].Position+1 {
			t.Errorf("window not contiguous: %d follows %d", ps[i].Position, ps[i-1].Position)
		}
	}
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if ps[i].Frame.Intersects(ps[j].Frame) {
				t.Errorf("items %d %v and %d %v overlap", ps[i].Position, ps[i].Frame, ps[j].Position, ps[j].Frame)
			}
		}
	}
}

// checkCovered verifies that the lanes reach both viewport edges unless the
// window touches the matching end of the data set.
func checkCovered(t *testing.T, e *Engine, h *fakeHost) {
	t.Helper()
	w := e.Window()
	o := e.Orientation()
	if w.First > 0 && e.lanes.InnerStart() > h.vp.StartWithPadding(o) {
		t.Errorf("blank space at start: InnerStart() = %d, window %+v", e.lanes.InnerStart(), w)
	}
	if w.Last < len(h.items)-1 && e.lanes.InnerEnd() < h.vp.EndWithPadding(o) {
		t.Errorf("blank space at end: InnerEnd() = %d, window %+v", e.lanes.InnerEnd(), w)
	}
}

func positions(ps []Placement) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Position
	}
	return out
}
