package layout

import (
	"math"

	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/placement"
)

// Window summarizes the laid out items.
type Window struct {
	First int `json:"first"`
	Last  int `json:"last"`
	Count int `json:"count"`
	// Start and End are the leading and trailing edges of the union of the
	// laid out frames.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Window returns the current window. First and Last are [NoPosition] when
// nothing is laid out.
func (e *Engine) Window() Window {
	first, last, ok := e.visibleRange()
	if !ok {
		return Window{First: NoPosition, Last: NoPosition}
	}
	count := 0
	for _, c := range e.children {
		if !c.removed {
			count++
		}
	}
	return Window{First: first, Last: last, Count: count, Start: e.layoutStart, End: e.layoutEnd}
}

// FirstVisiblePosition returns the lowest laid out position or [NoPosition].
func (e *Engine) FirstVisiblePosition() int {
	first, _, ok := e.visibleRange()
	if !ok {
		return NoPosition
	}
	return first
}

// LastVisiblePosition returns the highest laid out position or [NoPosition].
func (e *Engine) LastVisiblePosition() int {
	_, last, ok := e.visibleRange()
	if !ok {
		return NoPosition
	}
	return last
}

// Placements returns the laid out items in window order.
func (e *Engine) Placements() []Placement {
	out := make([]Placement, 0, len(e.children))
	for _, c := range e.children {
		if c.removed {
			continue
		}
		out = append(out, Placement{Position: c.position, Frame: c.frame, Lane: c.info.Start, Span: c.span})
	}
	return out
}

// Lanes returns a copy of the lane rectangles, or nil before the first
// layout.
func (e *Engine) Lanes() []lanes.Rect {
	if e.lanes == nil {
		return nil
	}
	return e.lanes.Rects()
}

// LaneCount returns the number of lanes in use, or 0 before the first
// layout.
func (e *Engine) LaneCount() int {
	if e.lanes == nil {
		return 0
	}
	return e.lanes.Count()
}

// Entry returns a copy of the cached placement for position.
func (e *Engine) Entry(position int) (placement.Entry, bool) {
	entry := e.entries.Get(position)
	if entry == nil {
		return placement.Entry{}, false
	}
	return *entry.Clone(), true
}

// ScrollMetrics estimates a scrollbar from the laid out items.
type ScrollMetrics struct {
	Offset int `json:"offset"`
	Extent int `json:"extent"`
	Range  int `json:"range"`
}

// ScrollMetrics estimates the scroll offset, visible extent and total range
// from the average extent of the partially visible items.
func (e *Engine) ScrollMetrics() ScrollMetrics {
	vp := e.host.Viewport()
	itemCount := e.host.ItemCount()
	o := e.opts.Orientation
	if len(e.children) == 0 || itemCount == 0 {
		return ScrollMetrics{}
	}
	first, last := e.visibleChild(vp, false), e.visibleChild(vp, true)
	if first == nil || last == nil {
		return ScrollMetrics{}
	}

	laidOut := abs(last.frame.End(o) - first.frame.Start(o))
	itemRange := abs(first.position-last.position) + 1
	avg := float64(laidOut) / float64(itemRange)
	itemsBefore := max(0, min(first.position, last.position))

	return ScrollMetrics{
		Offset: int(math.Round(float64(itemsBefore)*avg + float64(vp.StartWithPadding(o)-first.frame.Start(o)))),
		Extent: min(vp.TotalSpace(o), laidOut),
		Range:  int(avg * float64(itemCount)),
	}
}

// visibleChild returns the item closest to the start (or end) that is at
// least partially inside the viewport.
func (e *Engine) visibleChild(vp lanes.Viewport, fromEnd bool) *child {
	o := e.opts.Orientation
	start, end := vp.StartWithPadding(o), vp.EndWithPadding(o)
	n := len(e.children)
	for i := range n {
		c := e.children[i]
		if fromEnd {
			c = e.children[n-1-i]
		}
		if c.removed {
			continue
		}
		if c.frame.Start(o) < end && c.frame.End(o) > start {
			return c
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
