package layout

import (
	"slices"

	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/observability"
)

// ScrollBy moves the content by delta along the scroll axis and returns the
// distance actually moved. A delta is limited to just under one viewport per
// call and stops at either end of the data set.
//
// A pending layout runs first. If filling fails midway the engine asks for a
// new layout and ScrollBy returns 0 and the error.
func (e *Engine) ScrollBy(delta int) (int, error) {
	if e.LayoutRequested() {
		if err := e.Layout(); err != nil {
			return 0, err
		}
	}
	e.sync()
	e.shifted = 0
	if err := e.scrollBy(delta); err != nil {
		e.requested = true
		e.logger.Debug("scroll failed", "delta", delta, "err", err)
		return 0, err
	}
	applied := -e.shifted
	observability.Layout().OnScroll(delta, applied)
	return applied, nil
}

func (e *Engine) scrollBy(delta int) error {
	if len(e.children) == 0 || delta == 0 {
		return nil
	}
	o := e.opts.Orientation
	start, end := e.vp.StartWithPadding(o), e.vp.EndWithPadding(o)
	total := e.vp.TotalSpace(o)
	if total <= 1 {
		return nil
	}
	delta = max(-(total - 1), min(total-1, delta))

	first := e.children[0].position
	cannotScrollBackward := first == 0 && e.layoutStart >= start && delta <= 0
	cannotScrollForward := first+len(e.children) == e.itemCount && e.layoutEnd <= end && delta >= 0
	if cannotScrollBackward || cannotScrollForward {
		e.logger.Debug("scroll clamped at boundary", "delta", delta, "first", first, "children", len(e.children))
		return nil
	}

	e.offsetChildren(-delta)

	dir := lanes.End
	if delta < 0 {
		dir = lanes.Start
	}
	e.recycleOutOfBounds(dir)

	abs := max(delta, -delta)
	if e.canAddMoreViews(lanes.Start, start-abs) || e.canAddMoreViews(lanes.End, end+abs) {
		return e.fillGap(dir)
	}
	return nil
}

// fillGap extends the window toward dir after a scroll opened space.
func (e *Engine) fillGap(dir lanes.Direction) error {
	n := len(e.children)
	if n == 0 {
		e.resetEdges()
		e.requested = true
		return nil
	}
	extra := e.extraSpace()
	first := e.children[0].position
	if dir == lanes.End {
		if err := e.fillAfter(first+n, extra); err != nil {
			return err
		}
		return e.correctTooHigh(n)
	}
	if err := e.fillBefore(first-1, extra); err != nil {
		return err
	}
	return e.correctTooLow(n)
}

// recycleOutOfBounds gives back the items that scrolled out of the viewport.
// Scrolling toward End drops items from the start of the window, toward
// Start from its end.
func (e *Engine) recycleOutOfBounds(dir lanes.Direction) {
	o := e.opts.Orientation
	n := 0
	if dir == lanes.End {
		start := e.vp.StartWithPadding(o)
		for n < len(e.children) && e.children[n].frame.End(o) < start {
			e.detach(e.children[n], dir)
			n++
		}
		for range n {
			c := e.children[0]
			e.children = slices.Delete(e.children, 0, 1)
			e.recycleView(c.view, c.position)
			e.updateEdgesFromRemovedChild(c, dir)
		}
		return
	}

	end := e.vp.EndWithPadding(o)
	for n < len(e.children) && e.children[len(e.children)-1-n].frame.Start(o) > end {
		e.detach(e.children[len(e.children)-1-n], dir)
		n++
	}
	for range n {
		last := len(e.children) - 1
		c := e.children[last]
		e.children = e.children[:last]
		e.recycleView(c.view, c.position)
		e.updateEdgesFromRemovedChild(c, dir)
	}
}
