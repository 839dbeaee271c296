package layout

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/observability"
	"github.com/matzehuels/laneview/pkg/placement"
)

// NoPosition marks the absence of an item position.
const NoPosition = -1

// Options configures an [Engine].
type Options struct {
	// Orientation is the scroll axis. The zero value scrolls vertically.
	Orientation lanes.Orientation

	// AspectRatio is the cell width divided by its height. It sizes cells of
	// the spannable grid along the scroll axis. Zero means 1.
	AspectRatio float64

	// Predictive runs a scrap pass after every layout when the host
	// implements [ScrapSource].
	Predictive bool

	// Logger receives debug records for layout passes, boundary clamps and
	// discarded anchors. Nil means log.Default().
	Logger *log.Logger
}

// child is a materialized item in the window.
type child struct {
	view     View
	position int
	frame    lanes.Rect
	info     lanes.Info
	span     int

	// removed is set when the item left the data set; stale when its
	// content changed and its view must be rebound.
	removed bool
	stale   bool
}

// anchor is the item a layout pass is built around and where its leading
// edge goes.
type anchor struct {
	position int
	offset   int
	restored bool
}

// restoreState is a validated snapshot waiting for the next layout.
type restoreState struct {
	snapshot Snapshot
	lanes    *lanes.Tracker
	entries  *placement.Cache
}

// pass holds the views a layout pass may reuse or must give back.
type pass struct {
	pool  map[int]View
	fresh []View
}

// checkpoint is the window as it was before a layout pass.
type checkpoint struct {
	children    []*child
	lanes       *lanes.Tracker
	entries     *placement.Cache
	layoutStart int
	layoutEnd   int
}

// Engine lays items out into lanes and keeps the laid out window in sync
// with scrolling and data set changes.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	host   Host
	policy Policy
	opts   Options
	logger *log.Logger

	lanes   *lanes.Tracker
	entries *placement.Cache

	children    []*child
	layoutStart int
	layoutEnd   int

	pending   *anchor
	restore   *restoreState
	target    int
	requested bool

	// Host state read once per operation.
	vp        lanes.Viewport
	itemCount int

	pass    *pass
	shifted int
}

// New creates an engine laying out host's items with policy.
func New(host Host, policy Policy, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		host:      host,
		policy:    policy,
		opts:      opts,
		logger:    logger,
		entries:   placement.New(),
		target:    NoPosition,
		requested: true,
	}
}

// Orientation returns the scroll axis.
func (e *Engine) Orientation() lanes.Orientation { return e.opts.Orientation }

// Policy returns the active layout policy.
func (e *Engine) Policy() Policy { return e.policy }

// SetOrientation switches the scroll axis, keeping the first visible item
// at the leading edge.
func (e *Engine) SetOrientation(o lanes.Orientation) {
	if o == e.opts.Orientation {
		return
	}
	e.opts.Orientation = o
	e.pending = &anchor{position: max(0, e.FirstVisiblePosition())}
	e.requested = true
}

// SetPolicy replaces the layout policy. Cached placements are dropped.
func (e *Engine) SetPolicy(p Policy) {
	e.policy = p
	e.lanes = nil
	e.entries.Clear()
	e.requested = true
}

// RequestLayout marks the window as needing a full layout.
func (e *Engine) RequestLayout() { e.requested = true }

// LayoutRequested reports whether the next scroll must lay out first: a
// layout was requested, or the lane configuration no longer matches the
// policy and viewport.
func (e *Engine) LayoutRequested() bool {
	if e.requested || e.lanes == nil {
		return true
	}
	o := e.opts.Orientation
	count := e.policy.LaneCount(o)
	h, v := lanes.LaneSizes(o, e.host.Viewport(), count, e.opts.AspectRatio)
	return !e.lanes.Compatible(o, count, h, v)
}

// ScrollToPosition makes the next layout place position offset units after
// the leading padding edge.
func (e *Engine) ScrollToPosition(position, offset int) {
	e.pending = &anchor{position: position, offset: offset}
	e.requested = true
}

// SetTargetPosition tells the engine a smooth scroll toward position is in
// progress. Fills then look one viewport ahead.
func (e *Engine) SetTargetPosition(position int) { e.target = position }

// ClearTargetPosition ends a smooth scroll.
func (e *Engine) ClearTargetPosition() { e.target = NoPosition }

// ScrollDirectionTo returns -1 when position lies before the window, 1 when
// it lies at or after its start and 0 when the window is empty.
func (e *Engine) ScrollDirectionTo(position int) int {
	first := e.FirstVisiblePosition()
	if first == NoPosition {
		return 0
	}
	if position < first {
		return -1
	}
	return 1
}

// Layout runs a full layout pass around the anchor item.
//
// When the pass fails the window, lanes and cached placements are left as
// they were before the call.
func (e *Engine) Layout() error {
	began := time.Now()
	e.sync()

	if e.policy.LaneCount(e.opts.Orientation) <= 0 || e.vp.IsEmpty() {
		e.logger.Debug("layout skipped", "policy", e.policy.Name(), "viewport", e.vp)
		return nil
	}

	saved := e.checkpoint()
	e.pass = &pass{pool: make(map[int]View)}
	position, err := e.layoutChildren()
	p := e.pass
	e.pass = nil

	if err != nil {
		e.rollback(saved, p)
		e.logger.Debug("layout failed", "policy", e.policy.Name(), "anchor", position, "err", err)
		observability.Layout().OnLayout(e.policy.Name(), position, len(e.children), time.Since(began), err)
		return fmt.Errorf("layout around position %d: %w", position, err)
	}

	e.commit(saved, p)
	e.pending = nil
	e.restore = nil
	e.requested = false

	w := e.Window()
	e.logger.Debug("layout",
		"policy", e.policy.Name(),
		"anchor", position,
		"window", fmt.Sprintf("[%d,%d]", w.First, w.Last),
		"children", w.Count,
	)
	observability.Layout().OnLayout(e.policy.Name(), position, w.Count, time.Since(began), nil)

	if e.opts.Predictive {
		if src, ok := e.host.(ScrapSource); ok {
			if scrap := src.Scrap(); len(scrap) > 0 {
				e.LayoutScrap(scrap)
			}
		}
	}
	return nil
}

func (e *Engine) layoutChildren() (int, error) {
	restoring := false
	if r := e.restore; r != nil {
		e.entries = r.entries.Clone()
		if r.lanes != nil {
			e.lanes = r.lanes.Clone()
			restoring = true
		}
	}
	refreshing := e.ensureLanes()

	a := e.resolveAnchor()
	for _, c := range e.children {
		if !c.removed && !c.stale {
			e.pass.pool[c.position] = c.view
		}
	}
	e.children = nil

	if e.itemCount == 0 {
		e.resetEdges()
		return NoPosition, nil
	}

	if refreshing || !restoring || !a.restored {
		if err := e.policy.RelayoutTo(e.env(), a.position, a.offset); err != nil {
			return a.position, err
		}
	}
	e.lanes.ResetForDirection(lanes.Start)
	e.layoutStart, e.layoutEnd = math.MaxInt, math.MinInt
	return a.position, e.fillSpecific(a.position)
}

// ensureLanes rebuilds the lane tracker when the lane configuration changed.
// It reports whether lanes were rebuilt.
func (e *Engine) ensureLanes() bool {
	o := e.opts.Orientation
	count := e.policy.LaneCount(o)
	h, v := lanes.LaneSizes(o, e.vp, count, e.opts.AspectRatio)
	if e.lanes != nil && e.lanes.Compatible(o, count, h, v) {
		return false
	}

	old := e.lanes
	e.lanes = lanes.New(o, e.vp, count, e.opts.AspectRatio)
	if old != nil && old.Orientation() == o && old.LaneSizeH() == h && old.LaneSizeV() == v {
		e.entries.InvalidateAfter(0)
	} else {
		e.entries.Clear()
	}
	e.logger.Debug("lanes rebuilt", "count", count, "size_h", h, "size_v", v, "orientation", o)
	return true
}

// resolveAnchor picks the item the pass is built around: an explicit scroll
// request, then a restored snapshot, then the first item still in the window.
func (e *Engine) resolveAnchor() anchor {
	start := e.vp.StartWithPadding(e.opts.Orientation)
	if p := e.pending; p != nil {
		if p.position >= 0 && p.position < e.itemCount {
			return anchor{position: p.position, offset: start + p.offset}
		}
		e.logger.Debug("discarding stale scroll target", "position", p.position, "items", e.itemCount)
	}
	if r := e.restore; r != nil {
		if pos := r.snapshot.AnchorPosition; pos < e.itemCount {
			return anchor{position: pos, offset: start, restored: true}
		}
	}
	var first *child
	for _, c := range e.children {
		if c.removed || c.position >= e.itemCount {
			continue
		}
		if first == nil || c.position < first.position {
			first = c
		}
	}
	if first != nil {
		return anchor{position: first.position, offset: first.frame.Start(e.opts.Orientation)}
	}
	return anchor{position: 0, offset: start}
}

func (e *Engine) sync() {
	e.vp = e.host.Viewport()
	e.itemCount = e.host.ItemCount()
}

func (e *Engine) env() *Env {
	return &Env{Lanes: e.lanes, Entries: e.entries, Orientation: e.opts.Orientation, e: e}
}

func (e *Engine) checkpoint() checkpoint {
	cp := checkpoint{
		children:    slices.Clone(e.children),
		entries:     e.entries.Clone(),
		layoutStart: e.layoutStart,
		layoutEnd:   e.layoutEnd,
	}
	if e.lanes != nil {
		cp.lanes = e.lanes.Clone()
	}
	return cp
}

// commit gives back every view the new window does not use.
func (e *Engine) commit(cp checkpoint, p *pass) {
	keep := make(map[View]struct{}, len(e.children))
	for _, c := range e.children {
		keep[c.view] = struct{}{}
	}
	release := func(v View, position int) {
		if _, ok := keep[v]; ok {
			return
		}
		keep[v] = struct{}{}
		e.recycleView(v, position)
	}
	for _, c := range cp.children {
		release(c.view, c.position)
	}
	for _, pos := range slices.Sorted(maps.Keys(p.pool)) {
		release(p.pool[pos], pos)
	}
}

// rollback puts the window back as it was at cp.
func (e *Engine) rollback(cp checkpoint, p *pass) {
	old := make(map[View]struct{}, len(cp.children))
	for _, c := range cp.children {
		old[c.view] = struct{}{}
	}
	for _, v := range p.fresh {
		if _, ok := old[v]; !ok {
			e.host.Recycle(v)
		}
	}
	e.children = cp.children
	for _, c := range e.children {
		c.view.Layout(c.frame)
	}
	e.lanes = cp.lanes
	e.entries = cp.entries
	e.layoutStart, e.layoutEnd = cp.layoutStart, cp.layoutEnd
}

// peek returns the view for position without attaching it.
func (e *Engine) peek(position int) (View, error) {
	if e.pass != nil {
		if v, ok := e.pass.pool[position]; ok {
			return v, nil
		}
	}
	v := e.host.ViewFor(position)
	if v == nil {
		return nil, errors.New(errors.ErrCodePrecondition, "host returned no view for position %d", position)
	}
	if e.pass != nil {
		e.pass.pool[position] = v
		e.pass.fresh = append(e.pass.fresh, v)
	}
	return v, nil
}

// obtain returns the view for position for attaching.
func (e *Engine) obtain(position int) (View, error) {
	v, err := e.peek(position)
	if err == nil && e.pass != nil {
		delete(e.pass.pool, position)
	}
	return v, err
}

func (e *Engine) recycleView(v View, position int) {
	e.host.Recycle(v)
	observability.Layout().OnRecycle(position)
}

func (e *Engine) extraSpace() int {
	if e.target == NoPosition {
		return 0
	}
	return e.vp.TotalSpace(e.opts.Orientation)
}

func (e *Engine) fillSpecific(position int) error {
	if err := e.makeAndAddView(position, lanes.End); err != nil {
		return err
	}

	extraBefore, extraAfter := 0, 0
	if extra := e.extraSpace(); extra > 0 {
		if e.target < position {
			extraBefore = extra
		} else {
			extraAfter = extra
		}
	}

	if err := e.fillBefore(position-1, extraBefore); err != nil {
		return err
	}
	e.adjustViewsStartOrEnd()
	if err := e.fillAfter(position+1, extraAfter); err != nil {
		return err
	}
	return e.correctTooHigh(len(e.children))
}

func (e *Engine) fillBefore(position, extra int) error {
	limit := e.vp.StartWithPadding(e.opts.Orientation) - extra
	for ; position >= 0 && e.canAddMoreViews(lanes.Start, limit); position-- {
		if err := e.makeAndAddView(position, lanes.Start); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) fillAfter(position, extra int) error {
	limit := e.vp.EndWithPadding(e.opts.Orientation) + extra
	for ; position < e.itemCount && e.canAddMoreViews(lanes.End, limit); position++ {
		if err := e.makeAndAddView(position, lanes.End); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) canAddMoreViews(dir lanes.Direction, limit int) bool {
	if dir == lanes.Start {
		return e.lanes.InnerStart() > limit
	}
	return e.lanes.InnerEnd() < limit
}

func (e *Engine) makeAndAddView(position int, dir lanes.Direction) error {
	v, err := e.obtain(position)
	if err != nil {
		return err
	}
	c := &child{view: v, position: position}
	if err := e.setupChild(c, dir, true); err != nil {
		if e.pass == nil {
			e.host.Recycle(v)
		}
		return err
	}
	if dir == lanes.End {
		e.children = append(e.children, c)
	} else {
		e.children = slices.Insert(e.children, 0, c)
	}
	o := e.opts.Orientation
	e.layoutStart = min(e.layoutStart, c.frame.Start(o))
	e.layoutEnd = max(e.layoutEnd, c.frame.End(o))
	return nil
}

// setupChild measures c, places it toward dir and, when push is set, adds
// its frame to the lanes. Nothing is changed when it fails.
func (e *Engine) setupChild(c *child, dir lanes.Direction, push bool) error {
	if sel, ok := e.host.(Selection); ok {
		if ck, ok := c.view.(Checkable); ok {
			ck.SetChecked(sel.IsChecked(c.position))
		}
	}

	env := e.env()
	count := e.lanes.Count()
	span, err := e.policy.SpanFor(env, c.position, c.view)
	if err != nil {
		return err
	}
	if span < 1 || span > count {
		return errors.New(errors.ErrCodePrecondition,
			"span %d of position %d outside [1, %d]", span, c.position, count)
	}
	info, err := e.policy.LaneFor(env, c.position, span, dir)
	if err != nil {
		return err
	}
	if info.IsUndefined() || info.Start < 0 || info.Start+span > count || info.Anchor < 0 || info.Anchor >= count {
		return errors.New(errors.ErrCodePrecondition,
			"lanes %+v of position %d do not hold span %d in %d lanes", info, c.position, span, count)
	}

	size := env.Measure(c.position, c.view, span)
	frame := e.lanes.ChildFrame(size, info, dir)
	entry := e.entries.Get(c.position)
	if entry != nil {
		entry.Width, entry.Height = frame.Width(), frame.Height()
	}
	c.view.Layout(frame)
	c.frame, c.info, c.span = frame, info, span

	if push {
		env.PushFrame(entry, frame, info.Start, span, dir)
	}
	return nil
}

func (e *Engine) detach(c *child, dir lanes.Direction) {
	e.env().PopFrame(e.entries.Get(c.position), c.frame, c.info.Start, c.span, dir)
}

// offsetChildren moves the window and the lanes by delta.
func (e *Engine) offsetChildren(delta int) {
	o := e.opts.Orientation
	for _, c := range e.children {
		c.frame = c.frame.Shift(o, delta)
		c.view.Layout(c.frame)
	}
	e.lanes.Offset(delta)
	if len(e.children) > 0 {
		e.layoutStart += delta
		e.layoutEnd += delta
	}
	e.shifted += delta
}

// adjustViewsStartOrEnd pulls the window back when it starts after the
// leading padding edge.
func (e *Engine) adjustViewsStartOrEnd() {
	if len(e.children) == 0 {
		return
	}
	if delta := e.layoutStart - e.vp.StartWithPadding(e.opts.Orientation); delta > 0 {
		e.offsetChildren(-delta)
	}
}

// correctTooHigh moves the window down when the last item is laid out but
// leaves space before the trailing edge.
func (e *Engine) correctTooHigh(childCount int) error {
	if childCount == 0 || len(e.children) == 0 {
		return nil
	}
	first, last := e.children[0].position, e.children[len(e.children)-1].position
	if last != e.itemCount-1 {
		return nil
	}

	o := e.opts.Orientation
	start, end := e.vp.StartWithPadding(o), e.vp.EndWithPadding(o)
	endOffset := end - e.layoutEnd
	if endOffset <= 0 || (first == 0 && e.layoutStart >= start) {
		return nil
	}
	if first == 0 {
		endOffset = min(endOffset, start-e.layoutStart)
	}
	e.offsetChildren(endOffset)
	if first > 0 {
		if err := e.fillBefore(first-1, 0); err != nil {
			return err
		}
		e.adjustViewsStartOrEnd()
	}
	return nil
}

// correctTooLow moves the window up when the first item is laid out but
// starts after the leading edge.
func (e *Engine) correctTooLow(childCount int) error {
	if childCount == 0 || len(e.children) == 0 {
		return nil
	}
	first, last := e.children[0].position, e.children[len(e.children)-1].position
	if first != 0 {
		return nil
	}

	o := e.opts.Orientation
	start, end := e.vp.StartWithPadding(o), e.vp.EndWithPadding(o)
	startOffset := e.layoutStart - start
	if startOffset <= 0 {
		return nil
	}
	switch {
	case last < e.itemCount-1 || e.layoutEnd > end:
		if last == e.itemCount-1 {
			startOffset = min(startOffset, e.layoutEnd-end)
		}
		e.offsetChildren(-startOffset)
		if last < e.itemCount-1 {
			if err := e.fillAfter(last+1, 0); err != nil {
				return err
			}
			e.adjustViewsStartOrEnd()
		}
	case last == e.itemCount-1:
		e.adjustViewsStartOrEnd()
	}
	return nil
}

func (e *Engine) resetEdges() {
	start := e.vp.StartWithPadding(e.opts.Orientation)
	e.layoutStart, e.layoutEnd = start, start
}

// updateEdgesFromRemovedChild rescans the window edge the removed item may
// have defined, stopping once the edge can no longer change.
func (e *Engine) updateEdgesFromRemovedChild(removed *child, dir lanes.Direction) {
	if len(e.children) == 0 {
		e.resetEdges()
		return
	}
	o := e.opts.Orientation
	rs, re := removed.frame.Start(o), removed.frame.End(o)
	if rs > e.layoutStart && re < e.layoutEnd {
		return
	}
	if dir == lanes.End {
		e.layoutStart = math.MaxInt
		for _, c := range e.children {
			cs := c.frame.Start(o)
			e.layoutStart = min(e.layoutStart, cs)
			if cs >= re {
				break
			}
		}
		return
	}
	e.layoutEnd = math.MinInt
	for i := len(e.children) - 1; i >= 0; i-- {
		ce := e.children[i].frame.End(o)
		e.layoutEnd = max(e.layoutEnd, ce)
		if ce <= rs {
			break
		}
	}
}
