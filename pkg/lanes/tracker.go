package lanes

import "math"

// NoLane marks a lane index that has not been resolved yet.
const NoLane = -1

// Info identifies where an item sits: the first lane it occupies and the
// lane whose edge anchors it when filling toward [End].
type Info struct {
	Start  int
	Anchor int
}

// Undefined is the Info of an item whose lanes must be computed fresh.
var Undefined = Info{Start: NoLane, Anchor: NoLane}

// IsUndefined reports whether either lane is unresolved.
func (i Info) IsUndefined() bool {
	return i.Start == NoLane || i.Anchor == NoLane
}

// Tracker owns the lane rectangles of one layout.
//
// Lanes are created with zero extent along the primary axis and fixed bounds
// along the secondary axis. A Tracker is not safe for concurrent use.
type Tracker struct {
	orientation Orientation
	lanes       []Rect
	saved       []Rect
	sizeH       int
	sizeV       int

	innerStart      int
	innerEnd        int
	innerStartValid bool
	innerEndValid   bool
}

// LaneSizes computes the lane width and height for count lanes inside vp.
// Along the secondary axis lanes divide the inner extent evenly; along the
// primary axis the size is derived through aspectRatio (width / height).
func LaneSizes(o Orientation, vp Viewport, count int, aspectRatio float64) (sizeH, sizeV int) {
	if count <= 0 {
		return 0, 0
	}
	if aspectRatio <= 0 {
		aspectRatio = 1
	}
	width := vp.InnerWidth()
	height := vp.InnerHeight()
	if o == Vertical {
		return width / count, int(float64(width) / aspectRatio / float64(count))
	}
	return int(float64(height) / aspectRatio / float64(count)), height / count
}

// New creates count lanes laid side by side inside vp. count must be positive.
func New(o Orientation, vp Viewport, count int, aspectRatio float64) *Tracker {
	sizeH, sizeV := LaneSizes(o, vp, count, aspectRatio)
	t := &Tracker{
		orientation: o,
		lanes:       make([]Rect, count),
		saved:       make([]Rect, count),
		sizeH:       sizeH,
		sizeV:       sizeV,
	}
	for i := range t.lanes {
		l := vp.Padding.Left
		top := vp.Padding.Top
		if o == Vertical {
			l += i * sizeH
			t.lanes[i] = Rect{Left: l, Top: top, Right: l + sizeH, Bottom: top}
		} else {
			top += i * sizeV
			t.lanes[i] = Rect{Left: l, Top: top, Right: l, Bottom: top + sizeV}
		}
	}
	return t
}

// FromRects rebuilds a tracker from previously saved lane rectangles.
func FromRects(o Orientation, rects []Rect, sizeH, sizeV int) *Tracker {
	t := &Tracker{
		orientation: o,
		lanes:       make([]Rect, len(rects)),
		saved:       make([]Rect, len(rects)),
		sizeH:       sizeH,
		sizeV:       sizeV,
	}
	copy(t.lanes, rects)
	return t
}

// Clone returns an independent copy of t.
func (t *Tracker) Clone() *Tracker {
	c := FromRects(t.orientation, t.lanes, t.sizeH, t.sizeV)
	copy(c.saved, t.saved)
	return c
}

// Orientation returns the primary axis the lanes were built for.
func (t *Tracker) Orientation() Orientation { return t.orientation }

// Count returns the number of lanes.
func (t *Tracker) Count() int { return len(t.lanes) }

// LaneSizeH returns the lane width.
func (t *Tracker) LaneSizeH() int { return t.sizeH }

// LaneSizeV returns the lane height.
func (t *Tracker) LaneSizeV() int { return t.sizeV }

// Compatible reports whether t can be reused for the given configuration.
func (t *Tracker) Compatible(o Orientation, count, sizeH, sizeV int) bool {
	return t.orientation == o && len(t.lanes) == count && t.sizeH == sizeH && t.sizeV == sizeV
}

// Lane returns the rectangle of lane i.
func (t *Tracker) Lane(i int) Rect { return t.lanes[i] }

// Rects returns a copy of all lane rectangles.
func (t *Tracker) Rects() []Rect {
	out := make([]Rect, len(t.lanes))
	copy(out, t.lanes)
	return out
}

// Save snapshots every lane rectangle.
func (t *Tracker) Save() {
	copy(t.saved, t.lanes)
}

// Restore rolls every lane back to the last [Tracker.Save].
func (t *Tracker) Restore() {
	copy(t.lanes, t.saved)
	t.invalidateEdges()
}

func (t *Tracker) invalidateEdges() {
	t.innerStartValid = false
	t.innerEndValid = false
}

// Offset moves every lane by delta along the primary axis.
func (t *Tracker) Offset(delta int) {
	for i := range t.lanes {
		t.lanes[i] = t.lanes[i].Shift(t.orientation, delta)
	}
	t.invalidateEdges()
}

// OffsetLane moves lane i by delta along the primary axis.
func (t *Tracker) OffsetLane(i, delta int) {
	t.lanes[i] = t.lanes[i].Shift(t.orientation, delta)
	t.invalidateEdges()
}

// PushFrame extends lane to cover frame. Filling toward [End] moves the
// trailing edge to the frame's far edge plus margin; filling toward [Start]
// moves the leading edge to the frame's near edge minus margin.
//
// The returned delta is the distance between the lane's previous edge and
// the frame's near edge. For multi-lane items it is the margin that must be
// replayed when the item is pushed again from the other direction.
func (t *Tracker) PushFrame(frame Rect, lane, margin int, dir Direction) int {
	r := &t.lanes[lane]
	var delta int
	if t.orientation == Vertical {
		if dir == End {
			delta = frame.Top - r.Bottom
			r.Bottom = frame.Bottom + margin
		} else {
			delta = frame.Bottom - r.Top
			r.Top = frame.Top - margin
		}
	} else {
		if dir == End {
			delta = frame.Left - r.Right
			r.Right = frame.Right + margin
		} else {
			delta = frame.Right - r.Left
			r.Left = frame.Left - margin
		}
	}
	t.invalidateEdges()
	return delta
}

// PopFrame reverses [Tracker.PushFrame] for an item leaving the lane. dir is
// the scroll direction: scrolling toward [End] pops from the leading edge,
// toward [Start] from the trailing edge. margin is the delta recorded when
// the frame was pushed toward End, so the trailing edge lands exactly where
// it was before the push.
func (t *Tracker) PopFrame(frame Rect, lane, margin int, dir Direction) {
	r := &t.lanes[lane]
	if t.orientation == Vertical {
		if dir == End {
			r.Top = frame.Bottom - margin
		} else {
			r.Bottom = frame.Top - margin
		}
	} else {
		if dir == End {
			r.Left = frame.Right - margin
		} else {
			r.Right = frame.Left - margin
		}
	}
	t.invalidateEdges()
}

// ChildFrame returns the rectangle an item of the given decorated size takes
// when placed at info. The item spans from the start lane and hangs off the
// anchor lane's edge: below (or right of) its trailing edge toward [End],
// above (or left of) its leading edge toward [Start].
func (t *Tracker) ChildFrame(size Size, info Info, dir Direction) Rect {
	startRect := t.lanes[info.Start]
	anchorRect := t.lanes[info.Anchor]

	var out Rect
	if t.orientation == Vertical {
		out.Left = startRect.Left
		if dir == End {
			out.Top = anchorRect.Bottom
		} else {
			out.Top = anchorRect.Top - size.Height
		}
	} else {
		out.Top = startRect.Top
		if dir == End {
			out.Left = anchorRect.Right
		} else {
			out.Left = anchorRect.Left - size.Width
		}
	}
	out.Right = out.Left + size.Width
	out.Bottom = out.Top + size.Height
	return out
}

// blocked reports whether any of count lanes from start already holds
// content beyond the near edge of frame when placing toward dir. Lanes of
// zero extent still block through their edge.
func (t *Tracker) blocked(start, count int, frame Rect, dir Direction) bool {
	o := t.orientation
	for l := start; l < start+count; l++ {
		r := t.lanes[l]
		if dir == End && r.End(o) > frame.Start(o) {
			return true
		}
		if dir == Start && r.Start(o) < frame.End(o) {
			return true
		}
	}
	return false
}

// fitSpan returns the first lane of a run of span lanes containing
// anchorLane that can take an item anchored at anchorLane without
// overlapping content already placed in the run.
func (t *Tracker) fitSpan(anchorLane, span int, dir Direction) int {
	findStart := max(0, anchorLane-span+1)
	findEnd := min(findStart+span, len(t.lanes)-span+1)
	for l := findStart; l < findEnd; l++ {
		frame := t.ChildFrame(t.probe(span), Info{Start: l, Anchor: anchorLane}, dir)
		if !t.blocked(l, span, frame, dir) {
			return l
		}
	}
	return NoLane
}

// probe is a one unit thick frame covering span lanes.
func (t *Tracker) probe(span int) Size {
	if t.orientation == Vertical {
		return Size{Width: span * t.sizeH, Height: 1}
	}
	return Size{Width: 1, Height: span * t.sizeV}
}

// Reanchor returns the lanes for an item whose run of span lanes begins at
// start, anchored at the lane of the run whose edge in dir is most advanced
// so the item clears everything already placed in the run. Ties go to the
// lowest lane. ok is false when the run does not fit.
func (t *Tracker) Reanchor(start, span int, dir Direction) (info Info, ok bool) {
	if start < 0 || span < 1 || start+span > len(t.lanes) {
		return Undefined, false
	}
	o := t.orientation
	anchor := start
	for l := start + 1; l < start+span; l++ {
		r, a := t.lanes[l], t.lanes[anchor]
		if (dir == End && r.End(o) > a.End(o)) || (dir == Start && r.Start(o) < a.Start(o)) {
			anchor = l
		}
	}
	return Info{Start: start, Anchor: anchor}, true
}

// FindLane picks lanes for an item spanning span lanes. Among all lanes that
// can anchor a fitting run, it chooses the one whose edge in dir is least
// advanced (lowest trailing edge toward End, highest leading edge toward
// Start); ties go to the lowest lane index. It returns [Undefined] when no
// run fits, which always happens for span outside [1, Count()].
func (t *Tracker) FindLane(span int, dir Direction) Info {
	out := Undefined
	if span < 1 || span > len(t.lanes) {
		return out
	}

	target := math.MaxInt
	if dir == Start {
		target = math.MinInt
	}
	for l, r := range t.lanes {
		edge := r.Start(t.orientation)
		if dir == End {
			edge = r.End(t.orientation)
		}
		if (dir == End && edge < target) || (dir == Start && edge > target) {
			if lane := t.fitSpan(l, span, dir); lane != NoLane {
				target = edge
				out = Info{Start: lane, Anchor: l}
			}
		}
	}
	return out
}

// ResetForDirection collapses every lane onto one of its edges so that the
// lanes represent "nothing placed yet" for a fill toward the other side.
// [Start] keeps the leading edge; [End] keeps the trailing edge.
func (t *Tracker) ResetForDirection(dir Direction) {
	for i := range t.lanes {
		r := &t.lanes[i]
		if t.orientation == Vertical {
			if dir == Start {
				r.Bottom = r.Top
			} else {
				r.Top = r.Bottom
			}
		} else {
			if dir == Start {
				r.Right = r.Left
			} else {
				r.Left = r.Right
			}
		}
	}
	t.invalidateEdges()
}

// ResetForOffset moves every lane to offset along the primary axis and
// collapses it to zero extent.
func (t *Tracker) ResetForOffset(offset int) {
	for i := range t.lanes {
		r := &t.lanes[i]
		if t.orientation == Vertical {
			r.Top, r.Bottom = offset, offset
		} else {
			r.Left, r.Right = offset, offset
		}
	}
	t.invalidateEdges()
}

// InnerStart returns the most advanced leading edge across all lanes.
func (t *Tracker) InnerStart() int {
	if t.innerStartValid {
		return t.innerStart
	}
	v := math.MinInt
	for _, r := range t.lanes {
		v = max(v, r.Start(t.orientation))
	}
	t.innerStart, t.innerStartValid = v, true
	return v
}

// InnerEnd returns the least advanced trailing edge across all lanes.
func (t *Tracker) InnerEnd() int {
	if t.innerEndValid {
		return t.innerEnd
	}
	v := math.MaxInt
	for _, r := range t.lanes {
		v = min(v, r.End(t.orientation))
	}
	t.innerEnd, t.innerEndValid = v, true
	return v
}

// OuterEnd returns the most advanced trailing edge across all lanes.
func (t *Tracker) OuterEnd() int {
	v := math.MinInt
	for _, r := range t.lanes {
		v = max(v, r.End(t.orientation))
	}
	return v
}
