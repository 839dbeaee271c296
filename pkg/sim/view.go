package sim

import "github.com/matzehuels/laneview/pkg/lanes"

// View is a pooled view bound to one item at a time.
type View struct {
	serial   int
	position int
	item     Item
	frame    lanes.Rect
	checked  bool
	bound    bool
}

func (v *View) bind(position int, item Item) {
	v.position, v.item, v.bound = position, item, true
	v.frame = lanes.Rect{}
}

func (v *View) unbind() {
	v.position, v.item, v.bound, v.checked = 0, Item{}, false, false
}

// Serial identifies the view object across rebinds.
func (v *View) Serial() int { return v.serial }

// Position returns the position the view was last bound to.
func (v *View) Position() int { return v.position }

// Item returns the bound item.
func (v *View) Item() Item { return v.item }

// Frame returns the decorated frame of the last layout.
func (v *View) Frame() lanes.Rect { return v.frame }

// Checked reports the applied selection state.
func (v *View) Checked() bool { return v.checked }

// Measure sizes the view. A positive constraint fixes that axis; the other
// axis takes the item extent. Margins are added to the content size and are
// part of a fixed constraint.
func (v *View) Measure(width, height int) lanes.Size {
	m := v.item.Margin
	size := lanes.Size{
		Width:  v.item.Extent + m.Horizontal(),
		Height: v.item.Extent + m.Vertical(),
	}
	if width > 0 {
		size.Width = width
	}
	if height > 0 {
		size.Height = height
	}
	return size
}

// Layout implements layout.View.
func (v *View) Layout(frame lanes.Rect) { v.frame = frame }

// Span implements layout.Spanned.
func (v *View) Span() int { return max(1, v.item.Span) }

// GridSpan implements layout.GridSpanned.
func (v *View) GridSpan() (int, int) { return max(1, v.item.ColSpan), max(1, v.item.RowSpan) }

// SetChecked implements layout.Checkable.
func (v *View) SetChecked(checked bool) { v.checked = checked }

// Content returns the frame without the item's margins.
func (v *View) Content() lanes.Rect {
	m := v.item.Margin
	return lanes.Rect{
		Left:   v.frame.Left + m.Left,
		Top:    v.frame.Top + m.Top,
		Right:  v.frame.Right - m.Right,
		Bottom: v.frame.Bottom - m.Bottom,
	}
}
