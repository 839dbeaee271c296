package layout

import "github.com/matzehuels/laneview/pkg/lanes"

// Host is the container the engine lays items out into.
type Host interface {
	// Viewport returns the current visible area and padding.
	Viewport() lanes.Viewport

	// ItemCount returns the number of items in the data set.
	ItemCount() int

	// ViewFor returns a view bound to position. It may return a recycled view.
	ViewFor(position int) View

	// Recycle takes back a view that left the window.
	Recycle(v View)
}

// View is a materialized item.
//
// Views are compared by identity, so implementations should be pointers.
type View interface {
	// Measure sizes the view against width and height. A non-positive
	// constraint leaves that axis unconstrained. The returned size includes
	// the view's own margins.
	Measure(width, height int) lanes.Size

	// Layout positions the view. frame includes the view's margins.
	Layout(frame lanes.Rect)
}

// Spanned is implemented by views that occupy several lanes in a
// [StaggeredGrid].
type Spanned interface {
	Span() int
}

// GridSpanned is implemented by views that occupy several cells in a
// [SpannableGrid].
type GridSpanned interface {
	GridSpan() (cols, rows int)
}

// Checkable is implemented by views that render a checked state.
type Checkable interface {
	SetChecked(checked bool)
}

// Selection is implemented by hosts that track checked items. The engine
// only reads it.
type Selection interface {
	IsChecked(position int) bool
}

// ScrapSource is implemented by hosts that keep views for items that are
// about to disappear or have just appeared, for animations. See
// [Engine.LayoutScrap].
type ScrapSource interface {
	Scrap() []Scrap
}

// Scrap is a view outside the stable window that should still be positioned.
type Scrap struct {
	Position int
	View     View
	// Removed marks an item that is leaving the data set. It is positioned
	// but does not occupy lane space.
	Removed bool
}

// Placement is the position and decorated frame of a laid out item.
type Placement struct {
	Position int        `json:"position"`
	Frame    lanes.Rect `json:"frame"`
	Lane     int        `json:"lane"`
	Span     int        `json:"span"`
}
