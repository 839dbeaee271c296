// Package placement caches per-item lane assignments between layout passes.
//
// Entries are keyed by adapter position. They survive scrolling and are
// shifted or invalidated synchronously when the data set mutates, so a
// layout pass never reads an entry keyed by a stale position.
package placement

import "github.com/matzehuels/laneview/pkg/lanes"

// Entry is the cached placement of one item.
//
// StartLane and AnchorLane describe where the item was last placed and are
// reset by invalidation. Span, ColSpan, RowSpan, Width and Height describe
// the item itself and survive invalidation.
type Entry struct {
	StartLane  int `json:"start_lane"`
	AnchorLane int `json:"anchor_lane"`
	Span       int `json:"span,omitempty"`

	// ColSpan and RowSpan are set by the spannable grid.
	ColSpan int `json:"col_span,omitempty"`
	RowSpan int `json:"row_span,omitempty"`

	// Width and Height are the decorated measured size, cached by the
	// staggered grid so relayout replay can skip measuring.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Margins holds, per straddled lane, the gap between that lane's edge
	// and the item's near edge when it was first pushed toward the end.
	Margins []int `json:"margins,omitempty"`
}

// NewEntry returns an entry placed at info.
func NewEntry(info lanes.Info) *Entry {
	return &Entry{StartLane: info.Start, AnchorLane: info.Anchor, Span: 1}
}

// Lane returns the cached lane assignment.
func (e *Entry) Lane() lanes.Info {
	return lanes.Info{Start: e.StartLane, Anchor: e.AnchorLane}
}

// SetLane records a lane assignment.
func (e *Entry) SetLane(info lanes.Info) {
	e.StartLane = info.Start
	e.AnchorLane = info.Anchor
}

// InvalidateLane forgets where the item was placed. Margins depend on the
// neighbors and are dropped along with the lanes.
func (e *Entry) InvalidateLane() {
	e.StartLane = lanes.NoLane
	e.AnchorLane = lanes.NoLane
	e.Margins = nil
}

// HasMargins reports whether span margins were recorded.
func (e *Entry) HasMargins() bool {
	return e.Margins != nil
}

// Margin returns the recorded margin for the i-th straddled lane, or 0.
func (e *Entry) Margin(i int) int {
	if i < 0 || i >= len(e.Margins) {
		return 0
	}
	return e.Margins[i]
}

// SetMargin records the margin of the i-th straddled lane of a span-lane item.
func (e *Entry) SetMargin(i, margin, span int) {
	if len(e.Margins) != span {
		e.Margins = make([]int, span)
	}
	e.Margins[i] = margin
}

// HasSize reports whether a measured size is cached.
func (e *Entry) HasSize() bool {
	return e.Width > 0 && e.Height > 0
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Margins != nil {
		c.Margins = append([]int(nil), e.Margins...)
	}
	return &c
}
