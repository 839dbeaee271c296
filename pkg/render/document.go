package render

import (
	"slices"

	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/sim"
)

// Document is a renderable copy of an engine's window.
type Document struct {
	Policy      string               `json:"policy"`
	Orientation lanes.Orientation    `json:"orientation"`
	Viewport    lanes.Viewport       `json:"viewport"`
	Window      layout.Window        `json:"window"`
	Metrics     layout.ScrollMetrics `json:"metrics"`
	Lanes       []lanes.Rect         `json:"lanes"`
	Items       []Item               `json:"items"`
	Ghosts      []Item               `json:"ghosts,omitempty"`
}

// Item is a laid out item.
type Item struct {
	Position int        `json:"position"`
	ID       string     `json:"id"`
	Frame    lanes.Rect `json:"frame"`
	Lane     int        `json:"lane"`
	Span     int        `json:"span"`
	Checked  bool       `json:"checked,omitempty"`
}

// Capture copies the current window of e. Item IDs and selection come from h.
func Capture(e *layout.Engine, h *sim.Host) Document {
	doc := Document{
		Policy:      e.Policy().Name(),
		Orientation: e.Orientation(),
		Viewport:    h.Viewport(),
		Window:      e.Window(),
		Metrics:     e.ScrollMetrics(),
		Lanes:       e.Lanes(),
	}
	for _, p := range e.Placements() {
		it, _ := h.Item(p.Position)
		doc.Items = append(doc.Items, Item{
			Position: p.Position,
			ID:       it.ID,
			Frame:    p.Frame,
			Lane:     p.Lane,
			Span:     p.Span,
			Checked:  h.IsChecked(p.Position),
		})
	}
	for _, g := range h.Ghosts() {
		doc.Ghosts = append(doc.Ghosts, Item{
			Position: g.Position(),
			ID:       g.Item().ID,
			Frame:    g.Frame(),
			Lane:     NoLane,
			Span:     max(1, g.Item().Span),
		})
	}
	return doc
}

// NoLane is the lane of a ghost, which takes no lane space.
const NoLane = lanes.NoLane

// bounds returns the union of the viewport and, when overscan is set, every
// item frame.
func (d Document) bounds(overscan bool) lanes.Rect {
	b := lanes.Rect{Right: d.Viewport.Width, Bottom: d.Viewport.Height}
	if !overscan {
		return b
	}
	for _, it := range slices.Concat(d.Items, d.Ghosts) {
		b.Left = min(b.Left, it.Frame.Left)
		b.Top = min(b.Top, it.Frame.Top)
		b.Right = max(b.Right, it.Frame.Right)
		b.Bottom = max(b.Bottom, it.Frame.Bottom)
	}
	return b
}
