// Package sim provides an in-memory host for the layout engine.
//
// A [Host] holds a data set of [Item] values with declared extents and spans,
// hands out pooled [View] values to the engine and keeps the data set and the
// engine's change notifications in step: every mutation helper edits the
// items and then tells the bound [Notifier] about it in the same call.
//
// The simulated host backs the CLI, the terminal UI, the HTTP server and the
// engine tests:
//
//	h := sim.New(lanes.Viewport{Width: 300, Height: 600}, sim.Uniform(100, 80))
//	e := layout.New(h, layout.NewStaggeredGrid(3, 1), layout.Options{})
//	h.Bind(e)
//	if err := e.Layout(); err != nil {
//	    return err
//	}
//	_ = h.Insert(0, sim.Item{ID: "new", Extent: 120})
package sim

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/layout"
)

// Item is one entry of the simulated data set.
type Item struct {
	ID string `json:"id" toml:"id"`

	// Extent is the item's content size along the scroll axis when that axis
	// is not constrained by the policy.
	Extent int `json:"extent" toml:"extent"`

	// Span is the number of lanes the item covers in a staggered grid.
	Span int `json:"span,omitempty" toml:"span"`

	// ColSpan and RowSpan are the cells the item covers in a spannable grid.
	ColSpan int `json:"col_span,omitempty" toml:"col_span"`
	RowSpan int `json:"row_span,omitempty" toml:"row_span"`

	// Margin decorates the measured size and is included in frames.
	Margin lanes.Edges `json:"margin" toml:"margin"`
}

// Notifier receives data set changes. *layout.Engine implements it.
type Notifier interface {
	ItemsInserted(position, count int)
	ItemsRemoved(position, count int)
	ItemsUpdated(position, count int)
	ItemMoved(from, to int)
	DataSetChanged()
}

// Stats counts the views a host has handed out.
type Stats struct {
	Live     int `json:"live"`
	Pooled   int `json:"pooled"`
	Created  int `json:"created"`
	Recycled int `json:"recycled"`
}

// Host is a simulated container. It is not safe for concurrent use.
type Host struct {
	vp      lanes.Viewport
	items   []Item
	checked map[string]bool

	pool []*View
	live map[*View]struct{}

	predictive bool
	pending    []layout.Scrap
	ghosts     []*View

	notify Notifier
	stats  Stats
	serial int
}

// New creates a host with the given viewport and items.
func New(vp lanes.Viewport, items []Item) *Host {
	h := &Host{
		vp:      vp,
		items:   slices.Clone(items),
		checked: make(map[string]bool),
		live:    make(map[*View]struct{}),
	}
	for i := range h.items {
		if h.items[i].ID == "" {
			h.items[i].ID = h.nextID()
		}
	}
	return h
}

// Uniform returns n items of the same extent.
func Uniform(n, extent int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("item-%d", i), Extent: extent}
	}
	return items
}

// Varied returns n items whose extents cycle through extents.
func Varied(n int, extents ...int) []Item {
	if len(extents) == 0 {
		return Uniform(n, 0)
	}
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("item-%d", i), Extent: extents[i%len(extents)]}
	}
	return items
}

// Bind sets the receiver of change notifications.
func (h *Host) Bind(n Notifier) { h.notify = n }

// SetPredictive makes the host collect scrap views for the engine's
// predictive pass: a ghost for every attached item that is removed or moved.
func (h *Host) SetPredictive(on bool) { h.predictive = on }

// Viewport implements layout.Host.
func (h *Host) Viewport() lanes.Viewport { return h.vp }

// SetViewport resizes the container. The engine notices on its next layout
// or scroll.
func (h *Host) SetViewport(vp lanes.Viewport) { h.vp = vp }

// ItemCount implements layout.Host.
func (h *Host) ItemCount() int { return len(h.items) }

// Items returns a copy of the data set.
func (h *Host) Items() []Item { return slices.Clone(h.items) }

// Item returns the item at position.
func (h *Host) Item(position int) (Item, bool) {
	if position < 0 || position >= len(h.items) {
		return Item{}, false
	}
	return h.items[position], true
}

// ViewFor implements layout.Host. It returns nil for a position outside the
// data set.
func (h *Host) ViewFor(position int) layout.View {
	if position < 0 || position >= len(h.items) {
		return nil
	}
	v := h.obtain()
	v.bind(position, h.items[position])
	h.live[v] = struct{}{}
	return v
}

// Recycle implements layout.Host.
func (h *Host) Recycle(v layout.View) {
	sv, ok := v.(*View)
	if !ok {
		return
	}
	if _, live := h.live[sv]; !live {
		return
	}
	delete(h.live, sv)
	h.release(sv)
}

func (h *Host) obtain() *View {
	if n := len(h.pool); n > 0 {
		v := h.pool[n-1]
		h.pool = h.pool[:n-1]
		return v
	}
	h.stats.Created++
	return &View{serial: h.stats.Created}
}

func (h *Host) release(v *View) {
	v.unbind()
	h.pool = append(h.pool, v)
	h.stats.Recycled++
}

// DetachAll returns every attached view and ghost to the pool. It is used
// when the host is handed to a new engine.
func (h *Host) DetachAll() {
	for v := range h.live {
		h.release(v)
	}
	clear(h.live)
	for _, g := range h.ghosts {
		h.release(g)
	}
	h.ghosts = h.ghosts[:0]
	h.pending = nil
}

// IsChecked implements layout.Selection.
func (h *Host) IsChecked(position int) bool {
	if position < 0 || position >= len(h.items) {
		return false
	}
	return h.checked[h.items[position].ID]
}

// CheckedIDs returns the IDs of the checked items in data set order.
func (h *Host) CheckedIDs() []string {
	var ids []string
	for _, it := range h.items {
		if h.checked[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// SetCheckedIDs replaces the selection. It does not notify; call it before
// the first layout.
func (h *Host) SetCheckedIDs(ids []string) {
	clear(h.checked)
	for _, id := range ids {
		h.checked[id] = true
	}
}

// Toggle flips the checked state of the item at position and rebinds it.
func (h *Host) Toggle(position int) error {
	if err := h.checkPosition(position); err != nil {
		return err
	}
	id := h.items[position].ID
	h.checked[id] = !h.checked[id]
	if h.notify != nil {
		h.notify.ItemsUpdated(position, 1)
	}
	return nil
}

// Scrap implements layout.ScrapSource. It hands out the ghosts collected
// since the last call; they stay visible until the next call.
func (h *Host) Scrap() []layout.Scrap {
	for _, g := range h.ghosts {
		h.release(g)
	}
	h.ghosts = h.ghosts[:0]
	scrap := h.pending
	h.pending = nil
	for _, s := range scrap {
		h.ghosts = append(h.ghosts, s.View.(*View))
	}
	return scrap
}

// Ghosts returns the scrap views handed out by the last call to Scrap.
func (h *Host) Ghosts() []*View { return slices.Clone(h.ghosts) }

// LiveViews returns the attached views ordered by position.
func (h *Host) LiveViews() []*View {
	views := slices.Collect(maps.Keys(h.live))
	slices.SortFunc(views, func(a, b *View) int { return a.position - b.position })
	return views
}

// Stats returns view counters.
func (h *Host) Stats() Stats {
	s := h.stats
	s.Live = len(h.live)
	s.Pooled = len(h.pool)
	return s
}

func (h *Host) nextID() string {
	h.serial++
	return fmt.Sprintf("new-%d", h.serial)
}

func (h *Host) checkPosition(position int) error {
	if position < 0 || position >= len(h.items) {
		return errors.New(errors.ErrCodeInvalidInput, "position %d outside [0, %d)", position, len(h.items))
	}
	return nil
}
