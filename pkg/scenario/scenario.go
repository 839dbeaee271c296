// Package scenario loads scripted layout sessions from TOML and runs them
// against a simulated host.
//
// A scenario describes a viewport, a layout policy, a data set and a list of
// steps:
//
//	name = "feed"
//	policy = "staggered"
//	columns = 3
//
//	[viewport]
//	width = 300
//	height = 600
//
//	[generate]
//	count = 200
//	extents = [80, 140, 60, 110]
//	span_every = 9
//
//	[[steps]]
//	op = "scroll"
//	delta = 450
//
//	[[steps]]
//	op = "insert"
//	position = 0
//	items = [{ id = "fresh", extent = 90 }]
//
// [Load] parses and validates a file; [Runner] executes it.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/sim"
)

// Config is everything needed to build a host and an engine.
type Config struct {
	Viewport    lanes.Viewport    `json:"viewport" toml:"viewport"`
	Orientation lanes.Orientation `json:"orientation" toml:"orientation"`
	Policy      string            `json:"policy" toml:"policy"`
	Columns     int               `json:"columns,omitempty" toml:"columns"`
	Rows        int               `json:"rows,omitempty" toml:"rows"`
	AspectRatio float64           `json:"aspect_ratio,omitempty" toml:"aspect_ratio"`
	Predictive  bool              `json:"predictive,omitempty" toml:"predictive"`
	Items       []sim.Item        `json:"items,omitempty" toml:"items"`
	Generate    *Generate         `json:"generate,omitempty" toml:"generate"`
}

// Generate describes a synthetic data set. It is appended after Items.
type Generate struct {
	Count   int   `json:"count" toml:"count"`
	Extents []int `json:"extents,omitempty" toml:"extents"`
	// SpanEvery makes every n-th item span two lanes.
	SpanEvery int `json:"span_every,omitempty" toml:"span_every"`
}

// Scenario is a configuration and a script of steps.
type Scenario struct {
	Name string `json:"name" toml:"name"`
	Config
	Steps []Step `json:"steps" toml:"steps"`
}

// Op names a step.
type Op string

const (
	OpLayout      Op = "layout"
	OpScroll      Op = "scroll"
	OpScrollTo    Op = "scroll_to"
	OpTarget      Op = "target"
	OpInsert      Op = "insert"
	OpRemove      Op = "remove"
	OpMove        Op = "move"
	OpUpdate      Op = "update"
	OpReplace     Op = "replace"
	OpToggle      Op = "toggle"
	OpResize      Op = "resize"
	OpOrientation Op = "orientation"
	OpColumns     Op = "columns"
	OpSave        Op = "save"
	OpRestore     Op = "restore"
)

// Ops lists every step operation.
var Ops = []Op{
	OpLayout, OpScroll, OpScrollTo, OpTarget, OpInsert, OpRemove, OpMove, OpUpdate,
	OpReplace, OpToggle, OpResize, OpOrientation, OpColumns, OpSave, OpRestore,
}

// Step is one scripted operation. Which fields apply depends on Op.
type Step struct {
	Op          Op                `json:"op" toml:"op"`
	Delta       int               `json:"delta,omitempty" toml:"delta"`
	Position    int               `json:"position,omitempty" toml:"position"`
	Offset      int               `json:"offset,omitempty" toml:"offset"`
	Count       int               `json:"count,omitempty" toml:"count"`
	From        int               `json:"from,omitempty" toml:"from"`
	To          int               `json:"to,omitempty" toml:"to"`
	Items       []sim.Item        `json:"items,omitempty" toml:"items"`
	Width       int               `json:"width,omitempty" toml:"width"`
	Height      int               `json:"height,omitempty" toml:"height"`
	Orientation lanes.Orientation `json:"orientation,omitempty" toml:"orientation"`
	Columns     int               `json:"columns,omitempty" toml:"columns"`
	Rows        int               `json:"rows,omitempty" toml:"rows"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scenario %s", path)
		}
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode scenario")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown key %q", undecoded[0].String())
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the configuration and every step.
func (s *Scenario) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	for i, st := range s.Steps {
		if err := st.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "step %d (%s)", i+1, st.Op)
		}
	}
	return nil
}

// Validate checks that c describes a usable host and policy.
func (c Config) Validate() error {
	if c.Viewport.IsEmpty() {
		return errors.New(errors.ErrCodeInvalidScenario, "viewport %dx%d is empty", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Viewport.InnerWidth() <= 0 || c.Viewport.InnerHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "viewport padding leaves no room for items")
	}
	if _, err := c.NewPolicy(); err != nil {
		return err
	}
	if c.AspectRatio < 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "aspect_ratio %v is negative", c.AspectRatio)
	}
	if g := c.Generate; g != nil {
		if g.Count < 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "generate.count %d is negative", g.Count)
		}
		if slices.ContainsFunc(g.Extents, func(e int) bool { return e < 0 }) {
			return errors.New(errors.ErrCodeInvalidScenario, "generate.extents must not be negative")
		}
	}
	for i, it := range c.Items {
		if it.Extent < 0 || it.Span < 0 || it.ColSpan < 0 || it.RowSpan < 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "item %d has a negative size", i)
		}
	}
	return nil
}

// Validate checks that the fields the step's op needs are usable. Positions
// are checked against the data set when the step runs.
func (st Step) Validate() error {
	switch st.Op {
	case OpLayout, OpTarget, OpSave, OpRestore, OpToggle, OpScroll, OpOrientation:
	case OpScrollTo, OpMove:
		if st.Position < 0 || st.From < 0 || st.To < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "negative position")
		}
	case OpInsert, OpUpdate:
		if len(st.Items) == 0 && st.Count <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "needs items or a count")
		}
	case OpRemove:
		if st.Count < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "count %d is negative", st.Count)
		}
	case OpReplace:
	case OpResize:
		if st.Width <= 0 || st.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "size %dx%d is empty", st.Width, st.Height)
		}
	case OpColumns:
		if st.Columns <= 0 && st.Rows <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "needs columns or rows")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", st.Op)
	}
	return nil
}

// NewPolicy builds the configured layout policy.
func (c Config) NewPolicy() (layout.Policy, error) {
	p, err := layout.ParsePolicy(c.Policy, c.Columns, c.Rows)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "policy")
	}
	return p, nil
}

// DataSet returns the configured items followed by the generated ones.
func (c Config) DataSet() []sim.Item {
	items := slices.Clone(c.Items)
	g := c.Generate
	if g == nil {
		return items
	}
	extents := g.Extents
	if len(extents) == 0 {
		extents = []int{100}
	}
	gen := sim.Varied(g.Count, extents...)
	for i := range gen {
		gen[i].ID = fmt.Sprintf("item-%d", len(items)+i)
		if g.SpanEvery > 0 && i%g.SpanEvery == g.SpanEvery-1 {
			gen[i].Span = 2
			gen[i].ColSpan = 2
		}
	}
	return append(items, gen...)
}
