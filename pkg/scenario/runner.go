package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/sim"
)

// State is a simulated host and the engine laying it out.
//
// The engine is replaced when a snapshot is restored, so callers must not
// keep a reference to it across [State.Apply] calls.
type State struct {
	Host   *sim.Host
	Engine *layout.Engine

	cfg    Config
	saved  []byte
	logger *log.Logger
}

// Start builds a host and an engine from cfg. Nothing is laid out yet.
func Start(cfg Config, logger *log.Logger) (*State, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.NewPolicy()
	if err != nil {
		return nil, err
	}
	h := sim.New(cfg.Viewport, cfg.DataSet())
	h.SetPredictive(cfg.Predictive)
	s := &State{Host: h, cfg: cfg, logger: logger}
	s.Engine = s.newEngine(policy)
	return s, nil
}

func (s *State) newEngine(policy layout.Policy) *layout.Engine {
	o := s.cfg.Orientation
	if s.Engine != nil {
		o = s.Engine.Orientation()
	}
	e := layout.New(s.Host, policy, layout.Options{
		Orientation: o,
		AspectRatio: s.cfg.AspectRatio,
		Predictive:  s.cfg.Predictive,
		Logger:      s.logger,
	})
	s.Host.Bind(e)
	return e
}

// Resume hands the host to a new engine that restores snap on its next
// layout. The policy carries over from the current engine.
func (s *State) Resume(snap layout.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.Host.DetachAll()
	e := s.newEngine(s.Engine.Policy())
	s.Engine = e
	return e.Restore(snap)
}

// Saved returns the encoded snapshot of the last save step, or nil.
func (s *State) Saved() []byte { return s.saved }

// Document captures the current window.
func (s *State) Document() render.Document { return render.Capture(s.Engine, s.Host) }

// StepResult reports the effect of one step.
type StepResult struct {
	Index   int              `json:"index"`
	Op      Op               `json:"op"`
	Applied int              `json:"applied,omitempty"`
	Window  layout.Window    `json:"window"`
	Elapsed time.Duration    `json:"elapsed"`
	Doc     *render.Document `json:"document,omitempty"`
}

// Apply runs one step and then lays out if the step left the engine
// needing it, the way a host would on its next frame.
func (s *State) Apply(st Step) (StepResult, error) {
	began := time.Now()
	res := StepResult{Op: st.Op}
	if err := st.Validate(); err != nil {
		return res, err
	}

	var err error
	switch st.Op {
	case OpLayout:
		err = s.Engine.Layout()
	case OpScroll:
		res.Applied, err = s.Engine.ScrollBy(st.Delta)
	case OpScrollTo:
		s.Engine.ScrollToPosition(st.Position, st.Offset)
	case OpTarget:
		if st.Position < 0 {
			s.Engine.ClearTargetPosition()
		} else {
			s.Engine.SetTargetPosition(st.Position)
		}
	case OpInsert:
		items := st.Items
		if len(items) == 0 {
			items = make([]sim.Item, st.Count)
			for i := range items {
				items[i].Extent = defaultExtent
			}
		}
		err = s.Host.Insert(st.Position, items...)
	case OpRemove:
		err = s.Host.Remove(st.Position, max(1, st.Count))
	case OpMove:
		err = s.Host.Move(st.From, st.To)
	case OpUpdate:
		items := st.Items
		for i := 0; len(st.Items) == 0 && i < st.Count; i++ {
			it, ok := s.Host.Item(st.Position + i)
			if !ok {
				return res, errors.New(errors.ErrCodeInvalidInput, "update position %d outside the data set", st.Position+i)
			}
			items = append(items, it)
		}
		err = s.Host.Update(st.Position, items...)
	case OpReplace:
		s.Host.Replace(st.Items)
	case OpToggle:
		err = s.Host.Toggle(st.Position)
	case OpResize:
		vp := s.Host.Viewport()
		vp.Width, vp.Height = st.Width, st.Height
		s.Host.SetViewport(vp)
	case OpOrientation:
		s.Engine.SetOrientation(st.Orientation)
	case OpColumns:
		g, ok := s.Engine.Policy().(interface {
			SetColumns(int)
			SetRows(int)
		})
		if !ok {
			return res, errors.New(errors.ErrCodeUnsupported, "policy %s has no columns", s.Engine.Policy().Name())
		}
		if st.Columns > 0 {
			g.SetColumns(st.Columns)
		}
		if st.Rows > 0 {
			g.SetRows(st.Rows)
		}
	case OpSave:
		s.saved, err = s.Engine.Save().Marshal()
	case OpRestore:
		if s.saved == nil {
			return res, errors.New(errors.ErrCodeNotFound, "no snapshot saved yet")
		}
		var snap layout.Snapshot
		if snap, err = layout.UnmarshalSnapshot(s.saved); err == nil {
			err = s.Resume(snap)
		}
	}
	if err == nil && s.Engine.LayoutRequested() {
		err = s.Engine.Layout()
	}
	res.Window = s.Engine.Window()
	res.Elapsed = time.Since(began)
	return res, err
}

const defaultExtent = 100

// Runner executes scenarios.
type Runner struct {
	Logger *log.Logger

	// Trace captures a document after every step.
	Trace bool
}

// NewRunner creates a runner. A nil logger means log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Result is the outcome of a scenario run.
type Result struct {
	Name     string           `json:"name"`
	Steps    []StepResult     `json:"steps"`
	Final    render.Document  `json:"final"`
	Snapshot layout.Snapshot  `json:"snapshot"`
	Stats    sim.Stats        `json:"stats"`
	Elapsed  time.Duration    `json:"elapsed"`
	Saved    *layout.Snapshot `json:"saved,omitempty"`
}

// Run lays out the scenario's data set and applies its steps in order. It
// stops at the first failing step and returns the steps that ran.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	began := time.Now()

	s, err := Start(sc.Config, logger)
	if err != nil {
		return nil, err
	}
	res := &Result{Name: sc.Name}
	if err := s.Engine.Layout(); err != nil {
		return res, fmt.Errorf("initial layout: %w", err)
	}
	logger.Debug("scenario started", "name", sc.Name, "items", s.Host.ItemCount(), "policy", s.Engine.Policy().Name())

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sr, err := s.Apply(st)
		sr.Index = i + 1
		if r.Trace {
			doc := s.Document()
			sr.Doc = &doc
		}
		res.Steps = append(res.Steps, sr)
		if err != nil {
			return res, fmt.Errorf("step %d (%s): %w", sr.Index, st.Op, err)
		}
		logger.Debug("step",
			"index", sr.Index,
			"op", st.Op,
			"applied", sr.Applied,
			"window", fmt.Sprintf("[%d,%d]", sr.Window.First, sr.Window.Last),
		)
	}

	res.Final = s.Document()
	res.Snapshot = s.Engine.Save()
	res.Stats = s.Host.Stats()
	if data := s.Saved(); data != nil {
		if snap, err := layout.UnmarshalSnapshot(data); err == nil {
			res.Saved = &snap
		}
	}
	res.Elapsed = time.Since(began)
	logger.Debug("scenario finished", "name", sc.Name, "steps", len(res.Steps), "duration", res.Elapsed)
	return res, nil
}
