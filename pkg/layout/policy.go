package layout

import (
	"strings"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/placement"
)

// Policy decides how items map onto lanes.
//
// Policies are stateless with respect to a layout pass: the lane tracker and
// the placement cache are handed in through [Env] for the duration of a call.
type Policy interface {
	// Name identifies the policy in logs and snapshots.
	Name() string

	// LaneCount returns the number of lanes for orientation o.
	LaneCount(o lanes.Orientation) int

	// SpanFor returns how many lanes the item at position occupies. v is
	// nil when the engine replays a cached item without materializing it.
	SpanFor(env *Env, position int, v View) (int, error)

	// LaneFor returns the lanes the item at position occupies when it is
	// placed toward dir.
	LaneFor(env *Env, position, span int, dir lanes.Direction) (lanes.Info, error)

	// RelayoutTo moves the lanes so that the item at position can be placed
	// with its leading edge at offset.
	RelayoutTo(env *Env, position, offset int) error
}

// Constrainer is implemented by policies that constrain both axes when a
// view is measured.
type Constrainer interface {
	Constraints(env *Env, position, span int) (width, height int)
}

// Env gives a policy access to the engine state for one call.
type Env struct {
	Lanes       *lanes.Tracker
	Entries     *placement.Cache
	Orientation lanes.Orientation

	e *Engine
}

// ViewFor returns the view for position. Views obtained here are reused when
// the same position is materialized later in the pass.
func (env *Env) ViewFor(position int) (View, error) {
	return env.e.peek(position)
}

// Measure measures v for position, constrained by span lanes.
func (env *Env) Measure(position int, v View, span int) lanes.Size {
	w, h := env.constraints(position, span)
	return v.Measure(w, h)
}

func (env *Env) constraints(position, span int) (int, int) {
	if c, ok := env.e.policy.(Constrainer); ok {
		return c.Constraints(env, position, span)
	}
	if env.Orientation == lanes.Vertical {
		return env.Lanes.LaneSizeH() * span, 0
	}
	return 0, env.Lanes.LaneSizeV() * span
}

// PushFrame pushes frame into the span lanes starting at lane, recording span
// margins on entry the first time a multi-lane item is pushed toward End.
func (env *Env) PushFrame(entry *placement.Entry, frame lanes.Rect, lane, span int, dir lanes.Direction) {
	record := dir == lanes.End && entry != nil && !entry.HasMargins()
	for i := lane; i < lane+span; i++ {
		margin := 0
		if entry != nil && dir != lanes.End {
			margin = entry.Margin(i - lane)
		}
		delta := env.Lanes.PushFrame(frame, i, margin, dir)
		if span > 1 && record {
			entry.SetMargin(i-lane, delta, span)
		}
	}
}

// PopFrame reverses [Env.PushFrame] for an item leaving the window.
func (env *Env) PopFrame(entry *placement.Entry, frame lanes.Rect, lane, span int, dir lanes.Direction) {
	for i := lane; i < lane+span; i++ {
		margin := 0
		if entry != nil && dir != lanes.End {
			margin = entry.Margin(i - lane)
		}
		env.Lanes.PopFrame(frame, i, margin, dir)
	}
}

// cachedLane returns the lanes recorded for position, re-anchored against
// the current lane edges, and otherwise finds and records fresh ones.
func cachedLane(env *Env, position, span int, dir lanes.Direction) (lanes.Info, error) {
	entry := env.Entries.Get(position)
	if entry != nil && !entry.Lane().IsUndefined() {
		if info, ok := env.Lanes.Reanchor(entry.StartLane, span, dir); ok {
			entry.Span = span
			return info, nil
		}
	}

	info := env.Lanes.FindLane(span, dir)
	if info.IsUndefined() {
		return info, errors.New(errors.ErrCodePrecondition,
			"no run of %d lanes fits position %d in %d lanes", span, position, env.Lanes.Count())
	}
	if entry == nil {
		entry = placement.NewEntry(info)
		env.Entries.Put(position, entry)
	} else {
		entry.InvalidateLane()
		entry.SetLane(info)
	}
	entry.Span = span
	return info, nil
}

// replayItem is one item pushed while rebuilding lanes up to an anchor.
type replayItem struct {
	info  lanes.Info
	span  int
	size  lanes.Size
	entry *placement.Entry
}

// replay rebuilds lane edges by pushing every item before position toward
// End, then moves the lanes so the item at position lands at offset.
func replay(env *Env, position, offset int, item func(i int) (replayItem, error)) error {
	env.Lanes.ResetForOffset(0)
	var anchor replayItem
	for i := 0; i <= position; i++ {
		it, err := item(i)
		if err != nil {
			return err
		}
		if i == position {
			anchor = it
			break
		}
		frame := env.Lanes.ChildFrame(it.size, it.info, lanes.End)
		env.PushFrame(it.entry, frame, it.info.Start, it.span, lanes.End)
	}
	edge := env.Lanes.Lane(anchor.info.Anchor).End(env.Orientation)
	env.Lanes.ResetForDirection(lanes.End)
	env.Lanes.Offset(offset - edge)
	return nil
}

// missingEntry reports a placement entry that must exist but does not.
func missingEntry(position int) error {
	return errors.New(errors.ErrCodeMissingEntry, "no placement entry for position %d", position)
}

// PolicyNames lists the names accepted by [ParsePolicy].
var PolicyNames = []string{"list", "grid", "spannable", "staggered"}

// ParsePolicy builds a policy by name. cols and rows configure the grid
// policies and are ignored by the list.
func ParsePolicy(name string, cols, rows int) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "list", "":
		return NewList(), nil
	case "grid":
		return NewGrid(cols, rows), nil
	case "spannable", "spannable-grid":
		return NewSpannableGrid(cols, rows), nil
	case "staggered", "staggered-grid":
		return NewStaggeredGrid(cols, rows), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidPolicy,
			"unknown policy %q (want one of %s)", name, strings.Join(PolicyNames, ", "))
	}
}
