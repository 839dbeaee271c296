package layout

import "github.com/matzehuels/laneview/pkg/lanes"

// List places every item in a single lane.
type List struct{}

// NewList returns the single lane policy.
func NewList() *List { return &List{} }

func (*List) Name() string { return "list" }

func (*List) LaneCount(lanes.Orientation) int { return 1 }

func (*List) SpanFor(*Env, int, View) (int, error) { return 1, nil }

func (*List) LaneFor(*Env, int, int, lanes.Direction) (lanes.Info, error) {
	return lanes.Info{}, nil
}

func (*List) RelayoutTo(env *Env, _, offset int) error {
	env.Lanes.ResetForOffset(offset)
	return nil
}
