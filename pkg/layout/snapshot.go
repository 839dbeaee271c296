package layout

import (
	"encoding/json"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/placement"
)

// Snapshot is the saved layout state of an engine. Restoring it into an
// engine with the same viewport and policy reproduces the lanes and the
// window it was taken from.
type Snapshot struct {
	Orientation    lanes.Orientation `json:"orientation"`
	Policy         string            `json:"policy,omitempty"`
	AnchorPosition int               `json:"anchor_position"`
	LaneCount      int               `json:"lane_count"`
	LaneSizeH      int               `json:"lane_size_h"`
	LaneSizeV      int               `json:"lane_size_v"`
	Lanes          []lanes.Rect      `json:"lanes,omitempty"`
	Entries        []SnapshotEntry   `json:"entries,omitempty"`
}

// SnapshotEntry is a cached placement and the position it belongs to.
type SnapshotEntry struct {
	Position int `json:"position"`
	placement.Entry
}

// hasLanes reports whether the snapshot carries usable lane state.
func (s Snapshot) hasLanes() bool {
	return s.LaneCount > 0 && s.LaneSizeH > 0 && s.LaneSizeV > 0
}

// Validate checks the snapshot for internal consistency.
func (s Snapshot) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidSnapshot, format, args...)
	}
	if s.AnchorPosition < 0 {
		return invalid("negative anchor position %d", s.AnchorPosition)
	}
	if s.LaneCount < 0 || s.LaneSizeH < 0 || s.LaneSizeV < 0 {
		return invalid("negative lane configuration (%d lanes of %dx%d)", s.LaneCount, s.LaneSizeH, s.LaneSizeV)
	}
	if len(s.Lanes) != s.LaneCount {
		return invalid("lane count %d does not match %d lane rectangles", s.LaneCount, len(s.Lanes))
	}
	for i, r := range s.Lanes {
		if r.Left > r.Right || r.Top > r.Bottom {
			return invalid("lane %d has inverted edges %v", i, r)
		}
	}

	seen := make(map[int]bool, len(s.Entries))
	for _, en := range s.Entries {
		if en.Position < 0 {
			return invalid("entry at negative position %d", en.Position)
		}
		if seen[en.Position] {
			return invalid("duplicate entry for position %d", en.Position)
		}
		seen[en.Position] = true

		span := max(1, en.Span)
		if s.LaneCount > 0 && span > s.LaneCount {
			return invalid("entry %d spans %d of %d lanes", en.Position, span, s.LaneCount)
		}
		if !en.Lane().IsUndefined() {
			if en.StartLane < 0 || en.StartLane+span > s.LaneCount || en.AnchorLane < 0 || en.AnchorLane >= s.LaneCount {
				return invalid("entry %d has lanes %+v outside %d lanes", en.Position, en.Lane(), s.LaneCount)
			}
		}
		if en.HasMargins() && len(en.Margins) != span {
			return invalid("entry %d has %d margins for span %d", en.Position, len(en.Margins), span)
		}
	}
	return nil
}

// Marshal encodes the snapshot as JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes and validates a JSON snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Save captures the current layout state. A snapshot restored but not yet
// laid out is returned as is.
func (e *Engine) Save() Snapshot {
	if r := e.restore; r != nil {
		return cloneSnapshot(r.snapshot)
	}

	s := Snapshot{
		Orientation:    e.opts.Orientation,
		Policy:         e.policy.Name(),
		AnchorPosition: max(0, e.FirstVisiblePosition()),
	}
	if e.pending != nil && e.pending.position >= 0 {
		s.AnchorPosition = e.pending.position
	}
	if e.lanes != nil {
		s.LaneCount = e.lanes.Count()
		s.LaneSizeH = e.lanes.LaneSizeH()
		s.LaneSizeV = e.lanes.LaneSizeV()
		s.Lanes = e.lanes.Rects()
	}
	for _, pos := range e.entries.Positions() {
		s.Entries = append(s.Entries, SnapshotEntry{Position: pos, Entry: *e.entries.Get(pos).Clone()})
	}
	return s
}

// Restore schedules s to be applied by the next layout. The snapshot's
// orientation replaces the engine's. Lane state is only reused when s
// carries lanes; otherwise only the anchor position is restored.
func (e *Engine) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r := &restoreState{snapshot: cloneSnapshot(s), entries: placement.New()}
	if s.hasLanes() {
		r.lanes = lanes.FromRects(s.Orientation, s.Lanes, s.LaneSizeH, s.LaneSizeV)
		for _, en := range s.Entries {
			r.entries.Put(en.Position, en.Entry.Clone())
		}
	}
	e.opts.Orientation = s.Orientation
	e.restore = r
	e.pending = nil
	e.requested = true
	e.logger.Debug("snapshot restored", "anchor", s.AnchorPosition, "lanes", s.LaneCount, "entries", len(s.Entries))
	return nil
}

func cloneSnapshot(s Snapshot) Snapshot {
	c := s
	c.Lanes = append([]lanes.Rect(nil), s.Lanes...)
	c.Entries = make([]SnapshotEntry, len(s.Entries))
	for i, en := range s.Entries {
		c.Entries[i] = SnapshotEntry{Position: en.Position, Entry: *en.Entry.Clone()}
	}
	return c
}
