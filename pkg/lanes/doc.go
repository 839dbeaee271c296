// Package lanes tracks the parallel tracks that items are placed into.
//
// A lane is a column (vertical scrolling) or a row (horizontal scrolling).
// Each lane is a [Rect] whose extent along the primary axis grows as items
// are pushed onto its leading or trailing edge and shrinks as they are popped
// off again. The [Tracker] owns all lanes of a layout and answers placement
// questions:
//
//   - where the next item in a lane goes ([Tracker.ChildFrame])
//   - which run of lanes best fits an item spanning several lanes ([Tracker.FindLane])
//   - how far the content reaches in each direction ([Tracker.InnerStart], [Tracker.InnerEnd])
//
// The tracker supports a single level of [Tracker.Save] / [Tracker.Restore]
// so that a provisional layout pass can run without disturbing committed
// lane state.
//
// All coordinates are integers in host units (pixels, terminal cells).
package lanes
