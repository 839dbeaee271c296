// Package layout implements an incremental lane layout engine for virtualized
// lists and grids that scroll in one direction.
//
// The [Engine] only ever materializes the items that intersect the viewport.
// It places them into lanes tracked by a [lanes.Tracker], caches per-item
// placement in a [placement.Cache], recycles items that scroll out of view
// and fills the gaps that scrolling opens, all without laying out the whole
// data set.
//
// # Policies
//
// Lane count, spans and anchor repositioning are decided by a [Policy]:
//
//   - [List]: one lane.
//   - [Grid]: uniform cells, lane = position mod lane count.
//   - [SpannableGrid]: items span several columns and rows of fixed cells.
//   - [StaggeredGrid]: items of varying extent flow into the least advanced lane.
//
// # Host
//
// The engine never creates or draws anything. A [Host] hands out [View]
// values for adapter positions, measures them and takes them back when they
// leave the window. Data set changes are reported through
// [Engine.ItemsInserted], [Engine.ItemsRemoved], [Engine.ItemMoved],
// [Engine.ItemsUpdated] and [Engine.DataSetChanged], after the host's item
// count already reflects them.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. All calls must come from the
// goroutine that owns the host.
package layout
