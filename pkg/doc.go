// Package pkg provides the libraries behind laneview, an incremental lane
// layout engine for scrolling lists and grids.
//
// # Overview
//
// Laneview places the items of a large data set into parallel lanes (rows of
// a list, columns of a grid) and only ever lays out the items that intersect
// the viewport. Scrolling recycles items that leave the window and fills the
// gap that opens; data set changes keep the first visible item in place.
//
// # Architecture
//
// The typical data flow:
//
//	scenario file (TOML)
//	         ↓
//	    [scenario] package (build host + engine, run steps)
//	         ↓
//	    [layout] package (policies, scrolling, mutations, snapshots)
//	         ↓
//	    [render] package (window document → SVG, JSON, DOT, text)
//
// # Quick Start
//
//	host := sim.New(lanes.Viewport{Width: 300, Height: 600}, sim.Varied(200, 80, 140, 60))
//	e := layout.New(host, layout.NewStaggeredGrid(3, 3), layout.Options{})
//	host.Bind(e)
//	if err := e.Layout(); err != nil {
//	    return err
//	}
//	e.ScrollBy(450)
//	svg := render.RenderSVG(render.Capture(e, host), render.WithLanes())
//
// # Main Packages
//
// [lanes] - Lane geometry and the tracker that records how far each lane has
// been filled in both scroll directions.
//
// [placement] - Per-position lane assignments that survive recycling, with
// position shifting for inserts, removals and moves.
//
// [layout] - The engine and its four policies: list, grid, spannable grid
// and staggered grid.
//
// [sim] - A simulated host that measures items by extent, used by scenarios,
// tests and the HTTP server.
//
// [scenario] - Scripted layout sessions loaded from TOML.
//
// [render] - Captured window documents and their output formats. PNG and
// PDF go through rsvg-convert; graph layout through Graphviz.
//
// ## Infrastructure
//
// [cache] - Key/value stores for results and snapshots: file, Redis,
// MongoDB and a null store.
//
// [session] - Server-side layout sessions persisted as snapshots.
//
// [observability] - Hooks for cache and HTTP metrics.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
package pkg
