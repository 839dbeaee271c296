// Package render exports a laid out window.
//
// # Overview
//
// [Capture] turns an engine and its simulated host into a [Document]: the
// viewport, the lane rectangles, every laid out item with its frame and the
// ghosts of the last predictive pass. Exporters render documents:
//
//   - [RenderJSON]: the document as JSON, for tooling and the HTTP API
//   - [RenderSVG]: a picture of the viewport with lanes and item frames
//   - [ToDOT]: the lane assignment as a Graphviz graph; [RenderDOT] draws it
//   - [RenderText]: a character map of the viewport for terminals
//
// SVG output converts to PDF and PNG with [ToPDF] and [ToPNG], which shell
// out to rsvg-convert.
//
//	doc := render.Capture(engine, host)
//	svg := render.RenderSVG(doc, render.WithLanes(), render.WithLabels())
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
