package render

import (
	"bytes"
	"fmt"
	"html"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	lanes    bool
	labels   bool
	overscan bool
}

func WithLanes() SVGOption    { return func(r *svgRenderer) { r.lanes = true } }
func WithLabels() SVGOption   { return func(r *svgRenderer) { r.labels = true } }
func WithOverscan() SVGOption { return func(r *svgRenderer) { r.overscan = true } }

var palette = []string{"#8ecae6", "#ffb703", "#90be6d", "#f28482", "#cdb4db", "#f6bd60", "#84a59d", "#a2d2ff"}

// RenderSVG draws the viewport and the items of doc. Without
// [WithOverscan] the picture is clipped to the viewport.
func RenderSVG(doc Document, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	b := doc.bounds(r.overscan)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%d %d %d %d" width="%d" height="%d">`+"\n",
		b.Left, b.Top, b.Width(), b.Height(), b.Width(), b.Height())
	buf.WriteString(`  <defs><clipPath id="viewport">`)
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%d" height="%d"/>`, doc.Viewport.Width, doc.Viewport.Height)
	buf.WriteString("</clipPath></defs>\n")

	clip := ` clip-path="url(#viewport)"`
	if r.overscan {
		clip = ""
	}
	fmt.Fprintf(&buf, "  <g%s>\n", clip)

	if r.lanes {
		for i, l := range doc.Lanes {
			fmt.Fprintf(&buf, `    <rect class="lane" data-lane="%d" x="%d" y="%d" width="%d" height="%d" fill="#f1f3f5" stroke="#ced4da" stroke-dasharray="4 2"/>`+"\n",
				i, l.Left, l.Top, l.Width(), l.Height())
		}
	}
	for _, it := range doc.Items {
		writeItem(&buf, it, palette[it.Position%len(palette)], false, r.labels)
	}
	for _, it := range doc.Ghosts {
		writeItem(&buf, it, "none", true, r.labels)
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <rect class="viewport" x="0" y="0" width="%d" height="%d" fill="none" stroke="#212529" stroke-width="2"/>`+"\n",
		doc.Viewport.Width, doc.Viewport.Height)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeItem(buf *bytes.Buffer, it Item, fill string, ghost, label bool) {
	class, extra := "item", ""
	if ghost {
		class, extra = "ghost", ` stroke-dasharray="6 3"`
	}
	stroke := "#495057"
	if it.Checked {
		stroke = "#d00000"
	}
	f := it.Frame
	fmt.Fprintf(buf, `    <rect class="%s" id="item-%d" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s"%s/>`+"\n",
		class, it.Position, f.Left, f.Top, f.Width(), f.Height(), fill, stroke, extra)
	if label && f.Width() > 0 && f.Height() > 0 {
		fmt.Fprintf(buf, `    <text x="%d" y="%d" font-family="monospace" font-size="12" text-anchor="middle" dominant-baseline="middle">%d %s</text>`+"\n",
			f.Left+f.Width()/2, f.Top+f.Height()/2, it.Position, html.EscapeString(it.ID))
	}
}
