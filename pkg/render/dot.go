package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/laneview/pkg/lanes"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds frames and spans to node labels.
	Detailed bool
}

// ToDOT describes the lane assignment of doc as a Graphviz graph: one
// cluster per lane and an edge from each item to the next item stacked in
// the same lane. Items covering several lanes sit in the cluster of their
// first lane and receive an edge from every lane they cover.
func ToDOT(doc Document, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lanes {\n")
	rankdir := "TB"
	if doc.Orientation == lanes.Horizontal {
		rankdir = "LR"
	}
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace];\n")
	buf.WriteString("\n")

	items := slices.Clone(doc.Items)
	slices.SortFunc(items, func(a, b Item) int { return a.Position - b.Position })

	for lane := range doc.Lanes {
		fmt.Fprintf(&buf, "  subgraph cluster_lane%d {\n", lane)
		fmt.Fprintf(&buf, "    label=\"lane %d\";\n", lane)
		buf.WriteString("    style=dashed;\n")
		for _, it := range items {
			if it.Lane == lane {
				fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(it), nodeAttrs(it, opts.Detailed))
			}
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for lane := range doc.Lanes {
		prev := ""
		for _, it := range items {
			if lane < it.Lane || lane >= it.Lane+max(1, it.Span) {
				continue
			}
			if prev != "" {
				fmt.Fprintf(&buf, "  %q -> %q;\n", prev, nodeID(it))
			}
			prev = nodeID(it)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(it Item) string { return strconv.Itoa(it.Position) }

func nodeAttrs(it Item, detailed bool) string {
	label := fmt.Sprintf("#%d %s", it.Position, it.ID)
	if detailed {
		label += fmt.Sprintf("\n%v\nspan %d", it.Frame, it.Span)
	}
	attrs := fmt.Sprintf("label=%q", label)
	if it.Span > 1 {
		attrs += ", fillcolor=lightgrey"
	}
	if it.Checked {
		attrs += ", color=red, penwidth=2"
	}
	return attrs
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
