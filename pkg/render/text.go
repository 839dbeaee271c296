package render

import (
	"fmt"
	"strings"
)

// Raster cell values that are not item indexes.
const (
	CellEmpty = -1
	CellGhost = -2
)

// Raster is the viewport sampled into character cells. Each cell holds the
// index into Document.Items of the item covering the cell's center, or one
// of [CellEmpty] and [CellGhost].
type Raster struct {
	Cols, Rows int
	Cells      [][]int
}

// Rasterize samples doc's viewport with cells of cellW by cellH units.
// Items are drawn in window order, so later items win overlapping cells.
func Rasterize(doc Document, cellW, cellH int) Raster {
	cellW, cellH = max(1, cellW), max(1, cellH)
	r := Raster{
		Cols: max(0, doc.Viewport.Width) / cellW,
		Rows: max(0, doc.Viewport.Height) / cellH,
	}
	r.Cells = make([][]int, r.Rows)
	for y := range r.Cells {
		row := make([]int, r.Cols)
		for x := range row {
			row[x] = CellEmpty
			cx, cy := x*cellW+cellW/2, y*cellH+cellH/2
			for _, g := range doc.Ghosts {
				if inside(g.Frame.Left, g.Frame.Top, g.Frame.Right, g.Frame.Bottom, cx, cy) {
					row[x] = CellGhost
				}
			}
			for i, it := range doc.Items {
				if inside(it.Frame.Left, it.Frame.Top, it.Frame.Right, it.Frame.Bottom, cx, cy) {
					row[x] = i
				}
			}
		}
		r.Cells[y] = row
	}
	return r
}

func inside(left, top, right, bottom, x, y int) bool {
	return x >= left && x < right && y >= top && y < bottom
}

// TextOptions configures [RenderText].
type TextOptions struct {
	CellWidth  int
	CellHeight int
	// Legend lists every item below the map.
	Legend bool
}

const glyphs = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Glyph returns the character used for the item at index i of a document.
func Glyph(i int) byte { return glyphs[i%len(glyphs)] }

// RenderText draws the viewport as a character map framed by a border.
// Item cells show [Glyph], ghosts '~' and empty space '.'.
func RenderText(doc Document, opts TextOptions) string {
	r := Rasterize(doc, opts.CellWidth, opts.CellHeight)

	var b strings.Builder
	border := "+" + strings.Repeat("-", r.Cols) + "+\n"
	b.WriteString(border)
	for _, row := range r.Cells {
		b.WriteByte('|')
		for _, c := range row {
			switch c {
			case CellEmpty:
				b.WriteByte('.')
			case CellGhost:
				b.WriteByte('~')
			default:
				b.WriteByte(Glyph(c))
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)

	if opts.Legend {
		for i, it := range doc.Items {
			fmt.Fprintf(&b, "%c #%-4d %-12s lane %d span %d %v\n", Glyph(i), it.Position, it.ID, it.Lane, it.Span, it.Frame)
		}
	}
	return b.String()
}
