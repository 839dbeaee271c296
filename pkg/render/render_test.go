package render

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/sim"
)

func testDocument() Document {
	return Document{
		Policy:   "staggered",
		Viewport: lanes.Viewport{Width: 40, Height: 20},
		Lanes: []lanes.Rect{
			{Left: 0, Top: 0, Right: 20, Bottom: 10},
			{Left: 20, Top: 0, Right: 40, Bottom: 20},
		},
		Items: []Item{
			{Position: 0, ID: "a", Frame: lanes.Rect{Left: 0, Top: 0, Right: 20, Bottom: 10}, Lane: 0, Span: 1},
			{Position: 1, ID: "b", Frame: lanes.Rect{Left: 20, Top: 0, Right: 40, Bottom: 20}, Lane: 1, Span: 1, Checked: true},
			{Position: 2, ID: "c", Frame: lanes.Rect{Left: 0, Top: 20, Right: 40, Bottom: 30}, Lane: 0, Span: 2},
		},
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(testDocument(), TextOptions{CellWidth: 10, CellHeight: 10})
	want := "+----+\n|aabb|\n|..bb|\n+----+\n"
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTextLegend(t *testing.T) {
	got := RenderText(testDocument(), TextOptions{CellWidth: 10, CellHeight: 10, Legend: true})
	if !strings.Contains(got, "c #2") || !strings.Contains(got, "span 2") {
		t.Errorf("legend missing item 2:\n%s", got)
	}
}

func TestRasterizeGhosts(t *testing.T) {
	doc := testDocument()
	doc.Items = nil
	doc.Ghosts = []Item{{Position: 5, Frame: lanes.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}, Lane: NoLane}}
	r := Rasterize(doc, 10, 10)
	if r.Cols != 4 || r.Rows != 2 {
		t.Fatalf("Rasterize() = %dx%d cells, want 4x2", r.Cols, r.Rows)
	}
	if r.Cells[0][0] != CellGhost || r.Cells[0][1] != CellEmpty {
		t.Errorf("first row = %v, want ghost then empty", r.Cells[0])
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testDocument())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if len(out.Items) != 3 || out.Items[2].Span != 2 {
		t.Errorf("Items = %+v, want 3 items with a span 2 item last", out.Items)
	}
	if len(out.Lanes) != 2 {
		t.Errorf("Lanes count = %d, want 2", len(out.Lanes))
	}

	data, err = RenderJSON(Document{}, WithoutLanes(), WithIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if !strings.Contains(string(data), `"items": []`) {
		t.Errorf("empty document should encode an empty item list:\n%s", data)
	}
	if strings.Contains(string(data), `"lanes": [`) {
		t.Errorf("WithoutLanes() output still has lanes:\n%s", data)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testDocument(), WithLanes(), WithLabels()))
	for _, want := range []string{
		`viewBox="0 0 40 20"`,
		`class="lane" data-lane="1"`,
		`id="item-2"`,
		`clip-path="url(#viewport)"`,
		`stroke="#d00000"`,
		`>1 b</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}

	over := string(RenderSVG(testDocument(), WithOverscan()))
	if !strings.Contains(over, `viewBox="0 0 40 30"`) {
		t.Errorf("WithOverscan() should grow the view box to the items:\n%s", over)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDocument(), DOTOptions{Detailed: true})
	for _, want := range []string{
		"subgraph cluster_lane0",
		"subgraph cluster_lane1",
		`"0" -> "2";`,
		`"1" -> "2";`,
		"rankdir=TB",
		"fillcolor=lightgrey",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"0" -> "1"`) {
		t.Errorf("items in different lanes must not be linked:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
}

func TestCapture(t *testing.T) {
	h := sim.New(lanes.Viewport{Width: 300, Height: 200}, sim.Uniform(30, 50))
	e := layout.New(h, layout.NewGrid(3, 1), layout.Options{Logger: log.New(io.Discard)})
	h.Bind(e)
	if err := e.Layout(); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if err := h.Toggle(4); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if err := e.Layout(); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	doc := Capture(e, h)
	if doc.Policy != "grid" || len(doc.Lanes) != 3 {
		t.Errorf("Capture() policy %q with %d lanes, want grid with 3", doc.Policy, len(doc.Lanes))
	}
	if len(doc.Items) != 12 {
		t.Fatalf("Capture() has %d items, want 12", len(doc.Items))
	}
	for _, it := range doc.Items {
		if it.ID != "item-"+strconv.Itoa(it.Position) {
			t.Errorf("item %d has ID %q", it.Position, it.ID)
		}
		if it.Checked != (it.Position == 4) {
			t.Errorf("item %d Checked = %v", it.Position, it.Checked)
		}
	}
}

func TestConvertWithoutRsvg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	svg := RenderSVG(testDocument())

	if _, err := ToPDF(context.Background(), svg); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPNG(context.Background(), svg, 2); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG() error = %v, want UNSUPPORTED", err)
	}
}
