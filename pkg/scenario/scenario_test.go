package scenario

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/sim"
)

const listScenario = `
name = "list"
policy = "list"

[viewport]
width = 300
height = 200

[generate]
count = 20
extents = [50]
`

func quietRunner() *Runner {
	return &Runner{Logger: log.New(io.Discard)}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"valid", listScenario, ""},
		{"unknown key", listScenario + "\ncolour = \"red\"\n", errors.ErrCodeInvalidScenario},
		{"bad policy", "policy = \"masonry\"\n[viewport]\nwidth = 10\nheight = 10\n", errors.ErrCodeInvalidScenario},
		{"empty viewport", "policy = \"list\"\n", errors.ErrCodeInvalidScenario},
		{"bad op", listScenario + "\n[[steps]]\nop = \"jump\"\n", errors.ErrCodeInvalidScenario},
		{"resize without size", listScenario + "\n[[steps]]\nop = \"resize\"\n", errors.ErrCodeInvalidScenario},
		{"insert without items", listScenario + "\n[[steps]]\nop = \"insert\"\n", errors.ErrCodeInvalidScenario},
		{"not toml", "policy = ", errors.ErrCodeInvalidScenario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.src))
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Parse() error: %v", err)
				}
				if sc.Name != "list" || sc.Viewport.Width != 300 {
					t.Errorf("Parse() = %+v", sc)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseOrientationAndItems(t *testing.T) {
	src := `
policy = "staggered"
rows = 2
orientation = "horizontal"

[viewport]
width = 400
height = 200

[[items]]
id = "hero"
extent = 120
span = 2

[[items]]
id = "tail"
extent = 60
margin = { top = 2, right = 2, bottom = 2, left = 2 }

[[steps]]
op = "orientation"
orientation = "vertical"
`
	sc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if sc.Orientation != lanes.Horizontal {
		t.Errorf("Orientation = %v, want horizontal", sc.Orientation)
	}
	if len(sc.Items) != 2 || sc.Items[0].Span != 2 || sc.Items[1].Margin.Left != 2 {
		t.Errorf("Items = %+v", sc.Items)
	}
	if sc.Steps[0].Orientation != lanes.Vertical {
		t.Errorf("step orientation = %v, want vertical", sc.Steps[0].Orientation)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.toml")
	src := "policy = \"grid\"\ncolumns = 2\n[viewport]\nwidth = 200\nheight = 100\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if sc.Name != "feed" {
		t.Errorf("Name = %q, want file name", sc.Name)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDataSet(t *testing.T) {
	cfg := Config{
		Items:    []sim.Item{{ID: "first", Extent: 10}},
		Generate: &Generate{Count: 6, Extents: []int{20, 30}, SpanEvery: 3},
	}
	items := cfg.DataSet()
	if len(items) != 7 {
		t.Fatalf("DataSet() has %d items, want 7", len(items))
	}
	if items[0].ID != "first" || items[1].ID != "item-1" || items[6].ID != "item-6" {
		t.Errorf("IDs = %q %q %q", items[0].ID, items[1].ID, items[6].ID)
	}
	if items[1].Extent != 20 || items[2].Extent != 30 {
		t.Errorf("extents = %d %d, want 20 30", items[1].Extent, items[2].Extent)
	}
	for i, it := range items[1:] {
		want := 0
		if i%3 == 2 {
			want = 2
		}
		if it.Span != want {
			t.Errorf("generated item %d Span = %d, want %d", i, it.Span, want)
		}
	}
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	sc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return sc
}

func TestRunScroll(t *testing.T) {
	sc := mustParse(t, listScenario+`
[[steps]]
op = "scroll"
delta = 120
`)
	res, err := quietRunner().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	st := res.Steps[0]
	if st.Applied != 120 {
		t.Errorf("Applied = %d, want 120", st.Applied)
	}
	if st.Window.First != 2 || st.Window.Last != 6 {
		t.Errorf("Window = [%d,%d], want [2,6]", st.Window.First, st.Window.Last)
	}
	if got := res.Final.Items[0].Frame.Top; got != -20 {
		t.Errorf("first frame top = %d, want -20", got)
	}
	if res.Stats.Live != len(res.Final.Items) {
		t.Errorf("Stats.Live = %d, want %d", res.Stats.Live, len(res.Final.Items))
	}
}

func TestRunSaveRestore(t *testing.T) {
	sc := mustParse(t, listScenario+`
[[steps]]
op = "scroll"
delta = 120

[[steps]]
op = "save"

[[steps]]
op = "scroll"
delta = 190

[[steps]]
op = "restore"
`)
	r := quietRunner()
	r.Trace = true
	res, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Saved == nil || res.Saved.AnchorPosition != 2 {
		t.Fatalf("Saved = %+v, want anchor 2", res.Saved)
	}
	if res.Steps[2].Window.First == 2 {
		t.Fatalf("second scroll did not move the window")
	}

	saved := res.Steps[1].Doc.Items
	final := res.Final.Items
	if len(final) != len(saved) {
		t.Fatalf("restored window has %d items, want %d", len(final), len(saved))
	}
	for i := range saved {
		if final[i].Position != saved[i].Position || final[i].Frame != saved[i].Frame {
			t.Errorf("item %d = %d %v, want %d %v", i, final[i].Position, final[i].Frame, saved[i].Position, saved[i].Frame)
		}
	}
}

func TestRunRemoveInsideWindow(t *testing.T) {
	sc := mustParse(t, listScenario+`
[[steps]]
op = "remove"
position = 1
`)
	res, err := quietRunner().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{"item-0", "item-2", "item-3", "item-4"}
	if len(res.Final.Items) != len(want) {
		t.Fatalf("window has %d items, want %d", len(res.Final.Items), len(want))
	}
	for i, it := range res.Final.Items {
		if it.ID != want[i] || it.Position != i || it.Frame.Top != i*50 {
			t.Errorf("item %d = %s at %d top %d", i, it.ID, it.Position, it.Frame.Top)
		}
	}
}

func TestRunColumns(t *testing.T) {
	sc := mustParse(t, `
policy = "grid"
columns = 4

[viewport]
width = 400
height = 200

[generate]
count = 40

[[steps]]
op = "columns"
columns = 2
`)
	r := quietRunner()
	r.Trace = true
	res, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := len(res.Final.Lanes); got != 2 {
		t.Errorf("lanes = %d, want 2", got)
	}
	if got := len(res.Final.Items); got != 4 {
		t.Errorf("items = %d, want 4", got)
	}
	if got := res.Final.Items[1].Frame; got != (lanes.Rect{Left: 200, Top: 0, Right: 400, Bottom: 100}) {
		t.Errorf("item 1 frame = %v", got)
	}
}

func TestRunStepErrors(t *testing.T) {
	tests := []struct {
		name string
		step string
		code errors.Code
	}{
		{"remove out of range", "op = \"remove\"\nposition = 50\n", errors.ErrCodeInvalidInput},
		{"restore without save", "op = \"restore\"\n", errors.ErrCodeNotFound},
		{"columns on list", "op = \"columns\"\ncolumns = 3\n", errors.ErrCodeUnsupported},
		{"toggle out of range", "op = \"toggle\"\nposition = -1\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := mustParse(t, listScenario+"\n[[steps]]\n"+tt.step)
			res, err := quietRunner().Run(context.Background(), sc)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Run() error = %v, want code %s", err, tt.code)
			}
			if len(res.Steps) != 1 {
				t.Errorf("Steps = %d, want the failing step recorded", len(res.Steps))
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	sc := mustParse(t, listScenario+"\n[[steps]]\nop = \"layout\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietRunner().Run(ctx, sc); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
