package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/render"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,json,text", []string{"svg", "json", "text"}},
		{"spaces and empties", " svg, ,png ", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"all", validFormats, false},
		{"graph", []string{"graph"}, false},
		{"invalid format", []string{"bmp"}, true},
		{"mixed valid invalid", []string{"svg", "bmp"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("validateFormats(%v) code = %s, want INVALID_FORMAT", tt.formats, errors.GetCode(err))
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived from input", "", []string{"svg", "text"},
			map[string]string{"svg": "dir/feed.svg", "text": "dir/feed.txt"}},
		{"single explicit", "out/window.png", []string{"png"},
			map[string]string{"png": "out/window.png"}},
		{"base with extension", "out/window.svg", []string{"svg", "graph"},
			map[string]string{"svg": "out/window.svg", "graph": "out/window.graph.svg"}},
		{"plain base", "out/window", []string{"json", "dot"},
			map[string]string{"json": "out/window.json", "dot": "out/window.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths("dir/feed.toml", &renderOpts{output: tt.output, formats: tt.formats})
			if len(got) != len(tt.want) {
				t.Fatalf("outputPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("outputPaths()[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func testDoc() render.Document {
	return render.Document{
		Policy:   "grid",
		Viewport: lanes.Viewport{Width: 40, Height: 20},
		Window:   layout.Window{First: 0, Last: 1, Count: 2, End: 20},
		Lanes:    []lanes.Rect{{Left: 0, Top: 0, Right: 20, Bottom: 20}, {Left: 20, Top: 0, Right: 40, Bottom: 20}},
		Items: []render.Item{
			{Position: 0, ID: "a", Frame: lanes.Rect{Left: 0, Top: 0, Right: 20, Bottom: 20}, Lane: 0, Span: 1},
			{Position: 1, ID: "b", Frame: lanes.Rect{Left: 20, Top: 0, Right: 40, Bottom: 10}, Lane: 1, Span: 1},
		},
	}
}

func TestRenderFormat(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		format   string
		opts     renderOpts
		contains string
		excludes string
	}{
		{formatJSON, renderOpts{}, `"policy": "grid"`, ""},
		{formatJSON, renderOpts{noLanes: true}, `"lanes": null`, ""},
		{formatDOT, renderOpts{}, "subgraph cluster_lane1", ""},
		{formatText, renderOpts{cellWidth: 10, cellHeight: 10}, "|aabb|", ""},
		{formatSVG, renderOpts{}, `class="lane"`, ""},
		{formatSVG, renderOpts{noLanes: true, noLabels: true}, "<svg", `class="lane"`},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.contains, func(t *testing.T) {
			data, err := renderFormat(ctx, testDoc(), tt.format, &tt.opts)
			if err != nil {
				t.Fatalf("renderFormat(%s) error: %v", tt.format, err)
			}
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("renderFormat(%s) does not contain %q:\n%s", tt.format, tt.contains, data)
			}
			if tt.excludes != "" && strings.Contains(string(data), tt.excludes) {
				t.Errorf("renderFormat(%s) contains %q:\n%s", tt.format, tt.excludes, data)
			}
		})
	}
}

func TestRunRender(t *testing.T) {
	_, ctx := testCLI(t)
	input := writeScenario(t, testScenario)
	base := filepath.Join(t.TempDir(), "window")

	opts := &renderOpts{output: base, formats: []string{formatSVG, formatText}, cellWidth: 30, cellHeight: 25, step: 1}
	if err := runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	for _, ext := range []string{".svg", ".txt"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			t.Fatalf("read %s: %v", ext, err)
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
	}

	opts.step = 9
	if err := runRender(ctx, input, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runRender(step 9) error = %v, want INVALID_INPUT", err)
	}
}
