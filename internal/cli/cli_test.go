package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/session"
)

const testScenario = `name = "scroll-list"
policy = "list"

[viewport]
width = 300
height = 200

[generate]
count = 20
extents = [50]

[[steps]]
op = "scroll"
delta = 120

[[steps]]
op = "toggle"
position = 3
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

// testCLI returns a CLI with a file store in a temporary directory.
func testCLI(t *testing.T) (*CLI, context.Context) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.config.Store = StoreConfig{Backend: cache.BackendFile, Dir: t.TempDir(), TTL: duration{time.Hour}}
	return c, withLogger(context.Background(), log.New(io.Discard))
}

func TestLoadScenarioOverrides(t *testing.T) {
	_, ctx := testCLI(t)
	path := writeScenario(t, testScenario)

	sc, err := loadScenario(ctx, path, &scenarioOverrides{policy: "grid", columns: 3, predictive: true})
	if err != nil {
		t.Fatalf("loadScenario() error: %v", err)
	}
	if sc.Policy != "grid" || sc.Columns != 3 || sc.Rows != 3 || !sc.Predictive {
		t.Errorf("overrides not applied: %+v", sc.Config)
	}

	_, err = loadScenario(ctx, path, &scenarioOverrides{policy: "hexagon"})
	if !errors.Is(err, errors.ErrCodeInvalidScenario) {
		t.Errorf("loadScenario(bad policy) error = %v, want INVALID_SCENARIO", err)
	}
}

func TestRunSimulateCachesResult(t *testing.T) {
	c, ctx := testCLI(t)
	path := writeScenario(t, testScenario)
	opts := simulateOpts{cellWidth: 30, cellHeight: 25}

	var out bytes.Buffer
	if err := c.runSimulate(ctx, &out, path, opts); err != nil {
		t.Fatalf("runSimulate() error: %v", err)
	}
	for _, want := range []string{"scroll-list", "scroll", "toggle", "+----------+"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}

	sc, err := loadScenario(ctx, path, &opts.overrides)
	if err != nil {
		t.Fatalf("loadScenario() error: %v", err)
	}
	key, err := resultKey(sc, cache.ResultKeyOpts{Format: "json", CellWidth: 30, CellHeight: 25})
	if err != nil {
		t.Fatalf("resultKey() error: %v", err)
	}
	store, err := c.openCache(ctx, false)
	if err != nil {
		t.Fatalf("openCache() error: %v", err)
	}
	defer store.Close()

	res, cached := c.cachedResult(ctx, store, key)
	if !cached || res == nil {
		t.Fatal("result was not cached")
	}
	if res.Final.Window.First != 2 || len(res.Steps) != 2 {
		t.Errorf("cached result window first = %d, steps = %d; want 2, 2", res.Final.Window.First, len(res.Steps))
	}

	otherKey, _ := resultKey(sc, cache.ResultKeyOpts{Format: "json", Trace: true, CellWidth: 30, CellHeight: 25})
	if otherKey == key {
		t.Error("trace must change the result key")
	}
}

func TestRunSimulateStepError(t *testing.T) {
	c, ctx := testCLI(t)
	path := writeScenario(t, testScenario+"\n[[steps]]\nop = \"restore\"\n")

	var out bytes.Buffer
	err := c.runSimulate(ctx, &out, path, simulateOpts{cellWidth: 10, cellHeight: 20, noCache: true})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("runSimulate() error = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(out.String(), "restore") {
		t.Errorf("failed step missing from output:\n%s", out.String())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, ctx := testCLI(t)
	path := writeScenario(t, testScenario)

	sc, err := loadScenario(ctx, path, nil)
	if err != nil {
		t.Fatalf("loadScenario() error: %v", err)
	}
	save := c.snapshotSaveCommand()
	save.SetContext(ctx)
	if err := save.RunE(save, []string{path}); err != nil {
		t.Fatalf("snapshot save error: %v", err)
	}

	snap, data, err := c.readSnapshot(ctx, sc.Name)
	if err != nil {
		t.Fatalf("readSnapshot() error: %v", err)
	}
	if snap.AnchorPosition != 2 || len(data) == 0 {
		t.Errorf("snapshot anchor = %d, want 2", snap.AnchorPosition)
	}

	doc, err := restoreWindow(ctx, sc, snap)
	if err != nil {
		t.Fatalf("restoreWindow() error: %v", err)
	}
	if doc.Window.First != 2 || doc.Items[0].Frame.Top != -20 {
		t.Errorf("restored window first = %d at top %d, want 2 at -20", doc.Window.First, doc.Items[0].Frame.Top)
	}

	del := c.snapshotDeleteCommand()
	del.SetContext(ctx)
	if err := del.RunE(del, []string{sc.Name}); err != nil {
		t.Fatalf("snapshot delete error: %v", err)
	}
	if _, _, err := c.readSnapshot(ctx, sc.Name); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("readSnapshot() after delete error = %v, want NOT_FOUND", err)
	}
	if _, _, err := c.readSnapshot(ctx, "../escape"); !errors.Is(err, errors.ErrCodeInvalidKey) {
		t.Errorf("readSnapshot(../escape) error = %v, want INVALID_KEY", err)
	}
}

func TestSessionStore(t *testing.T) {
	c, ctx := testCLI(t)

	tests := []struct {
		name    string
		backend string
		memory  bool
		want    string
	}{
		{"memory flag", cache.BackendFile, true, "*session.MemoryStore"},
		{"file backend", cache.BackendFile, false, "*session.CacheStore"},
		{"no backend", cache.BackendNone, false, "*session.MemoryStore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.config.Store.Backend = tt.backend
			store, closeStore, err := c.sessionStore(ctx, tt.memory)
			if err != nil {
				t.Fatalf("sessionStore() error: %v", err)
			}
			defer closeStore()
			var got string
			switch store.(type) {
			case *session.MemoryStore:
				got = "*session.MemoryStore"
			case *session.CacheStore:
				got = "*session.CacheStore"
			}
			if got != tt.want {
				t.Errorf("sessionStore() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunSimulateCellSize(t *testing.T) {
	c, ctx := testCLI(t)
	path := writeScenario(t, testScenario)

	err := c.runSimulate(ctx, io.Discard, path, simulateOpts{cellWidth: 0, cellHeight: 20, noCache: true})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runSimulate(cell width 0) error = %v, want INVALID_INPUT", err)
	}
}

func TestSnapshotListAndClear(t *testing.T) {
	c, ctx := testCLI(t)
	path := writeScenario(t, testScenario)

	for _, name := range []string{"top", "middle"} {
		save := c.snapshotSaveCommand()
		save.SetContext(ctx)
		if err := save.Flags().Set("name", name); err != nil {
			t.Fatal(err)
		}
		if err := save.RunE(save, []string{path}); err != nil {
			t.Fatalf("snapshot save %s error: %v", name, err)
		}
	}

	names, err := c.snapshotNames(ctx)
	if err != nil {
		t.Fatalf("snapshotNames() error: %v", err)
	}
	if strings.Join(names, ",") != "middle,top" {
		t.Errorf("snapshotNames() = %v, want [middle top]", names)
	}

	store, err := c.openCache(ctx, false)
	if err != nil {
		t.Fatalf("openCache() error: %v", err)
	}
	defer store.Close()
	if err := store.Set(ctx, "server:session:x", []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}

	n, err := c.clearStore(ctx, cliScope)
	if err != nil || n != 2 {
		t.Errorf("clearStore(cli) = %d, %v; want 2", n, err)
	}
	if _, ok, _ := store.Get(ctx, "server:session:x"); !ok {
		t.Error("clearing CLI entries removed a server session")
	}
	if n, _ := c.clearStore(ctx, ""); n != 1 {
		t.Errorf("clearStore(all) = %d, want 1", n)
	}
}
