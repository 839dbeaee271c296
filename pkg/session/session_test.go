package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/scenario"
)

func listConfig() scenario.Config {
	return scenario.Config{
		Viewport: lanes.Viewport{Width: 300, Height: 200},
		Policy:   "list",
		Generate: &scenario.Generate{Count: 20, Extents: []int{50}},
	}
}

func TestNew(t *testing.T) {
	sess, err := New(listConfig(), time.Hour)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := ValidateID(sess.ID); err != nil {
		t.Errorf("ValidateID(%q) error: %v", sess.ID, err)
	}
	if len(sess.Config.Items) != 20 || sess.Config.Generate != nil {
		t.Errorf("Config should carry the expanded data set, got %d items", len(sess.Config.Items))
	}
	if sess.Expired(time.Now()) {
		t.Error("new session should not be expired")
	}
	if !sess.Expired(sess.ExpiresAt) {
		t.Error("session should be expired at its ExpiresAt")
	}

	_, err = New(scenario.Config{Policy: "list"}, time.Hour)
	if !errors.Is(err, errors.ErrCodeInvalidScenario) {
		t.Errorf("New(empty viewport) error = %v, want INVALID_SCENARIO", err)
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{GenerateID(), false},
		{"", true},
		{"../etc/passwd", true},
		{"not-a-uuid", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidKey) {
				t.Errorf("ValidateID(%q) code = %s, want INVALID_KEY", tt.id, errors.GetCode(err))
			}
		})
	}
}

func TestOpenCapture(t *testing.T) {
	logger := log.New(io.Discard)
	sess, err := New(listConfig(), time.Hour)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	st, err := sess.Open(logger)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := st.Apply(scenario.Step{Op: scenario.OpScroll, Delta: 120}); err != nil {
		t.Fatalf("Apply(scroll) error: %v", err)
	}
	if _, err := st.Apply(scenario.Step{Op: scenario.OpToggle, Position: 3}); err != nil {
		t.Fatalf("Apply(toggle) error: %v", err)
	}
	want := st.Document()
	sess.Capture(st)

	if sess.Snapshot == nil || sess.Snapshot.AnchorPosition != 2 {
		t.Fatalf("Snapshot = %+v, want anchor 2", sess.Snapshot)
	}
	if len(sess.Checked) != 1 || sess.Checked[0] != "item-3" {
		t.Errorf("Checked = %v, want [item-3]", sess.Checked)
	}

	reopened, err := sess.Open(logger)
	if err != nil {
		t.Fatalf("Open() again error: %v", err)
	}
	got := reopened.Document()
	if len(got.Items) != len(want.Items) {
		t.Fatalf("reopened window has %d items, want %d", len(got.Items), len(want.Items))
	}
	for i := range want.Items {
		if got.Items[i].Position != want.Items[i].Position || got.Items[i].Frame != want.Items[i].Frame {
			t.Errorf("item %d = %d %v, want %d %v", i,
				got.Items[i].Position, got.Items[i].Frame, want.Items[i].Position, want.Items[i].Frame)
		}
		if got.Items[i].Checked != (got.Items[i].Position == 3) {
			t.Errorf("item %d Checked = %v", got.Items[i].Position, got.Items[i].Checked)
		}
	}
}

func TestCaptureGridSize(t *testing.T) {
	cfg := scenario.Config{
		Viewport: lanes.Viewport{Width: 400, Height: 200},
		Policy:   "staggered",
		Columns:  4,
		Generate: &scenario.Generate{Count: 30, Extents: []int{60, 90}},
	}
	sess, err := New(cfg, time.Hour)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	st, err := sess.Open(log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := st.Apply(scenario.Step{Op: scenario.OpColumns, Columns: 2}); err != nil {
		t.Fatalf("Apply(columns) error: %v", err)
	}
	sess.Capture(st)
	if sess.Config.Columns != 2 {
		t.Errorf("Columns = %d, want 2", sess.Config.Columns)
	}
	if sess.Snapshot.LaneCount != 2 {
		t.Errorf("Snapshot.LaneCount = %d, want 2", sess.Snapshot.LaneCount)
	}
}

func TestStores(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewCacheStore(fc, cache.NewScopedKeyer(nil, "server:")),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, err := New(listConfig(), time.Hour)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil || got != nil {
				t.Fatalf("Get() before Set = %v, %v; want nil, nil", got, err)
			}
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got, err = store.Get(ctx, sess.ID)
			if err != nil || got == nil {
				t.Fatalf("Get() = %v, %v", got, err)
			}
			if got.ID != sess.ID || len(got.Config.Items) != 20 || got.Config.Policy != "list" {
				t.Errorf("Get() = %+v", got)
			}

			got.Config.Policy = "grid"
			again, _ := store.Get(ctx, sess.ID)
			if again.Config.Policy != "list" {
				t.Error("changing a fetched session must not change the stored one")
			}

			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if got, _ := store.Get(ctx, sess.ID); got != nil {
				t.Error("Get() after Delete should return nil")
			}

			sess.ExpiresAt = time.Now().Add(-time.Minute)
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set(expired) error: %v", err)
			}
			if got, _ := store.Get(ctx, sess.ID); got != nil {
				t.Error("Get() of an expired session should return nil")
			}
			if err := store.Cleanup(ctx); err != nil {
				t.Errorf("Cleanup() error: %v", err)
			}
		})
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	live, _ := New(listConfig(), time.Hour)
	dead, _ := New(listConfig(), time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d after Cleanup, want 1", store.Len())
	}
}
