package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinner(ctx, msg)
	s.out = &buf
	return s, &buf
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Rendering graph")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("Converting to png")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering graph") || !strings.Contains(out, "Converting to png") {
		t.Errorf("spinner output = %q, want both messages", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Stop() should leave the cursor at the start of a cleared line")
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Converting to pdf")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation, want true")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, _ := quietSpinner(ctx, "Laying out lane graph")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after timeout, want true")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Converting to png")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	data, err := withSpinner(ctx, "Converting to png", func() ([]byte, error) { return []byte("png"), nil })
	if err != nil || string(data) != "png" {
		t.Errorf("withSpinner() = %q, %v; want png, nil", data, err)
	}

	_, err = withSpinner(ctx, "Converting to png", func() ([]byte, error) {
		cancel()
		time.Sleep(100 * time.Millisecond)
		return []byte("late"), nil
	})
	if err != context.Canceled {
		t.Errorf("withSpinner(cancelled) error = %v, want context.Canceled", err)
	}
}
