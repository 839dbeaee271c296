package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a status line on stderr while a slow export runs
// (graphviz layout, rsvg conversion, a remote store round trip).
type Spinner struct {
	out    io.Writer
	ctx    context.Context
	frames spinner.Spinner

	mu  sync.Mutex
	msg string
	col int // widest line drawn so far

	quit      chan struct{}
	exited    chan struct{}
	stopOnce  sync.Once
	cancelled atomic.Bool
}

func newSpinner(ctx context.Context, msg string) *Spinner {
	return &Spinner{
		out:    os.Stderr,
		ctx:    ctx,
		frames: spinner.MiniDot,
		msg:    msg,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start draws frames until Stop is called or the context ends.
func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(s.frames.FPS)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			return
		case <-s.ctx.Done():
			s.cancelled.Store(true)
			s.clear()
			return
		case <-tick.C:
			s.draw(s.frames.Frames[frame%len(s.frames.Frames)])
		}
	}
}

// Update replaces the message next to the spinner.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg)
	fmt.Fprint(s.out, "\r"+line+strings.Repeat(" ", max(0, s.col-len(s.msg))))
	s.col = max(s.col, len(s.msg))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", max(s.col, len(s.msg))+2)+"\r")
}

// Stop ends the animation and clears the line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.exited
	s.clear()
}

// Cancelled reports whether the context ended before Stop.
func (s *Spinner) Cancelled() bool { return s.cancelled.Load() }
