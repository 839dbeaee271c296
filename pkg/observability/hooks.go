// Package observability lets a binary observe layout passes, store traffic
// and API requests without the engine depending on a metrics backend.
//
// Each event family has an interface, a no-op implementation that is active
// by default, and a setter. [LogHooks] implements all three families on top
// of a charmbracelet logger; the CLI installs it with --verbose.
//
//	observability.SetLayoutHooks(observability.NewLogHooks(logger))
//
// Instrumented code fetches the current hooks on every event:
//
//	observability.Layout().OnScroll(requested, applied)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutHooks observes the layout engine. Engines are single-goroutine and
// hold no context, so neither do these methods.
type LayoutHooks interface {
	// OnLayout reports a full pass starting at anchor that left children
	// items attached.
	OnLayout(policy string, anchor, children int, duration time.Duration, err error)
	// OnScroll reports a scroll request and the delta the engine applied.
	OnScroll(requested, applied int)
	// OnRecycle reports an item handed back to the host's view pool.
	OnRecycle(position int)
}

// StoreHooks observes the snapshot and result store.
type StoreHooks interface {
	OnStoreHit(ctx context.Context, backend string)
	OnStoreMiss(ctx context.Context, backend string)
	OnStoreSet(ctx context.Context, backend string, size int)
}

// HTTPHooks observes the session API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
}

type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayout(string, int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnScroll(int, int)                               {}
func (NoopLayoutHooks) OnRecycle(int)                                   {}

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry holds the installed hooks. atomic.Value needs a consistent
// concrete type, hence the holder structs.
type (
	layoutHolder struct{ LayoutHooks }
	storeHolder  struct{ StoreHooks }
	httpHolder   struct{ HTTPHooks }
)

var layoutHooks, storeHooks, httpHooks atomic.Value

func init() { Reset() }

// SetLayoutHooks installs h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layoutHooks.Store(layoutHolder{h})
	}
}

// SetStoreHooks installs h. A nil h is ignored.
func SetStoreHooks(h StoreHooks) {
	if h != nil {
		storeHooks.Store(storeHolder{h})
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.Store(httpHolder{h})
	}
}

func Layout() LayoutHooks { return layoutHooks.Load().(layoutHolder).LayoutHooks }
func Store() StoreHooks   { return storeHooks.Load().(storeHolder).StoreHooks }
func HTTP() HTTPHooks     { return httpHooks.Load().(httpHolder).HTTPHooks }

// Reset reinstalls the no-op hooks.
func Reset() {
	layoutHooks.Store(layoutHolder{NoopLayoutHooks{}})
	storeHooks.Store(storeHolder{NoopStoreHooks{}})
	httpHooks.Store(httpHolder{NoopHTTPHooks{}})
}
