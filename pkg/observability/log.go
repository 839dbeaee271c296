package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failed layout
// passes are logged as errors.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l, prefixed with the event family.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

// Install registers h for all three event families.
func (h *LogHooks) Install() {
	SetLayoutHooks(h)
	SetStoreHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnLayout(policy string, anchor, children int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("layout failed", "policy", policy, "anchor", anchor, "error", err)
		return
	}
	h.logger.Debug("layout", "policy", policy, "anchor", anchor, "children", children, "took", d)
}

func (h *LogHooks) OnScroll(requested, applied int) {
	h.logger.Debug("scroll", "requested", requested, "applied", applied)
}

func (h *LogHooks) OnRecycle(position int) {
	h.logger.Debug("recycle", "position", position)
}

func (h *LogHooks) OnStoreHit(_ context.Context, backend string) {
	h.logger.Debug("store hit", "backend", backend)
}

func (h *LogHooks) OnStoreMiss(_ context.Context, backend string) {
	h.logger.Debug("store miss", "backend", backend)
}

func (h *LogHooks) OnStoreSet(_ context.Context, backend string, size int) {
	h.logger.Debug("store set", "backend", backend, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}
