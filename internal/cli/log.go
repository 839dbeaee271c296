package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/errors"
)

// logFormats maps --log-format values to formatters. logfmt and json suit
// `laneview serve` behind a log collector.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
	"json":   log.JSONFormatter,
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// setLogFormat switches l to the named formatter.
func setLogFormat(l *log.Logger, name string) error {
	f, ok := logFormats[name]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown log format %q (text, logfmt or json)", name)
	}
	l.SetFormatter(f)
	return nil
}

// progress times a command and logs it as "<msg> (<elapsed>)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress { return &progress{logger: l, start: time.Now()} }

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
