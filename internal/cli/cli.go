// Package cli implements the laneview command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/scenario"
)

const (
	appName = "laneview"

	// cliScope prefixes the results and snapshots written by the CLI.
	cliScope = "cli:"
)

// Log levels for [New].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is the state shared by all commands: the logger and the loaded config.
type CLI struct {
	Logger *log.Logger

	config     Config
	configFile string
	logFormat  string
	verbose    bool
}

// New returns a CLI logging to w at level, with the default config until a
// command loads the config file.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		config:    defaultConfig(),
		logFormat: "text",
	}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// openCache opens the configured store. noCache forces the null backend.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.WithHooks(cache.NewNullCache(), cache.BackendNone), nil
	}
	opts := c.config.Store.cacheOptions()
	c.Logger.Debug("opening store", "backend", opts.Backend, "dir", opts.Dir)
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Backend, err)
	}
	return cc, nil
}

// cliKeyer scopes CLI results and snapshots away from server sessions.
func cliKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cliScope)
}

// loadScenario reads a scenario file and applies command-line overrides.
func loadScenario(ctx context.Context, path string, o *scenarioOverrides) (*scenario.Scenario, error) {
	logger := loggerFromContext(ctx)
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if o != nil {
		o.apply(&sc.Config)
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Debug("scenario loaded", "name", sc.Name, "policy", sc.Policy, "steps", len(sc.Steps))
	return sc, nil
}

// scenarioOverrides are flags that replace scenario settings.
type scenarioOverrides struct {
	policy     string
	columns    int
	predictive bool
}

func (o *scenarioOverrides) apply(cfg *scenario.Config) {
	if o.policy != "" {
		cfg.Policy = o.policy
	}
	if o.columns > 0 {
		cfg.Columns = o.columns
		cfg.Rows = o.columns
	}
	if o.predictive {
		cfg.Predictive = true
	}
}

// parseFormats splits a comma-separated --format value, defaulting to svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
