package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/scenario"
)

const (
	defaultCellWidth  = 10
	defaultCellHeight = 20
	maxCellSize       = 10000
)

// simulateOpts holds the flags of the simulate command.
type simulateOpts struct {
	overrides  scenarioOverrides
	trace      bool
	asJSON     bool
	noMap      bool
	noCache    bool
	cellWidth  int
	cellHeight int
}

func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOpts{cellWidth: defaultCellWidth, cellHeight: defaultCellHeight}

	cmd := &cobra.Command{
		Use:   "simulate [scenario.toml]",
		Short: "Run a scenario against a simulated host",
		Long: `Run the steps of a scenario file against a simulated host and print the
visible window after every step, followed by a character map of the final
viewport. Results are cached in the configured store by scenario content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	addOverrideFlags(cmd, &opts.overrides)
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print the character map after every step")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&opts.noMap, "no-map", false, "do not print the final character map")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().IntVar(&opts.cellWidth, "cell-width", opts.cellWidth, "layout units per map column")
	cmd.Flags().IntVar(&opts.cellHeight, "cell-height", opts.cellHeight, "layout units per map row")

	return cmd
}

// addOverrideFlags registers the flags shared by commands that load a scenario.
func addOverrideFlags(cmd *cobra.Command, o *scenarioOverrides) {
	cmd.Flags().StringVar(&o.policy, "policy", "", "override the layout policy: list, grid, spannable, staggered")
	cmd.Flags().IntVar(&o.columns, "lanes", 0, "override the grid lane count")
	cmd.Flags().BoolVar(&o.predictive, "predictive", false, "enable predictive scrap layout")
}

func (c *CLI) runSimulate(ctx context.Context, w io.Writer, path string, opts simulateOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if err := validateCells(opts.cellWidth, opts.cellHeight); err != nil {
		return err
	}
	sc, err := loadScenario(ctx, path, &opts.overrides)
	if err != nil {
		return err
	}

	store, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := resultKey(sc, cache.ResultKeyOpts{
		Format:     "json",
		Trace:      opts.trace,
		CellWidth:  opts.cellWidth,
		CellHeight: opts.cellHeight,
	})
	if err != nil {
		return err
	}

	res, cached := c.cachedResult(ctx, store, key)
	var runErr error
	if res == nil {
		runner := scenario.NewRunner(logger)
		runner.Trace = opts.trace
		res, runErr = runner.Run(ctx, sc)
		if runErr == nil {
			c.storeResult(ctx, store, key, res)
		}
	}
	if res == nil {
		return runErr
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		return runErr
	}

	failed := 0
	if runErr != nil && len(res.Steps) > 0 {
		failed = res.Steps[len(res.Steps)-1].Index
	}
	printResult(w, res, opts, failed)
	if runErr != nil {
		return runErr
	}
	printRunStats(len(res.Steps), res.Stats, cached)
	prog.done(fmt.Sprintf("Ran %s", res.Name))
	return nil
}

func printResult(w io.Writer, res *scenario.Result, opts simulateOpts, failed int) {
	fmt.Fprintln(w, StyleTitle.Render(res.Name)+" "+StyleDim.Render(fmt.Sprintf("(%s, %s)", res.Final.Policy, res.Final.Orientation)))
	if len(res.Steps) > 0 {
		stepTable(w, res.Steps, failed)
	}
	textOpts := render.TextOptions{CellWidth: opts.cellWidth, CellHeight: opts.cellHeight}
	if opts.trace {
		for _, st := range res.Steps {
			if st.Doc == nil {
				continue
			}
			fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("after step %d (%s)", st.Index, st.Op)))
			fmt.Fprint(w, render.RenderText(*st.Doc, textOpts))
		}
	}
	if failed == 0 && !opts.noMap {
		textOpts.Legend = true
		fmt.Fprint(w, render.RenderText(res.Final, textOpts))
	}
}

// validateCells checks the map cell size flags.
func validateCells(w, h int) error {
	if err := errors.ValidateRange("--cell-width", w, 1, maxCellSize); err != nil {
		return err
	}
	return errors.ValidateRange("--cell-height", h, 1, maxCellSize)
}

// resultKey hashes the scenario after overrides so that flag changes miss
// the cache.
func resultKey(sc *scenario.Scenario, opts cache.ResultKeyOpts) (string, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash scenario")
	}
	return cliKeyer().ResultKey(cache.Hash(data), opts), nil
}

func (c *CLI) cachedResult(ctx context.Context, store cache.Cache, key string) (*scenario.Result, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("result cache unavailable", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res scenario.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.Logger.Debug("discarding unreadable cached result", "error", err)
		_ = store.Delete(ctx, key)
		return nil, false
	}
	c.Logger.Debug("result cache hit", "key", key)
	return &res, true
}

func (c *CLI) storeResult(ctx context.Context, store cache.Cache, key string, res *scenario.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := store.Set(ctx, key, data, c.config.Store.TTL.Duration); err != nil {
		c.Logger.Warn("could not cache result", "error", err)
	}
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
