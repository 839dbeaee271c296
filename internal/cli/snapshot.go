package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/scenario"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore engine snapshots in the configured store",
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotLoadCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var (
		name      string
		overrides scenarioOverrides
	)
	cmd := &cobra.Command{
		Use:   "save [scenario.toml]",
		Short: "Run a scenario and save the final engine state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := loadScenario(ctx, args[0], &overrides)
			if err != nil {
				return err
			}
			if name == "" {
				name = sc.Name
			}
			if err := errors.ValidateKey(name); err != nil {
				return err
			}

			res, err := scenario.NewRunner(loggerFromContext(ctx)).Run(ctx, sc)
			if err != nil {
				return err
			}
			data, err := res.Snapshot.Marshal()
			if err != nil {
				return err
			}
			if err := c.withStore(ctx, func(store cache.Cache) error {
				return store.Set(ctx, cliKeyer().SnapshotKey(name), data, c.config.Store.TTL.Duration)
			}); err != nil {
				return err
			}

			printSuccess("Saved snapshot %s", StyleValue.Render(name))
			printDetail("anchor %d · %d lanes · %d entries", res.Snapshot.AnchorPosition, res.Snapshot.LaneCount, len(res.Snapshot.Entries))
			printNextStep("Restore it", fmt.Sprintf("%s snapshot load %s %s", appName, name, args[0]))
			return nil
		},
	}
	addOverrideFlags(cmd, &overrides)
	cmd.Flags().StringVar(&name, "name", "", "snapshot name (default: scenario name)")
	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.snapshotNames(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No snapshots in the %s store", c.config.Store.Backend)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// snapshotNames returns the names of the saved snapshots, sorted.
func (c *CLI) snapshotNames(ctx context.Context) ([]string, error) {
	prefix := cliKeyer().SnapshotKey("")
	var keys []string
	err := c.withStore(ctx, func(store cache.Cache) error {
		var err error
		keys, err = store.Keys(ctx, prefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.TrimPrefix(k, prefix)
	}
	slices.Sort(names)
	return names, nil
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, data, err := c.readSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			printSnapshot(args[0], snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "print the snapshot as stored")
	return cmd
}

func (c *CLI) snapshotLoadCommand() *cobra.Command {
	cellWidth, cellHeight := defaultCellWidth, defaultCellHeight
	cmd := &cobra.Command{
		Use:   "load [name] [scenario.toml]",
		Short: "Restore a snapshot onto a scenario's data set and print the window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, _, err := c.readSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			sc, err := loadScenario(ctx, args[1], nil)
			if err != nil {
				return err
			}
			doc, err := restoreWindow(ctx, sc, snap)
			if err != nil {
				return err
			}
			return writeMap(cmd.OutOrStdout(), doc, cellWidth, cellHeight)
		},
	}
	cmd.Flags().IntVar(&cellWidth, "cell-width", cellWidth, "layout units per map column")
	cmd.Flags().IntVar(&cellHeight, "cell-height", cellHeight, "layout units per map row")
	return cmd
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateKey(args[0]); err != nil {
				return err
			}
			if err := c.withStore(ctx, func(store cache.Cache) error {
				return store.Delete(ctx, cliKeyer().SnapshotKey(args[0]))
			}); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(cache.Cache) error) error {
	store, err := c.openCache(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()
	return cache.RetryWithBackoff(ctx, func() error { return fn(store) })
}

func (c *CLI) readSnapshot(ctx context.Context, name string) (layout.Snapshot, []byte, error) {
	if err := errors.ValidateKey(name); err != nil {
		return layout.Snapshot{}, nil, err
	}
	var (
		data []byte
		ok   bool
	)
	err := c.withStore(ctx, func(store cache.Cache) error {
		var err error
		data, ok, err = store.Get(ctx, cliKeyer().SnapshotKey(name))
		return err
	})
	if err != nil {
		return layout.Snapshot{}, nil, err
	}
	if !ok {
		return layout.Snapshot{}, nil, errors.New(errors.ErrCodeNotFound, "no snapshot named %q in the %s store", name, c.config.Store.Backend)
	}
	snap, err := layout.UnmarshalSnapshot(data)
	if err != nil {
		return layout.Snapshot{}, nil, err
	}
	return snap, data, nil
}

// restoreWindow lays out sc's data set at snap.
func restoreWindow(ctx context.Context, sc *scenario.Scenario, snap layout.Snapshot) (render.Document, error) {
	st, err := scenario.Start(sc.Config, loggerFromContext(ctx))
	if err != nil {
		return render.Document{}, err
	}
	if err := st.Resume(snap); err != nil {
		return render.Document{}, err
	}
	if err := st.Engine.Layout(); err != nil {
		return render.Document{}, err
	}
	return st.Document(), nil
}

func printSnapshot(name string, snap layout.Snapshot) {
	fmt.Println(StyleTitle.Render(name))
	printKeyValue("policy", snap.Policy)
	printKeyValue("orientation", snap.Orientation.String())
	printKeyValue("anchor", strconv.Itoa(snap.AnchorPosition))
	printKeyValue("lanes", fmt.Sprintf("%d × %dx%d", snap.LaneCount, snap.LaneSizeH, snap.LaneSizeV))
	for i, r := range snap.Lanes {
		printDetail("lane %d: [%d,%d,%d,%d]", i, r.Left, r.Top, r.Right, r.Bottom)
	}
	printKeyValue("entries", StyleNumber.Render(strconv.Itoa(len(snap.Entries))))
}

func writeMap(w io.Writer, doc render.Document, cellW, cellH int) error {
	_, err := io.WriteString(w, render.RenderText(doc, render.TextOptions{
		CellWidth:  cellW,
		CellHeight: cellH,
		Legend:     true,
	}))
	return err
}
