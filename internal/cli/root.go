package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/buildinfo"
	"github.com/matzehuels/laneview/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the config file and attaches the logger to
// the command context, so every subcommand reads both from there.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Laneview lays out scrolling item windows in parallel lanes",
		Long: `Laneview is an incremental lane layout engine for scrolling views: lists,
uniform grids, spannable grids and staggered grids. The CLI runs scripted
scenarios against a simulated host, renders the resulting windows, explores
them interactively and serves layout sessions over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format: text, logfmt or json")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/laneview/config.toml)")

	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger.WithPrefix("hooks")).Install()
	}
	if err := setLogFormat(c.Logger, c.logFormat); err != nil {
		return err
	}

	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("config", "path", path, "store", cfg.Store.Backend)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
