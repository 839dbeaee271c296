package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/cache"
)

// cacheCommand creates the store management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result and snapshot store",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached results and saved snapshots",
		Long: `Remove the results and snapshots written by the CLI from the configured
store. With --all, server sessions sharing the store are removed as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := cliScope
			if all {
				prefix = ""
			}
			n, err := c.clearStore(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Store is empty")
				return nil
			}
			printSuccess("Cleared %d entries", n)
			printDetail("Store: %s", c.config.Store.Backend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also remove server sessions")
	return cmd
}

// clearStore deletes every key starting with prefix and returns how many
// were removed.
func (c *CLI) clearStore(ctx context.Context, prefix string) (int, error) {
	n := 0
	err := c.withStore(ctx, func(store cache.Cache) error {
		keys, err := store.Keys(ctx, prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := store.Delete(ctx, k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configured store keeps its entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.config.Store
			switch s.Backend {
			case cache.BackendFile:
				fmt.Fprintln(cmd.OutOrStdout(), s.Dir)
			case cache.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", s.RedisAddr, s.RedisDB)
			case cache.BackendMongo:
				fmt.Fprintln(cmd.OutOrStdout(), s.MongoURI)
			default:
				return fmt.Errorf("the %s store keeps nothing", s.Backend)
			}
			return nil
		},
	}
}
