package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/laneview/internal/server"
	"github.com/matzehuels/laneview/pkg/cache"
	"github.com/matzehuels/laneview/pkg/session"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = 5 * time.Minute
	serverScope     = "server:"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		memory bool
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout sessions over HTTP",
		Long: `Serve the layout session API. Sessions are created from a scenario
configuration, advanced with scenario steps and rendered on request. They are
kept in the configured store, or in memory with --memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("memory") {
				memory = c.config.Server.Sessions == "memory"
			}
			if ttl <= 0 {
				ttl = c.config.Server.SessionTTL.Duration
			}
			return c.runServe(cmd.Context(), addr, memory, ttl)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+defaultAddr+")")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep sessions in process memory")
	cmd.Flags().DurationVar(&ttl, "session-ttl", 0, "session lifetime after last use (default 24h)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, memory bool, ttl time.Duration) error {
	logger := loggerFromContext(ctx)

	store, closeStore, err := c.sessionStore(ctx, memory)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(store, server.Options{Logger: logger, SessionTTL: ttl})
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := store.Cleanup(gctx); err != nil {
					logger.Warn("session cleanup failed", "error", err)
				}
			}
		}
	})
	return g.Wait()
}

// sessionStore picks the session store for the serve command: process
// memory with --memory or without a backend, otherwise entries of the
// configured store under the server scope.
func (c *CLI) sessionStore(ctx context.Context, memory bool) (session.Store, func(), error) {
	noop := func() {}
	if memory || c.config.Store.Backend == cache.BackendNone {
		return session.NewMemoryStore(), noop, nil
	}
	cc, err := c.openCache(ctx, false)
	if err != nil {
		return nil, noop, err
	}
	keyer := cache.NewScopedKeyer(nil, serverScope)
	return session.NewCacheStore(cc, keyer), func() { _ = cc.Close() }, nil
}
