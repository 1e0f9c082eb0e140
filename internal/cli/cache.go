package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routesim/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the route result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached route results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			rc, err := cache.Open(cmd.Context(), cfg.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer rc.Close()

			clearer, ok := rc.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", cfg.Cache.Backend)
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", cfg.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached results are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case cache.BackendRedis:
				fmt.Fprintf(stdout, "redis://%s/%d\n", cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
			case cache.BackendNone:
				printInfo("Caching is disabled")
			default:
				fmt.Fprintln(stdout, cfg.Cache.Dir)
			}
			return nil
		},
	}
}
