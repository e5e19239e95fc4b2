package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout, artifact and photo cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Caching is disabled")
				return nil
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory or Redis address",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps entries.
func (c *CLI) cacheLocation() string {
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return "none"
	case config.CacheRedis:
		r := c.cfg.Cache.Redis
		if r.URL != "" {
			return r.URL
		}
		if r.Addr != "" {
			return "redis://" + r.Addr
		}
		return "redis://localhost:6379"
	default:
		dir, err := c.cfg.CacheDir()
		if err != nil {
			return "unavailable: " + err.Error()
		}
		return dir
	}
}
