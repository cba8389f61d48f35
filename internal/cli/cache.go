package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/cache"
	"github.com/markm-portfolio/repoindex/pkg/config"
)

// cacheCommand creates the contents cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the contents cache",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheShowCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the contents cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(cfg))
			return nil
		},
	}
}

// cacheShowCommand creates the "cache show" subcommand.
func (c *CLI) cacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [repo...]",
		Short: "List cached repositories, or the cached entries of the given ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInspector(cmd.Context(), func(store cache.Store, inspect cache.Inspector) error {
				out := cmd.OutOrStdout()
				if len(args) > 0 {
					for _, repo := range args {
						names, ok := store.Get(cmd.Context(), repo)
						if !ok {
							printWarning(out, "%s is not cached", repo)
							continue
						}
						fmt.Fprintf(out, "%s  %s\n", repo, StyleDim.Render(strings.Join(names, ", ")))
					}
					return nil
				}

				keys, err := inspect.Keys(cmd.Context())
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					printInfo(out, "Cache is empty")
					return nil
				}
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				printStats(out, fmt.Sprintf("%d repositories", len(keys)))
				return nil
			})
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached contents listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.withInspector(cmd.Context(), func(_ cache.Store, inspect cache.Inspector) error {
				keys, err := inspect.Keys(cmd.Context())
				if err != nil {
					return err
				}
				if err := inspect.Clear(cmd.Context()); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printSuccess(out, "Cleared %d cached entries", len(keys))
				printDetail(out, "Location: %s", cacheLocation(cfg))
				return nil
			})
		},
	}
}

// withInspector opens the configured store for the duration of fn.
func (c *CLI) withInspector(ctx context.Context, fn func(cache.Store, cache.Inspector) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	inspect, ok := store.(cache.Inspector)
	if !ok {
		return fmt.Errorf("cache store %T cannot be inspected", store)
	}
	return fn(store, inspect)
}

// cacheLocation describes the configured backend.
func cacheLocation(cfg config.Config) string {
	if cfg.Cache.RedisURL != "" {
		key := cfg.Cache.RedisKey
		if key == "" {
			key = cache.DefaultRedisKey
		}
		loc := cfg.Cache.RedisURL
		if u, err := url.Parse(loc); err == nil {
			loc = u.Redacted()
		}
		return loc + " (hash " + key + ")"
	}
	return cfg.Cache.File
}
