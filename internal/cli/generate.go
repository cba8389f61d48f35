package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/config"
	"github.com/markm-portfolio/repoindex/pkg/observability"
	"github.com/markm-portfolio/repoindex/pkg/pipeline"
)

// generateFlags are the command-line overrides of generate.
type generateFlags struct {
	org          string
	output       string
	snapshot     string
	templates    string
	concurrency  int
	refresh      bool
	noCache      bool
	requireToken bool
}

// apply overlays flags the user actually set onto cfg.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("org") {
		cfg.Org = f.org
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("snapshot") {
		cfg.Snapshot = f.snapshot
	}
	if changed("templates") {
		cfg.Templates = f.templates
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
}

// generateCommand creates the command that runs the full pipeline.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch the organization's repositories and write the HTML index",
		Long: `Generate lists every repository of the organization, drops excluded ones,
detects declared and tooling languages for each, and writes a static index page.

Root contents listings are cached between runs; --refresh refetches them and
--no-cache disables the cache entirely.`,
		Example: `  # Build site/index.html for the configured organization
  repoindex generate

  # Another organization, higher concurrency, with a JSON snapshot
  repoindex generate --org my-org --concurrency 40 --snapshot site/repos.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runGenerate(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.org, "org", "", "GitHub organization to index")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "index file to write (default "+pipeline.DefaultOutput+")")
	cmd.Flags().StringVar(&flags.snapshot, "snapshot", "", "also write the enriched records as JSON")
	cmd.Flags().StringVar(&flags.templates, "templates", "", "directory with page fragment overrides")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "maximum repositories enriched at once")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached contents listings and refetch them")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the contents cache")
	cmd.Flags().BoolVar(&flags.requireToken, "require-token", false, "fail when no GitHub token is configured")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, cfg config.Config, flags generateFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	token, err := c.loadToken(cfg, flags.requireToken)
	if err != nil {
		return err
	}

	stats := observability.NewStats()
	observability.Register(stats)
	defer observability.Reset()

	runner, err := c.newRunner(ctx, cfg, token, flags.noCache)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			c.Logger.Warn("closing contents cache", "err", err)
		}
	}()

	opts := c.pipelineOptions(cfg)
	opts.Refresh = flags.refresh

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Generated index")

	printResult(out, result, stats)
	return nil
}

// printResult prints the run summary.
func printResult(w io.Writer, result *pipeline.Result, stats *observability.Stats) {
	printSuccess(w, "Indexed %s repositories", StyleNumber.Render(fmt.Sprint(len(result.Repos))))
	printStats(w,
		fmt.Sprintf("%d listed", result.Listed),
		fmt.Sprintf("%d excluded", len(result.Excluded)),
		fmt.Sprintf("%d dropped", result.Dropped),
		fmt.Sprintf("%d requests", stats.Requests.Load()),
		fmt.Sprintf("%d cache hits", stats.CacheHits.Load()),
	)
	if n := stats.RateLimited.Load(); n > 0 {
		printWarning(w, "Waited %s for %d rate-limit resets", stats.RateLimitWait().Round(time.Second), n)
	}
	if result.Dropped > 0 {
		printWarning(w, "%d repositories failed and are missing from the index", result.Dropped)
	}
	printFile(w, result.Output)
	if result.Snapshot != "" {
		printFile(w, result.Snapshot)
	}
}
