// Package cli implements the repoindex command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/buildinfo"
	"github.com/markm-portfolio/repoindex/pkg/cache"
	"github.com/markm-portfolio/repoindex/pkg/config"
	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
	"github.com/markm-portfolio/repoindex/pkg/integrations"
	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	"github.com/markm-portfolio/repoindex/pkg/pipeline"
	"github.com/markm-portfolio/repoindex/pkg/portfolio"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "repoindex"

	// dotEnvFile is loaded into the environment before every command.
	dotEnvFile = ".env"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "repoindex builds a static portfolio page from a GitHub organization",
		Long:          `repoindex lists a GitHub organization's repositories, detects the languages and tooling each one uses, and renders a static HTML index of cards.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return config.LoadDotEnv(dotEnvFile)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "path", cfg.Source)
	}
	return cfg, nil
}

// newClient builds the GitHub client described by cfg.
func (c *CLI) newClient(cfg config.Config, token string) *github.Client {
	return github.NewClient(github.Config{
		Token:     token,
		BaseURL:   cfg.APIURL,
		PageSize:  cfg.PageSize,
		UserAgent: buildinfo.UserAgent(),
	},
		integrations.WithTimeout(cfg.Timeout),
		integrations.WithPolicy(cfg.Policy()),
		integrations.WithLogger(c.Logger),
	)
}

// loadToken resolves the credential, failing when required and absent.
func (c *CLI) loadToken(cfg config.Config, required bool) (string, error) {
	load := config.LoadToken
	if required {
		load = config.RequireToken
	}
	token, source, err := load(cfg.TokenFile)
	if err != nil {
		return "", err
	}
	if source == config.TokenSourceNone {
		c.Logger.Warn("no GitHub token found, requests are unauthenticated and limited to 60/hour")
	} else {
		c.Logger.Debug("using GitHub token", "source", source)
	}
	return token, nil
}

// newStore opens the contents cache selected by cfg. noCache disables it.
func (c *CLI) newStore(ctx context.Context, cfg config.Config, noCache bool) (cache.Store, error) {
	if noCache {
		return cache.NewNullStore(), nil
	}
	if cfg.Cache.RedisURL != "" {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL, cfg.Cache.RedisKey, c.Logger)
		if err != nil {
			return nil, rierrors.Wrap(rierrors.ErrCodeCache, err, "open redis contents cache")
		}
		return store, nil
	}
	store, err := cache.OpenFileStore(cfg.Cache.File, c.Logger)
	if err != nil {
		return nil, rierrors.Wrap(rierrors.ErrCodeCache, err, "open contents cache")
	}
	return store, nil
}

// newRunner wires the client and store into a pipeline runner.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, token string, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newStore(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.newClient(cfg, token), store, c.Logger), nil
}

// pipelineOptions maps cfg onto a pipeline run.
func (c *CLI) pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Org:         cfg.Org,
		CVFile:      cfg.CVFile,
		Output:      cfg.Output,
		Snapshot:    cfg.Snapshot,
		TemplateDir: cfg.Templates,
		Colors:      cfg.Colors,
		Exclude: portfolio.Exclusions{
			Names:      cfg.Exclude.Names,
			Substrings: cfg.Exclude.Substrings,
		},
		Concurrency: cfg.Concurrency,
		Logger:      c.Logger,
	}
}

// stderr is where spinners draw; tests replace it.
var stderr io.Writer = os.Stderr
