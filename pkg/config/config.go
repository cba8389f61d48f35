// Package config loads repoindex settings from an optional TOML file and
// resolves the GitHub credential.
//
// Values are layered: built-in defaults, then the file, then command-line
// flags applied by the caller. [Config.Validate] runs after all layers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
	"github.com/markm-portfolio/repoindex/pkg/httputil"
	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "repoindex.toml"

// Config holds every tunable of a run.
type Config struct {
	Org         string            `toml:"org"`
	CVFile      string            `toml:"cv_file"`
	Output      string            `toml:"output"`
	Snapshot    string            `toml:"snapshot"`  // optional JSON dump of the enriched records
	Templates   string            `toml:"templates"` // empty selects the built-in templates
	TokenFile   string            `toml:"token_file"`
	APIURL      string            `toml:"api_url"`
	Concurrency int               `toml:"concurrency"`
	PageSize    int               `toml:"page_size"`
	Timeout     time.Duration     `toml:"timeout"`
	Retry       RetryConfig       `toml:"retry"`
	Cache       CacheConfig       `toml:"cache"`
	Exclude     ExcludeConfig     `toml:"exclude"`
	Colors      map[string]string `toml:"colors"`
	Serve       ServeConfig       `toml:"serve"`

	// Source is the file the config was read from; empty for defaults.
	Source string `toml:"-"`
}

type RetryConfig struct {
	Attempts int           `toml:"attempts"`
	Base     time.Duration `toml:"base"`
}

type CacheConfig struct {
	File     string `toml:"file"`
	RedisURL string `toml:"redis_url"` // non-empty selects the Redis store
	RedisKey string `toml:"redis_key"`
}

type ExcludeConfig struct {
	Names      []string `toml:"names"`
	Substrings []string `toml:"substrings"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Org:         "MarkM-Portfolio",
		CVFile:      "Mark Mon Monteros - CV (DevOps).pdf",
		Output:      filepath.Join("site", "index.html"),
		TokenFile:   ".portfolio_gh_token",
		APIURL:      github.DefaultBaseURL,
		Concurrency: 20,
		PageSize:    github.DefaultPageSize,
		Timeout:     10 * time.Second,
		Retry: RetryConfig{
			Attempts: 5,
			Base:     time.Second,
		},
		Cache: CacheConfig{
			File: ".contents_cache.json",
		},
		Exclude: ExcludeConfig{
			Names:      []string{"sap-media-s3-bucket", "fork", "need_this", "portfolio", "backups"},
			Substrings: []string{"practice"},
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path tries
// DefaultFile and falls back to defaults when it does not exist; an explicit
// path must exist. Unknown keys are rejected.
//
// Relative token and cache file paths in a config file are resolved against
// the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return Config{}, rierrors.Wrap(rierrors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Default(), nil
		}
		return Config{}, rierrors.Wrap(rierrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, rierrors.New(rierrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Source = path
	dir := filepath.Dir(path)
	cfg.TokenFile = resolve(dir, cfg.TokenFile)
	cfg.Cache.File = resolve(dir, cfg.Cache.File)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return rierrors.New(rierrors.ErrCodeInvalidConfig, format, args...)
	}

	if err := github.ValidateOwner(c.Org); err != nil {
		return rierrors.Wrap(rierrors.ErrCodeInvalidOrg, err, "org")
	}
	if err := rierrors.ValidateFilePath(c.Output); err != nil {
		return rierrors.Wrap(rierrors.ErrCodeInvalidPath, err, "output")
	}
	if c.Snapshot != "" {
		if err := rierrors.ValidateFilePath(c.Snapshot); err != nil {
			return rierrors.Wrap(rierrors.ErrCodeInvalidPath, err, "snapshot")
		}
	}
	if err := rierrors.ValidateURL(c.APIURL); err != nil {
		return rierrors.Wrap(rierrors.ErrCodeInvalidConfig, err, "api_url")
	}
	if c.Concurrency < 1 {
		return invalid("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.PageSize < 1 || c.PageSize > github.DefaultPageSize {
		return invalid("page_size must be between 1 and %d, got %d", github.DefaultPageSize, c.PageSize)
	}
	if c.Timeout <= 0 {
		return invalid("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retry.Attempts < 1 {
		return invalid("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Retry.Base < 0 {
		return invalid("retry.base must not be negative, got %s", c.Retry.Base)
	}
	if c.Cache.RedisURL != "" && !strings.HasPrefix(c.Cache.RedisURL, "redis://") && !strings.HasPrefix(c.Cache.RedisURL, "rediss://") {
		return invalid("cache.redis_url must use redis:// or rediss://")
	}

	langs := make([]string, 0, len(c.Colors))
	for lang := range c.Colors {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		if err := rierrors.ValidateColor(c.Colors[lang]); err != nil {
			return rierrors.Wrap(rierrors.ErrCodeInvalidColor, err, "colors.%s", lang)
		}
	}
	return nil
}

// Policy returns the retry policy described by c.Retry.
func (c Config) Policy() httputil.Policy {
	p := httputil.DefaultPolicy()
	p.Attempts = c.Retry.Attempts
	p.Base = c.Retry.Base
	return p
}

// String renders the effective configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return rierrors.Wrap(rierrors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		return rierrors.Wrap(rierrors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
