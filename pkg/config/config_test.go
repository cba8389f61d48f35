package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Concurrency != 20 || cfg.Retry.Attempts != 5 || cfg.Timeout != 10*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "repoindex.toml", `
org = "other-org"
concurrency = 5
timeout = "3s"

[retry]
attempts = 2
base = "250ms"

[cache]
file = "cache/contents.json"

[exclude]
names = ["scratch"]

[colors]
Zig = "#ec915c"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Org != "other-org" || cfg.Concurrency != 5 || cfg.Timeout != 3*time.Second {
		t.Errorf("top-level values not applied: %+v", cfg)
	}
	if cfg.Retry.Attempts != 2 || cfg.Retry.Base != 250*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if diff := cmp.Diff([]string{"scratch"}, cfg.Exclude.Names); diff != "" {
		t.Errorf("exclude names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"practice"}, cfg.Exclude.Substrings); diff != "" {
		t.Errorf("unset keys should keep defaults (-want +got):\n%s", diff)
	}
	if cfg.Cache.File != filepath.Join(dir, "cache", "contents.json") {
		t.Errorf("cache file = %q, want it relative to the config file", cfg.Cache.File)
	}
	if cfg.TokenFile != filepath.Join(dir, ".portfolio_gh_token") {
		t.Errorf("token file = %q, want it relative to the config file", cfg.TokenFile)
	}
	if cfg.Colors["Zig"] != "#ec915c" || cfg.Source != path {
		t.Errorf("colors=%v source=%q", cfg.Colors, cfg.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") without a file should return defaults (-want +got):\n%s", diff)
	}

	if _, err := Load("nope.toml"); !rierrors.Is(err, rierrors.ErrCodeFileNotFound) {
		t.Errorf("Load(explicit missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"syntax":      "org = ",
		"unknown key": "orgs = \"x\"",
		"wrong type":  "concurrency = \"many\"",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".toml", content)
			if _, err := Load(path); !rierrors.Is(err, rierrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   rierrors.Code
	}{
		{"bad org", func(c *Config) { c.Org = "-bad" }, rierrors.ErrCodeInvalidOrg},
		{"empty output", func(c *Config) { c.Output = "" }, rierrors.ErrCodeInvalidPath},
		{"bad snapshot", func(c *Config) { c.Snapshot = "a\x00b" }, rierrors.ErrCodeInvalidPath},
		{"bad api url", func(c *Config) { c.APIURL = "ftp://x" }, rierrors.ErrCodeInvalidConfig},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, rierrors.ErrCodeInvalidConfig},
		{"page too large", func(c *Config) { c.PageSize = 101 }, rierrors.ErrCodeInvalidConfig},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, rierrors.ErrCodeInvalidConfig},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, rierrors.ErrCodeInvalidConfig},
		{"negative base", func(c *Config) { c.Retry.Base = -time.Second }, rierrors.ErrCodeInvalidConfig},
		{"bad redis url", func(c *Config) { c.Cache.RedisURL = "http://x" }, rierrors.ErrCodeInvalidConfig},
		{"bad color", func(c *Config) { c.Colors = map[string]string{"Go": "blue"} }, rierrors.ErrCodeInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !rierrors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repoindex.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Org != Default().Org || cfg.Timeout != Default().Timeout || cfg.Retry.Base != time.Second {
		t.Errorf("round trip changed values: %+v", cfg)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault() should not overwrite an existing file")
	}
}

func TestLoadToken(t *testing.T) {
	dir := t.TempDir()

	t.Run("file wins over env", func(t *testing.T) {
		t.Setenv(TokenEnv, "from-env")
		path := writeFile(t, dir, "token", "\n  from-file  \nsecond\n")
		token, source, err := LoadToken(path)
		if err != nil || token != "from-file" || source != TokenSourceFile {
			t.Errorf("LoadToken() = %q, %q, %v", token, source, err)
		}
	})

	t.Run("blank file falls back to env", func(t *testing.T) {
		t.Setenv(TokenEnv, " from-env ")
		path := writeFile(t, dir, "blank", "\n \n")
		token, source, err := LoadToken(path)
		if err != nil || token != "from-env" || source != TokenSourceEnv {
			t.Errorf("LoadToken() = %q, %q, %v", token, source, err)
		}
	})

	t.Run("missing file and no env", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		token, source, err := LoadToken(filepath.Join(dir, "missing"))
		if err != nil || token != "" || source != TokenSourceNone {
			t.Errorf("LoadToken() = %q, %q, %v", token, source, err)
		}
	})

	t.Run("require fails before any request", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		_, _, err := RequireToken(filepath.Join(dir, "missing"))
		if !rierrors.Is(err, rierrors.ErrCodeUnauthorized) {
			t.Errorf("RequireToken() error = %v, want UNAUTHORIZED", err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error: %v", err)
	}

	t.Setenv(TokenEnv, "")
	os.Unsetenv(TokenEnv)
	path := writeFile(t, dir, ".env", "GITHUB_TOKEN=dotenv-token\n")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	token, source, _ := LoadToken("")
	if token != "dotenv-token" || source != TokenSourceEnv {
		t.Errorf("LoadToken() after .env = %q, %q", token, source)
	}
}

func TestPolicyFollowsRetryConfig(t *testing.T) {
	cfg := Default()
	cfg.Retry = RetryConfig{Attempts: 2, Base: 250 * time.Millisecond}

	p := cfg.Policy()
	if p.Attempts != 2 || p.Base != 250*time.Millisecond {
		t.Errorf("Policy() = {Attempts: %d, Base: %s}, want {2, 250ms}", p.Attempts, p.Base)
	}
}
