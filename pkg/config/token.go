package config

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
)

// TokenEnv is the environment variable consulted when no token file exists.
const TokenEnv = "GITHUB_TOKEN"

// Where a credential came from.
const (
	TokenSourceNone = ""
	TokenSourceFile = "file"
	TokenSourceEnv  = "env"
)

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return rierrors.Wrap(rierrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

// LoadToken returns the bearer credential and where it came from.
//
// The first non-empty line of tokenFile wins. A missing or blank file falls
// back to $GITHUB_TOKEN. With neither, the token is empty and requests are
// unauthenticated.
func LoadToken(tokenFile string) (token, source string, err error) {
	if tokenFile != "" {
		token, err = readTokenFile(tokenFile)
		if err != nil {
			return "", TokenSourceNone, err
		}
		if token != "" {
			return token, TokenSourceFile, nil
		}
	}
	if token = strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token, TokenSourceEnv, nil
	}
	return "", TokenSourceNone, nil
}

// RequireToken is LoadToken that fails when no credential is found.
func RequireToken(tokenFile string) (token, source string, err error) {
	token, source, err = LoadToken(tokenFile)
	if err != nil {
		return "", TokenSourceNone, err
	}
	if token == "" {
		return "", TokenSourceNone, rierrors.New(rierrors.ErrCodeUnauthorized,
			"no GitHub token: token file %q is missing or empty and $%s is unset", tokenFile, TokenEnv)
	}
	return token, source, nil
}

func readTokenFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", rierrors.Wrap(rierrors.ErrCodeIO, err, "read token file")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", rierrors.Wrap(rierrors.ErrCodeIO, err, "read token file")
	}
	return "", nil
}
