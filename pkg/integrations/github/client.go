package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/markm-portfolio/repoindex/pkg/integrations"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// DefaultPageSize is the largest page the listing endpoint accepts.
	DefaultPageSize = 100

	// apiVersion pins the REST API version sent on every request.
	apiVersion = "2022-11-28"
)

// Config selects the endpoint and credential for a Client.
type Config struct {
	Token     string // bearer credential; empty for unauthenticated requests
	BaseURL   string // defaults to DefaultBaseURL
	PageSize  int    // defaults to DefaultPageSize
	UserAgent string
}

// Client provides access to the GitHub API for listing an organization's
// repositories and reading their languages and root contents.
type Client struct {
	*integrations.Client
	baseURL  string
	pageSize int
	logger   *log.Logger
}

// NewClient creates a GitHub API client. opts configure the shared HTTP
// client (timeout, retry policy, logger).
func NewClient(cfg Config, opts ...integrations.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	base := integrations.NewClient(Headers(cfg.Token, cfg.UserAgent), opts...)
	return &Client{
		Client:   base,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.PageSize,
		logger:   base.Logger(),
	}
}

// Headers returns the fixed header set for GitHub requests. The mercy
// preview media type makes the listing include topics.
func Headers(token, userAgent string) map[string]string {
	headers := map[string]string{
		"Accept":               "application/vnd.github.mercy-preview+json",
		"X-GitHub-Api-Version": apiVersion,
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return headers
}

// ListOrgRepos pages through the organization's repositories starting at
// page 1 and returns them in server order.
//
// Listing stops on the first page that is empty, shorter than the page
// size, or could not be fetched. A failed page therefore truncates the
// result; it is logged so the truncation is visible.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]*Repo, error) {
	if err := ValidateOwner(org); err != nil {
		return nil, err
	}

	var repos []*Repo
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&page=%d", c.baseURL, org, c.pageSize, page)

		var batch []*Repo
		found, err := c.Get(ctx, url, &batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.Warn("listing page failed, treating as end of listing", "org", org, "page", page, "err", err)
			break
		}
		if !found {
			c.logger.Warn("listing page returned no data, treating as end of listing", "org", org, "page", page)
			break
		}

		repos = append(repos, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}
	return repos, nil
}

// Languages returns the repository's declared languages in the order the
// API reports them (largest first). Missing data yields an empty list.
func (c *Client) Languages(ctx context.Context, fullName string) ([]string, error) {
	if err := ValidateFullName(fullName); err != nil {
		return nil, err
	}
	var langs LanguageList
	url := fmt.Sprintf("%s/repos/%s/languages", c.baseURL, fullName)
	if _, err := c.Get(ctx, url, &langs); err != nil {
		return nil, err
	}
	return []string(langs), nil
}

// Contents returns the lowercase names of the files and directories at the
// repository root. found is false when the API had no data (empty
// repository, 404); only found listings are worth caching.
func (c *Client) Contents(ctx context.Context, fullName string) (names []string, found bool, err error) {
	if err := ValidateFullName(fullName); err != nil {
		return nil, false, err
	}
	var items []contentItem
	url := fmt.Sprintf("%s/repos/%s/contents", c.baseURL, fullName)
	found, err = c.Get(ctx, url, &items)
	if err != nil || !found {
		return nil, false, err
	}

	names = make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, strings.ToLower(item.Name))
	}
	return names, true, nil
}
