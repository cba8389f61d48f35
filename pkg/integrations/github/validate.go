package github

import (
	"errors"
	"regexp"
	"strings"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New("organization is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New("invalid organization: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New("repo is required")
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return errors.New("invalid repo: must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return nil
}

// ValidateFullName checks an "owner/repo" identifier before it is placed in
// a request path.
func ValidateFullName(fullName string) error {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok {
		return errors.New("invalid repository identifier: use owner/repo")
	}
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
