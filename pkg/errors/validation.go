package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateFilePath validates a local file path taken from configuration or
// flags. Absolute and relative paths are both accepted.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a host and a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host: %q", rawURL)
	}
	return nil
}

// colorRegex matches CSS hex colors (#rgb or #rrggbb).
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a language badge color.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}
