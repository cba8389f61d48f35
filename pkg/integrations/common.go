package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds every single HTTP call. There is no overall deadline
// for a run; each request carries its own.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNetwork is returned for HTTP failures (timeouts, refused or reset connections).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a 200 response body is not the expected JSON.
	ErrDecode = errors.New("decode response")
)

// NewHTTPClient creates an HTTP client with the standard per-request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
