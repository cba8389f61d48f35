package cache

import "errors"

// ErrClosed is returned by operations on a store after Close.
var ErrClosed = errors.New("cache store closed")
