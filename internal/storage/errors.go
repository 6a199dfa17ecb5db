// Package storage holds the error classes shared by every repository
// backend.
package storage

import "errors"

// ErrUnavailable marks transient infrastructure failures (connection loss,
// timeouts). It is the only error class callers may retry; business-rule
// rejections never wrap it.
var ErrUnavailable = errors.New("storage unavailable")
