package memory

import "errors"

// ErrNotConfigured is returned when memory operations are attempted
// but no storage driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// ErrEmptyText is returned when an exchange is recorded without text.
var ErrEmptyText = errors.New("memory: empty text")
