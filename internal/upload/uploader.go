// Package upload sends local image files to an asset host and returns their
// public URL.
package upload

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned before any I/O when the asset host settings
// are incomplete.
var ErrNotConfigured = errors.New("image upload is not configured")

// Uploader stores a local file and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}
