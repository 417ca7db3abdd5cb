// Package storage is the client adapter for the object store holding
// profile images.
package storage

import "context"

// Store writes objects into one bucket. Upload with upsert replaces any
// existing object at path.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error
	PublicURL(path string) (string, error)
}
