package repositories

import "context"

// BlobStore abstracts object storage for merged audio artifacts.
type BlobStore interface {
	// Put uploads bytes at path with the given content type.
	Put(ctx context.Context, path string, data []byte, contentType string) error
	// GetURL returns a retrievable URL for path.
	GetURL(ctx context.Context, path string) (string, error)
	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
}
