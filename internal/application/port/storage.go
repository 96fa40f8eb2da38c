package port

import "context"

// BlobStorage stores attachment bytes under a relative path
type BlobStorage interface {
	// Put writes content and returns the URL the attachment is served from
	Put(ctx context.Context, path string, content []byte, contentType string) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete is idempotent: a missing path is not an error
	Delete(ctx context.Context, path string) error
}
