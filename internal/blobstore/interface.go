package blobstore

import (
	"context"
	"io"
)

// StoreResult describes a stored blob.
type StoreResult struct {
	Filename  string
	Path      string
	SizeBytes int64
}

// BlobStore abstracts physical blob storage. Paths are storage-relative and
// stable; the local disk backend is the only implementation today, an
// object-storage backend would slot in behind this interface.
type BlobStore interface {
	Store(ctx context.Context, ownerID, originalFilename string, r io.Reader) (StoreResult, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) (bool, error)
}
