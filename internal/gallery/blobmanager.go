package gallery

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"charpix/internal/blobstore"
)

// DefaultMaxUploadBytes is the upload size limit when none is configured.
const DefaultMaxUploadBytes int64 = 5 << 20 // 5 MiB

// defaultAllowedFormats is the image format allow-list. Formats are matched
// against the sniffed content signature, never against a client-supplied
// extension or MIME string.
var defaultAllowedFormats = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// BlobManager validates image content and moves blobs in and out of the
// underlying store. It knows nothing about captions or gallery ids.
type BlobManager struct {
	blobs    blobstore.BlobStore
	maxBytes int64
	allowed  map[string]struct{}
}

// NewBlobManager creates a BlobManager. A non-positive maxBytes and an empty
// allow-list fall back to the defaults.
func NewBlobManager(blobs blobstore.BlobStore, maxBytes int64, allowedFormats []string) *BlobManager {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if len(allowedFormats) == 0 {
		allowedFormats = defaultAllowedFormats
	}
	allowed := make(map[string]struct{}, len(allowedFormats))
	for _, format := range allowedFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			continue
		}
		allowed[format] = struct{}{}
	}
	return &BlobManager{blobs: blobs, maxBytes: maxBytes, allowed: allowed}
}

// MaxBytes returns the configured upload size limit.
func (m *BlobManager) MaxBytes() int64 {
	return m.maxBytes
}

// Validate rejects content that is empty, exceeds the size limit, or whose
// sniffed signature is not an allow-listed image format.
func (m *BlobManager) Validate(content []byte) error {
	if len(content) == 0 {
		return validationf("file is empty")
	}
	if int64(len(content)) > m.maxBytes {
		return validationf("file too large: %d bytes exceeds limit of %d", len(content), m.maxBytes)
	}

	detected := sniffMediaType(content)
	if _, ok := m.allowed[detected]; !ok {
		return validationf("unsupported image format: %s", detected)
	}
	return nil
}

// Store validates content and writes it as a new blob under the character's
// namespace. No blob is created when validation fails.
func (m *BlobManager) Store(ctx context.Context, characterID, originalFilename string, content []byte) (blobstore.StoreResult, error) {
	var zero blobstore.StoreResult
	if err := m.Validate(content); err != nil {
		return zero, err
	}
	result, err := m.blobs.Store(ctx, characterID, originalFilename, bytes.NewReader(content))
	if err != nil {
		return zero, &StorageError{Op: "store", Err: err}
	}
	return result, nil
}

// Delete removes the blob at path. An already-absent blob reports false
// without error; other I/O failures surface as StorageError.
func (m *BlobManager) Delete(ctx context.Context, path string) (bool, error) {
	removed, err := m.blobs.Delete(ctx, path)
	if err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	return removed, nil
}

// Open returns a reader for the blob at path. Callers treat open failures
// as not-found; a deleted blob races reads softly.
func (m *BlobManager) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return m.blobs.Open(ctx, path)
}

// sniffMediaType returns the canonical content signature of data.
func sniffMediaType(data []byte) string {
	detected := http.DetectContentType(data)
	parsed, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return detected
	}
	return strings.ToLower(parsed)
}
