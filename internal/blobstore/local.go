package blobstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const blobTokenBytes = 8

// LocalDisk stores blobs on the local filesystem, one directory per owner.
// Stored names are random tokens with the original extension preserved; the
// client-supplied filename is never used as a storage name.
type LocalDisk struct {
	root string
}

// NewLocalDisk creates a local blob store rooted at root.
func NewLocalDisk(root string) (*LocalDisk, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalDisk{root: abs}, nil
}

// Store streams bytes into a new collision-free file under the owner's
// directory and returns its name and storage-relative path.
func (d *LocalDisk) Store(ctx context.Context, ownerID, originalFilename string, r io.Reader) (StoreResult, error) {
	var zero StoreResult
	if d == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := validateOwnerID(ownerID); err != nil {
		return zero, err
	}

	filename, err := generateStoredName(originalFilename)
	if err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(d.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	relPath := path.Join(ownerID, filename)
	dst := filepath.Join(d.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return zero, err
	}

	return StoreResult{Filename: filename, Path: relPath, SizeBytes: n}, nil
}

// Open returns a reader for a stored blob.
func (d *LocalDisk) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.fullPath(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a stored blob. Returns false without error when the blob is
// already absent; deletion is idempotent.
func (d *LocalDisk) Delete(ctx context.Context, relPath string) (bool, error) {
	if d == nil {
		return false, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := d.fullPath(relPath)
	if err != nil {
		return false, err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *LocalDisk) fullPath(relPath string) (string, error) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return "", fmt.Errorf("blob path is required")
	}
	if strings.HasPrefix(relPath, "/") {
		return "", fmt.Errorf("blob path must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob path")
	}
	return filepath.Join(d.root, clean), nil
}

func validateOwnerID(ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}
	if strings.ContainsAny(ownerID, "/\\") || strings.Contains(ownerID, "..") {
		return fmt.Errorf("invalid owner id")
	}
	return nil
}

// generateStoredName builds "<random token><ext>", keeping only a sanitized
// extension from the original name.
func generateStoredName(originalFilename string) (string, error) {
	buf := make([]byte, blobTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + sanitizeExtension(originalFilename), nil
}

func sanitizeExtension(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.TrimSpace(filename))))
	if ext == "" || ext == "." || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
