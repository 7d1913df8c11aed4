package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"charpix/internal/blobstore"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, pngHeader)
	return data
}

// memBlobs is an in-memory blob store.
type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	failStore error
	counter   int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (m *memBlobs) Store(_ context.Context, ownerID, originalFilename string, r io.Reader) (blobstore.StoreResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStore != nil {
		return blobstore.StoreResult{}, m.failStore
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return blobstore.StoreResult{}, err
	}
	m.counter++
	filename := fmt.Sprintf("blob-%02d", m.counter)
	path := ownerID + "/" + filename
	m.blobs[path] = data
	return blobstore.StoreResult{Filename: filename, Path: path, SizeBytes: int64(len(data))}, nil
}

func (m *memBlobs) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Delete(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[path]; !ok {
		return false, nil
	}
	delete(m.blobs, path)
	return true, nil
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func TestValidate_RejectsOversizedContent(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 1024, nil)

	err := m.Validate(pngBytes(2048))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate_RejectsEmptyContent(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 0, nil)

	if err := m.Validate(nil); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate_SniffsContentNotFilename(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 0, nil)

	// Text bytes with an image extension must still be rejected.
	err := m.Validate([]byte("this is not an image, whatever the name says"))
	if !IsValidation(err) {
		t.Fatalf("expected validation error for non-image content, got %v", err)
	}
}

func TestValidate_AcceptsAllowListedFormats(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 0, nil)

	samples := map[string][]byte{
		"png":  pngBytes(64),
		"gif":  append([]byte("GIF89a"), make([]byte, 32)...),
		"jpeg": append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...),
	}
	for name, data := range samples {
		if err := m.Validate(data); err != nil {
			t.Fatalf("%s: expected valid, got %v", name, err)
		}
	}
}

func TestValidate_HonorsConfiguredAllowList(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 0, []string{"image/png"})

	if err := m.Validate(pngBytes(32)); err != nil {
		t.Fatalf("png should pass: %v", err)
	}
	gif := append([]byte("GIF89a"), make([]byte, 16)...)
	if err := m.Validate(gif); !IsValidation(err) {
		t.Fatalf("gif should be rejected by narrowed allow-list, got %v", err)
	}
}

func TestStore_WritesNoBlobWhenValidationFails(t *testing.T) {
	blobs := newMemBlobs()
	m := NewBlobManager(blobs, 1024, nil)

	_, err := m.Store(context.Background(), "ch-ab12", "huge.png", pngBytes(4096))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if blobs.count() != 0 {
		t.Fatalf("expected no blobs written, got %d", blobs.count())
	}
}

func TestStore_WrapsBackendFailureAsStorageError(t *testing.T) {
	blobs := newMemBlobs()
	blobs.failStore = errors.New("disk detached")
	m := NewBlobManager(blobs, 0, nil)

	_, err := m.Store(context.Background(), "ch-ab12", "a.png", pngBytes(32))
	if !IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !errors.Is(err, blobs.failStore) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestDelete_AbsentBlobIsNotAnError(t *testing.T) {
	m := NewBlobManager(newMemBlobs(), 0, nil)

	removed, err := m.Delete(context.Background(), "ch-ab12/gone.png")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed {
		t.Fatal("expected removed=false for absent blob")
	}
}
