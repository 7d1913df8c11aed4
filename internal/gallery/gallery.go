package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"charpix/internal/models"
)

// AttributeStore is the character attribute bag the gallery persists into.
// The store package implements it; the gallery only ever touches the
// "gallery" key and treats every other slot as opaque.
type AttributeStore interface {
	GetAttribute(ctx context.Context, characterID, key string) ([]byte, bool, error)
	SetAttribute(ctx context.Context, characterID, key string, value []byte) error
}

// Store manages the ordered image gallery attached to each character. It
// knows nothing about file bytes; records reference blobs by path.
//
// The gallery is one whole-list JSON value per character, so every mutation
// is a read-modify-write. A per-character mutex serializes mutations;
// without it two concurrent uploads to the same character can lose a record.
type Store struct {
	attrs        AttributeStore
	mediaBaseURL string
	locks        lockTable
}

// NewStore creates a gallery store. mediaBaseURL prefixes blob paths to form
// the public URL of each image (e.g. "http://127.0.0.1:7433/media").
func NewStore(attrs AttributeStore, mediaBaseURL string) *Store {
	return &Store{
		attrs:        attrs,
		mediaBaseURL: strings.TrimRight(strings.TrimSpace(mediaBaseURL), "/"),
	}
}

// ListImages returns the character's gallery in append order. A character
// with no gallery attribute yields an empty gallery, not an error.
func (s *Store) ListImages(ctx context.Context, characterID string) (models.Gallery, error) {
	if s == nil || s.attrs == nil {
		return nil, fmt.Errorf("gallery store is not configured")
	}
	return s.load(ctx, characterID)
}

// AddImage appends a new record to the character's gallery, creating the
// gallery lazily, and persists it. The id is unique within the gallery
// (max existing id + 1) and uploaded_at is set to the current UTC time.
func (s *Store) AddImage(ctx context.Context, characterID, filename, path, caption string) (models.ImageRecord, error) {
	var zero models.ImageRecord
	if s == nil || s.attrs == nil {
		return zero, fmt.Errorf("gallery store is not configured")
	}
	if strings.TrimSpace(filename) == "" {
		return zero, validationf("image filename is required")
	}
	if strings.TrimSpace(path) == "" {
		return zero, validationf("image path is required")
	}

	unlock := s.locks.lock(characterID)
	defer unlock()

	g, err := s.load(ctx, characterID)
	if err != nil {
		return zero, err
	}

	record := models.ImageRecord{
		ID:         g.NextID(),
		Filename:   filename,
		Path:       path,
		URL:        s.urlFor(path),
		Caption:    caption,
		UploadedAt: time.Now().UTC(),
	}
	g = append(g, record)

	if err := s.persist(ctx, characterID, g); err != nil {
		return zero, err
	}
	return record, nil
}

// RemoveImage removes the record with the given id and persists the
// shortened gallery. Removing an unknown id is a no-op reported as false;
// the removed record is returned so the caller can delete its blob.
func (s *Store) RemoveImage(ctx context.Context, characterID string, imageID int64) (models.ImageRecord, bool, error) {
	var zero models.ImageRecord
	if s == nil || s.attrs == nil {
		return zero, false, fmt.Errorf("gallery store is not configured")
	}

	unlock := s.locks.lock(characterID)
	defer unlock()

	g, err := s.load(ctx, characterID)
	if err != nil {
		return zero, false, err
	}

	idx := g.Find(imageID)
	if idx < 0 {
		return zero, false, nil
	}

	removed := g[idx]
	g = append(g[:idx], g[idx+1:]...)

	if err := s.persist(ctx, characterID, g); err != nil {
		return zero, false, err
	}
	return removed, true, nil
}

func (s *Store) load(ctx context.Context, characterID string) (models.Gallery, error) {
	raw, ok, err := s.attrs.GetAttribute(ctx, characterID, models.GalleryAttributeKey)
	if err != nil {
		return nil, fmt.Errorf("read gallery attribute for %s: %w", characterID, err)
	}
	if !ok {
		return models.Gallery{}, nil
	}

	var g models.Gallery
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode gallery attribute for %s: %w", characterID, err)
	}
	return g, nil
}

func (s *Store) persist(ctx context.Context, characterID string, g models.Gallery) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode gallery for %s: %w", characterID, err)
	}
	if err := s.attrs.SetAttribute(ctx, characterID, models.GalleryAttributeKey, raw); err != nil {
		return fmt.Errorf("write gallery attribute for %s: %w", characterID, err)
	}
	return nil
}

func (s *Store) urlFor(path string) string {
	if s.mediaBaseURL == "" {
		return "/" + strings.TrimLeft(path, "/")
	}
	return s.mediaBaseURL + "/" + strings.TrimLeft(path, "/")
}
