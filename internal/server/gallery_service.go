package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"charpix/internal/gallery"
	"charpix/internal/models"
)

// CharacterReader is the slice of the store the gallery service needs to
// resolve characters and their owners.
type CharacterReader interface {
	GetCharacter(ctx context.Context, id string) (*models.Character, error)
	CharacterExists(ctx context.Context, id string) (bool, error)
}

// UploadInput is one upload request after multipart decoding.
type UploadInput struct {
	Filename string
	Caption  string
	Content  []byte
}

// GalleryService orchestrates gallery operations: owner resolution,
// authorization, blob handling, and metadata updates, in that order.
type GalleryService struct {
	characters CharacterReader
	gallery    *gallery.Store
	blobs      *gallery.BlobManager
	logger     *slog.Logger
}

func NewGalleryService(characters CharacterReader, galleryStore *gallery.Store, blobs *gallery.BlobManager, logger *slog.Logger) *GalleryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{
		characters: characters,
		gallery:    galleryStore,
		blobs:      blobs,
		logger:     logger,
	}
}

// Upload stores the image blob and appends its record to the character's
// gallery. Authorization and content validation happen before any blob is
// written; a metadata failure after the blob write triggers a compensating
// blob delete so no orphan survives a failed upload.
func (g *GalleryService) Upload(ctx context.Context, characterID string, p models.Principal, in UploadInput) (models.ImageRecord, error) {
	var zero models.ImageRecord

	character, err := g.characters.GetCharacter(ctx, characterID)
	if err != nil {
		return zero, fmt.Errorf("look up character %s: %w", characterID, err)
	}
	if character == nil {
		return zero, gallery.ErrCharacterNotFound
	}
	if err := gallery.Authorize(p, character.OwnerID, gallery.ActionUpload); err != nil {
		return zero, err
	}

	result, err := g.blobs.Store(ctx, characterID, in.Filename, in.Content)
	if err != nil {
		return zero, err
	}

	record, err := g.gallery.AddImage(ctx, characterID, result.Filename, result.Path, in.Caption)
	if err != nil {
		if _, delErr := g.blobs.Delete(ctx, result.Path); delErr != nil {
			g.logger.Error("failed to clean up blob after metadata failure",
				"character_id", characterID, "path", result.Path, "error", delErr)
		}
		return zero, err
	}

	g.logger.Info("image uploaded",
		"character_id", characterID, "image_id", record.ID,
		"filename", record.Filename, "size", result.SizeBytes, "principal", p.ID)
	return record, nil
}

// Delete removes the image record and then its blob. Metadata is removed
// first so a blob I/O failure can never resurrect the record; an orphaned
// blob is logged and the delete still reports success.
func (g *GalleryService) Delete(ctx context.Context, characterID string, p models.Principal, imageID int64) (bool, error) {
	character, err := g.characters.GetCharacter(ctx, characterID)
	if err != nil {
		return false, fmt.Errorf("look up character %s: %w", characterID, err)
	}
	if character == nil {
		return false, gallery.ErrCharacterNotFound
	}
	if err := gallery.Authorize(p, character.OwnerID, gallery.ActionDelete); err != nil {
		return false, err
	}

	removed, ok, err := g.gallery.RemoveImage(ctx, characterID, imageID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if existed, err := g.blobs.Delete(ctx, removed.Path); err != nil {
		g.logger.Warn("image record removed but blob delete failed; blob orphaned",
			"character_id", characterID, "image_id", imageID, "path", removed.Path, "error", err)
	} else if !existed {
		g.logger.Debug("blob already absent on delete",
			"character_id", characterID, "image_id", imageID, "path", removed.Path)
	}

	g.logger.Info("image deleted",
		"character_id", characterID, "image_id", imageID, "principal", p.ID)
	return true, nil
}

// List returns the character's gallery in append order. Viewing requires no
// authorization; the roster is public.
func (g *GalleryService) List(ctx context.Context, characterID string) (models.Gallery, error) {
	exists, err := g.characters.CharacterExists(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("look up character %s: %w", characterID, err)
	}
	if !exists {
		return nil, gallery.ErrCharacterNotFound
	}
	return g.gallery.ListImages(ctx, characterID)
}

// OpenMedia opens the blob at path for serving.
func (g *GalleryService) OpenMedia(ctx context.Context, path string) (io.ReadCloser, error) {
	return g.blobs.Open(ctx, path)
}
