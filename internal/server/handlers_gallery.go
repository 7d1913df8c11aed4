package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"charpix/internal/api"
	"charpix/internal/models"
)

// handleListImages returns the character's gallery in append order.
// GET /v1/characters/{id}/images
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	characterID := r.PathValue("id")
	if err := validateCharacterID(characterID); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	images, err := s.service.List(r.Context(), characterID)
	if err != nil {
		apiErr := galleryError(err)
		s.writeErrorReq(w, r, apiErr.status, apiErr)
		return
	}

	resp := make([]api.ImageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, imageResponse(img))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleUploadImage accepts one multipart image upload.
// POST /v1/characters/{id}/images
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	characterID := r.PathValue("id")
	if err := validateCharacterID(characterID); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	p := principalFromRequest(r)
	if p.Anonymous() {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("authentication required to upload"))
		return
	}

	if !s.acquireLimiter(s.uploadLimiter, w, r, "upload") {
		return
	}
	defer s.releaseLimiter(s.uploadLimiter)

	// Multipart framing overhead on top of the content limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+s.multipartMaxMemory)
	if err := r.ParseMultipartForm(s.multipartMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequest(ErrCodeRequestTooLarge, "request body exceeds limit of %d bytes", s.maxUploadBytes))
			return
		}
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeInvalidArgument, "invalid multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("content")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeMissingRequired, "multipart field 'content' is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeInvalidArgument, "failed to read upload: %v", err))
		return
	}

	in := UploadInput{
		Filename: filepath.Base(header.Filename),
		Caption:  strings.TrimSpace(r.FormValue("caption")),
		Content:  content,
	}

	record, err := s.service.Upload(r.Context(), characterID, p, in)
	if err != nil {
		apiErr := galleryError(err)
		s.writeErrorReq(w, r, apiErr.status, apiErr)
		return
	}

	s.writeJSON(w, http.StatusCreated, imageResponse(record))
}

// handleDeleteImage removes one image from the gallery.
// DELETE /v1/characters/{id}/images/{image_id}
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	characterID := r.PathValue("id")
	if err := validateCharacterID(characterID); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	imageID, err := parseImageID(r.PathValue("image_id"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	p := principalFromRequest(r)
	if p.Anonymous() {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("authentication required to delete"))
		return
	}

	removed, err := s.service.Delete(r.Context(), characterID, p, imageID)
	if err != nil {
		apiErr := galleryError(err)
		s.writeErrorReq(w, r, apiErr.status, apiErr)
		return
	}

	s.writeJSON(w, http.StatusOK, api.ImageDeleteResponse{ID: imageID, Removed: removed})
}

// handleServeMedia streams one stored blob.
// GET /media/{character_id}/{filename}
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	characterID := r.PathValue("character_id")
	filename := r.PathValue("filename")
	for _, segment := range []string{characterID, filename} {
		if err := validateMediaSegment(segment); err != nil {
			s.writeErrorReq(w, r, http.StatusNotFound, err)
			return
		}
	}

	rc, err := s.service.OpenMedia(r.Context(), characterID+"/"+filename)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(ErrCodeImageNotFound, "media not found"))
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		s.log().Debug("media stream interrupted", "path", r.URL.Path, "error", err)
	}
}

func imageResponse(record models.ImageRecord) api.ImageResponse {
	return api.ImageResponse{
		ID:         record.ID,
		Filename:   record.Filename,
		Path:       record.Path,
		URL:        record.URL,
		Caption:    record.Caption,
		UploadedAt: record.UploadedAt,
	}
}
