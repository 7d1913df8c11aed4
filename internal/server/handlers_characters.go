package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"charpix/internal/api"
	"charpix/internal/models"
	"charpix/internal/store"
)

// handleCreateCharacter creates one roster character. Staff only.
// POST /v1/characters
func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req api.CharacterCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeInvalidJSON, "invalid JSON body: %v", err))
		return
	}

	name, err := validateCharacterName(req.Name)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	owner := strings.TrimSpace(strings.ToLower(req.Owner))
	if owner == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeMissingRequired, "character owner is required"))
		return
	}

	id, err := store.GenerateID(s.projectPrefix, func(candidate string) (bool, error) {
		return s.store.CharacterExists(r.Context(), candidate)
	})
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure("generate character id", err))
		return
	}

	now := time.Now().UTC()
	character := &models.Character{
		ID:        id,
		Name:      name,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCharacter(r.Context(), character); err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure("create character", err))
		return
	}

	s.log().Info("character created", "character_id", id, "owner", owner)
	s.writeJSON(w, http.StatusCreated, characterResponse(*character))
}

// handleListCharacters returns the full roster ordered by name.
// GET /v1/characters
func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.store.ListCharacters(r.Context())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure("list characters", err))
		return
	}

	resp := make([]api.CharacterResponse, 0, len(characters))
	for _, character := range characters {
		resp = append(resp, characterResponse(character))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetCharacter returns one character by id.
// GET /v1/characters/{id}
func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validateCharacterID(id); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	character, err := s.store.GetCharacter(r.Context(), id)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure("get character", err))
		return
	}
	if character == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(ErrCodeCharacterNotFound, "character not found"))
		return
	}

	s.writeJSON(w, http.StatusOK, characterResponse(*character))
}

func characterResponse(character models.Character) api.CharacterResponse {
	return api.CharacterResponse{
		ID:        character.ID,
		Name:      character.Name,
		OwnerID:   character.OwnerID,
		CreatedAt: character.CreatedAt,
		UpdatedAt: character.UpdatedAt,
	}
}
