package server

import (
	"net/http"

	"charpix/internal/api"
)

// handleHealth is a liveness probe.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo describes the running server.
// GET /v1/info
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountCharacters(r.Context())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure("count characters", err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.InfoResponse{
		Version:        Version,
		ProjectPrefix:  s.projectPrefix,
		CharacterCount: count,
	})
}
