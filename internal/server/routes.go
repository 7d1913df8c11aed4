package server

import "net/http"

// Version is the reported server version.
const Version = "0.3.0"

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	mux.HandleFunc("POST /v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /v1/auth/me", s.handleAuthMe)

	mux.HandleFunc("POST /v1/characters", s.handleCreateCharacter)
	mux.HandleFunc("GET /v1/characters", s.handleListCharacters)
	mux.HandleFunc("GET /v1/characters/{id}", s.handleGetCharacter)

	mux.HandleFunc("GET /v1/characters/{id}/images", s.handleListImages)
	mux.HandleFunc("POST /v1/characters/{id}/images", s.handleUploadImage)
	mux.HandleFunc("DELETE /v1/characters/{id}/images/{image_id}", s.handleDeleteImage)

	mux.HandleFunc("GET /media/{character_id}/{filename}", s.handleServeMedia)

	return s.withRequestLogging(s.withAuth(mux))
}
