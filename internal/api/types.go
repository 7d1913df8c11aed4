package api

import "time"

// ErrorResponse is the JSON error envelope returned by the API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Version        string `json:"version"`
	ProjectPrefix  string `json:"project_prefix"`
	CharacterCount int    `json:"character_count"`
}

// CharacterCreateRequest creates one roster character.
type CharacterCreateRequest struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// CharacterResponse is one roster character.
type CharacterResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImageResponse is one gallery image record.
type ImageResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ImageDeleteResponse reports the outcome of an image delete.
type ImageDeleteResponse struct {
	ID      int64 `json:"id"`
	Removed bool  `json:"removed"`
}

// AuthLoginRequest is a browser login.
type AuthLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMeResponse describes the calling principal.
type AuthMeResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
	AuthType      string `json:"auth_type,omitempty"`
}
