package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"charpix/internal/api"
)

func createCharacterRequest(t *testing.T, name, owner, token string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(api.CharacterCreateRequest{Name: name, Owner: owner})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/characters", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCreateCharacter(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, createCharacterRequest(t, "Aria", "alice", testAPIToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: %d body: %s", rec.Code, rec.Body.String())
	}
	var created api.CharacterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !regexp.MustCompile(`^ch-[0-9a-z]{4}$`).MatchString(created.ID) {
		t.Fatalf("unexpected id: %s", created.ID)
	}
	if created.OwnerID != "alice" {
		t.Fatalf("unexpected owner: %s", created.OwnerID)
	}

	rec = doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: %d", rec.Code)
	}

	rec = doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}
	var list []api.CharacterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateCharacter_IsStaffOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, createCharacterRequest(t, "Aria", "alice", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous create, got %d", rec.Code)
	}
}

func TestCreateCharacter_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, createCharacterRequest(t, "", "alice", testAPIToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", rec.Code)
	}
	rec = doRequest(t, srv, createCharacterRequest(t, "Aria", "", testAPIToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty owner, got %d", rec.Code)
	}
}

func TestGetCharacter_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters/ch-zz99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthAndInfo(t *testing.T) {
	srv, st := newTestServer(t)
	createTestCharacter(t, st, "ch-ab12", "alice")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}

	rec = doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("info status: %d", rec.Code)
	}
	var info api.InfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.ProjectPrefix != "ch" || info.CharacterCount != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
