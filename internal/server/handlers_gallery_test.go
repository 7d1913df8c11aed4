package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"charpix/internal/api"
	"charpix/internal/blobstore"
	"charpix/internal/store"
)

const testAPIToken = "test-token"

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	t.Setenv(apiTokenEnvKey, testAPIToken)

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	disk, err := blobstore.NewLocalDisk(filepath.Join(t.TempDir(), "media"))
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}

	srv := New("127.0.0.1:0", st, disk, Options{
		ProjectPrefix: "ch",
		PublicBaseURL: "http://127.0.0.1:7433",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv, st
}

func doRequest(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, filename, caption string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("content", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			t.Fatalf("write caption: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, characterID, filename, caption string, content []byte, token string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, filename, caption, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/characters/"+characterID+"/images", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func createCharacterViaStore(t *testing.T, srv *Server, st *store.Store, owner string) string {
	t.Helper()
	createTestCharacter(t, st, "ch-ab12", owner)
	return "ch-ab12"
}

func TestUploadListDeleteFlow(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	rec := doRequest(t, srv, uploadRequest(t, characterID, "portrait.png", "first one", pngPayload(256), testAPIToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status: %d body: %s", rec.Code, rec.Body.String())
	}
	var uploaded api.ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.ID != 1 || uploaded.Caption != "first one" {
		t.Fatalf("unexpected upload response: %+v", uploaded)
	}
	if uploaded.URL == "" {
		t.Fatal("expected media url in response")
	}

	rec = doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters/"+characterID+"/images", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}
	var images []api.ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &images); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(images) != 1 || images[0].Filename != uploaded.Filename {
		t.Fatalf("unexpected list: %+v", images)
	}

	mediaReq := httptest.NewRequest(http.MethodGet, "/media/"+uploaded.Path, nil)
	rec = doRequest(t, srv, mediaReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("media status: %d", rec.Code)
	}
	if rec.Body.Len() != 256 {
		t.Fatalf("expected 256 media bytes, got %d", rec.Body.Len())
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/v1/characters/"+characterID+"/images/1", nil)
	deleteReq.Header.Set("Authorization", "Bearer "+testAPIToken)
	rec = doRequest(t, srv, deleteReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status: %d body: %s", rec.Code, rec.Body.String())
	}
	var deleted api.ImageDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if !deleted.Removed || deleted.ID != 1 {
		t.Fatalf("unexpected delete response: %+v", deleted)
	}

	rec = doRequest(t, srv, mediaReq)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected media gone after delete, got %d", rec.Code)
	}
}

func TestUpload_RequiresAuthentication(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	rec := doRequest(t, srv, uploadRequest(t, characterID, "a.png", "", pngPayload(32), ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous upload, got %d", rec.Code)
	}
}

func TestUpload_RejectsInvalidBearerToken(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	rec := doRequest(t, srv, uploadRequest(t, characterID, "a.png", "", pngPayload(32), "wrong-token"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestUpload_UnknownCharacterIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, uploadRequest(t, "ch-zz99", "a.png", "", pngPayload(32), testAPIToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.ErrorCode != ErrCodeCharacterNotFound {
		t.Fatalf("expected error_code %d, got %d", ErrCodeCharacterNotFound, resp.ErrorCode)
	}
}

func TestUpload_RejectsNonImageContent(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	rec := doRequest(t, srv, uploadRequest(t, characterID, "fake.png", "", []byte("just some text"), testAPIToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body: %s", rec.Code, rec.Body.String())
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.ErrorCode != ErrCodeUnsupportedFormat {
		t.Fatalf("expected error_code %d, got %d", ErrCodeUnsupportedFormat, resp.ErrorCode)
	}
}

func TestUpload_RequiresContentField(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("caption", "no file"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/characters/"+characterID+"/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDelete_UnknownImageReportsNoOp(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	req := httptest.NewRequest(http.MethodDelete, "/v1/characters/"+characterID+"/images/42", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp api.ImageDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Removed {
		t.Fatal("expected removed=false")
	}
}

func TestListImages_IsPublic(t *testing.T) {
	srv, st := newTestServer(t)
	characterID := createCharacterViaStore(t, srv, st, "alice")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters/"+characterID+"/images", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous list, got %d", rec.Code)
	}
}

func TestInvalidCharacterIDIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/v1/characters/not-a-valid-id/images", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
