package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "CHARPIX_HTTP_TIMEOUT"
	apiTokenEnvKey     = "CHARPIX_API_TOKEN"
)

// Client is a simple HTTP client for the charpix API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client. The bearer token, when present in the
// environment, authenticates the CLI as a staff service principal.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, &resp)
	return resp, err
}

func (c *Client) CreateCharacter(ctx context.Context, req CharacterCreateRequest) (CharacterResponse, error) {
	var resp CharacterResponse
	err := c.do(ctx, http.MethodPost, "/v1/characters", req, &resp)
	return resp, err
}

func (c *Client) GetCharacter(ctx context.Context, id string) (CharacterResponse, error) {
	var resp CharacterResponse
	err := c.do(ctx, http.MethodGet, "/v1/characters/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) ListCharacters(ctx context.Context) ([]CharacterResponse, error) {
	var resp []CharacterResponse
	err := c.do(ctx, http.MethodGet, "/v1/characters", nil, &resp)
	return resp, err
}

func (c *Client) ListImages(ctx context.Context, characterID string) ([]ImageResponse, error) {
	var resp []ImageResponse
	err := c.do(ctx, http.MethodGet, "/v1/characters/"+url.PathEscape(characterID)+"/images", nil, &resp)
	return resp, err
}

// UploadImage uploads one image as multipart form data.
func (c *Client) UploadImage(ctx context.Context, characterID, filename, caption string, content io.Reader) (ImageResponse, error) {
	var resp ImageResponse

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("content", filename)
	if err != nil {
		return resp, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return resp, err
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return resp, err
		}
	}
	if err := writer.Close(); err != nil {
		return resp, err
	}

	endpoint := c.baseURL + "/v1/characters/" + url.PathEscape(characterID) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeader(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

func (c *Client) DeleteImage(ctx context.Context, characterID string, imageID int64) (ImageDeleteResponse, error) {
	var resp ImageDeleteResponse
	path := "/v1/characters/" + url.PathEscape(characterID) + "/images/" + strconv.FormatInt(imageID, 10)
	err := c.do(ctx, http.MethodDelete, path, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
