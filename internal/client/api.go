package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/notes"
)

// APIClient talks to the NoteMate REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIClient creates an API client for the given server base URL
// (e.g. "http://localhost:8080").
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token used on authenticated calls.
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// AuthResponse is the payload of signup and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// UserInfo is the payload of GET /api/auth.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Signup creates an account.
func (c *APIClient) Signup(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/users/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Login exchanges credentials for a token.
func (c *APIClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Me resolves the current token's user.
func (c *APIClient) Me(ctx context.Context) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, http.MethodGet, "/api/auth", nil, &out)
	return out, err
}

// AllNotes fetches the user's live notes.
func (c *APIClient) AllNotes(ctx context.Context) ([]notes.Note, error) {
	var out []notes.Note
	err := c.do(ctx, http.MethodGet, "/api/notes/all", nil, &out)
	return out, err
}

// CreateNote creates a note on the server.
func (c *APIClient) CreateNote(ctx context.Context, text, color string) (notes.Note, error) {
	var out notes.Note
	err := c.do(ctx, http.MethodPost, "/api/notes", map[string]string{
		"text":  text,
		"color": color,
	}, &out)
	return out, err
}

// UpdateNote applies a partial update; nil fields are left unchanged.
func (c *APIClient) UpdateNote(ctx context.Context, id string, text, color *string) (notes.Note, error) {
	body := map[string]any{"id": id}
	if text != nil {
		body["text"] = *text
	}
	if color != nil {
		body["color"] = *color
	}
	var out notes.Note
	err := c.do(ctx, http.MethodPatch, "/api/notes", body, &out)
	return out, err
}

// DeleteNote soft-deletes a note on the server.
func (c *APIClient) DeleteNote(ctx context.Context, id string) error {
	path := "/api/notes?id=" + url.QueryEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Export asks the server to snapshot the user's notes to object storage.
func (c *APIClient) Export(ctx context.Context) (notes.ExportResult, error) {
	var out notes.ExportResult
	err := c.do(ctx, http.MethodPost, "/api/notes/export", nil, &out)
	return out, err
}

// ListExports returns the keys of past exports.
func (c *APIClient) ListExports(ctx context.Context) ([]string, error) {
	var out struct {
		Exports []string `json:"exports"`
	}
	err := c.do(ctx, http.MethodGet, "/api/notes/exports", nil, &out)
	return out.Exports, err
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "server unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "failed to read response", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.Wrap(errs.Internal, "failed to decode response", err)
	}
	return nil
}

// statusError converts an HTTP error response back into a coded error,
// preserving the server's message when the body carries one.
func statusError(status int, body []byte) error {
	message := http.StatusText(status)
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	var code errs.Code
	switch status {
	case http.StatusBadRequest:
		code = errs.InvalidArgument
	case http.StatusUnauthorized:
		code = errs.Unauthenticated
	case http.StatusForbidden:
		code = errs.PermissionDenied
	case http.StatusNotFound:
		code = errs.NotFound
	case http.StatusConflict:
		code = errs.FailedPrecondition
	case http.StatusTooManyRequests:
		code = errs.ResourceExhausted
	case http.StatusServiceUnavailable:
		code = errs.Unavailable
	default:
		code = errs.Internal
	}
	return errs.New(code, message)
}
