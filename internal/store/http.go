package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudvault/cloudvault/internal/models"
)

// TokenSource yields the bearer token attached to every backend call. The
// session store satisfies this.
type TokenSource interface {
	Token() string
}

// HTTPStore is the client for the cloudvault HTTP backend.
type HTTPStore struct {
	base   string
	client *http.Client
	tokens TokenSource
}

func NewHTTPStore(baseURL string, tokens TokenSource) *HTTPStore {
	return &HTTPStore{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{},
		tokens: tokens,
	}
}

func (s *HTTPStore) List(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := s.do(ctx, http.MethodGet, "/files", "", nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: kindFromStatus(resp.StatusCode), Op: "list", Err: bodyError(resp)}
	}

	var payload struct {
		Files []models.FileRecord `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Kind: KindUnknown, Op: "list", Err: err}
	}
	return payload.Files, nil
}

func (s *HTTPStore) Upload(ctx context.Context, name string, size int64, content io.Reader) (models.FileRecord, error) {
	if name == "" {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Err: errEmptyName}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Name: name, Err: err}
	}
	if content != nil {
		if _, err := io.Copy(part, content); err != nil {
			return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Name: name, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Name: name, Err: err}
	}

	resp, err := s.do(ctx, http.MethodPost, "/files", writer.FormDataContentType(), body)
	if err != nil {
		return models.FileRecord{}, &Error{Kind: KindNetwork, Op: "upload", Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FileRecord{}, &Error{Kind: kindFromStatus(resp.StatusCode), Op: "upload", Name: name, Err: bodyError(resp)}
	}

	var payload struct {
		File models.FileRecord `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Name: name, Err: err}
	}
	return payload.File, nil
}

func (s *HTTPStore) Delete(ctx context.Context, name string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(name), "", nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "delete", Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: kindFromStatus(resp.StatusCode), Op: "delete", Name: name, Err: bodyError(resp)}
	}
	return nil
}

func (s *HTTPStore) Download(ctx context.Context, name string) error {
	resp, err := s.do(ctx, http.MethodGet, "/files/"+url.PathEscape(name)+"/download", "", nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "download", Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: kindFromStatus(resp.StatusCode), Op: "download", Name: name, Err: bodyError(resp)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *HTTPStore) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := s.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.client.Do(req)
}

func kindFromStatus(status int) ErrorKind {
	if status == http.StatusNotFound {
		return KindNotFound
	}
	return KindUnknown
}

func bodyError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
