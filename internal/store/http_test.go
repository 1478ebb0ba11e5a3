package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudvault/cloudvault/internal/models"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestHTTPStoreList(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/files" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []models.FileRecord{
				{Name: "a.pdf", Size: 1000, LastModified: time.Now()},
			},
		})
	}))
	defer server.Close()

	s := NewHTTPStore(server.URL, staticToken("tok123"))
	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.pdf" {
		t.Fatalf("unexpected listing: %+v", files)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization header = %q, want bearer token", gotAuth)
	}
}

func TestHTTPStoreUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("upload is not multipart: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"file": models.FileRecord{Name: "a.pdf", Size: 9, VersionID: "v2"},
		})
	}))
	defer server.Close()

	s := NewHTTPStore(server.URL, staticToken("tok123"))
	rec, err := s.Upload(context.Background(), "a.pdf", 9, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if rec.Name != "a.pdf" || rec.VersionID != "v2" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestHTTPStoreErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "File not found"})
	}))
	defer server.Close()

	s := NewHTTPStore(server.URL, staticToken("tok123"))

	t.Run("NotFound", func(t *testing.T) {
		err := s.Delete(context.Background(), "ghost.txt")
		if !IsNotFound(err) {
			t.Fatalf("404 should map to not_found, got %v", err)
		}
		if !strings.Contains(err.Error(), "File not found") {
			t.Errorf("backend message should survive, got %q", err.Error())
		}
	})

	t.Run("Network", func(t *testing.T) {
		dead := NewHTTPStore("http://127.0.0.1:1", staticToken(""))
		err := dead.Delete(context.Background(), "a.txt")
		var se *Error
		if !errors.As(err, &se) || se.Kind != KindNetwork {
			t.Fatalf("transport failure should map to network, got %v", err)
		}
	})
}
