package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudvault/cloudvault/internal/models"
)

// MemoryStore keeps the file collection in memory. It backs offline
// development and tests, preserving insertion order like a real listing.
type MemoryStore struct {
	mu    sync.Mutex
	files []models.FileRecord
	now   func() time.Time
}

func NewMemoryStore(seed ...models.FileRecord) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.files = append(s.files, seed...)
	return s
}

func (s *MemoryStore) List(ctx context.Context) ([]models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FileRecord, len(s.files))
	copy(out, s.files)
	return out, nil
}

func (s *MemoryStore) Upload(ctx context.Context, name string, size int64, content io.Reader) (models.FileRecord, error) {
	if name == "" {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Err: errEmptyName}
	}
	if content != nil {
		if _, err := io.Copy(io.Discard, content); err != nil {
			return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Name: name, Err: err}
		}
	}

	rec := models.FileRecord{
		Name:         name,
		Size:         size,
		LastModified: s.now(),
		VersionID:    uuid.NewString(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		if s.files[i].Name == name {
			// Latest-wins: replace in place, keep list position.
			s.files[i] = rec
			return rec, nil
		}
	}
	s.files = append(s.files, rec)
	return rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		if s.files[i].Name == name {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return &Error{Kind: KindNotFound, Op: "delete", Name: name, Err: errors.New("no such file")}
}

func (s *MemoryStore) Download(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		if s.files[i].Name == name {
			return nil
		}
	}
	return &Error{Kind: KindNotFound, Op: "download", Name: name, Err: errors.New("no such file")}
}
