// Package store defines the file store contract: the authoritative list of
// file records for a session, mutated only through upload and delete. Every
// operation returns a tagged *Error instead of letting faults escape the
// component boundary.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudvault/cloudvault/internal/models"
)

// ErrorKind tags a store failure so the UI can phrase the message accurately.
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindNetwork  ErrorKind = "network"
	KindUnknown  ErrorKind = "unknown"
)

// Error is the tagged outcome for a failed store operation.
type Error struct {
	Kind ErrorKind
	Op   string // "list", "upload", "delete", "download"
	Name string // file name, when the operation targets one
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var errEmptyName = errors.New("file name must not be empty")

// IsNotFound reports whether err is a store error for an absent file.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// FileStore owns the authoritative file collection for a session.
//
// Upload inserts or replaces the record named name (latest-wins), stamping a
// fresh LastModified; after a successful upload an immediately following
// List includes the new record. Delete and Download fail with a not_found
// error when no record carries the name, so "already gone" is reportable
// rather than silently swallowed. Download never mutates the collection.
type FileStore interface {
	List(ctx context.Context) ([]models.FileRecord, error)
	Upload(ctx context.Context, name string, size int64, content io.Reader) (models.FileRecord, error)
	Delete(ctx context.Context, name string) error
	Download(ctx context.Context, name string) error
}
