// Package controller gates the two surfaces (login vs. file view) on session
// state and coordinates the file store with the view model: every successful
// mutation is followed by a fresh list so the table and stats reflect the
// backend's authoritative state, not a locally patched guess.
package controller

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudvault/cloudvault/internal/session"
	"github.com/cloudvault/cloudvault/internal/store"
	"github.com/cloudvault/cloudvault/internal/view"
)

// State of the session gate.
type State string

const (
	StateLoading         State = "loading" // startup, before the stored session is resolved
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Confirmer is the capability the controller asks before destructive
// actions. The UI layer implements it with a dialog; tests with a stub.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Controller drives the session state machine and file operations. It is
// single-actor: all methods are called from one event loop, so overlapping
// refreshes simply resolve last-write-wins with no locking.
type Controller struct {
	sessions *session.Store
	files    store.FileStore
	view     *view.Model
	confirm  Confirmer

	state   State
	display string

	listing   bool
	uploading bool

	now func() time.Time
}

func New(sessions *session.Store, files store.FileStore, vm *view.Model, confirm Confirmer) *Controller {
	return &Controller{
		sessions: sessions,
		files:    files,
		view:     vm,
		confirm:  confirm,
		state:    StateLoading,
		now:      time.Now,
	}
}

// Start resolves the initial state from the persisted session, loading the
// file list when one is restored.
func (c *Controller) Start(ctx context.Context) error {
	sess, ok := c.sessions.Current()
	if !ok {
		c.state = StateUnauthenticated
		return nil
	}
	c.state = StateAuthenticated
	c.display = sess.DisplayName
	return c.Refresh(ctx)
}

func (c *Controller) State() State        { return c.state }
func (c *Controller) DisplayName() string { return c.display }
func (c *Controller) Listing() bool       { return c.listing }
func (c *Controller) Uploading() bool     { return c.uploading }
func (c *Controller) View() *view.Model   { return c.view }

// Login attempts to authenticate. On failure the state stays
// Unauthenticated and the error surfaces to the caller; there is no retry.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	sess, err := c.sessions.Login(ctx, username, password)
	if err != nil {
		return err
	}
	c.state = StateAuthenticated
	c.display = sess.DisplayName
	return c.Refresh(ctx)
}

// Logout clears the session and all view state. Idempotent.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.sessions.Logout(ctx); err != nil {
		return err
	}
	c.state = StateUnauthenticated
	c.display = ""
	c.view.Reset()
	return nil
}

// Refresh fetches the authoritative file list. On failure the previously
// displayed collection is preserved rather than cleared, so a transient
// error never flashes an empty table.
func (c *Controller) Refresh(ctx context.Context) error {
	c.listing = true
	defer func() { c.listing = false }()

	files, err := c.files.List(ctx)
	if err != nil {
		return err
	}
	c.view.SetFiles(files, c.now())
	return nil
}

// Upload stores a file and re-lists on success.
func (c *Controller) Upload(ctx context.Context, name string, size int64, content io.Reader) error {
	c.uploading = true
	defer func() { c.uploading = false }()

	if _, err := c.files.Upload(ctx, name, size, content); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Delete removes one file after confirmation. The name leaves the selection
// in the same step, then the view re-derives from a fresh list.
func (c *Controller) Delete(ctx context.Context, name string) error {
	if !c.confirm.Confirm(fmt.Sprintf("Delete %s?", name)) {
		return nil
	}
	if err := c.files.Delete(ctx, name); err != nil {
		return err
	}
	c.view.Unselect(name)
	return c.Refresh(ctx)
}

// Download fetches one file; read-only, no refresh needed.
func (c *Controller) Download(ctx context.Context, name string) error {
	return c.files.Download(ctx, name)
}

// DeleteSelected removes every selected file, one store call per name.
// Partial failures are collected and reported, not rolled back; either way
// the selection is cleared and the view re-derives from a fresh list.
func (c *Controller) DeleteSelected(ctx context.Context) []error {
	names := c.view.SelectedNames()
	if len(names) == 0 {
		return nil
	}
	if !c.confirm.Confirm(fmt.Sprintf("Delete %d file(s)?", len(names))) {
		return nil
	}

	var errs []error
	for _, name := range names {
		if err := c.files.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range names {
		c.view.Unselect(name)
	}
	if err := c.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// DownloadSelected fetches every selected file. The selection is kept, the
// operation being read-only.
func (c *Controller) DownloadSelected(ctx context.Context) []error {
	var errs []error
	for _, name := range c.view.SelectedNames() {
		if err := c.files.Download(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
