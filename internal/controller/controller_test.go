package controller

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudvault/cloudvault/internal/models"
	"github.com/cloudvault/cloudvault/internal/provider"
	"github.com/cloudvault/cloudvault/internal/session"
	"github.com/cloudvault/cloudvault/internal/store"
	"github.com/cloudvault/cloudvault/internal/view"
)

// flakyStore wraps a memory store with scriptable failures.
type flakyStore struct {
	mem        *store.MemoryStore
	listErr    error
	deleteErrs map[string]error
}

func (f *flakyStore) List(ctx context.Context) ([]models.FileRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.mem.List(ctx)
}

func (f *flakyStore) Upload(ctx context.Context, name string, size int64, content io.Reader) (models.FileRecord, error) {
	return f.mem.Upload(ctx, name, size, content)
}

func (f *flakyStore) Delete(ctx context.Context, name string) error {
	if err, ok := f.deleteErrs[name]; ok {
		return err
	}
	return f.mem.Delete(ctx, name)
}

func (f *flakyStore) Download(ctx context.Context, name string) error {
	return f.mem.Download(ctx, name)
}

func accept() Confirmer  { return ConfirmerFunc(func(string) bool { return true }) }
func decline() Confirmer { return ConfirmerFunc(func(string) bool { return false }) }

func testController(t *testing.T, files store.FileStore, confirm Confirmer) *Controller {
	t.Helper()
	sessions := session.NewStore(
		provider.NewStaticProvider("testuser", "Password123!"),
		filepath.Join(t.TempDir(), "session.json"),
	)
	return New(sessions, files, view.NewModel(), confirm)
}

func seeded(names ...string) *flakyStore {
	var recs []models.FileRecord
	for i, n := range names {
		recs = append(recs, models.FileRecord{Name: n, Size: int64((i + 1) * 100)})
	}
	return &flakyStore{mem: store.NewMemoryStore(recs...)}
}

func TestStartWithoutSession(t *testing.T) {
	c := testController(t, seeded(), accept())
	if c.State() != StateLoading {
		t.Fatalf("initial state = %q, want loading", c.State())
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if c.State() != StateUnauthenticated {
		t.Fatalf("state = %q, want unauthenticated", c.State())
	}
}

func TestStartRestoresSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := session.NewStore(provider.NewStaticProvider("testuser", "Password123!"), path)
	if _, err := first.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	restored := session.NewStore(provider.NewStaticProvider("testuser", "Password123!"), path)
	c := New(restored, seeded("a.pdf"), view.NewModel(), accept())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if c.State() != StateAuthenticated || c.DisplayName() != "testuser" {
		t.Fatalf("state = %q display = %q, want authenticated testuser", c.State(), c.DisplayName())
	}
	if got := c.View().Visible(); len(got) != 1 {
		t.Fatalf("restored session should load the file list, got %d records", len(got))
	}
}

func TestLoginTransitions(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded("a.pdf", "b.jpg"), accept())
	c.Start(ctx)

	t.Run("WrongPassword", func(t *testing.T) {
		err := c.Login(ctx, "testuser", "nope")
		if !errors.Is(err, provider.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
		if c.State() != StateUnauthenticated {
			t.Fatalf("failed login must stay unauthenticated, state = %q", c.State())
		}
	})

	t.Run("Success", func(t *testing.T) {
		if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if c.State() != StateAuthenticated {
			t.Fatalf("state = %q, want authenticated", c.State())
		}
		if got := c.View().Visible(); len(got) != 2 {
			t.Fatalf("login should load the file list, got %d records", len(got))
		}
	})

	t.Run("LogoutTwice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := c.Logout(ctx); err != nil {
				t.Fatalf("logout #%d failed: %v", i+1, err)
			}
			if c.State() != StateUnauthenticated {
				t.Fatalf("state after logout = %q", c.State())
			}
		}
		if got := c.View().Visible(); len(got) != 0 {
			t.Fatal("logout should clear the view state")
		}
	})
}

func TestRefreshErrorPreservesCollection(t *testing.T) {
	ctx := context.Background()
	files := seeded("a.pdf", "b.jpg")
	c := testController(t, files, accept())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	files.listErr = &store.Error{Kind: store.KindNetwork, Op: "list", Err: errors.New("connection refused")}
	if err := c.Refresh(ctx); err == nil {
		t.Fatal("refresh should surface the list error")
	}
	if got := c.View().Visible(); len(got) != 2 {
		t.Fatalf("a failed list must keep the last-known-good collection, got %d records", len(got))
	}
}

func TestUploadTriggersRefresh(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded(), accept())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := c.Upload(ctx, "new.pdf", 9, strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	got := c.View().Visible()
	if len(got) != 1 || got[0].Name != "new.pdf" {
		t.Fatalf("view should show the uploaded file after refresh, got %+v", got)
	}
}

func TestDeleteRemovesSelection(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded("a.pdf", "b.jpg"), accept())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	c.View().Toggle("a.pdf")
	if err := c.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if c.View().IsSelected("a.pdf") {
		t.Fatal("deleted name must leave the selection")
	}
	if got := c.View().Visible(); len(got) != 1 || got[0].Name != "b.jpg" {
		t.Fatalf("view should re-derive after delete, got %+v", got)
	}
}

func TestDeleteDeclinedByConfirmer(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded("a.pdf"), decline())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := c.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("declined delete should be a quiet no-op, got %v", err)
	}
	if got := c.View().Visible(); len(got) != 1 {
		t.Fatal("declined delete must not remove the file")
	}
}

func TestDeleteSelectedPartialFailure(t *testing.T) {
	ctx := context.Background()
	files := seeded("a.pdf", "b.jpg", "c.txt")
	files.deleteErrs = map[string]error{
		"b.jpg": &store.Error{Kind: store.KindNetwork, Op: "delete", Name: "b.jpg", Err: errors.New("timeout")},
	}
	c := testController(t, files, accept())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	c.View().Toggle("a.pdf")
	c.View().Toggle("b.jpg")

	errs := c.DeleteSelected(ctx)
	if len(errs) != 1 {
		t.Fatalf("expected exactly the failed delete reported, got %v", errs)
	}

	// Selection is cleared regardless of individual outcomes, and the
	// view re-derives from a fresh list.
	if len(c.View().SelectedNames()) != 0 {
		t.Fatal("bulk delete must clear the selection")
	}
	got := c.View().Visible()
	if len(got) != 2 {
		t.Fatalf("expected b.jpg and c.txt to remain, got %+v", got)
	}
}

func TestDeleteSelectedDeclined(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded("a.pdf"), decline())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	c.View().Toggle("a.pdf")
	if errs := c.DeleteSelected(ctx); errs != nil {
		t.Fatalf("declined bulk delete should do nothing, got %v", errs)
	}
	if !c.View().IsSelected("a.pdf") {
		t.Fatal("declined bulk delete must keep the selection")
	}
}

func TestDownloadSelected(t *testing.T) {
	ctx := context.Background()
	c := testController(t, seeded("a.pdf", "b.jpg"), accept())
	c.Start(ctx)
	if err := c.Login(ctx, "testuser", "Password123!"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	c.View().Toggle("a.pdf")
	c.View().Toggle("b.jpg")
	if errs := c.DownloadSelected(ctx); len(errs) != 0 {
		t.Fatalf("downloads failed: %v", errs)
	}
	if len(c.View().SelectedNames()) != 2 {
		t.Fatal("bulk download must keep the selection")
	}
}
