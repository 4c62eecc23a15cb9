package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jhleao/teapot-sub006/internal/storage/migrate"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := migrate.Up(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	return NewStore(db)
}

func TestStoreUpsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	entry, err := store.Upsert(ctx, UpsertParams{
		Path:          "/tmp/repo-one",
		DisplayName:   "repo-one",
		CurrentBranch: "main",
		LastOpened:    &now,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if entry.ID == 0 {
		t.Fatalf("expected persisted entry to have an ID")
	}
	if entry.CurrentBranch != "main" {
		t.Fatalf("current branch %q", entry.CurrentBranch)
	}

	// Second upsert on the same path updates in place.
	updated, err := store.Upsert(ctx, UpsertParams{Path: "/tmp/repo-one", CurrentBranch: "feature"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ID != entry.ID {
		t.Fatalf("upsert created a duplicate row")
	}
	if updated.CurrentBranch != "feature" {
		t.Fatalf("branch not updated: %q", updated.CurrentBranch)
	}
	if updated.DisplayName != "repo-one" {
		t.Fatalf("empty display name should not clobber the stored one")
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestStoreMarkOpenedAndRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry, err := store.Upsert(ctx, UpsertParams{Path: "/tmp/repo-two"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.MarkOpened(ctx, entry.ID); err != nil {
		t.Fatalf("mark opened: %v", err)
	}
	got, err := store.GetByPath(ctx, "/tmp/repo-two")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastOpenedAt.IsZero() {
		t.Fatalf("last opened not set")
	}

	if err := store.Remove(ctx, entry.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.GetByPath(ctx, "/tmp/repo-two"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove should be ErrNotFound, got %v", err)
	}
	if err := store.MarkOpened(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("mark opened on unknown id should be ErrNotFound, got %v", err)
	}
}
