// ABOUTME: Tests for note database operations.
// ABOUTME: Covers owner scoping, ordering, toggles, and prefix matching.

package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
)

func openNoteStore(t *testing.T) (*NoteStore, *sql.DB) {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewNoteStore(conn), conn
}

func TestCreateAndGetNote(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Test Title", "Test content", true)
	if err := store.Create(ctx, note); err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	got, err := store.Get(ctx, owner, note.ID)
	if err != nil {
		t.Fatalf("failed to get note: %v", err)
	}

	if got.Title != note.Title {
		t.Errorf("expected title %q, got %q", note.Title, got.Title)
	}
	if got.Description != note.Description {
		t.Errorf("expected description %q, got %q", note.Description, got.Description)
	}
	if !got.IsFavourite {
		t.Error("expected favourite flag to round-trip")
	}
	if !got.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", note.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("expected updated_at to equal created_at on creation")
	}
}

func TestGetNoteOtherOwner(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()

	note := models.NewNote(uuid.New(), "Private", "", false)
	_ = store.Create(ctx, note)

	_, err := store.Get(ctx, uuid.New(), note.ID)
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestGetNoteByPrefix(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Test", "Content", false)
	if err := store.Create(ctx, note); err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	prefix := note.ID.String()[:8]
	got, err := store.GetByPrefix(ctx, owner, prefix)
	if err != nil {
		t.Fatalf("failed to get note by prefix: %v", err)
	}
	if got.ID != note.ID {
		t.Errorf("expected ID %v, got %v", note.ID, got.ID)
	}

	if _, err := store.GetByPrefix(ctx, uuid.New(), prefix); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected prefix lookup to be owner scoped, got %v", err)
	}
}

func TestGetNoteByPrefixMatchesLiterally(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Only note", "", false)
	if err := store.Create(ctx, note); err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	for _, prefix := range []string{"______", "%%%%%%", `\\\\\\`, note.ID.String()[:5] + "_"} {
		if _, err := store.GetByPrefix(ctx, owner, prefix); !errors.Is(err, ErrNoteNotFound) {
			t.Errorf("expected ErrNoteNotFound for %q, got %v", prefix, err)
		}
	}
}

func TestGetNoteByPrefixTooShort(t *testing.T) {
	store, _ := openNoteStore(t)

	_, err := store.GetByPrefix(context.Background(), uuid.New(), "abc")
	if !errors.Is(err, ErrPrefixTooShort) {
		t.Errorf("expected ErrPrefixTooShort, got %v", err)
	}
}

func TestListNotesOrderAndScope(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	older := models.NewNote(owner, "First", "Content 1", false)
	newer := models.NewNote(owner, "Second", "Content 2", false)
	newer.CreatedAt = older.CreatedAt.Add(time.Second)
	newer.UpdatedAt = newer.CreatedAt
	other := models.NewNote(uuid.New(), "Someone else", "", false)
	_ = store.Create(ctx, older)
	_ = store.Create(ctx, newer)
	_ = store.Create(ctx, other)

	notes, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("failed to list notes: %v", err)
	}

	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != newer.ID || notes[1].ID != older.ID {
		t.Error("expected most recently updated note first")
	}
}

func TestListNotesTieBreaksOnID(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	a := models.NewNote(owner, "A", "", false)
	b := models.NewNote(owner, "B", "", false)
	b.CreatedAt, b.UpdatedAt = a.CreatedAt, a.UpdatedAt
	_ = store.Create(ctx, a)
	_ = store.Create(ctx, b)

	notes, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("failed to list notes: %v", err)
	}

	want := a.ID
	if b.ID.String() > a.ID.String() {
		want = b.ID
	}
	if notes[0].ID != want {
		t.Errorf("expected tie broken by descending ID, got %v first", notes[0].ID)
	}
}

func TestListFavourites(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	fav := models.NewNote(owner, "Fav", "", true)
	plain := models.NewNote(owner, "Plain", "", false)
	_ = store.Create(ctx, fav)
	_ = store.Create(ctx, plain)

	notes, err := store.ListFavourites(ctx, owner)
	if err != nil {
		t.Fatalf("failed to list favourites: %v", err)
	}

	if len(notes) != 1 || notes[0].ID != fav.ID {
		t.Errorf("expected only the favourite note, got %v", notes)
	}
}

func TestUpdateNote(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Original", "Original content", false)
	_ = store.Create(ctx, note)

	got, err := store.Update(ctx, owner, note.ID, models.NoteFields{
		Title:       "Updated",
		Description: "Updated content",
		IsFavourite: true,
	}, note.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to update note: %v", err)
	}

	if got.Title != "Updated" || got.Description != "Updated content" || !got.IsFavourite {
		t.Errorf("expected updated fields, got %+v", got)
	}
	if !got.UpdatedAt.After(note.UpdatedAt) {
		t.Error("expected updated_at to strictly increase even with a stale clock")
	}
	if !got.CreatedAt.Equal(note.CreatedAt) || got.OwnerID != owner || got.ID != note.ID {
		t.Error("expected id, owner and created_at to be preserved")
	}
}

func TestUpdateNoteOtherOwner(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Mine", "", false)
	_ = store.Create(ctx, note)

	_, err := store.Update(ctx, uuid.New(), note.ID, models.NoteFields{Title: "Stolen"}, time.Now())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}

	got, _ := store.Get(ctx, owner, note.ID)
	if got.Title != "Mine" {
		t.Errorf("expected note untouched, got title %q", got.Title)
	}
}

func TestUpdateDeletedNoteDoesNotResurrect(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Gone", "", false)
	_ = store.Create(ctx, note)
	_ = store.Delete(ctx, owner, note.ID)

	if _, err := store.Update(ctx, owner, note.ID, models.NoteFields{Title: "Back"}, time.Now()); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound from update, got %v", err)
	}
	if _, err := store.ToggleFavourite(ctx, owner, note.ID, time.Now()); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound from toggle, got %v", err)
	}

	list, _ := store.List(ctx, owner)
	if len(list) != 0 {
		t.Errorf("expected no notes, got %d", len(list))
	}
}

func TestToggleFavourite(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "Toggle", "", false)
	_ = store.Create(ctx, note)

	first, err := store.ToggleFavourite(ctx, owner, note.ID, time.Now())
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if !first.IsFavourite {
		t.Error("expected favourite after first toggle")
	}

	second, err := store.ToggleFavourite(ctx, owner, note.ID, time.Now())
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if second.IsFavourite {
		t.Error("expected not favourite after second toggle")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("expected each toggle to advance updated_at")
	}
}

func TestDeleteNote(t *testing.T) {
	store, _ := openNoteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	note := models.NewNote(owner, "ToDelete", "Content", false)
	_ = store.Create(ctx, note)

	if err := store.Delete(ctx, uuid.New(), note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected delete by another owner to fail, got %v", err)
	}

	if err := store.Delete(ctx, owner, note.ID); err != nil {
		t.Fatalf("failed to delete note: %v", err)
	}

	_, err := store.Get(ctx, owner, note.ID)
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound getting deleted note, got %v", err)
	}

	if err := store.Delete(ctx, owner, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected second delete to fail with ErrNoteNotFound, got %v", err)
	}
}
