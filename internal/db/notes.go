// ABOUTME: Database operations for notes.
// ABOUTME: Provides owner-scoped CRUD, favourite listing and prefix lookup.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
)

var ErrPrefixTooShort = errors.New("prefix must be at least 6 characters")
var ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
var ErrNoteNotFound = models.ErrNoteNotFound

const noteColumns = `id, owner_id, title, description, is_favourite, created_at, updated_at`

// NoteStore persists notes in SQLite. Every query is filtered by owner.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func (s *NoteStore) Create(ctx context.Context, note *models.Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID.String(), note.OwnerID.String(), note.Title, note.Description,
		note.IsFavourite, note.CreatedAt.UnixNano(), note.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *NoteStore) Get(ctx context.Context, owner, id uuid.UUID) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND owner_id = ?`,
		id.String(), owner.String(),
	)
	return scanNoteRow(row)
}

// likeEscaper makes a prefix match literally under LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetByPrefix finds one of owner's notes by ID prefix (minimum 6 chars).
func (s *NoteStore) GetByPrefix(ctx context.Context, owner uuid.UUID, prefix string) (*models.Note, error) {
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	notes, err := s.query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? AND id LIKE ? ESCAPE '\'`,
		owner.String(), likeEscaper.Replace(strings.ToLower(prefix))+"%",
	)
	if err != nil {
		return nil, err
	}

	if len(notes) == 0 {
		return nil, ErrNoteNotFound
	}
	if len(notes) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(notes))
	}
	return notes[0], nil
}

// List returns owner's notes, most recently updated first.
func (s *NoteStore) List(ctx context.Context, owner uuid.UUID) ([]*models.Note, error) {
	return s.query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = ?
		 ORDER BY updated_at DESC, id DESC`,
		owner.String(),
	)
}

// ListFavourites returns owner's favourite notes, most recently updated first.
func (s *NoteStore) ListFavourites(ctx context.Context, owner uuid.UUID) ([]*models.Note, error) {
	return s.query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = ? AND is_favourite = 1
		 ORDER BY updated_at DESC, id DESC`,
		owner.String(),
	)
}

// Update overwrites the editable fields of one of owner's notes. The
// ownership check and the write are a single statement, so a note deleted
// concurrently is reported as not found rather than recreated.
func (s *NoteStore) Update(ctx context.Context, owner, id uuid.UUID, f models.NoteFields, at time.Time) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE notes
		 SET title = ?, description = ?, is_favourite = ?, updated_at = max(?, updated_at + 1)
		 WHERE id = ? AND owner_id = ?
		 RETURNING `+noteColumns,
		f.Title, f.Description, f.IsFavourite, at.UnixNano(), id.String(), owner.String(),
	)
	return scanNoteRow(row)
}

// ToggleFavourite flips is_favourite on one of owner's notes.
func (s *NoteStore) ToggleFavourite(ctx context.Context, owner, id uuid.UUID, at time.Time) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE notes
		 SET is_favourite = NOT is_favourite, updated_at = max(?, updated_at + 1)
		 WHERE id = ? AND owner_id = ?
		 RETURNING `+noteColumns,
		at.UnixNano(), id.String(), owner.String(),
	)
	return scanNoteRow(row)
}

func (s *NoteStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND owner_id = ?`,
		id.String(), owner.String(),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (s *NoteStore) query(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNoteRow(row *sql.Row) (*models.Note, error) {
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	return note, err
}

func scanNote(s scanner) (*models.Note, error) {
	note := &models.Note{}
	var idStr, ownerStr string
	var createdAt, updatedAt int64
	if err := s.Scan(&idStr, &ownerStr, &note.Title, &note.Description, &note.IsFavourite, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if note.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid note ID in database: %w", err)
	}
	if note.OwnerID, err = uuid.Parse(ownerStr); err != nil {
		return nil, fmt.Errorf("invalid owner ID in database: %w", err)
	}
	note.CreatedAt = time.Unix(0, createdAt)
	note.UpdatedAt = time.Unix(0, updatedAt)
	return note, nil
}
