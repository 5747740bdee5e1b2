// ABOUTME: Note operations on badger using owner-prefixed keys.
// ABOUTME: Keys are note:<owner>:<id> so every lookup is scoped to one owner.

package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
)

const (
	// NotePrefix is the key prefix for notes.
	NotePrefix = "note:"
)

var (
	ErrPrefixTooShort  = errors.New("prefix must be at least 6 characters")
	ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
	ErrNoteNotFound    = models.ErrNoteNotFound
)

// NoteData is the JSON form of a note stored in badger.
type NoteData struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsFavourite bool   `json:"is_favourite"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// ToModel converts NoteData to a models.Note.
func (n *NoteData) ToModel() (*models.Note, error) {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return nil, fmt.Errorf("parse note ID: %w", err)
	}
	owner, err := uuid.Parse(n.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner ID: %w", err)
	}
	return &models.Note{
		ID:          id,
		OwnerID:     owner,
		Title:       n.Title,
		Description: n.Description,
		IsFavourite: n.IsFavourite,
		CreatedAt:   time.Unix(0, n.CreatedAt),
		UpdatedAt:   time.Unix(0, n.UpdatedAt),
	}, nil
}

// FromModel creates NoteData from a models.Note.
func FromModel(note *models.Note) *NoteData {
	return &NoteData{
		ID:          note.ID.String(),
		OwnerID:     note.OwnerID.String(),
		Title:       note.Title,
		Description: note.Description,
		IsFavourite: note.IsFavourite,
		CreatedAt:   note.CreatedAt.UnixNano(),
		UpdatedAt:   note.UpdatedAt.UnixNano(),
	}
}

func ownerPrefix(owner uuid.UUID) []byte {
	return []byte(NotePrefix + owner.String() + ":")
}

func noteKey(owner, id uuid.UUID) []byte {
	return append(ownerPrefix(owner), id.String()...)
}

func (s *Store) Create(ctx context.Context, note *models.Note) error {
	encoded, err := json.Marshal(FromModel(note))
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}
	return s.update(func(txn *badger.Txn) error {
		return txn.Set(noteKey(note.OwnerID, note.ID), encoded)
	})
}

func (s *Store) Get(ctx context.Context, owner, id uuid.UUID) (*models.Note, error) {
	var note *models.Note
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		note, err = getNote(txn, owner, id)
		return err
	})
	return note, err
}

// GetByPrefix finds one of owner's notes by ID prefix (minimum 6 chars).
func (s *Store) GetByPrefix(ctx context.Context, owner uuid.UUID, prefix string) (*models.Note, error) {
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	searchPrefix := append(ownerPrefix(owner), strings.ToLower(prefix)...)
	matches, err := s.scan(searchPrefix, nil)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, ErrNoteNotFound
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(matches))
	}
	return matches[0], nil
}

// List returns owner's notes, most recently updated first.
func (s *Store) List(ctx context.Context, owner uuid.UUID) ([]*models.Note, error) {
	return s.scan(ownerPrefix(owner), nil)
}

// ListFavourites returns owner's favourite notes, most recently updated first.
func (s *Store) ListFavourites(ctx context.Context, owner uuid.UUID) ([]*models.Note, error) {
	return s.scan(ownerPrefix(owner), func(n *NoteData) bool { return n.IsFavourite })
}

// Update overwrites the editable fields of one of owner's notes inside a
// single transaction.
func (s *Store) Update(ctx context.Context, owner, id uuid.UUID, f models.NoteFields, at time.Time) (*models.Note, error) {
	return s.mutate(owner, id, func(n *models.Note) {
		n.Apply(f)
		n.Touch(at)
	})
}

// ToggleFavourite flips the favourite flag of one of owner's notes.
func (s *Store) ToggleFavourite(ctx context.Context, owner, id uuid.UUID, at time.Time) (*models.Note, error) {
	return s.mutate(owner, id, func(n *models.Note) {
		n.IsFavourite = !n.IsFavourite
		n.Touch(at)
	})
}

func (s *Store) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.update(func(txn *badger.Txn) error {
		key := noteKey(owner, id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoteNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// mutate reads, modifies and writes back one note in a single transaction
// so the existence check cannot be separated from the write.
func (s *Store) mutate(owner, id uuid.UUID, fn func(*models.Note)) (*models.Note, error) {
	var result *models.Note
	err := s.update(func(txn *badger.Txn) error {
		note, err := getNote(txn, owner, id)
		if err != nil {
			return err
		}
		fn(note)

		encoded, err := json.Marshal(FromModel(note))
		if err != nil {
			return fmt.Errorf("marshal note: %w", err)
		}
		if err := txn.Set(noteKey(owner, id), encoded); err != nil {
			return err
		}
		result = note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func getNote(txn *badger.Txn, owner, id uuid.UUID) (*models.Note, error) {
	item, err := txn.Get(noteKey(owner, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	var nd NoteData
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &nd)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal note: %w", err)
	}
	return nd.ToModel()
}

// scan collects notes under prefix that pass keep (nil keeps all), sorted
// by updated_at then id, both descending.
func (s *Store) scan(prefix []byte, keep func(*NoteData) bool) ([]*models.Note, error) {
	var found []*NoteData
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var nd NoteData
				if err := json.Unmarshal(val, &nd); err != nil {
					return err
				}
				if keep == nil || keep(&nd) {
					found = append(found, &nd)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].UpdatedAt != found[j].UpdatedAt {
			return found[i].UpdatedAt > found[j].UpdatedAt
		}
		return found[i].ID > found[j].ID
	})

	notes := make([]*models.Note, 0, len(found))
	for _, nd := range found {
		note, err := nd.ToModel()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}
