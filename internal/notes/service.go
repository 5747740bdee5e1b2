// ABOUTME: Note lifecycle service: validates input, mutates the store, and
// ABOUTME: decides which view of the data each operation returns.

package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/models"
	"go.uber.org/zap"
)

// Store persists notes. Every method is scoped to an owner and reports
// models.ErrNoteNotFound for notes that are missing or owned by someone else.
// Update and ToggleFavourite must check ownership and write atomically.
type Store interface {
	Create(ctx context.Context, note *models.Note) error
	Get(ctx context.Context, owner, id uuid.UUID) (*models.Note, error)
	GetByPrefix(ctx context.Context, owner uuid.UUID, prefix string) (*models.Note, error)
	List(ctx context.Context, owner uuid.UUID) ([]*models.Note, error)
	ListFavourites(ctx context.Context, owner uuid.UUID) ([]*models.Note, error)
	Update(ctx context.Context, owner, id uuid.UUID, f models.NoteFields, at time.Time) (*models.Note, error)
	ToggleFavourite(ctx context.Context, owner, id uuid.UUID, at time.Time) (*models.Note, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type Service struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wrap annotates unexpected store failures and leaves sentinels as they are.
func wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func ownerID(owner auth.Identity) (uuid.UUID, error) {
	if owner.IsZero() {
		return uuid.Nil, ErrUnauthenticated
	}
	return owner.UserID, nil
}

// List returns the owner's notes, most recently updated first.
func (s *Service) List(ctx context.Context, owner auth.Identity) ([]*models.Note, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.List(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	return notes, nil
}

func (s *Service) Create(ctx context.Context, owner auth.Identity, in Input) (*Result, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}

	form, fields := Validate(in)
	if !form.Valid() {
		return &Result{Kind: KindInvalid, Form: form}, nil
	}

	note := models.NewNote(uid, fields.Title, fields.Description, fields.IsFavourite)
	note.CreatedAt = s.now()
	note.UpdatedAt = note.CreatedAt
	if err := s.store.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.logger.Info("note created", zap.Stringer("note_id", note.ID), zap.Stringer("owner_id", uid))

	list, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:  KindCollection,
		Notes: list,
		Note:  note,
		Event: &Event{Name: EventNoteCreated, Message: msgCreated, NoteID: note.ID},
	}, nil
}

func (s *Service) Get(ctx context.Context, owner auth.Identity, id uuid.UUID) (*models.Note, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	note, err := s.store.Get(ctx, uid, id)
	return note, wrap("get note", err)
}

// Resolve finds a note by full ID or by an ID prefix of at least 6 characters.
func (s *Service) Resolve(ctx context.Context, owner auth.Identity, ref string) (*models.Note, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	if id, err := uuid.Parse(ref); err == nil {
		note, err := s.store.Get(ctx, uid, id)
		return note, wrap("get note", err)
	}
	return s.store.GetByPrefix(ctx, uid, ref)
}

// EditForm returns a form prefilled from the stored note.
func (s *Service) EditForm(ctx context.Context, owner auth.Identity, id uuid.UUID) (*Form, error) {
	note, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return &Form{
		NoteID: note.ID,
		Input: Input{
			Title:       note.Title,
			Description: note.Description,
			IsFavourite: note.IsFavourite,
		},
	}, nil
}

// Update replaces the editable fields of a note. Ownership is checked even
// when the input is invalid so a foreign note never yields an edit form.
func (s *Service) Update(ctx context.Context, owner auth.Identity, id uuid.UUID, in Input) (*Result, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}

	form, fields := Validate(in)
	form.NoteID = id
	if !form.Valid() {
		if _, err := s.store.Get(ctx, uid, id); err != nil {
			return nil, wrap("get note", err)
		}
		return &Result{Kind: KindInvalid, Form: form}, nil
	}

	note, err := s.store.Update(ctx, uid, id, fields, s.now())
	if err != nil {
		return nil, wrap("update note", err)
	}
	s.logger.Info("note updated", zap.Stringer("note_id", id), zap.Stringer("owner_id", uid))

	return &Result{
		Kind:  KindItem,
		Note:  note,
		Event: &Event{Name: EventNoteUpdated, Message: msgUpdated, NoteID: note.ID},
	}, nil
}

func (s *Service) Delete(ctx context.Context, owner auth.Identity, id uuid.UUID) (*Result, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, uid, id); err != nil {
		return nil, wrap("delete note", err)
	}
	s.logger.Info("note deleted", zap.Stringer("note_id", id), zap.Stringer("owner_id", uid))

	list, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:  KindCollection,
		Notes: list,
		Event: &Event{Name: EventNoteDeleted, Message: msgDeleted, NoteID: id},
	}, nil
}

// ToggleFavourite flips the favourite flag. No event is attached.
func (s *Service) ToggleFavourite(ctx context.Context, owner auth.Identity, id uuid.UUID) (*Result, error) {
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	note, err := s.store.ToggleFavourite(ctx, uid, id, s.now())
	if err != nil {
		return nil, wrap("toggle favourite", err)
	}
	return &Result{Kind: KindItem, Note: note}, nil
}

func (s *Service) Stats(ctx context.Context, owner auth.Identity) (Stats, error) {
	all, err := s.List(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	favs := 0
	for _, n := range all {
		if n.IsFavourite {
			favs++
		}
	}
	return Stats{Total: len(all), Favourites: favs}, nil
}
