// ABOUTME: Note model representing a single-owner note with metadata.
// ABOUTME: Provides constructor and methods for note lifecycle.

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoteNotFound is returned by every note store when a note does not exist
// or is owned by someone else.
var ErrNoteNotFound = errors.New("note not found")

// TitleMaxLength is the longest title, in characters, a note may carry.
const TitleMaxLength = 255

type Note struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsFavourite bool      `json:"is_favourite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewNote(ownerID uuid.UUID, title, description string, favourite bool) *Note {
	now := time.Now()
	return &Note{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		IsFavourite: favourite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch moves UpdatedAt forward to at, or one nanosecond past the current
// value when at would not advance it.
func (n *Note) Touch(at time.Time) {
	n.UpdatedAt = NextUpdate(n.UpdatedAt, at)
}

// Clone returns a copy that can be modified without affecting n.
func (n *Note) Clone() *Note {
	c := *n
	return &c
}

// NextUpdate returns the timestamp a mutation at time at should record
// given the previous UpdatedAt. The result is always strictly after prev.
func NextUpdate(prev, at time.Time) time.Time {
	if at.After(prev) {
		return at
	}
	return prev.Add(time.Nanosecond)
}

// NoteFields are the user-editable parts of a note.
type NoteFields struct {
	Title       string
	Description string
	IsFavourite bool
}

// Apply copies the editable fields onto n.
func (n *Note) Apply(f NoteFields) {
	n.Title = f.Title
	n.Description = f.Description
	n.IsFavourite = f.IsFavourite
}
