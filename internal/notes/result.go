// ABOUTME: Result types returned by the note lifecycle service.
// ABOUTME: A tagged variant tells the presentation layer which view to render.

package notes

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/models"
)

var (
	// ErrNotFound covers both missing notes and notes owned by someone else.
	ErrNotFound        = models.ErrNoteNotFound
	ErrUnauthenticated = auth.ErrUnauthenticated
)

// Kind says which view of the data a Result carries.
type Kind int

const (
	// KindCollection is the owner's full note list, after create or delete.
	KindCollection Kind = iota + 1
	// KindItem is a single note, after update or toggle.
	KindItem
	// KindInvalid is a form with field errors; nothing was persisted.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Event names sent to the browser alongside a response body.
const (
	EventNoteCreated = "noteCreated"
	EventNoteUpdated = "noteUpdated"
	EventNoteDeleted = "noteDeleted"
)

const (
	msgCreated = "Your note was created successfully."
	msgUpdated = "Note updated successfully."
	msgDeleted = "Note deleted successfully."
)

// Event is out-of-band metadata describing what a mutation did.
type Event struct {
	Name    string
	Message string
	NoteID  uuid.UUID
}

type eventPayload struct {
	Message string `json:"message"`
	NoteID  string `json:"noteId,omitempty"`
}

// Header encodes the event as an HX-Trigger value:
// {"<name>": {"message": "...", "noteId": "..."}}.
func (e *Event) Header() (string, error) {
	if e == nil || e.Name == "" {
		return "", errors.New("empty event")
	}
	p := eventPayload{Message: e.Message}
	if e.NoteID != uuid.Nil {
		p.NoteID = e.NoteID.String()
	}
	b, err := json.Marshal(map[string]eventPayload{e.Name: p})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Input is what a client submits to create or update a note.
type Input struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	IsFavourite bool   `json:"is_favourite" form:"is_favourite"`
}

// Form echoes submitted input together with per-field errors.
// NoteID is set when the form edits an existing note.
type Form struct {
	NoteID uuid.UUID
	Input
	Errors map[string][]string
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// FieldErrors returns the messages for one field, or nil.
func (f *Form) FieldErrors(field string) []string {
	if f == nil {
		return nil
	}
	return f.Errors[field]
}

func (f *Form) addError(field, msg string) {
	if f.Errors == nil {
		f.Errors = make(map[string][]string)
	}
	f.Errors[field] = append(f.Errors[field], msg)
}

// Result is what a lifecycle operation hands to the presentation layer.
type Result struct {
	Kind  Kind
	Notes []*models.Note
	Note  *models.Note
	Form  *Form
	Event *Event
}

// Stats summarises an owner's notes for the dashboard.
type Stats struct {
	Total      int `json:"total"`
	Favourites int `json:"favourites"`
}
