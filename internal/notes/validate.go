// ABOUTME: Validation of note input.
// ABOUTME: Titles are required and bounded; surrounding whitespace is dropped.

package notes

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harper/notely/internal/models"
)

// Validate checks in and returns a form echoing it. The second return holds
// the cleaned fields and is only meaningful when the form is valid.
func Validate(in Input) (*Form, models.NoteFields) {
	form := &Form{Input: in}
	fields := models.NoteFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		IsFavourite: in.IsFavourite,
	}

	switch n := utf8.RuneCountInString(fields.Title); {
	case n == 0:
		form.addError("title", "This field is required.")
	case n > models.TitleMaxLength:
		form.addError("title", fmt.Sprintf(
			"Ensure this value has at most %d characters (it has %d).", models.TitleMaxLength, n))
	}

	return form, fields
}
