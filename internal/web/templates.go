// ABOUTME: Embedded HTML templates and the view models they render.
// ABOUTME: Note text is always pre-escaped so highlighted search results can carry <mark>.

package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// noteView is a note ready for rendering. Title and Description are safe HTML.
type noteView struct {
	ID          string
	Title       template.HTML
	Description template.HTML
	IsFavourite bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// newNoteView wraps n. highlighted marks text that is already escaped HTML.
func newNoteView(n *models.Note, highlighted bool) noteView {
	title, desc := n.Title, n.Description
	if !highlighted {
		title = template.HTMLEscapeString(title)
		desc = template.HTMLEscapeString(desc)
	}
	return noteView{
		ID:          n.ID.String(),
		Title:       template.HTML(title),
		Description: template.HTML(desc),
		IsFavourite: n.IsFavourite,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

type listView struct {
	Notes     []noteView
	Query     string
	Message   string
	NoResults bool
}

func newListView(list []*models.Note, highlighted bool) listView {
	v := listView{Notes: make([]noteView, 0, len(list))}
	for _, n := range list {
		v.Notes = append(v.Notes, newNoteView(n, highlighted))
	}
	return v
}

func searchListView(res *notes.SearchResult) listView {
	v := newListView(res.Notes, res.Highlighted)
	v.Query = res.Query
	v.Message = res.Message
	v.NoResults = res.NoResults
	return v
}

type indexView struct {
	Form *notes.Form
	List listView
}

type layoutView struct {
	Title string
	User  auth.Identity
	Flash string
	Body  template.HTML
}

type loginView struct {
	Email string
	Next  string
	Error string
}

type registerView struct {
	Form   auth.Registration
	Errors auth.FieldErrors
}

type dashboardView struct {
	User  auth.Identity
	Stats notes.Stats
}

type errorView struct {
	Status  int
	Message string
}
