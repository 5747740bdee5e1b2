// ABOUTME: Note handlers: list, search, favourites, create, detail, edit,
// ABOUTME: delete and favourite toggle.

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
)

// noteID parses the :id path parameter. Malformed IDs are reported as 404,
// the same as notes that do not exist.
func (s *Server) noteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.notFound(c)
		return uuid.Nil, false
	}
	return id, true
}

var errBadBody = errors.New("malformed request body")

// bindInput reads note input from a JSON body or a submitted form.
func bindInput(c *gin.Context) (notes.Input, error) {
	var in notes.Input
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, errBadBody
		}
		return in, nil
	}
	in.Title = c.PostForm("title")
	in.Description = c.PostForm("description")
	in.IsFavourite = checked(c.PostForm("is_favourite"))
	return in, nil
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// index renders the notes page around list, with form as the create form.
func (s *Server) index(c *gin.Context, status int, list listView, form *notes.Form, jsonBody any, ev *notes.Event) {
	if form == nil {
		form = &notes.Form{}
	}
	s.render(c, view{
		status:   status,
		title:    "My notes",
		fragment: "note_list",
		data:     list,
		page:     "index",
		pageData: indexView{Form: form, List: list},
		json:     jsonBody,
		event:    ev,
	})
}

func (s *Server) listNotes(c *gin.Context) {
	list, err := s.notes.List(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.index(c, http.StatusOK, newListView(list, false), nil, gin.H{"notes": list}, nil)
}

func (s *Server) searchNotes(c *gin.Context) {
	res, err := s.notes.Search(c.Request.Context(), auth.FromContext(c), c.Query("query"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.index(c, http.StatusOK, searchListView(res), nil, gin.H{
		"query":       res.Query,
		"notes":       res.Notes,
		"highlighted": res.Highlighted,
		"no_results":  res.NoResults,
		"message":     res.Message,
	}, nil)
}

func (s *Server) favouriteNotes(c *gin.Context) {
	mode := notes.ParseMode(c.Query("mode"))
	list, err := s.notes.FavouriteList(c.Request.Context(), auth.FromContext(c), mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.index(c, http.StatusOK, newListView(list, false), nil, gin.H{"mode": mode.String(), "notes": list}, nil)
}

func (s *Server) createNote(c *gin.Context) {
	owner := auth.FromContext(c)
	in, err := bindInput(c)
	if err != nil {
		s.plainError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.notes.Create(c.Request.Context(), owner, in)
	if err != nil {
		s.fail(c, err)
		return
	}

	if res.Kind == notes.KindInvalid {
		// The page version needs the current list beneath the rejected form.
		var list []*models.Note
		if negotiate(c) == formatPage {
			if list, err = s.notes.List(c.Request.Context(), owner); err != nil {
				s.fail(c, err)
				return
			}
		}
		s.render(c, view{
			status:   http.StatusBadRequest,
			title:    "My notes",
			fragment: "create_note_form",
			data:     res.Form,
			page:     "index",
			pageData: indexView{Form: res.Form, List: newListView(list, false)},
			json:     gin.H{"errors": res.Form.Errors},
		})
		return
	}

	s.index(c, http.StatusCreated, newListView(res.Notes, false), nil, gin.H{
		"note":    res.Note,
		"notes":   res.Notes,
		"message": res.Event.Message,
	}, res.Event)
}

func (s *Server) noteDetail(c *gin.Context) {
	id, ok := s.noteID(c)
	if !ok {
		return
	}
	note, err := s.notes.Get(c.Request.Context(), auth.FromContext(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, view{
		status:   http.StatusOK,
		title:    note.Title,
		fragment: "note_detail",
		data:     newNoteView(note, false),
		json:     note,
	})
}

func (s *Server) editForm(c *gin.Context) {
	id, ok := s.noteID(c)
	if !ok {
		return
	}
	form, err := s.notes.EditForm(c.Request.Context(), auth.FromContext(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, view{
		status:   http.StatusOK,
		title:    "Edit note",
		fragment: "edit_note_form",
		data:     form,
		json:     gin.H{"id": form.NoteID, "title": form.Title, "description": form.Description, "is_favourite": form.IsFavourite},
	})
}

func (s *Server) updateNote(c *gin.Context) {
	id, ok := s.noteID(c)
	if !ok {
		return
	}
	in, err := bindInput(c)
	if err != nil {
		s.plainError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.notes.Update(c.Request.Context(), auth.FromContext(c), id, in)
	if err != nil {
		s.fail(c, err)
		return
	}

	if res.Kind == notes.KindInvalid {
		s.render(c, view{
			status:   http.StatusBadRequest,
			title:    "Edit note",
			fragment: "edit_note_form",
			data:     res.Form,
			json:     gin.H{"errors": res.Form.Errors},
		})
		return
	}

	s.render(c, view{
		status:   http.StatusOK,
		title:    res.Note.Title,
		fragment: "note_item",
		data:     newNoteView(res.Note, false),
		page:     "note_detail",
		pageData: newNoteView(res.Note, false),
		json:     gin.H{"note": res.Note, "message": res.Event.Message},
		event:    res.Event,
	})
}

func (s *Server) deleteNote(c *gin.Context) {
	id, ok := s.noteID(c)
	if !ok {
		return
	}
	res, err := s.notes.Delete(c.Request.Context(), auth.FromContext(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	list := newListView(res.Notes, false)
	list.Message = res.Event.Message
	s.index(c, http.StatusOK, list, nil, gin.H{"notes": res.Notes, "message": res.Event.Message}, res.Event)
}

// toggleFavourite answers htmx with the re-rendered note and everyone
// else with a small JSON status.
func (s *Server) toggleFavourite(c *gin.Context) {
	id, ok := s.noteID(c)
	if !ok {
		return
	}
	res, err := s.notes.ToggleFavourite(c.Request.Context(), auth.FromContext(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if negotiate(c) == formatFragment {
		s.writeHTML(c, http.StatusOK, "note_item", newNoteView(res.Note, false), false, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_favourite": res.Note.IsFavourite})
}

func (s *Server) dashboard(c *gin.Context) {
	owner := auth.FromContext(c)
	stats, err := s.notes.Stats(c.Request.Context(), owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, view{
		status:   http.StatusOK,
		title:    "Dashboard",
		fragment: "dashboard",
		data:     dashboardView{User: owner, Stats: stats},
		json:     stats,
	})
}
