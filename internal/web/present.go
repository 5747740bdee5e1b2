// ABOUTME: Presentation adapter: renders results as a full page, an htmx
// ABOUTME: fragment or JSON depending on the request.

package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/notes"
	"go.uber.org/zap"
)

type format int

const (
	formatPage format = iota
	formatFragment
	formatJSON
)

func negotiate(c *gin.Context) format {
	if c.GetHeader("HX-Request") == "true" {
		return formatFragment
	}
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		return formatJSON
	}
	return formatPage
}

// view describes one response in every format it can take. Full pages use
// page and pageData when set, otherwise the fragment inside the layout.
type view struct {
	status   int
	title    string
	fragment string
	data     any
	page     string
	pageData any
	json     any
	event    *notes.Event
}

func (s *Server) render(c *gin.Context, v view) {
	if v.event != nil {
		header, err := v.event.Header()
		if err != nil {
			s.logger.Error("encode event", zap.Error(err))
		} else {
			c.Header("HX-Trigger", header)
		}
	}

	switch negotiate(c) {
	case formatJSON:
		c.JSON(v.status, v.json)
	case formatFragment:
		s.writeHTML(c, v.status, v.fragment, v.data, false, v.title)
	default:
		name, data := v.fragment, v.data
		if v.page != "" {
			name, data = v.page, v.pageData
		}
		s.writeHTML(c, v.status, name, data, true, v.title)
	}
}

// writeHTML executes the named template, wrapped in the layout for full pages.
func (s *Server) writeHTML(c *gin.Context, status int, name string, data any, page bool, title string) {
	var body bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		s.internalError(c, err)
		return
	}
	out := body.Bytes()
	if page {
		var doc bytes.Buffer
		layout := layoutView{
			Title: title,
			User:  auth.FromContext(c),
			Flash: s.takeFlash(c),
			Body:  template.HTML(body.String()),
		}
		if err := s.tmpl.ExecuteTemplate(&doc, "layout", layout); err != nil {
			s.internalError(c, err)
			return
		}
		out = doc.Bytes()
	}
	c.Data(status, "text/html; charset=utf-8", out)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	_ = c.Error(err)
	s.plainError(c, http.StatusInternalServerError, "Something went wrong.")
}

// plainError writes a short error in the negotiated format without
// touching templates that might themselves be failing.
func (s *Server) plainError(c *gin.Context, status int, msg string) {
	if negotiate(c) == formatJSON {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.Abort()
	c.Data(status, "text/html; charset=utf-8", []byte("<p>"+template.HTMLEscapeString(msg)+"</p>"))
}

// fail maps a lifecycle error to a response.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		s.notFound(c)
	case errors.Is(err, notes.ErrUnauthenticated):
		s.plainError(c, http.StatusUnauthorized, "Authentication required.")
	default:
		s.internalError(c, err)
	}
}

func (s *Server) notFound(c *gin.Context) {
	if negotiate(c) == formatJSON {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Abort()
	s.writeHTML(c, http.StatusNotFound, "error",
		errorView{Status: http.StatusNotFound, Message: "Note not found."},
		negotiate(c) == formatPage, "Not found")
}
