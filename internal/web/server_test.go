// ABOUTME: HTTP tests for the note and account routes.
// ABOUTME: Drives the full gin router over a SQLite-backed service.

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/db"
	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t        *testing.T
	handler  http.Handler
	provider *auth.Provider
	notes    *notes.Service
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	logger := zaptest.NewLogger(t)
	provider := auth.NewProvider(db.NewUserStore(conn), auth.NewMemoryRevoker(), auth.Options{
		SecretKey:  "web-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger)
	svc := notes.NewService(db.NewNoteStore(conn), notes.WithLogger(logger))

	srv, err := New(svc, provider, logger, opts)
	require.NoError(t, err)
	return &harness{t: t, handler: srv.Handler(), provider: provider, notes: svc}
}

func (h *harness) signUp(email string) *auth.Session {
	h.t.Helper()
	s, err := h.provider.Register(context.Background(), auth.Registration{
		Email: email, Password: "password123", PasswordConfirm: "password123",
	})
	require.NoError(h.t, err)
	return s
}

type reqOpt func(*http.Request)

func htmx(r *http.Request) { r.Header.Set("HX-Request", "true") }

func acceptJSON(r *http.Request) { r.Header.Set("Accept", "application/json") }

func as(s *auth.Session) reqOpt {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: s.Token})
	}
}

func (h *harness) do(method, target string, form url.Values, opts ...reqOpt) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) createNote(s *auth.Session, title, desc string) *models.Note {
	h.t.Helper()
	res, err := h.notes.Create(context.Background(), s.Identity, notes.Input{Title: title, Description: desc})
	require.NoError(h.t, err)
	require.Equal(h.t, notes.KindCollection, res.Kind)
	return res.Note
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, Options{})
	w := h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNotesRequireAuthentication(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodGet, "/notes/", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/accounts/login/?next=%2Fnotes%2F", w.Header().Get("Location"))

	w = h.do(http.MethodPost, "/notes/create/", url.Values{"title": {"x"}}, htmx)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("HX-Redirect"))

	w = h.do(http.MethodGet, "/dashboard/", nil, acceptJSON)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPageAndFragment(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	h.createNote(user, "Groceries", "milk, eggs")

	w := h.do(http.MethodGet, "/notes/", nil, as(user))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<!doctype html>")
	assert.Contains(t, w.Body.String(), "create-note-form")
	assert.Contains(t, w.Body.String(), "Groceries")

	w = h.do(http.MethodGet, "/notes/", nil, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<!doctype html>")
	assert.Contains(t, w.Body.String(), `id="note-list"`)

	w = h.do(http.MethodGet, "/notes/", nil, as(user), acceptJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["notes"], 1)
}

func TestCreateNote(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")

	w := h.do(http.MethodPost, "/notes/create/", url.Values{
		"title": {"Groceries"}, "description": {"milk, eggs"}, "is_favourite": {"on"},
	}, as(user), htmx)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Groceries")
	assert.JSONEq(t, `{"noteCreated":{"message":"Your note was created successfully.","noteId":"`+
		extractNoteID(t, h, user)+`"}}`, w.Header().Get("HX-Trigger"))

	list, err := h.notes.List(context.Background(), user.Identity)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsFavourite)
}

func extractNoteID(t *testing.T, h *harness, s *auth.Session) string {
	t.Helper()
	list, err := h.notes.List(context.Background(), s.Identity)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].ID.String()
}

func TestCreateNoteInvalid(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")

	w := h.do(http.MethodPost, "/notes/create/", url.Values{"title": {"  "}, "description": {"kept"}}, as(user), htmx)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, w.Body.String(), "kept")
	assert.Empty(t, w.Header().Get("HX-Trigger"))

	w = h.do(http.MethodPost, "/notes/create/", url.Values{"title": {""}}, as(user))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "<!doctype html>")

	list, err := h.notes.List(context.Background(), user.Identity)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateNoteJSON(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/notes/create/", strings.NewReader(`{"title":"From API","description":"json"}`))
	req.Header.Set("Content-Type", "application/json")
	acceptJSON(req)
	as(user)(req)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Your note was created successfully.", body["message"])
	assert.Equal(t, "From API", body["note"].(map[string]any)["title"])
}

func TestNoteDetailIsOwnerScoped(t *testing.T) {
	h := newHarness(t, Options{})
	ada := h.signUp("ada@example.com")
	bob := h.signUp("bob@example.com")
	note := h.createNote(ada, "Private", "<script>alert(1)</script>")

	w := h.do(http.MethodGet, "/notes/"+note.ID.String()+"/", nil, as(ada))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Private")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
	assert.NotContains(t, w.Body.String(), "<script>alert(1)")

	w = h.do(http.MethodGet, "/notes/"+note.ID.String()+"/", nil, as(bob))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/notes/not-a-uuid/", nil, as(ada))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPost, "/notes/"+note.ID.String()+"/delete/", nil, as(bob), htmx)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditAndUpdateNote(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	note := h.createNote(user, "Draft", "body")
	base := "/notes/" + note.ID.String() + "/edit/"

	w := h.do(http.MethodGet, base, nil, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Draft"`)

	w = h.do(http.MethodPost, base, url.Values{"title": {"Final"}, "description": {"done"}}, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Final")
	assert.JSONEq(t,
		`{"noteUpdated":{"message":"Note updated successfully.","noteId":"`+note.ID.String()+`"}}`,
		w.Header().Get("HX-Trigger"))

	w = h.do(http.MethodPost, base, url.Values{"title": {""}}, as(user), htmx)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	got, err := h.notes.Get(context.Background(), user.Identity, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
}

func TestDeleteNote(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	note := h.createNote(user, "Doomed", "")

	w := h.do(http.MethodPost, "/notes/"+note.ID.String()+"/delete/", nil, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Note deleted successfully.")
	assert.NotContains(t, w.Body.String(), "Doomed")
	assert.Contains(t, w.Header().Get("HX-Trigger"), "noteDeleted")

	w = h.do(http.MethodPost, "/notes/"+note.ID.String()+"/delete/", nil, as(user), htmx)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleFavourite(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	note := h.createNote(user, "Star", "")
	target := "/notes/" + note.ID.String() + "/favorite/"

	w := h.do(http.MethodPost, target, nil, as(user), acceptJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"is_favourite":true}`, w.Body.String())
	assert.Empty(t, w.Header().Get("HX-Trigger"))

	w = h.do(http.MethodPost, target, nil, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="note-`+note.ID.String()+`"`)
	assert.NotContains(t, w.Body.String(), "Unfavourite", "second toggle clears the flag")
}

func TestSearchHighlightsAndEscapes(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	h.createNote(user, "Buy milk and eggs", "")
	h.createNote(user, "<b>milk</b> tag", "")

	w := h.do(http.MethodGet, "/notes/search/?query=Milk", nil, as(user), htmx)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Buy <mark>milk</mark> and eggs")
	assert.Contains(t, body, "&lt;b&gt;<mark>milk</mark>&lt;/b&gt; tag")

	w = h.do(http.MethodGet, "/notes/search/?query=zebra", nil, as(user), acceptJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["no_results"])
	assert.Equal(t, `No notes found for "zebra".`, out["message"])

	w = h.do(http.MethodGet, "/notes/search/?query=", nil, as(user), acceptJSON)
	assert.Len(t, decode(t, w)["notes"], 2)

	w = h.do(http.MethodGet, "/notes/search/?query=%ff", nil, as(user), acceptJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["no_results"])
}

func TestFavouriteFilter(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	fav := h.createNote(user, "Favourite one", "")
	h.createNote(user, "Plain one", "")
	_, err := h.notes.ToggleFavourite(context.Background(), user.Identity, fav.ID)
	require.NoError(t, err)

	w := h.do(http.MethodGet, "/notes/favourite/", nil, as(user), acceptJSON)
	out := decode(t, w)
	assert.Equal(t, "favourites", out["mode"])
	assert.Len(t, out["notes"], 1)

	w = h.do(http.MethodGet, "/notes/favourite/?mode=all", nil, as(user), acceptJSON)
	assert.Len(t, decode(t, w)["notes"], 2)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, Options{})
	user := h.signUp("ada@example.com")
	h.createNote(user, "One", "")

	w := h.do(http.MethodGet, "/dashboard/", nil, as(user), acceptJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"favourites":0}`, w.Body.String())

	w = h.do(http.MethodGet, "/dashboard/", nil, as(user))
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestRegisterLoginLogout(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodPost, "/accounts/register/", url.Values{
		"email": {"new@example.com"}, "password1": {"password123"}, "password2": {"password123"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/notes/", w.Header().Get("Location"))
	assert.NotEmpty(t, sessionCookie(w))

	w = h.do(http.MethodPost, "/accounts/register/", url.Values{
		"email": {"new@example.com"}, "password1": {"password123"}, "password2": {"password123"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	w = h.do(http.MethodPost, "/accounts/login/", url.Values{"email": {"new@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), loginFailed)

	w = h.do(http.MethodPost, "/accounts/login/", url.Values{
		"email": {"new@example.com"}, "password": {"password123"}, "next": {"/dashboard/"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/", w.Header().Get("Location"))
	token := sessionCookie(w)
	require.NotEmpty(t, token)

	session := &auth.Session{Token: token}
	w = h.do(http.MethodGet, "/accounts/login/", nil, as(session))
	assert.Equal(t, http.StatusSeeOther, w.Code, "signed-in users skip the login page")

	w = h.do(http.MethodPost, "/accounts/logout/", nil, as(session))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, auth.LoginPath, w.Header().Get("Location"))

	w = h.do(http.MethodGet, "/notes/", nil, as(session))
	assert.Equal(t, http.StatusSeeOther, w.Code, "revoked token must not authenticate")
}

func sessionCookie(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c.Value
		}
	}
	return ""
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterWelcomesOnce(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodPost, "/accounts/register/", url.Values{
		"email": {"grace@example.com"}, "gender": {"F"},
		"password1": {"password123"}, "password2": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	flash := responseCookie(w, flashCookie)
	require.NotNil(t, flash)
	session := &auth.Session{Token: sessionCookie(w)}

	withFlash := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: flashCookie, Value: flash.Value}) }
	w = h.do(http.MethodGet, "/notes/", nil, as(session), withFlash)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), welcome)
	cleared := responseCookie(w, flashCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	w = h.do(http.MethodGet, "/notes/", nil, as(session))
	assert.NotContains(t, w.Body.String(), welcome)

	w = h.do(http.MethodPost, "/accounts/register/", url.Values{
		"email": {"json@example.com"}, "password1": {"password123"}, "password2": {"password123"},
	}, acceptJSON)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, welcome, decode(t, w)["message"])
}

func TestRegisterRejectsUnknownGender(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodPost, "/accounts/register/", url.Values{
		"email": {"x@example.com"}, "gender": {"Q"},
		"password1": {"password123"}, "password2": {"password123"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Q is not one of the available choices.")
}

func TestCORS(t *testing.T) {
	h := newHarness(t, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/notes/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
