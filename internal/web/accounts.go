// ABOUTME: Account screens: login, registration and logout.
// ABOUTME: Successful sign-in stores the session token in a cookie.

package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harper/notely/internal/auth"
)

const (
	loginFailed = "Please enter a correct email and password."
	welcome     = "Welcome! Your account has been created successfully."
)

func (s *Server) loginPage(c *gin.Context) {
	if !auth.FromContext(c).IsZero() {
		c.Redirect(http.StatusSeeOther, auth.SafeNext(c.Query("next"), "/dashboard/"))
		return
	}
	s.render(c, view{
		status:   http.StatusOK,
		title:    "Log in",
		fragment: "login",
		data:     loginView{Next: c.Query("next")},
		json:     gin.H{"login": auth.LoginPath},
	})
}

func (s *Server) login(c *gin.Context) {
	var form struct {
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
		Next     string `form:"next" json:"next"`
	}
	if err := c.ShouldBind(&form); err != nil {
		s.plainError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	session, err := s.auth.Login(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.render(c, view{
			status:   http.StatusBadRequest,
			title:    "Log in",
			fragment: "login",
			data:     loginView{Email: form.Email, Next: form.Next, Error: loginFailed},
			json:     gin.H{"error": loginFailed},
		})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.auth.SetSessionCookie(c, session)
	if negotiate(c) == formatJSON {
		c.JSON(http.StatusOK, gin.H{"token": session.Token, "expires_at": session.ExpiresAt})
		return
	}
	c.Redirect(http.StatusSeeOther, auth.SafeNext(form.Next, "/notes/"))
}

func (s *Server) registerPage(c *gin.Context) {
	if !auth.FromContext(c).IsZero() {
		c.Redirect(http.StatusSeeOther, "/dashboard/")
		return
	}
	s.render(c, view{
		status:   http.StatusOK,
		title:    "Create Account",
		fragment: "register",
		data:     registerView{},
		json:     gin.H{"register": "/accounts/register/"},
	})
}

func (s *Server) register(c *gin.Context) {
	var reg auth.Registration
	if err := c.ShouldBind(&reg); err != nil {
		s.plainError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	session, err := s.auth.Register(c.Request.Context(), reg)
	var fieldErrs auth.FieldErrors
	if errors.As(err, &fieldErrs) {
		reg.Password, reg.PasswordConfirm = "", ""
		s.render(c, view{
			status:   http.StatusBadRequest,
			title:    "Create Account",
			fragment: "register",
			data:     registerView{Form: reg, Errors: fieldErrs},
			json:     gin.H{"errors": fieldErrs},
		})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.auth.SetSessionCookie(c, session)
	if negotiate(c) == formatJSON {
		c.JSON(http.StatusCreated, gin.H{"token": session.Token, "expires_at": session.ExpiresAt, "message": welcome})
		return
	}
	s.setFlash(c, welcome)
	c.Redirect(http.StatusSeeOther, "/notes/")
}

func (s *Server) logout(c *gin.Context) {
	if raw := auth.TokenFromRequest(c.Request); raw != "" {
		if err := s.auth.Logout(c.Request.Context(), raw); err != nil {
			s.internalError(c, err)
			return
		}
	}
	s.auth.ClearSessionCookie(c)
	if negotiate(c) == formatJSON {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.Redirect(http.StatusSeeOther, auth.LoginPath)
}
