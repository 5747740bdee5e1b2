// ABOUTME: Gin middleware that attaches the requester's identity to the context.
// ABOUTME: Unauthenticated requests are redirected or rejected before any handler runs.

package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginPath is where anonymous browsers are sent.
const LoginPath = "/accounts/login/"

const identityKey = "notely.identity"

// RequireAuthenticated rejects anonymous requests. Full-page navigation is
// redirected to the login page; htmx requests get 401 with HX-Redirect;
// JSON clients get a 401 body.
func (p *Provider) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := p.Current(c.Request)
		if err != nil {
			reject(c)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Authenticate attaches the identity when there is one and never rejects.
func (p *Provider) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := p.Current(c.Request); err == nil {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

// FromContext returns the identity set by the middleware, or the zero Identity.
func FromContext(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

func reject(c *gin.Context) {
	login := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	switch {
	case c.GetHeader("HX-Request") == "true":
		c.Header("HX-Redirect", login)
		c.AbortWithStatus(http.StatusUnauthorized)
	case c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
	default:
		c.Redirect(http.StatusSeeOther, login)
		c.Abort()
	}
}

// SafeNext returns next when it is a local path and fallback otherwise.
func SafeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// SetSessionCookie stores the session token for browser requests.
func (p *Provider) SetSessionCookie(c *gin.Context, s *Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, s.Token, maxAge, "/", "", p.opts.CookieSecure, true)
}

func (p *Provider) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", p.opts.CookieSecure, true)
}
