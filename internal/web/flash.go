// ABOUTME: One-shot messages carried across a redirect in a cookie.
// ABOUTME: The next full page shows the message once and clears it.

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "notely_flash"

func (s *Server) setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, msg, 60, "/", "", c.Request.TLS != nil, true)
}

// takeFlash returns the pending message, if any, and clears it.
func (s *Server) takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	return msg
}
