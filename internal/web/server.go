// ABOUTME: HTTP server wiring: gin router, middleware and route table.
// ABOUTME: Every /notes and /dashboard route sits behind the identity provider.

package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/notes"
	"go.uber.org/zap"
)

type Options struct {
	// AllowedOrigins enables CORS for these origins. Empty disables CORS.
	AllowedOrigins []string
}

type Server struct {
	notes  *notes.Service
	auth   *auth.Provider
	logger *zap.Logger
	tmpl   *template.Template
	engine *gin.Engine
}

func New(svc *notes.Service, provider *auth.Provider, logger *zap.Logger, opts Options) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{notes: svc, auth: provider, logger: logger, tmpl: tmpl}
	s.engine = s.routes(opts)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"},
			ExposeHeaders:    []string{"HX-Trigger", "HX-Redirect"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/notes/")
	})

	accounts := r.Group("/accounts", s.auth.Authenticate())
	{
		accounts.GET("/login/", s.loginPage)
		accounts.POST("/login/", s.login)
		accounts.GET("/register/", s.registerPage)
		accounts.POST("/register/", s.register)
		accounts.POST("/logout/", s.logout)
	}

	r.GET("/dashboard/", s.auth.RequireAuthenticated(), s.dashboard)

	n := r.Group("/notes", s.auth.RequireAuthenticated())
	{
		n.GET("/", s.listNotes)
		n.GET("/search/", s.searchNotes)
		n.GET("/favourite/", s.favouriteNotes)
		n.POST("/create/", s.createNote)
		n.GET("/:id/", s.noteDetail)
		n.GET("/:id/edit/", s.editForm)
		n.POST("/:id/edit/", s.updateNote)
		n.POST("/:id/delete/", s.deleteNote)
		n.POST("/:id/favorite/", s.toggleFavourite)
	}

	r.NoRoute(func(c *gin.Context) {
		s.plainError(c, http.StatusNotFound, "Page not found.")
	})
	return r
}

// requestLogger logs one line per request once the handler has finished.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := auth.FromContext(c); !id.IsZero() {
			fields = append(fields, zap.Stringer("owner_id", id.UserID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("request", fields...)
	}
}
