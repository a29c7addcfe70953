package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/mailvault/internal/database"
	"github.com/okatkov/mailvault/internal/notify"
)

// Server serves the email record API
type Server struct {
	db       *database.DB
	notifier *notify.Notifier
	logger   *slog.Logger
	router   *gin.Engine
	server   *http.Server
	addr     string
}

// Deps dependencies for creating a server
type Deps struct {
	Addr     string
	DB       *database.DB
	Notifier *notify.Notifier // optional, may be nil
	Logger   *slog.Logger
}

// New creates the API server and wires up the routes
func New(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		db:       deps.DB,
		notifier: deps.Notifier,
		logger:   deps.Logger.With("component", "api"),
		addr:     deps.Addr,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggerMiddleware())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.GET("/emails", s.handleListEmails)
	api.POST("/emails", s.handleCreateEmail)
	api.GET("/emails/search", s.handleSearchEmails)
	api.GET("/emails/:id", s.handleGetEmail)

	s.router = router
	return s
}

// Start runs the HTTP server until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("api server listening", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	return nil
}

// loggerMiddleware logs each request through slog
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
