// Package admin serves an HTTP API reporting the health and the sessions of a proxy.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cooldogedev/crossplay/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Sessions is the source of the sessions reported, implemented by *session.Manager.
type Sessions interface {
	Sessions() []session.Summary
	Close(id uuid.UUID, reason string) bool
}

// Server is the admin HTTP server.
type Server struct {
	log      *slog.Logger
	sessions Sessions
	started  time.Time

	router *gin.Engine
	srv    *http.Server
}

// New returns a Server listening on addr once Run is called.
func New(log *slog.Logger, addr string, sessions Sessions) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		log:      log,
		sessions: sessions,
		started:  time.Now(),
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.router.GET("/health", s.health)
	s.router.GET("/sessions", s.list)
	s.router.DELETE("/sessions/:id", s.close)
	s.srv = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Handler returns the handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API until the context is done.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.srv.ListenAndServe()
	}()
	s.log.Info("admin server listening", "addr", s.srv.Addr)
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"sessions": len(s.sessions.Sessions()),
	})
}

func (s *Server) list(c *gin.Context) {
	sessions := s.sessions.Sessions()
	if sessions == nil {
		sessions = []session.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// close disconnects the player of a session, with the reason in the query if present.
func (s *Server) close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	reason := c.DefaultQuery("reason", "Disconnected by an administrator.")
	if !s.sessions.Close(id, reason) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	s.log.Info("session closed through admin api", "session", id, "reason", reason)
	c.Status(http.StatusAccepted)
}
