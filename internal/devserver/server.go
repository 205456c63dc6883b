// Package devserver is an in-memory backend speaking the same four routes as
// the real one. It exists for local runs (`todo serve`) and tests.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/todoboard/internal/model"
)

type Server struct {
	store  *Store
	logger *log.Logger
	router *gin.Engine
}

var releaseMode sync.Once

// New builds the router. A nil logger disables request logging.
func New(store *Store, logger *log.Logger) *Server {
	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })

	s := &Server{store: store, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	api := r.Group("/api", requireUser())
	api.GET("/getTodos", s.getTodos)
	api.POST("/createTodo", s.createTodo)
	api.PUT("/updateTodo", s.updateTodo)
	api.DELETE("/deleteTodo", s.deleteTodo)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("listening", "addr", addr)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const userKey = "user"

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader("user"))
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user header"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.logger == nil {
			return
		}
		s.logger.Debug("request",
			"method", c.Request.Method,
			"uri", c.Request.RequestURI,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (s *Server) getTodos(c *gin.Context) {
	status := model.Status(c.Query("type"))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be not_started, in_progress or done"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": s.store.List(c.GetString(userKey), status)})
}

type createRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) createTodo(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	t := s.store.Create(c.GetString(userKey), req.Title, req.Body)
	c.JSON(http.StatusOK, gin.H{"attributes": t})
}

type updateRequest struct {
	ID   string       `json:"id"`
	Type model.Status `json:"type"`
}

func (s *Server) updateTodo(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be not_started, in_progress or done"})
		return
	}
	t, err := s.store.SetStatus(c.GetString(userKey), req.ID, req.Type)
	if err != nil {
		s.notFound(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributes": gin.H{"id": t.ID, "type": t.Type}})
}

type deleteRequest struct {
	ID string `json:"id"`
}

func (s *Server) deleteTodo(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := s.store.Delete(c.GetString(userKey), req.ID)
	if err != nil {
		s.notFound(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributes": t})
}

func (s *Server) notFound(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
