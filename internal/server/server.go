// Package server exposes the command engine over HTTP with gin.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/classifier"
	"github.com/roach88/carelog/internal/dispatch"
	"github.com/roach88/carelog/internal/engine"
)

// ChatRequest is the body of POST /v1/chat. An empty SessionID starts a new
// session; a zero CurrentWeek uses the server default.
type ChatRequest struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message" binding:"required"`
	CurrentWeek int64  `json:"current_week"`
}

// ChatResponse wraps a turn result with the session it ran in.
type ChatResponse struct {
	SessionID string          `json:"session_id"`
	Result    dispatch.Result `json:"result"`
	Error     string          `json:"error,omitempty"`
}

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Message string `json:"message" binding:"required"`
}

// Server routes HTTP requests to a session registry.
type Server struct {
	registry    *engine.Registry
	classifier  *classifier.Classifier
	catalog     *catalog.Catalog
	currentWeek int64
	logger      *slog.Logger
	engine      *gin.Engine
}

// New builds the router. currentWeek is used for requests that omit it.
func New(reg *engine.Registry, cat *catalog.Catalog, currentWeek int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if currentWeek < 1 {
		currentWeek = 1
	}
	s := &Server{
		registry:    reg,
		classifier:  classifier.New(cat, logger),
		catalog:     cat,
		currentWeek: currentWeek,
		logger:      logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	s.register(r)
	s.engine = r
	return s
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/chat", s.chat)
		v1.POST("/classify", s.classify)
		v1.GET("/intents", s.intents)
		v1.POST("/sessions/:id/undo", s.undo)
		v1.DELETE("/sessions/:id/pending", s.cancel)
	}
}

func (s *Server) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request: " + err.Error()})
		return
	}
	uc := dispatch.UserContext{CurrentWeek: req.CurrentWeek}
	if uc.CurrentWeek < 1 {
		uc.CurrentWeek = s.currentWeek
	}

	res, id, err := s.registry.Handle(c.Request.Context(), req.SessionID, req.Message, uc)
	if err != nil && id == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := ChatResponse{SessionID: id, Result: res}
	if err != nil {
		// The turn ran but its snapshot was not saved.
		s.logger.Error("save session", "session", id, "error", err)
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": s.classifier.Classify(req.Message),
		"scores": s.classifier.Scores(req.Message),
	})
}

func (s *Server) intents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"intents": s.catalog.Intents()})
}

func (s *Server) undo(c *gin.Context) {
	id := c.Param("id")
	res, err := s.registry.Undo(c.Request.Context(), id)
	resp := ChatResponse{SessionID: id, Result: res}
	if err != nil {
		s.logger.Error("undo", "session", id, "error", err)
		resp.Error = err.Error()
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) cancel(c *gin.Context) {
	id := c.Param("id")
	had, err := s.registry.Cancel(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "cancelled": had})
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down with a
// five second grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
