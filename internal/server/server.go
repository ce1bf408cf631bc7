// Package server exposes gocalc tool calls over HTTP.
//
//	POST /tool   execute a tool call
//	GET  /schema tool schema for agent registration
//	GET  /health liveness check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	gocalc "github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	conf       config.ServerConfig
	integrator *gocalc.Integrator
	logger     *slog.Logger
	router     *gin.Engine
}

// New builds the router. A nil integrator means gocalc.DefaultIntegrator.
func New(conf config.ServerConfig, in *gocalc.Integrator, logger *slog.Logger) *Server {
	if in == nil {
		in = gocalc.DefaultIntegrator
	}
	if logger == nil {
		logger = slog.Default()
	}
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{conf: conf, integrator: in, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())
	if len(conf.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  conf.AllowOrigins,
			AllowMethods:  []string{"GET", "POST"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", RequestIDHeader},
			ExposeHeaders: []string{"Content-Type", "Content-Length", RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/health", healthCheckHandle)
	router.GET("/schema", schemaHandle)
	router.POST("/tool", requirePayload(), s.toolHandle)

	s.router = router
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.conf.ReadTimeout,
		WriteTimeout:      s.conf.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting gocalc tool server", slog.String("addr", s.conf.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Stopping gocalc tool server")
	return srv.Shutdown(shutdownCtx)
}

func healthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func schemaHandle(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(gocalc.ToolSpec()))
}

func (s *Server) toolHandle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.conf.MaxBodyBytes)

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var req gocalc.ToolRequest
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	if dec.More() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
		return
	}

	resp := s.integrator.HandleToolCall(req)
	if resp.Error != "" {
		s.logger.Debug("tool call failed",
			slog.String("tool", req.Tool),
			slog.String("error", resp.Error),
			slog.String("request_id", c.GetString(RequestIDHeader)),
		)
	}
	c.JSON(http.StatusOK, resp)
}

// ============================================================
// Middlewares
// ============================================================

// requestID keeps a caller-supplied id or assigns a new one.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(RequestIDHeader)),
		)
	}
}

// requirePayload blocks post requests that have no payload attached
func requirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payload missing"})
			return
		}
		c.Next()
	}
}
