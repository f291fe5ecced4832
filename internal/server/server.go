// Package server provides the HTTP server for the signtutor web UI.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/app"
	"github.com/ayusman/signtutor/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// RateLimit is the number of practice control requests allowed per IP
	// per minute. Zero disables the limit.
	RateLimit int
	App       *app.App
	Logger    *zap.SugaredLogger
}

// Server represents the HTTP server for the signtutor application.
type Server struct {
	config Config
	log    *zap.SugaredLogger
	router *httprouter.Router
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}
	s := &Server{
		config: config,
		log:    config.Logger.Named("server"),
		router: httprouter.New(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		api.NewHandler(a, s.config.Logger).Register(s.router, s.config.RateLimit)
		s.router.Handler(http.MethodGet, "/api/practice/ws", NewFeedHandler(a.Feed(), s.config.Logger))
		s.router.Handler(http.MethodGet, "/api/stream", NewStreamHandler(a.LatestFrame))
	}

	if s.config.StaticDir != "" {
		s.router.NotFound = http.FileServer(http.Dir(s.config.StaticDir))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Error  string `json:"error,omitempty"`
}

// handleHealth reports uptime and any failure that keeps practice from
// starting.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := healthResponse{Status: "ok", Uptime: time.Since(s.start).Round(time.Second).String()}
	if s.config.App != nil {
		if err := s.config.App.SetupErr(); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Infow("listening", "address", addr)
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
