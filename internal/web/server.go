// Package web provides the HTTP API and a small dashboard over the host
// registry.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/user/wolbook/internal/daemon"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
)

// Server is the web server.
type Server struct {
	registry *registry.Registry
	history  *storage.History
	config   *util.Config
	daemon   *daemon.Daemon
	port     int
	srv      *http.Server
}

// NewServer creates a new web server. history may be nil.
func NewServer(reg *registry.Registry, history *storage.History, cfg *util.Config, port int) *Server {
	return &Server{
		registry: reg,
		history:  history,
		config:   cfg,
		port:     port,
	}
}

// AttachDaemon routes syncs through d so its status file stays current.
func (s *Server) AttachDaemon(d *daemon.Daemon) {
	s.daemon = d
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	h := NewHandlers(s.registry, s.history, s.config)
	h.daemon = s.daemon

	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /api/hosts", h.APIListHosts)
	mux.HandleFunc("POST /api/hosts", h.APICreateHost)
	mux.HandleFunc("PUT /api/hosts/{index}", h.APIUpdateHost)
	mux.HandleFunc("DELETE /api/hosts/{index}", h.APIDeleteHost)
	mux.HandleFunc("POST /api/hosts/{index}/wake", h.APIWakeHost)
	mux.HandleFunc("GET /api/hosts/{index}/packet", h.APIPreviewPacket)
	mux.HandleFunc("POST /api/sync", h.APISync)
	mux.HandleFunc("GET /api/history", h.APIGetHistory)
	mux.HandleFunc("GET /api/validate", h.APIValidate)
	mux.HandleFunc("GET /api/status", h.APIGetStatus)
	mux.HandleFunc("GET /report", h.DownloadReport)

	return logRequests(mux)
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	util.Info("Web server starting on port %d", s.port)

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops the web server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		util.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
