package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/projectforge/aipg/pkg/logging"
)

// Server is the HTTP front of the generation service.
type Server struct {
	service *Service
	httpSrv *http.Server
}

// Config holds the listener settings.
type Config struct {
	Host string
	Port int

	// MaxUploadBytes caps multipart upload size.
	MaxUploadBytes int64
}

// New builds the HTTP server around a Service.
func New(service *Service, cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2 << 20
	}

	s := &Server{service: service}

	mux := http.NewServeMux()
	s.registerHandlers(mux, cfg.MaxUploadBytes)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerHandlers(mux *http.ServeMux, maxUploadBytes int64) {
	mux.HandleFunc("POST /api/projects/upload-prd", s.handleUploadPRD(maxUploadBytes))
	mux.HandleFunc("POST /api/projects/generate/{sessionId}", s.handleGenerate)
	mux.HandleFunc("POST /api/projects/generate", s.handleGenerateDirect)
	mux.HandleFunc("GET /api/projects/status/{sessionId}", s.handleStatus)
	mux.HandleFunc("GET /api/projects/download/backend/{sessionId}", s.handleDownload("backend"))
	mux.HandleFunc("GET /api/projects/download/frontend/{sessionId}", s.handleDownload("frontend"))
	mux.HandleFunc("GET /api/projects/download/{sessionId}", s.handleDownload("combined"))
	mux.HandleFunc("GET /api/projects/blueprint/{sessionId}", s.handleBlueprint)
	mux.HandleFunc("POST /api/projects/cancel/{sessionId}", s.handleCancel)
	mux.HandleFunc("GET /api/projects/agents", s.handleAgents)
	mux.HandleFunc("GET /api/projects/health", s.handleHealth)
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe runs the server until Shutdown.
func (s *Server) ListenAndServe() error {
	logging.GetLogger().Info(context.Background(), "HTTP server listening on %s", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
