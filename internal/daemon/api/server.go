// Package api implements the local HTTP control surface for the daemon.
// It binds to loopback only; the bind address is the access control.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
)

// maxConns caps concurrent connections on the loopback listener. A stuck
// SSE consumer cannot starve the CLI this way.
const maxConns = 64

// WorkerSupervisor is the slice of the sidecar supervisor the API uses.
type WorkerSupervisor interface {
	Dispatch(cmd asr.Command) error
	Status() models.WorkerStatus
}

// SessionController receives UI recording intents and reports the session.
type SessionController interface {
	StartRecording()
	StopAndTranscribe()
	CancelCurrent()
	Status() models.SessionStatus
}

// SettingsStore validates, persists, and applies settings.
type SettingsStore interface {
	Current() *models.Settings
	Validate(*models.Settings) error
	Save(*models.Settings) error
}

// Config holds API server wiring.
type Config struct {
	Logger     *slog.Logger
	Hub        *bus.Hub
	Supervisor WorkerSupervisor
	Session    SessionController
	Settings   SettingsStore

	// Version is the daemon build version reported by /status.
	Version string

	// Shutdown requests an orderly daemon exit. It must return promptly;
	// the handler responds 202 before the daemon unwinds.
	Shutdown func()
}

// Server is the daemon's HTTP control server.
type Server struct {
	log       *slog.Logger
	hub       *bus.Hub
	sup       WorkerSupervisor
	session   SessionController
	settings  SettingsStore
	version   string
	shutdown  func()
	startedAt time.Time

	listener net.Listener
	server   *http.Server
}

// New creates a server listening on 127.0.0.1:port. Pass port 0 for
// dynamic allocation; read the chosen port back with Port.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		log:       log,
		hub:       cfg.Hub,
		sup:       cfg.Supervisor,
		session:   cfg.Session,
		settings:  cfg.Settings,
		version:   cfg.Version,
		shutdown:  cfg.Shutdown,
		startedAt: time.Now().UTC(),
	}

	s.server = &http.Server{
		Handler:     s.routes(),
		ReadTimeout: 10 * time.Second,
		// No write timeout: /api/v1/events streams until the client leaves.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start(port int) error {
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = netutil.LimitListener(listener, maxConns)

	go func() {
		if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("api server error", "error", err)
		}
	}()

	s.log.Info("api server listening", "addr", s.Addr())
	return nil
}

// Port returns the bound port. Valid after Start.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns the bound address. Valid after Start.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Stop gracefully drains the server, closing idle SSE streams.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warn("api server shutdown incomplete", "error", err)
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Route("/recording", func(r chi.Router) {
			r.Post("/start", s.handleRecordingStart)
			r.Post("/stop", s.handleRecordingStop)
			r.Post("/cancel", s.handleRecordingCancel)
		})
		r.Post("/healthcheck", s.handleHealthcheck)
		r.Post("/daemon/shutdown", s.handleShutdown)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// loggingMiddleware logs HTTP requests. SSE requests log on disconnect.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
