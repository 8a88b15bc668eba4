package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/hoard/internal/logger"
	"github.com/five82/hoard/internal/session"
)

const (
	maxBodyBytes   = 1 << 20
	commandTimeout = 60 * time.Second
)

// Deps are the collaborators the bridge dispatches to.
type Deps struct {
	Store  *session.Store
	Logger logger.Logger
	// LogDir is searched for a previous diagnostics file when Logger has
	// no file of its own.
	LogDir string
}

// Server is the local JSON command bridge.
type Server struct {
	http     *http.Server
	handler  http.Handler
	deps     Deps
	log      logger.Logger
	commands map[string]command
}

// New builds the bridge router and server for addr.
func New(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	s := &Server{deps: d, log: d.Logger}
	s.commands = s.registry()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(localOnly(d.Logger))
	r.Use(middleware.Timeout(commandTimeout))
	r.Use(requestLog(d.Logger))

	r.Get("/healthz", s.health)
	r.Get("/commands", s.list)
	r.With(jsonOnly).Post("/commands/{name}", s.dispatch)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.handler = r
	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      commandTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("bridge listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("bridge shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.deps.Store.State().String(),
		"origin": s.deps.Store.Origin(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends msg as a bare JSON string.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, msg)
}

func isLoopbackHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
