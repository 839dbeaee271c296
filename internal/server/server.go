// Package server exposes layout sessions over HTTP.
//
// Every request is stateless: the session is loaded from the store, its host
// and engine are rebuilt at the saved snapshot, the operation runs and the
// session is written back. Requests for the same session are serialized
// within one server process.
//
// Routes:
//
//	GET    /healthz
//	GET    /version
//	POST   /sessions                   create from a scenario configuration
//	GET    /sessions/{id}              current window
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/steps        apply one step or a list of steps
//	GET    /sessions/{id}/snapshot     engine snapshot
//	PUT    /sessions/{id}/snapshot     restore a snapshot
//	GET    /sessions/{id}/render       window as json, svg, dot or text
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/laneview/pkg/session"
)

// Options configures a [Server].
type Options struct {
	// Logger receives request logs. Nil means log.Default().
	Logger *log.Logger

	// SessionTTL is how long a session lives after its last use. Zero means
	// session.DefaultTTL.
	SessionTTL time.Duration

	// MaxBodyBytes limits request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Server serves the layout session API.
type Server struct {
	store  session.Store
	logger *log.Logger
	opts   Options
	router chi.Router

	locks sync.Map // session ID -> *sync.Mutex
}

// New creates a server on store.
func New(store session.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	s := &Server{store: store, logger: opts.Logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/steps", s.handleSteps)
			r.Get("/snapshot", s.handleGetSnapshot)
			r.Put("/snapshot", s.handlePutSnapshot)
			r.Get("/render", s.handleRender)
		})
	})
	return r
}

// lock serializes work on one session.
func (s *Server) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
