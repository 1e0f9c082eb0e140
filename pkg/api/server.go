// Package api serves the graph edit and compute interfaces over HTTP.
//
// A Server owns one workspace: a single shared network that every request
// edits and routes over. Handlers are thin. Graph edits go straight to
// [network.Network], computations go through [pipeline.Runner] so the API
// and the CLI share one cache, and documents use the [graph] interchange
// format.
//
// # Endpoints
//
//	GET    /nodes            list routers
//	POST   /nodes            add a router, optionally linked: {"link": 2, "weight": 5}
//	DELETE /nodes/{id}       remove a router and its links
//	GET    /edges            list links (one record per link)
//	PUT    /edges/{a}/{b}    create or reweight a link: {"weight": 5}
//	DELETE /edges/{a}/{b}    remove a link
//	GET    /matrix           adjacency matrix snapshot
//	POST   /route            {"algorithm": "centralized", "source": 1, "destination": 4}
//	GET    /export           interchange document
//	POST   /import           replace the workspace from a document
//	GET    /healthz          liveness
//	GET    /version          build information
//
// Errors are JSON objects {"code": "...", "message": "..."} whose status is
// derived from the error code. An unreachable destination is a normal 200
// response with "no_path": true.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
)

// maxBodyBytes bounds request bodies. A full 15-router document is far
// smaller.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown in ListenAndServe.
const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of one workspace.
type Server struct {
	mu       sync.RWMutex
	net      *network.Network
	capacity int

	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// NewServer creates a server over n. A nil network starts an empty
// workspace with the default capacity, a nil runner computes without a
// cache, and a nil logger uses log.Default().
func NewServer(n *network.Network, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if n == nil {
		n = network.New(0)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		net:      n,
		capacity: n.Capacity(),
		runner:   runner,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.healthz)
	r.Get("/version", s.version)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.listNodes)
		r.Post("/", s.addNode)
		r.Delete("/{id}", s.removeNode)
	})
	r.Route("/edges", func(r chi.Router) {
		r.Get("/", s.listEdges)
		r.Put("/{a}/{b}", s.upsertEdge)
		r.Delete("/{a}/{b}", s.removeEdge)
	})
	r.Get("/matrix", s.matrix)
	r.Post("/route", s.route)
	r.Get("/export", s.export)
	r.Post("/import", s.importDocument)
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

// Network returns the current workspace network. Import replaces it, so
// callers should not hold on to the result across requests.
func (s *Server) Network() *network.Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net
}

func (s *Server) replace(n *network.Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.net = n
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
