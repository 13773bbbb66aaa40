// Package server exposes the HTTP surface: project imports, dynamic table
// CRUD, schema introspection, CSV export, mock data seeding, raw queries,
// and optimization suggestions.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pranshu05/BackendManager-sub003/internal/crud"
	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/export"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
	"github.com/pranshu05/BackendManager-sub003/internal/mockdata"
	"github.com/pranshu05/BackendManager-sub003/internal/optimize"
	"github.com/pranshu05/BackendManager-sub003/internal/project"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
)

// Server holds every request-path dependency and the router over them.
type Server struct {
	log      *logger.Logger
	registry *dbconn.Registry
	store    *project.Store
	importer *project.Importer
	executor *query.Executor
	crud     *crud.Engine
	optimize *optimize.Service
	mock     *mockdata.Generator
	archiver *export.Archiver

	router chi.Router
}

// Deps bundles the constructor's collaborators.
type Deps struct {
	Log      *logger.Logger
	Registry *dbconn.Registry
	Store    *project.Store
	Importer *project.Importer
	Executor *query.Executor
	CRUD     *crud.Engine
	Optimize *optimize.Service
	Mock     *mockdata.Generator
	Archiver *export.Archiver
}

// New wires the router.
func New(d Deps) *Server {
	s := &Server{
		log:      d.Log,
		registry: d.Registry,
		store:    d.Store,
		importer: d.Importer,
		executor: d.Executor,
		crud:     d.CRUD,
		optimize: d.Optimize,
		mock:     d.Mock,
		archiver: d.Archiver,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/imports", func(r chi.Router) {
			r.Post("/", s.handleImport)
			r.Delete("/{projectId}", s.handleTeardown)

			r.Route("/{projectId}/{table}", func(r chi.Router) {
				r.Get("/", s.handleTableGet)
				r.Post("/", s.handleTableInsert)
				r.Put("/", s.handleTableUpdate)
				r.Delete("/", s.handleTableDelete)
				r.Post("/mock", s.handleMockData)
			})
		})

		r.Route("/projects/{projectId}", func(r chi.Router) {
			r.Get("/schema", s.handleSchema)
			r.Get("/export/{table}", s.handleExport)
			r.Get("/optimization", s.handleOptimizationGet)
			r.Post("/optimization", s.handleOptimizationPost)
			r.Post("/query", s.handleQuery)
		})
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// resolvePool returns the project's registry pool, creating it from the
// stored connection string on first use.
func (s *Server) resolvePool(ctx context.Context, projectID string) (dbconn.Pool, error) {
	key := dbconn.PoolKey(projectID)
	if pool, ok := s.registry.Get(key); ok {
		return pool, nil
	}

	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ConnectionString == "" {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "project %s has no connection string", projectID)
	}
	return s.registry.Create(ctx, key, p.ConnectionString)
}
