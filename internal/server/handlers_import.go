package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/project"
)

// handleImport validates the supplied credentials against the live database
// and persists the project on success.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req project.ImportRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.importer.Import(r.Context(), req)
	if err != nil {
		s.log.Errorf("import failed: %v", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Database imported",
		"project": created,
	})
}

// handleTeardown removes the project record and its registry pool.
func (s *Server) handleTeardown(w http.ResponseWriter, r *http.Request) {
	if err := s.importer.Teardown(r.Context(), chi.URLParam(r, "projectId")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Project removed"})
}

// poolFailure is the shared failure path for table operations whose project
// pool cannot be resolved.
func (s *Server) poolFailure(w http.ResponseWriter, err error) {
	s.log.Errorf("failed to resolve project pool: %v", err)

	msg := err.Error()
	if msg == "" {
		msg = "Failed"
	}
	respondJSON(w, http.StatusInternalServerError, errorBody{Error: msg})
}

func (s *Server) handleTableGet(w http.ResponseWriter, r *http.Request) {
	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	table := chi.URLParam(r, "table")
	if id := r.URL.Query().Get("id"); id != "" {
		row, err := s.crud.Get(r.Context(), pool, table, id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, row)
		return
	}

	rows, err := s.crud.List(r.Context(), pool, table)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (s *Server) handleTableInsert(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	row, err := s.crud.Insert(r.Context(), pool, chi.URLParam(r, "table"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (s *Server) handleTableUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errs.New(errs.ErrKindInvalidInput, "id query param required"))
		return
	}

	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	row, err := s.crud.Update(r.Context(), pool, chi.URLParam(r, "table"), id, body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (s *Server) handleTableDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errs.New(errs.ErrKindInvalidInput, "id query param required"))
		return
	}

	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	row, err := s.crud.Delete(r.Context(), pool, chi.URLParam(r, "table"), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}
