package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/export"
	"github.com/pranshu05/BackendManager-sub003/internal/optimize"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
	"github.com/pranshu05/BackendManager-sub003/internal/schema"
)

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	tables, err := schema.Inspect(r.Context(), pool, s.log)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// handleExport streams a table as CSV and, when an object store is
// configured, archives a copy of the artifact.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	table := chi.URLParam(r, "table")

	pool, err := s.resolvePool(r.Context(), projectID)
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	var columns []string
	if tables, err := schema.Inspect(r.Context(), pool, s.log); err == nil {
		for _, t := range tables {
			if t.Name == table {
				columns = t.ColumnNames()
				break
			}
		}
	}

	sql := fmt.Sprintf(`SELECT * FROM public.%s`, query.QuoteIdentifier(table))
	rows, err := pool.Query(r.Context(), sql)
	if err != nil {
		respondError(w, err)
		return
	}
	scanned, err := query.ScanRows(rows)
	if err != nil {
		respondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, columns, scanned); err != nil {
		respondError(w, errs.Wrap(errs.ErrKindQueryFailed, "failed to render CSV", err))
		return
	}

	s.log.BestEffort("export archive", func() error {
		_, err := s.archiver.Store(r.Context(), projectID, table, buf.Bytes())
		return err
	})

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, table))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleMockData seeds a table with generated rows.
func (s *Server) handleMockData(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.poolFailure(w, err)
		return
	}

	tableName := chi.URLParam(r, "table")
	tables, err := schema.Inspect(r.Context(), pool, s.log)
	if err != nil {
		respondError(w, err)
		return
	}

	var target *schema.Table
	for i := range tables {
		if tables[i].Name == tableName {
			target = &tables[i]
			break
		}
	}
	if target == nil {
		respondError(w, errs.Newf(errs.ErrKindNotFound, "table %s not found", tableName))
		return
	}

	inserted := 0
	for _, row := range s.mock.Rows(*target, body.Count) {
		if _, err := s.crud.Insert(r.Context(), pool, tableName, row); err != nil {
			respondError(w, err)
			return
		}
		inserted++
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Mock data inserted",
		"rows":    inserted,
	})
}

// handleOptimizationGet always answers 200: the service degrades through
// advisor, live analysis, and canned defaults instead of failing.
func (s *Server) handleOptimizationGet(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	target := optimize.AdvisorTarget{ProjectID: projectID}

	if p, err := s.store.Get(r.Context(), projectID); err == nil {
		target.DatabaseName = p.DatabaseName
	}

	pool, err := s.resolvePool(r.Context(), projectID)
	if err != nil {
		s.log.Warnf("optimization pool unavailable for %s: %v", projectID, err)
		pool = nil
	}

	respondJSON(w, http.StatusOK, s.optimize.Suggestions(r.Context(), pool, target))
}

func (s *Server) handleOptimizationPost(w http.ResponseWriter, r *http.Request) {
	var req optimize.ApplyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	pool, err := s.resolvePool(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		respondFailure(w, "Failed to apply optimization", err)
		return
	}

	res, err := s.optimize.Apply(r.Context(), pool, req)
	if err != nil {
		if errs.IsInvalidInput(err) {
			respondError(w, err)
			return
		}
		respondFailure(w, "Failed to apply optimization", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleQuery runs a raw SQL statement over a transient pool built from the
// project's stored connection string.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query  string `json:"query"`
		Params []any  `json:"params"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	p, err := s.store.Get(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := s.executor.Execute(r.Context(), p.ConnectionString, body.Query, body.Params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
