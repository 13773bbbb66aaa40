// Package project persists imported-project records in the application's
// own database and orchestrates the import flow: validate credentials,
// prove connectivity, persist, then warm a registry pool.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// Project is one imported database. The connection string never leaves the
// server: it is excluded from JSON serialization.
type Project struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DatabaseName     string    `json:"databaseName"`
	ConnectionString string    `json:"-"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Store reads and writes project records over the application database's
// pool. It does not own the pool.
type Store struct {
	pool dbconn.Pool
	log  *logger.Logger
}

// NewStore returns a Store over the given pool.
func NewStore(pool dbconn.Pool, log *logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Init creates the projects table when absent. Safe to call on every boot.
func (s *Store) Init(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS projects (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			database_name     TEXT NOT NULL,
			connection_string TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Create persists a new record and returns it with id and timestamp filled.
func (s *Store) Create(ctx context.Context, p Project) (*Project, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Name == "" {
		p.Name = p.DatabaseName
	}

	const sql = `
		INSERT INTO projects (id, name, database_name, connection_string, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.pool.Exec(ctx, sql, p.ID, p.Name, p.DatabaseName, p.ConnectionString, p.Description, p.CreatedAt); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to persist project", err)
	}
	return &p, nil
}

// Get returns the record with the given id, or ErrKindNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	const sql = `
		SELECT id, name, database_name, connection_string, description, created_at
		FROM projects
		WHERE id = $1`

	var p Project
	err := s.pool.QueryRow(ctx, sql, id).Scan(
		&p.ID, &p.Name, &p.DatabaseName, &p.ConnectionString, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, errs.Newf(errs.ErrKindNotFound, "project %s not found", id)
	}
	return &p, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	const sql = `
		SELECT id, name, database_name, connection_string, description, created_at
		FROM projects
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.DatabaseName, &p.ConnectionString, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes the record with the given id. Missing ids are NotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	affected, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.Newf(errs.ErrKindNotFound, "project %s not found", id)
	}
	return nil
}

// SanitizeDatabaseName reduces a user-supplied database name to lowercase
// letters, digits, and underscores.
func SanitizeDatabaseName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == '-' || r == ' ':
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
