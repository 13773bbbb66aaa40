package project

import (
	"context"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// ImportRequest is the POST body for importing an existing database.
type ImportRequest struct {
	dbconn.ConnectionDescriptor
	Name        string `json:"name"`
	Description string `json:"description"`
}

// connectFn matches Connector.Connect, injectable for tests.
type connectFn func(ctx context.Context, dsn string) (dbconn.Pool, error)

// Importer validates credentials against the live database, persists the
// project record, and warms a registry pool for it.
type Importer struct {
	store    *Store
	registry *dbconn.Registry
	connect  connectFn
	log      *logger.Logger
}

// NewImporter wires an importer using the SSL-fallback connector.
func NewImporter(store *Store, registry *dbconn.Registry, log *logger.Logger) *Importer {
	return &Importer{
		store:    store,
		registry: registry,
		connect:  dbconn.NewConnector(log).Connect,
		log:      log,
	}
}

// NewImporterWithConnect is NewImporter with a custom connect function.
func NewImporterWithConnect(store *Store, registry *dbconn.Registry, connect connectFn, log *logger.Logger) *Importer {
	return &Importer{store: store, registry: registry, connect: connect, log: log}
}

// Import runs the full flow: validate the descriptor, prove the credentials
// work with a transient connection, persist the record, then create the
// project's registry pool. Pool creation is a side channel; its failure is
// logged and the import still succeeds.
func (i *Importer) Import(ctx context.Context, req ImportRequest) (*Project, error) {
	if err := req.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, err.Error(), err)
	}

	dsn := req.DSN()
	pool, err := i.connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pool.Close()

	created, err := i.store.Create(ctx, Project{
		Name:             req.Name,
		DatabaseName:     SanitizeDatabaseName(req.Database),
		ConnectionString: dsn,
		Description:      req.Description,
	})
	if err != nil {
		return nil, err
	}

	i.log.BestEffort("registry pool warm-up", func() error {
		_, err := i.registry.Create(ctx, dbconn.PoolKey(created.ID), dsn)
		return err
	})

	return created, nil
}

// Teardown removes a project: its registry pool first, then the record.
func (i *Importer) Teardown(ctx context.Context, id string) error {
	i.registry.Remove(dbconn.PoolKey(id))
	return i.store.Delete(ctx, id)
}
