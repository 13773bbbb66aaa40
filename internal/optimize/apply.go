package optimize

import (
	"context"
	"fmt"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
)

// Suggestion actions accepted by Apply.
const (
	ActionCreateIndex      = "create_index"
	ActionRemoveTable      = "remove_table"
	ActionRemoveDuplicates = "remove_duplicates"
)

// ApplyRequest is the POST body for applying one suggestion.
type ApplyRequest struct {
	Action       string   `json:"action"`
	TargetTable  string   `json:"targetTable"`
	TargetColumn string   `json:"targetColumn"`
	DuplicateIDs []string `json:"duplicateIds"`
}

// ApplyResult reports what an applied action did.
type ApplyResult struct {
	Action       string `json:"action"`
	TargetTable  string `json:"targetTable"`
	TargetColumn string `json:"targetColumn,omitempty"`
	RowsAffected int64  `json:"rowsAffected"`
	Message      string `json:"message"`
}

// Applier executes optimization actions against a project database. Audit
// rows and suggestion-resolution marks are side channels: their failure is
// logged and never fails the user-facing action.
type Applier struct {
	log *logger.Logger
}

// NewApplier returns an applier.
func NewApplier(log *logger.Logger) *Applier {
	return &Applier{log: log}
}

// Apply dispatches the requested action. Unknown actions are invalid input.
func (a *Applier) Apply(ctx context.Context, pool dbconn.Pool, req ApplyRequest) (*ApplyResult, error) {
	if req.TargetTable == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "targetTable is required")
	}

	var (
		res *ApplyResult
		err error
	)
	switch req.Action {
	case ActionCreateIndex:
		res, err = a.createIndex(ctx, pool, req)
	case ActionRemoveTable:
		res, err = a.removeTable(ctx, pool, req)
	case ActionRemoveDuplicates:
		res, err = a.removeDuplicates(ctx, pool, req)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "Invalid action")
	}
	if err != nil {
		return nil, err
	}

	a.audit(ctx, pool, req, res.RowsAffected)
	a.markResolved(ctx, pool, req)
	return res, nil
}

func (a *Applier) createIndex(ctx context.Context, pool dbconn.Pool, req ApplyRequest) (*ApplyResult, error) {
	if req.TargetColumn == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "targetColumn is required")
	}

	idx := fmt.Sprintf("idx_%s_%s", req.TargetTable, req.TargetColumn)
	sql := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON public.%s (%s)`,
		query.QuoteIdentifier(idx),
		query.QuoteIdentifier(req.TargetTable),
		query.QuoteIdentifier(req.TargetColumn))
	if _, err := pool.Exec(ctx, sql); err != nil {
		return nil, err
	}
	if err := a.analyzeTable(ctx, pool, req.TargetTable); err != nil {
		return nil, err
	}

	return &ApplyResult{
		Action:       req.Action,
		TargetTable:  req.TargetTable,
		TargetColumn: req.TargetColumn,
		Message:      fmt.Sprintf("Created index %s on %s.%s", idx, req.TargetTable, req.TargetColumn),
	}, nil
}

func (a *Applier) removeTable(ctx context.Context, pool dbconn.Pool, req ApplyRequest) (*ApplyResult, error) {
	// Row count is captured before the drop so the audit trail records
	// how much data the action removed.
	var count int64
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM public.%s`, query.QuoteIdentifier(req.TargetTable))
	if err := pool.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		if !dbconn.IsUndefinedRelation(err) {
			return nil, err
		}
		count = 0
	}

	dropSQL := fmt.Sprintf(`DROP TABLE IF EXISTS public.%s CASCADE`, query.QuoteIdentifier(req.TargetTable))
	if _, err := pool.Exec(ctx, dropSQL); err != nil {
		return nil, err
	}

	return &ApplyResult{
		Action:       req.Action,
		TargetTable:  req.TargetTable,
		RowsAffected: count,
		Message:      fmt.Sprintf("Dropped table %s (%d rows)", req.TargetTable, count),
	}, nil
}

func (a *Applier) removeDuplicates(ctx context.Context, pool dbconn.Pool, req ApplyRequest) (*ApplyResult, error) {
	var (
		affected int64
		err      error
	)
	if len(req.DuplicateIDs) > 0 {
		affected, err = a.deleteByIDs(ctx, pool, req.TargetTable, req.DuplicateIDs)
	} else {
		if req.TargetColumn == "" {
			return nil, errs.New(errs.ErrKindInvalidInput, "targetColumn is required")
		}
		affected, err = a.dedupByColumn(ctx, pool, req.TargetTable, req.TargetColumn)
	}
	if err != nil {
		return nil, err
	}
	if err := a.analyzeTable(ctx, pool, req.TargetTable); err != nil {
		return nil, err
	}

	return &ApplyResult{
		Action:       req.Action,
		TargetTable:  req.TargetTable,
		TargetColumn: req.TargetColumn,
		RowsAffected: affected,
		Message:      fmt.Sprintf("Removed %d duplicate rows from %s", affected, req.TargetTable),
	}, nil
}

func (a *Applier) deleteByIDs(ctx context.Context, pool dbconn.Pool, table string, ids []string) (int64, error) {
	sql := fmt.Sprintf(`DELETE FROM public.%s WHERE id = ANY($1)`, query.QuoteIdentifier(table))
	return pool.Exec(ctx, sql, ids)
}

// dedupByColumn keeps the first physical row per duplicated value and
// deletes the rest, keyed by ctid so it works on tables without an id
// column.
func (a *Applier) dedupByColumn(ctx context.Context, pool dbconn.Pool, table, column string) (int64, error) {
	qt := query.QuoteIdentifier(table)
	qc := query.QuoteIdentifier(column)
	sql := fmt.Sprintf(`
		DELETE FROM public.%[1]s
		WHERE ctid IN (
			SELECT ctid FROM (
				SELECT ctid,
				       ROW_NUMBER() OVER (PARTITION BY %[2]s ORDER BY ctid) AS rn
				FROM public.%[1]s
				WHERE %[2]s IS NOT NULL
			) ranked
			WHERE ranked.rn > 1
		)`, qt, qc)
	return pool.Exec(ctx, sql)
}

func (a *Applier) analyzeTable(ctx context.Context, pool dbconn.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`ANALYZE public.%s`, query.QuoteIdentifier(table)))
	return err
}

// audit appends one row to the audit log.
func (a *Applier) audit(ctx context.Context, pool dbconn.Pool, req ApplyRequest, rows int64) {
	a.log.BestEffort("optimization audit", func() error {
		const sql = `
			INSERT INTO optimization_audit_log (action, target_table, target_column, rows_affected, applied_at)
			VALUES ($1, $2, $3, $4, NOW())`
		_, err := pool.Exec(ctx, sql, req.Action, req.TargetTable, req.TargetColumn, rows)
		if dbconn.IsUndefinedRelation(err) {
			return nil
		}
		return err
	})
}

// markResolved flags matching suggestions in the tracking table.
func (a *Applier) markResolved(ctx context.Context, pool dbconn.Pool, req ApplyRequest) {
	a.log.BestEffort("suggestion resolution", func() error {
		const sql = `
			UPDATE optimization_suggestions
			SET resolved = TRUE, resolved_at = NOW()
			WHERE suggestion_type = $1 AND table_name = $2 AND NOT resolved`
		_, err := pool.Exec(ctx, sql, req.Action, req.TargetTable)
		if dbconn.IsUndefinedRelation(err) {
			return nil
		}
		return err
	})
}
