package optimize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

func applierPool() *fakePool {
	return &fakePool{
		onQuery: func(sql string, args []any) ([][]any, error) {
			if strings.Contains(sql, "COUNT(*)") {
				return [][]any{{int64(12)}}, nil
			}
			return nil, nil
		},
	}
}

func TestApply_UnknownAction(t *testing.T) {
	_, err := NewApplier(testLogger()).Apply(context.Background(), applierPool(), ApplyRequest{
		Action:      "explode",
		TargetTable: "users",
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Equal(t, "Invalid action", err.Error())
}

func TestApply_MissingTargetTable(t *testing.T) {
	_, err := NewApplier(testLogger()).Apply(context.Background(), applierPool(), ApplyRequest{
		Action: ActionCreateIndex,
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestApply_CreateIndex(t *testing.T) {
	pool := applierPool()
	res, err := NewApplier(testLogger()).Apply(context.Background(), pool, ApplyRequest{
		Action:       ActionCreateIndex,
		TargetTable:  "orders",
		TargetColumn: "customer_id",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "idx_orders_customer_id")

	require.GreaterOrEqual(t, len(pool.execs), 2)
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "idx_orders_customer_id" ON public."orders" ("customer_id")`, pool.execs[0])
	assert.Equal(t, `ANALYZE public."orders"`, pool.execs[1])
}

func TestApply_CreateIndexRequiresColumn(t *testing.T) {
	_, err := NewApplier(testLogger()).Apply(context.Background(), applierPool(), ApplyRequest{
		Action:      ActionCreateIndex,
		TargetTable: "orders",
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestApply_RemoveTable(t *testing.T) {
	pool := applierPool()
	res, err := NewApplier(testLogger()).Apply(context.Background(), pool, ApplyRequest{
		Action:      ActionRemoveTable,
		TargetTable: "stale_data",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.RowsAffected, "row count captured before the drop")

	assert.Equal(t, `SELECT COUNT(*) FROM public."stale_data"`, pool.queries[0])
	assert.Equal(t, `DROP TABLE IF EXISTS public."stale_data" CASCADE`, pool.execs[0])
}

func TestApply_RemoveDuplicatesByIDs(t *testing.T) {
	pool := applierPool()
	pool.onExec = func(sql string, args []any) (int64, error) {
		if strings.HasPrefix(sql, "DELETE") {
			return 3, nil
		}
		return 0, nil
	}

	res, err := NewApplier(testLogger()).Apply(context.Background(), pool, ApplyRequest{
		Action:       ActionRemoveDuplicates,
		TargetTable:  "orders",
		DuplicateIDs: []string{"1", "2", "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsAffected)

	assert.Equal(t, `DELETE FROM public."orders" WHERE id = ANY($1)`, pool.execs[0])
	assert.Equal(t, []any{[]string{"1", "2", "3"}}, pool.args[0])
}

func TestApply_RemoveDuplicatesByColumn(t *testing.T) {
	pool := applierPool()
	res, err := NewApplier(testLogger()).Apply(context.Background(), pool, ApplyRequest{
		Action:       ActionRemoveDuplicates,
		TargetTable:  "orders",
		TargetColumn: "customer_id",
	})
	require.NoError(t, err)
	assert.NotNil(t, res)

	assert.Contains(t, pool.execs[0], "ROW_NUMBER() OVER (PARTITION BY \"customer_id\"")
	assert.Contains(t, pool.execs[0], "WHERE ctid IN")
}

func TestApply_RemoveDuplicatesRequiresColumnOrIDs(t *testing.T) {
	_, err := NewApplier(testLogger()).Apply(context.Background(), applierPool(), ApplyRequest{
		Action:      ActionRemoveDuplicates,
		TargetTable: "orders",
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestApply_AuditFailureDoesNotFailAction(t *testing.T) {
	pool := applierPool()
	pool.onExec = func(sql string, args []any) (int64, error) {
		if strings.Contains(sql, "optimization_audit_log") || strings.Contains(sql, "optimization_suggestions") {
			return 0, errors.New("audit db down")
		}
		return 1, nil
	}

	res, err := NewApplier(testLogger()).Apply(context.Background(), pool, ApplyRequest{
		Action:       ActionCreateIndex,
		TargetTable:  "orders",
		TargetColumn: "customer_id",
	})
	require.NoError(t, err, "side-channel failure never fails the action")
	assert.NotNil(t, res)
}
