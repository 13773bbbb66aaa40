package optimize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
)

// Thresholds are the analyzer's heuristic tunables. They are business
// heuristics with no derived correct value, so they are injected from
// configuration rather than hardcoded.
type Thresholds struct {
	// RowThreshold is the minimum live-row estimate for a table to be
	// worth indexing.
	RowThreshold int64

	// ScanRatio requires seq_scan > idx_scan * ScanRatio; below that,
	// index usage is already adequate.
	ScanRatio int64

	// MaxSuggestions caps missing-index and duplicate-record output.
	MaxSuggestions int
}

// DefaultThresholds mirror the configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{RowThreshold: 100, ScanRatio: 2, MaxSuggestions: 5}
}

// Analyzer inspects live table statistics and column metadata over a
// borrowed pool.
type Analyzer struct {
	thresholds Thresholds
	log        *logger.Logger
	now        func() time.Time
}

// NewAnalyzer returns an analyzer with the given thresholds.
func NewAnalyzer(t Thresholds, log *logger.Logger) *Analyzer {
	return &Analyzer{thresholds: t, log: log, now: time.Now}
}

// Analyze produces a full suggestion set from live statistics.
func (a *Analyzer) Analyze(ctx context.Context, pool dbconn.Pool) (*SuggestionSet, error) {
	perf, err := a.queryPerformance(ctx, pool)
	if err != nil {
		return nil, err
	}

	missing, err := a.missingIndexes(ctx, pool)
	if err != nil {
		return nil, err
	}

	unused, err := a.unusedTables(ctx, pool)
	if err != nil {
		return nil, err
	}

	dupes, err := a.duplicateRecords(ctx, pool)
	if err != nil {
		return nil, err
	}

	set := &SuggestionSet{
		QueryPerformance: perf,
		MissingIndexes:   missing,
		UnusedTables:     unused,
		DuplicateRecords: dupes,
		Source:           SourceDatabase,
	}
	set.Finalize(false)
	return set, nil
}

// --- query performance ---

// statementStatsQuery groups the statement-statistics extension's view by
// inferred statement type: top 4 by average time.
const statementStatsQuery = `
	SELECT
		CASE
			WHEN query ILIKE 'select%' THEN 'SELECT'
			WHEN query ILIKE 'insert%' THEN 'INSERT'
			WHEN query ILIKE 'update%' THEN 'UPDATE'
			WHEN query ILIKE 'delete%' THEN 'DELETE'
			ELSE 'OTHER'
		END              AS query_type,
		AVG(mean_exec_time) AS avg_time_ms,
		SUM(calls)          AS calls
	FROM pg_stat_statements
	GROUP BY 1
	ORDER BY 2 DESC
	LIMIT 4`

// queryLogQuery is the application-level fallback when the extension is
// not installed but the app's own query log table exists.
const queryLogQuery = `
	SELECT
		UPPER(query_type)    AS query_type,
		AVG(duration_ms)     AS avg_time_ms,
		COUNT(*)             AS calls
	FROM query_logs
	GROUP BY 1
	ORDER BY 2 DESC
	LIMIT 4`

// queryPerformance prefers the extension view, falls back to the app query
// log, and returns empty when neither relation exists. Only a missing
// relation is tolerated; other errors propagate.
func (a *Analyzer) queryPerformance(ctx context.Context, pool dbconn.Pool) ([]QueryPerformance, error) {
	for _, q := range []string{statementStatsQuery, queryLogQuery} {
		perf, err := a.scanPerformance(ctx, pool, q)
		if err != nil {
			if dbconn.IsUndefinedRelation(err) {
				continue
			}
			return nil, err
		}
		if len(perf) > 0 {
			return perf, nil
		}
	}
	return []QueryPerformance{}, nil
}

func (a *Analyzer) scanPerformance(ctx context.Context, pool dbconn.Pool, q string) ([]QueryPerformance, error) {
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []QueryPerformance
	for rows.Next() {
		var p QueryPerformance
		if err := rows.Scan(&p.QueryType, &p.AvgTimeMs, &p.Calls); err != nil {
			return nil, err
		}
		if p.AvgTimeMs > 50 {
			p.Suggestion = "Consider adding indexes or restructuring this query type"
		}
		perf = append(perf, p)
	}
	return perf, rows.Err()
}

// --- missing indexes ---

// tableStats is one pg_stat_user_tables row.
type tableStats struct {
	Table    string
	SeqScans int64
	IdxScans int64
	LiveRows int64
}

const tableStatsQuery = `
	SELECT relname, seq_scan, COALESCE(idx_scan, 0), n_live_tup
	FROM pg_stat_user_tables
	WHERE schemaname = 'public'
	ORDER BY seq_scan DESC
	LIMIT 15`

const baseTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public'
	  AND table_type   = 'BASE TABLE'
	ORDER BY table_name`

// missingIndexes ranks candidate tables by sequential-scan pressure and
// suggests an index on the first non-primary-key column of each table that
// passes the thresholds and has no index on that column yet.
func (a *Analyzer) missingIndexes(ctx context.Context, pool dbconn.Pool) ([]MissingIndex, error) {
	stats, err := a.fetchTableStats(ctx, pool)
	if err != nil {
		return nil, err
	}

	suggestions := make([]MissingIndex, 0, a.thresholds.MaxSuggestions)
	for _, st := range stats {
		if len(suggestions) >= a.thresholds.MaxSuggestions {
			break
		}
		if !shouldSuggestIndex(st, a.thresholds) {
			continue
		}

		col, err := a.candidateColumn(ctx, pool, st.Table)
		if err != nil {
			return nil, err
		}
		if col == "" {
			continue
		}

		indexed, err := a.columnAlreadyIndexed(ctx, pool, st.Table, col)
		if err != nil {
			return nil, err
		}
		if indexed {
			continue
		}

		suggestions = append(suggestions, MissingIndex{
			TableName:  st.Table,
			ColumnName: col,
			SeqScans:   st.SeqScans,
			IdxScans:   st.IdxScans,
			Reason: fmt.Sprintf("%d sequential scans vs %d index scans",
				st.SeqScans, st.IdxScans),
		})
	}
	return suggestions, nil
}

// shouldSuggestIndex applies the threshold checks to one table's stats:
// too few rows or adequate index usage disqualify the table.
func shouldSuggestIndex(st tableStats, t Thresholds) bool {
	if st.LiveRows < t.RowThreshold {
		return false
	}
	return st.SeqScans > st.IdxScans*t.ScanRatio
}

// fetchTableStats reads the statistics view; when it is unavailable, every
// base table is treated as if its sequential scans exceed the threshold.
func (a *Analyzer) fetchTableStats(ctx context.Context, pool dbconn.Pool) ([]tableStats, error) {
	rows, err := pool.Query(ctx, tableStatsQuery)
	if err != nil {
		if !dbconn.IsUndefinedRelation(err) {
			return nil, err
		}
		return a.syntheticStats(ctx, pool)
	}
	defer rows.Close()

	var stats []tableStats
	for rows.Next() {
		var st tableStats
		if err := rows.Scan(&st.Table, &st.SeqScans, &st.IdxScans, &st.LiveRows); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return a.syntheticStats(ctx, pool)
	}
	return stats, nil
}

// syntheticStats fabricates above-threshold stats for every base table so
// the candidate walk still runs when no statistics exist.
func (a *Analyzer) syntheticStats(ctx context.Context, pool dbconn.Pool) ([]tableStats, error) {
	tables, err := a.listBaseTables(ctx, pool)
	if err != nil {
		return nil, err
	}
	stats := make([]tableStats, len(tables))
	for i, t := range tables {
		stats[i] = tableStats{
			Table:    t,
			SeqScans: a.thresholds.RowThreshold * a.thresholds.ScanRatio,
			LiveRows: a.thresholds.RowThreshold,
		}
	}
	return stats, nil
}

func (a *Analyzer) listBaseTables(ctx context.Context, pool dbconn.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, baseTablesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// candidateColumn picks the first non-primary-key column, falling back to
// the first column. Empty when the table has no columns.
func (a *Analyzer) candidateColumn(ctx context.Context, pool dbconn.Pool, table string) (string, error) {
	const q = `
		SELECT c.column_name,
		       COALESCE(tc.constraint_type = 'PRIMARY KEY', false)
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage kcu
			ON kcu.table_schema = c.table_schema
			AND kcu.table_name  = c.table_name
			AND kcu.column_name = c.column_name
		LEFT JOIN information_schema.table_constraints tc
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema   = kcu.table_schema
			AND tc.constraint_type = 'PRIMARY KEY'
		WHERE c.table_schema = 'public'
		  AND c.table_name   = $1
		ORDER BY c.ordinal_position`

	rows, err := pool.Query(ctx, q, table)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	first := ""
	for rows.Next() {
		var name string
		var isPK bool
		if err := rows.Scan(&name, &isPK); err != nil {
			return "", err
		}
		if first == "" {
			first = name
		}
		if !isPK {
			return name, nil
		}
	}
	return first, rows.Err()
}

// columnAlreadyIndexed checks existing index definitions for the column by
// substring match, mirroring the UI's coarse notion of "already indexed".
func (a *Analyzer) columnAlreadyIndexed(ctx context.Context, pool dbconn.Pool, table, column string) (bool, error) {
	const q = `
		SELECT indexdef
		FROM pg_indexes
		WHERE schemaname = 'public'
		  AND tablename  = $1`

	rows, err := pool.Query(ctx, q, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return false, err
		}
		if strings.Contains(def, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// --- unused tables ---

const unusedStatsQuery = `
	SELECT relname,
	       n_live_tup,
	       GREATEST(last_vacuum, last_autovacuum, last_analyze, last_autoanalyze)
	FROM pg_stat_user_tables
	WHERE schemaname = 'public'`

// unusedTables reports every base table with zero live rows. Cached
// statistics are preferred; tables absent from the statistics view get a
// live COUNT(*).
func (a *Analyzer) unusedTables(ctx context.Context, pool dbconn.Pool) ([]UnusedTable, error) {
	type statEntry struct {
		liveRows     int64
		lastActivity *time.Time
	}

	stats := make(map[string]statEntry)
	rows, err := pool.Query(ctx, unusedStatsQuery)
	if err != nil {
		if !dbconn.IsUndefinedRelation(err) {
			return nil, err
		}
	} else {
		func() {
			defer rows.Close()
			for rows.Next() {
				var name string
				var live int64
				var last *time.Time
				if scanErr := rows.Scan(&name, &live, &last); scanErr != nil {
					err = scanErr
					return
				}
				stats[name] = statEntry{liveRows: live, lastActivity: last}
			}
			err = rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	tables, err := a.listBaseTables(ctx, pool)
	if err != nil {
		return nil, err
	}

	unused := make([]UnusedTable, 0)
	for _, table := range tables {
		entry, ok := stats[table]
		if !ok {
			// No cached statistics for this table; count live.
			var count int64
			q := fmt.Sprintf(`SELECT COUNT(*) FROM public.%s`, query.QuoteIdentifier(table))
			if err := pool.QueryRow(ctx, q).Scan(&count); err != nil {
				return nil, err
			}
			entry = statEntry{liveRows: count}
		}
		if entry.liveRows != 0 {
			continue
		}
		unused = append(unused, UnusedTable{
			TableName:    table,
			LiveRows:     0,
			LastActivity: FormatLastActivity(entry.lastActivity, a.now()),
		})
	}
	return unused, nil
}

// FormatLastActivity renders a timestamp as the human-relative strings the
// UI shows. A nil timestamp means the table was never touched.
func FormatLastActivity(t *time.Time, now time.Time) string {
	if t == nil {
		return "Never"
	}
	days := int(now.Sub(*t).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
}

// --- duplicate records ---

// duplicateColumnsQuery lists a table's first 3 text/numeric/uuid columns —
// the kinds a duplicate check over GROUP BY is meaningful for.
const duplicateColumnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = 'public'
	  AND table_name   = $1
	  AND data_type IN ('text', 'character varying', 'character', 'uuid',
	                    'integer', 'bigint', 'smallint', 'numeric')
	ORDER BY ordinal_position
	LIMIT 3`

// duplicateRecords walks base tables and reports, per table, the first
// column carrying duplicated non-null values, up to MaxSuggestions tables.
func (a *Analyzer) duplicateRecords(ctx context.Context, pool dbconn.Pool) ([]DuplicateRecord, error) {
	tables, err := a.listBaseTables(ctx, pool)
	if err != nil {
		return nil, err
	}

	dupes := make([]DuplicateRecord, 0)
	for _, table := range tables {
		if len(dupes) >= a.thresholds.MaxSuggestions {
			break
		}

		cols, err := a.duplicateCandidateColumns(ctx, pool, table)
		if err != nil {
			return nil, err
		}

		for _, col := range cols {
			count, err := a.countDuplicates(ctx, pool, table, col)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				dupes = append(dupes, DuplicateRecord{
					TableName:      table,
					ColumnName:     col,
					DuplicateCount: count,
				})
				break // first duplicated column per table
			}
		}
	}
	return dupes, nil
}

func (a *Analyzer) duplicateCandidateColumns(ctx context.Context, pool dbconn.Pool, table string) ([]string, error) {
	rows, err := pool.Query(ctx, duplicateColumnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// countDuplicates sums count-1 per group of rows sharing a non-null value.
func (a *Analyzer) countDuplicates(ctx context.Context, pool dbconn.Pool, table, column string) (int64, error) {
	q := fmt.Sprintf(`
		SELECT COALESCE(SUM(c - 1), 0)
		FROM (
			SELECT COUNT(*) AS c
			FROM public.%s
			WHERE %s IS NOT NULL
			GROUP BY %s
			HAVING COUNT(*) > 1
		) groups`,
		query.QuoteIdentifier(table),
		query.QuoteIdentifier(column),
		query.QuoteIdentifier(column))

	var count int64
	if err := pool.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
