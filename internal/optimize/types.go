// Package optimize produces and applies database optimization suggestions:
// missing indexes, unused tables, and duplicate records, with query
// performance summaries. Suggestions come from a remote advisory API when
// configured, from live statistics analysis otherwise, and from a canned
// default set when everything else fails — the caller always gets a usable
// set, never an error.
package optimize

// Suggestion sources, reported to the caller so the UI can label staleness.
const (
	SourceAdvisor  = "neon-api"
	SourceDatabase = "database"
	SourceFallback = "fallback"
)

// SuggestionSet is the converged shape all three sources produce.
type SuggestionSet struct {
	TotalSuggestions int                `json:"totalSuggestions"`
	QueryPerformance []QueryPerformance `json:"queryPerformance"`
	MissingIndexes   []MissingIndex     `json:"missingIndexes"`
	UnusedTables     []UnusedTable      `json:"unusedTables"`
	DuplicateRecords []DuplicateRecord  `json:"duplicateRecords"`
	Source           string             `json:"source"`
	Warning          string             `json:"warning,omitempty"`
}

// QueryPerformance summarises one statement type's observed cost.
type QueryPerformance struct {
	QueryType  string  `json:"queryType"` // SELECT / INSERT / UPDATE / DELETE / OTHER
	AvgTimeMs  float64 `json:"avgTimeMs"`
	Calls      int64   `json:"calls"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// MissingIndex suggests an index on one column of a sequentially-scanned
// table. TableName and ColumnName are both required; entries missing either
// are filtered out before they reach the caller.
type MissingIndex struct {
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	SeqScans   int64  `json:"seqScans,omitempty"`
	IdxScans   int64  `json:"idxScans,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// UnusedTable flags a table with zero live rows.
type UnusedTable struct {
	TableName    string `json:"tableName"`
	LiveRows     int64  `json:"liveRows"`
	LastActivity string `json:"lastActivity"` // "Today", "Yesterday", "N days ago", "N weeks ago", "Never"
}

// DuplicateRecord reports rows sharing a value in one column of a table.
type DuplicateRecord struct {
	TableName      string `json:"tableName"`
	ColumnName     string `json:"columnName"`
	DuplicateCount int64  `json:"duplicateCount"`
}

// Finalize drops malformed missing-index entries and recomputes
// TotalSuggestions unless an authoritative total was already supplied.
func (s *SuggestionSet) Finalize(authoritativeTotal bool) {
	valid := s.MissingIndexes[:0]
	for _, mi := range s.MissingIndexes {
		if mi.TableName != "" && mi.ColumnName != "" {
			valid = append(valid, mi)
		}
	}
	s.MissingIndexes = valid

	if s.QueryPerformance == nil {
		s.QueryPerformance = []QueryPerformance{}
	}
	if s.MissingIndexes == nil {
		s.MissingIndexes = []MissingIndex{}
	}
	if s.UnusedTables == nil {
		s.UnusedTables = []UnusedTable{}
	}
	if s.DuplicateRecords == nil {
		s.DuplicateRecords = []DuplicateRecord{}
	}

	if !authoritativeTotal {
		s.TotalSuggestions = len(s.MissingIndexes) + len(s.UnusedTables) + len(s.DuplicateRecords)
	}
}
