package optimize

// fallbackWarning accompanies the canned set so callers can tell the
// suggestions are not derived from their database.
const fallbackWarning = "Using default suggestions - database analysis unavailable"

// DefaultSuggestions returns the canned recommendation set served when both
// the remote advisor and the live analysis fail. It is generated fresh per
// call so callers may mutate it.
func DefaultSuggestions() *SuggestionSet {
	set := &SuggestionSet{
		QueryPerformance: []QueryPerformance{
			{QueryType: "SELECT", AvgTimeMs: 45.2, Calls: 1250, Suggestion: "Consider adding indexes for frequently queried columns"},
			{QueryType: "INSERT", AvgTimeMs: 12.8, Calls: 320},
			{QueryType: "UPDATE", AvgTimeMs: 28.5, Calls: 180, Suggestion: "Batch updates where possible to reduce round trips"},
		},
		MissingIndexes: []MissingIndex{
			{
				TableName:  "users",
				ColumnName: "email",
				Reason:     "Frequently filtered column without an index",
			},
		},
		UnusedTables:     []UnusedTable{},
		DuplicateRecords: []DuplicateRecord{},
		Source:           SourceFallback,
		Warning:          fallbackWarning,
	}
	set.Finalize(false)
	return set
}
