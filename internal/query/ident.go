// Package query executes raw SQL against imported databases through a
// transient single-use pool, with heuristic pre-validation and structured
// error translation.
package query

import "strings"

// QuoteIdentifier wraps a table or column name in double quotes, doubling
// any embedded double quote. Identifiers cannot be bound as parameters, so
// every name that reaches SQL text goes through here — after allow-list
// filtering, as defense in depth.
//
// An empty input returns an empty string. That is escaping, not rejection:
// callers must validate names against the introspected schema themselves.
func QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
